package semantic

import (
	"context"

	"github.com/investiq-ai/investiq/engine/vecindex"
)

// HitSearcher adapts the remote store to the hit-based search interface
// used by the retrieval service. Scores come back from Qdrant's cosine
// metric; document ids come from the point payload.
type HitSearcher struct {
	Store *VectorStore
}

func (s HitSearcher) Search(ctx context.Context, query []float32, k int) ([]vecindex.Hit, error) {
	results, err := s.Store.Search(ctx, query, k)
	if err != nil {
		return nil, err
	}
	hits := make([]vecindex.Hit, 0, len(results))
	for _, r := range results {
		if r.DocID == "" {
			continue
		}
		hits = append(hits, vecindex.Hit{ID: r.DocID, Score: float64(r.Score)})
	}
	return hits, nil
}
