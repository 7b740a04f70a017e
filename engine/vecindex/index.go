// Package vecindex implements an exact nearest-neighbor index over document
// embeddings using cosine similarity. Vectors are L2-normalized at build
// time so search reduces to a dot-product scan; at the corpus sizes this
// engine targets (low thousands of documents) the exhaustive scan is both
// the ground truth and fast enough.
//
// A build constructs the entire structure in isolation and publishes it
// with a single atomic pointer store, so searches running concurrently with
// a rebuild observe either the old or the new index, never a partial one.
package vecindex

import (
	"fmt"
	"math"
	"sort"
	"sync/atomic"

	"github.com/investiq-ai/investiq/engine/domain"
)

// Entry pairs a document id with its embedding vector.
type Entry struct {
	ID     string
	Vector []float32
}

// Hit is a single search result.
type Hit struct {
	ID    string
	Score float64 // cosine similarity in [-1, 1], higher is more similar
}

// snapshot is one fully-built, immutable generation of the index.
type snapshot struct {
	ids  []string
	vecs [][]float32 // L2-normalized copies
	dims int
}

// Index is a rebuildable cosine-similarity index. Zero value is an empty,
// not-yet-built index. Safe for concurrent Search during Build.
type Index struct {
	cur atomic.Pointer[snapshot]
}

// New returns an empty Index.
func New() *Index { return &Index{} }

// Build replaces the index contents from entries. All vectors must share
// one dimensionality and ids must be unique. On error the previously-built
// index remains fully intact and queryable.
func (ix *Index) Build(entries []Entry) error {
	snap, err := buildSnapshot(entries)
	if err != nil {
		return err
	}
	ix.cur.Store(snap)
	return nil
}

func buildSnapshot(entries []Entry) (*snapshot, error) {
	snap := &snapshot{
		ids:  make([]string, 0, len(entries)),
		vecs: make([][]float32, 0, len(entries)),
	}
	seen := make(map[string]struct{}, len(entries))

	for _, e := range entries {
		if snap.dims == 0 {
			if len(e.Vector) == 0 {
				return nil, fmt.Errorf("vecindex: build %q: empty vector: %w", e.ID, domain.ErrDimensionMismatch)
			}
			snap.dims = len(e.Vector)
		}
		if len(e.Vector) != snap.dims {
			return nil, fmt.Errorf("vecindex: build %q: got %d dims, index has %d: %w",
				e.ID, len(e.Vector), snap.dims, domain.ErrDimensionMismatch)
		}
		if _, dup := seen[e.ID]; dup {
			return nil, fmt.Errorf("vecindex: build: duplicate id %q: %w", e.ID, domain.ErrValidation)
		}
		seen[e.ID] = struct{}{}

		snap.ids = append(snap.ids, e.ID)
		snap.vecs = append(snap.vecs, normalize(e.Vector))
	}
	return snap, nil
}

// Search returns up to k entries most similar to query, ordered by
// descending score with ties broken by ascending id. An empty index yields
// an empty result.
func (ix *Index) Search(query []float32, k int) ([]Hit, error) {
	if k <= 0 {
		return nil, fmt.Errorf("vecindex: search: k must be positive, got %d: %w", k, domain.ErrInvalidArgument)
	}

	snap := ix.cur.Load()
	if snap == nil || len(snap.ids) == 0 {
		return nil, nil
	}
	if len(query) != snap.dims {
		return nil, fmt.Errorf("vecindex: search: query has %d dims, index has %d: %w",
			len(query), snap.dims, domain.ErrDimensionMismatch)
	}

	q := normalize(query)
	hits := make([]Hit, len(snap.ids))
	for i, vec := range snap.vecs {
		hits[i] = Hit{ID: snap.ids[i], Score: dot(q, vec)}
	}

	sort.Slice(hits, func(a, b int) bool {
		if hits[a].Score != hits[b].Score {
			return hits[a].Score > hits[b].Score
		}
		return hits[a].ID < hits[b].ID
	})

	if k > len(hits) {
		k = len(hits)
	}
	return hits[:k], nil
}

// Len returns the number of indexed entries.
func (ix *Index) Len() int {
	snap := ix.cur.Load()
	if snap == nil {
		return 0
	}
	return len(snap.ids)
}

// Dims returns the vector dimensionality, or 0 when unbuilt/empty.
func (ix *Index) Dims() int {
	snap := ix.cur.Load()
	if snap == nil {
		return 0
	}
	return snap.dims
}

// normalize returns an L2-normalized copy of v. Zero vectors are returned
// as-is (they score 0 against everything).
func normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	out := make([]float32, len(v))
	if sum == 0 {
		return out
	}
	inv := 1 / math.Sqrt(sum)
	for i, x := range v {
		out[i] = float32(float64(x) * inv)
	}
	return out
}

func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
