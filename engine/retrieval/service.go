// Package retrieval orchestrates the query path of the engine: embed the
// question, search the vector index, resolve and filter documents, and
// assemble a bounded context string for the LLM-calling layer. The package
// never calls the LLM itself; its output contract is the context string
// plus the ranked document list.
package retrieval

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"

	"github.com/investiq-ai/investiq/engine/corpus"
	"github.com/investiq-ai/investiq/engine/domain"
	"github.com/investiq-ai/investiq/engine/embed"
	"github.com/investiq-ai/investiq/engine/vecindex"
)

// Searcher abstracts nearest-neighbor search so the service can run against
// the in-process index or a remote vector store behind the same contract.
type Searcher interface {
	Search(ctx context.Context, query []float32, k int) ([]vecindex.Hit, error)
}

// IndexSearcher adapts a *vecindex.Index to the Searcher interface.
type IndexSearcher struct{ Index *vecindex.Index }

func (s IndexSearcher) Search(_ context.Context, query []float32, k int) ([]vecindex.Hit, error) {
	return s.Index.Search(query, k)
}

// Result is one retrieved document with its similarity score.
type Result struct {
	Doc   domain.Document `json:"doc"`
	Score float64         `json:"score"`
}

// Options configures the retrieval heuristics. The over-fetch factor and
// context budget are tuning values, not correctness constants.
type Options struct {
	// TopK is the default number of documents to retrieve.
	TopK int
	// OverfetchFactor multiplies k when metadata filters are present, so
	// post-filtering still has enough candidates.
	OverfetchFactor int
	// MaxContextChars bounds the assembled context string.
	MaxContextChars int
}

// DefaultOptions returns sensible defaults.
func DefaultOptions() Options {
	return Options{
		TopK:            5,
		OverfetchFactor: 3,
		MaxContextChars: 4000,
	}
}

// snapshot pairs one corpus generation with the searcher built over it.
type snapshot struct {
	store  *corpus.Store
	search Searcher
}

// Service is the retrieval front of the engine. Retrieve is safe for
// concurrent use; Publish swaps in a new corpus+index generation with a
// single atomic transition.
type Service struct {
	embedder embed.Client
	opts     Options
	logger   *slog.Logger
	snap     atomic.Pointer[snapshot]
}

// New creates a retrieval Service. It starts not-ready; call Publish after
// the first successful build.
func New(embedder embed.Client, opts Options, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.TopK <= 0 {
		opts.TopK = DefaultOptions().TopK
	}
	if opts.OverfetchFactor <= 0 {
		opts.OverfetchFactor = DefaultOptions().OverfetchFactor
	}
	if opts.MaxContextChars <= 0 {
		opts.MaxContextChars = DefaultOptions().MaxContextChars
	}
	return &Service{embedder: embedder, opts: opts, logger: logger}
}

// Options returns the configured heuristics.
func (s *Service) Options() Options { return s.opts }

// Publish makes a freshly-built store/index pair the active generation.
// In-flight Retrieve calls finish against the generation they started with.
func (s *Service) Publish(store *corpus.Store, index *vecindex.Index) {
	s.PublishSearcher(store, IndexSearcher{Index: index})
}

// PublishSearcher is Publish for an arbitrary Searcher implementation.
func (s *Service) PublishSearcher(store *corpus.Store, search Searcher) {
	s.snap.Store(&snapshot{store: store, search: search})
}

// Ready reports whether a corpus generation has been published.
func (s *Service) Ready() bool { return s.snap.Load() != nil }

// Size returns the document count of the active generation, or 0.
func (s *Service) Size() int {
	snap := s.snap.Load()
	if snap == nil {
		return 0
	}
	return snap.store.Size()
}

// Retrieve returns the top-k documents most relevant to query, optionally
// restricted to exact metadata matches. An empty corpus yields an empty
// result; a corpus that has never been built yields ErrNotReady.
func (s *Service) Retrieve(ctx context.Context, query string, k int, filters map[string]string) ([]Result, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("retrieval: empty query: %w", domain.ErrInvalidArgument)
	}
	if k <= 0 {
		return nil, fmt.Errorf("retrieval: k must be positive, got %d: %w", k, domain.ErrInvalidArgument)
	}

	snap := s.snap.Load()
	if snap == nil {
		return nil, fmt.Errorf("retrieval: %w", domain.ErrNotReady)
	}

	vec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("retrieval: embed query: %w", err)
	}

	fetch := k
	if len(filters) > 0 {
		fetch = k * s.opts.OverfetchFactor
	}

	hits, err := snap.search.Search(ctx, vec, fetch)
	if err != nil {
		return nil, fmt.Errorf("retrieval: search: %w", err)
	}

	results := make([]Result, 0, k)
	for _, hit := range hits {
		doc, err := snap.store.Get(hit.ID)
		if err != nil {
			// Index/store drift is recoverable: skip the entry, keep serving.
			s.logger.Warn("retrieval: skipping unresolvable id", "id", hit.ID, "err", err)
			continue
		}
		if !matchesFilters(doc, filters) {
			continue
		}
		results = append(results, Result{Doc: doc, Score: hit.Score})
		if len(results) == k {
			break
		}
	}
	return results, nil
}

// matchesFilters reports whether doc satisfies every exact-match filter.
func matchesFilters(doc domain.Document, filters map[string]string) bool {
	for key, want := range filters {
		if doc.Meta(key) != want {
			return false
		}
	}
	return true
}
