// Package ingest provides the corpus build pipeline: company records are
// validated, rendered into documents, embedded in batches, and indexed,
// with optional mirroring to Qdrant and the company graph.
package ingest

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/investiq-ai/investiq/engine/corpus"
	"github.com/investiq-ai/investiq/engine/domain"
	"github.com/investiq-ai/investiq/engine/embed"
	"github.com/investiq-ai/investiq/engine/semantic"
	"github.com/investiq-ai/investiq/engine/vecindex"
	"github.com/investiq-ai/investiq/pkg/fn"
)

const (
	// RebuildSubject triggers a full corpus rebuild.
	RebuildSubject = "investiq.corpus.rebuild"
	// RecordsSubject carries incremental company record batches.
	RecordsSubject = "investiq.corpus.records"
	// DLQSubject is the dead letter queue for failed rebuild work.
	DLQSubject = "investiq.corpus.dlq"
	// MaxRetries before sending to DLQ.
	MaxRetries = 3
	// EmbedBatchSize is the max documents per embedding request.
	EmbedBatchSize = 100
)

// Mirror receives indexed vectors, typically a Qdrant collection.
type Mirror interface {
	EnsureCollection(ctx context.Context, dims int) error
	Upsert(ctx context.Context, records []semantic.VectorRecord) error
}

// GraphSink receives company records, typically the Neo4j store.
type GraphSink interface {
	SaveBatch(ctx context.Context, records []domain.CompanyRecord) error
}

// Deps holds the external dependencies for the build pipeline.
type Deps struct {
	Embedder embed.Client
	Mirror   Mirror    // optional
	Graph    GraphSink // optional
	// Records loads the full company dataset for rebuild requests.
	Records func(ctx context.Context) ([]domain.CompanyRecord, error)
	// OnBuild is invoked with every successful build.
	OnBuild func(ctx context.Context, b Build)
	Logger  *slog.Logger
}

func (d Deps) logger() *slog.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return slog.Default()
}

// Build is the product of one pipeline run: the document store and the
// vector index built from one record set.
type Build struct {
	Records []domain.CompanyRecord
	Store   *corpus.Store
	Index   *vecindex.Index
	Entries []vecindex.Entry
}

// built pairs the corpus with its embeddings between stages.
type built struct {
	records []domain.CompanyRecord
	store   *corpus.Store
	entries []vecindex.Entry
}

// NewIngestStage validates records and renders them into the document
// store. Invalid records are skipped, not fatal.
func NewIngestStage(log *slog.Logger) fn.Stage[[]domain.CompanyRecord, built] {
	return func(_ context.Context, records []domain.CompanyRecord) fn.Result[built] {
		store, err := corpus.IngestRecords(records, corpus.IngestOptions{SkipInvalid: true})
		if err != nil {
			return fn.Err[built](fmt.Errorf("ingest: records: %w", err))
		}
		if store.Skipped() > 0 {
			log.Warn("skipped invalid company records", "skipped", store.Skipped(), "kept", store.Size())
		}
		return fn.Ok(built{records: records, store: store})
	}
}

// NewEmbedStage embeds every stored document in batches of EmbedBatchSize.
// A failing batch aborts the build.
func NewEmbedStage(client embed.Client) fn.Stage[built, built] {
	return func(ctx context.Context, b built) fn.Result[built] {
		docs := b.store.All()
		entries := make([]vecindex.Entry, len(docs))

		for i := 0; i < len(docs); i += EmbedBatchSize {
			end := i + EmbedBatchSize
			if end > len(docs) {
				end = len(docs)
			}
			texts := make([]string, end-i)
			for j, d := range docs[i:end] {
				texts[j] = d.Text
			}
			vectors, err := client.EmbedBatch(ctx, texts)
			if err != nil {
				return fn.Err[built](fmt.Errorf("ingest: embed batch at %d: %w", i, err))
			}
			for j, vec := range vectors {
				entries[i+j] = vecindex.Entry{ID: docs[i+j].ID, Vector: vec}
			}
		}

		b.entries = entries
		return fn.Ok(b)
	}
}

// IndexStage builds the in-memory vector index from the embedded corpus.
var IndexStage fn.Stage[built, Build] = func(_ context.Context, b built) fn.Result[Build] {
	idx := vecindex.New()
	if err := idx.Build(b.entries); err != nil {
		return fn.Err[Build](fmt.Errorf("ingest: index build: %w", err))
	}
	return fn.Ok(Build{Records: b.records, Store: b.store, Index: idx, Entries: b.entries})
}

// NewMirrorStage pushes the build to Qdrant and the company graph when
// configured. Mirror failures are logged, not fatal: the in-memory index
// is the source of truth for serving.
func NewMirrorStage(deps Deps) fn.Stage[Build, Build] {
	log := deps.logger()
	return func(ctx context.Context, b Build) fn.Result[Build] {
		if deps.Mirror != nil && len(b.Entries) > 0 {
			if err := mirrorBuild(ctx, deps.Mirror, b); err != nil {
				log.Warn("vector mirror failed", "error", err)
			}
		}
		if deps.Graph != nil && len(b.Records) > 0 {
			if err := deps.Graph.SaveBatch(ctx, b.Records); err != nil {
				log.Warn("graph mirror failed", "error", err)
			}
		}
		return fn.Ok(b)
	}
}

func mirrorBuild(ctx context.Context, m Mirror, b Build) error {
	if err := m.EnsureCollection(ctx, b.Index.Dims()); err != nil {
		return err
	}
	records := make([]semantic.VectorRecord, 0, len(b.Entries))
	for _, e := range b.Entries {
		doc, err := b.Store.Get(e.ID)
		if err != nil {
			return err
		}
		records = append(records, semantic.FromDocument(doc, e.Vector))
	}
	return m.Upsert(ctx, records)
}

// Rebuild runs the full pipeline over a record set.
func Rebuild(ctx context.Context, records []domain.CompanyRecord, deps Deps) (Build, error) {
	stage := fn.Then(
		fn.Then(
			fn.Named("corpus.ingest", NewIngestStage(deps.logger())),
			fn.Named("corpus.embed", NewEmbedStage(deps.Embedder)),
		),
		fn.Then(
			fn.Named("corpus.index", IndexStage),
			fn.Named("corpus.mirror", NewMirrorStage(deps)),
		),
	)
	return stage(ctx, records).Unwrap()
}
