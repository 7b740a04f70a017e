package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/investiq-ai/investiq/engine/corpus"
	"github.com/investiq-ai/investiq/engine/domain"
	"github.com/investiq-ai/investiq/engine/graph"
	"github.com/investiq-ai/investiq/engine/ingest"
	"github.com/investiq-ai/investiq/engine/retrieval"
	"github.com/investiq-ai/investiq/engine/vecindex"
	"github.com/investiq-ai/investiq/pkg/metrics"
	"github.com/investiq-ai/investiq/pkg/mid"
	"github.com/investiq-ai/investiq/pkg/natsutil"
	"github.com/investiq-ai/investiq/pkg/resilience"
)

type app struct {
	cfg      Config
	log      *slog.Logger
	svc      *retrieval.Service
	enricher *graph.Enricher
	nc       *nats.Conn
	remote   retrieval.Searcher
	deps     ingest.Deps
	reg      *metrics.Registry
	limiter  *resilience.Limiter
	building atomic.Bool
}

func (a *app) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", a.handleHealth)
	mux.HandleFunc("GET /api/status", a.handleStatus)
	mux.Handle("POST /api/retrieve", mid.Chain(
		http.HandlerFunc(a.handleRetrieve),
		mid.RateLimit(a.limiter),
	))
	mux.HandleFunc("POST /api/admin/rebuild", a.handleRebuild)
	mux.Handle("GET /metrics", a.reg.Handler())

	return mid.Chain(mux,
		mid.Recover(a.log),
		mid.Logger(a.log),
		mid.Trace("investiq.api"),
		mid.CORS(a.cfg.CORSOrigin),
	)
}

// loadRecords resolves the company dataset: local file, then remote URL,
// then the built-in seed list.
func (a *app) loadRecords(ctx context.Context) ([]domain.CompanyRecord, error) {
	if a.cfg.DataPath != "" {
		records, err := corpus.LoadCompanies(a.cfg.DataPath)
		if err == nil {
			return records, nil
		}
		a.log.Warn("local dataset unavailable", "path", a.cfg.DataPath, "error", err)
	}
	if a.cfg.DataURL != "" {
		records, err := corpus.FetchCompanies(ctx, a.cfg.DataURL)
		if err == nil {
			return records, nil
		}
		a.log.Warn("remote dataset unavailable", "url", a.cfg.DataURL, "error", err)
	}
	a.log.Info("using seed dataset")
	return corpus.SeedCompanies(), nil
}

// publish swaps a freshly built generation in. With SERVE_BACKEND=qdrant
// the remote mirror answers searches instead of the local index; the store
// stays the document source either way.
func (a *app) publish(store *corpus.Store, index *vecindex.Index) {
	if a.cfg.ServeBackend == "qdrant" && a.remote != nil {
		a.svc.PublishSearcher(store, a.remote)
		return
	}
	a.svc.Publish(store, index)
}

// publishBuild swaps the new generation in and persists it.
func (a *app) publishBuild(_ context.Context, b ingest.Build) {
	a.publish(b.Store, b.Index)
	a.reg.Gauge("investiq_index_documents", "Documents in the active index").Set(int64(b.Store.Size()))

	if a.cfg.SnapshotPath == "" {
		return
	}
	if err := os.MkdirAll(filepath.Dir(a.cfg.SnapshotPath), 0o755); err != nil {
		a.log.Error("snapshot dir", "error", err)
		return
	}
	if err := b.Index.SaveFile(a.cfg.SnapshotPath); err != nil {
		a.log.Error("snapshot save failed", "error", err)
	}
	if err := corpus.SaveCompanies(a.cfg.SnapshotPath+".companies.json", b.Records); err != nil {
		a.log.Error("dataset save failed", "error", err)
	}
}

// initialBuild restores the last snapshot when possible, otherwise builds
// from the dataset.
func (a *app) initialBuild(ctx context.Context) {
	if a.restoreSnapshot() {
		return
	}
	a.rebuild(ctx, "startup")
}

// restoreSnapshot loads the persisted index and its companion dataset.
// The pair must agree on document count or the snapshot is discarded.
func (a *app) restoreSnapshot() bool {
	if a.cfg.SnapshotPath == "" {
		return false
	}
	records, err := corpus.LoadCompanies(a.cfg.SnapshotPath + ".companies.json")
	if err != nil {
		return false
	}
	store, err := corpus.IngestRecords(records, corpus.IngestOptions{SkipInvalid: true})
	if err != nil {
		return false
	}
	idx := vecindex.New()
	if err := idx.LoadFile(a.cfg.SnapshotPath); err != nil {
		a.log.Warn("snapshot load failed", "path", a.cfg.SnapshotPath, "error", err)
		return false
	}
	if idx.Len() != store.Size() {
		a.log.Warn("snapshot does not match dataset, rebuilding",
			"index", idx.Len(), "documents", store.Size())
		return false
	}
	a.publish(store, idx)
	a.reg.Gauge("investiq_index_documents", "Documents in the active index").Set(int64(store.Size()))
	a.log.Info("restored index snapshot", "documents", store.Size())
	return true
}

// rebuild runs the build pipeline once; concurrent requests coalesce.
func (a *app) rebuild(ctx context.Context, reason string) {
	if !a.building.CompareAndSwap(false, true) {
		a.log.Info("rebuild already in progress", "reason", reason)
		return
	}
	defer a.building.Store(false)

	start := time.Now()
	records, err := a.deps.Records(ctx)
	if err != nil {
		a.log.Error("dataset load failed", "error", err)
		return
	}
	build, err := ingest.Rebuild(ctx, records, a.deps)
	if err != nil {
		a.reg.Counter("investiq_rebuild_failures_total", "Failed corpus rebuilds").Inc()
		a.log.Error("rebuild failed", "reason", reason, "error", err)
		return
	}
	a.publishBuild(ctx, build)
	a.reg.Histogram("investiq_rebuild_duration_seconds", "Corpus rebuild duration", nil).Since(start)
	a.log.Info("rebuild complete", "reason", reason, "documents", build.Store.Size(), "duration", time.Since(start))
}

// --- Handlers ---

func (a *app) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type statusResponse struct {
	Ready     bool `json:"ready"`
	Documents int  `json:"documents"`
	Building  bool `json:"building"`
}

func (a *app) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, statusResponse{
		Ready:     a.svc.Ready(),
		Documents: a.svc.Size(),
		Building:  a.building.Load(),
	})
}

// RetrieveRequest is the JSON body for POST /api/retrieve.
type RetrieveRequest struct {
	Query   string            `json:"query"`
	TopK    int               `json:"top_k,omitempty"`
	Filters map[string]string `json:"filters,omitempty"`
}

// RetrievedDoc is one scored document in a RetrieveResponse.
type RetrievedDoc struct {
	ID       string            `json:"id"`
	Text     string            `json:"text"`
	Score    float64           `json:"score"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// RetrieveResponse is the JSON response for POST /api/retrieve.
type RetrieveResponse struct {
	Results []RetrievedDoc `json:"results"`
	Context string         `json:"context"`
	Count   int            `json:"count"`
}

func (a *app) handleRetrieve(w http.ResponseWriter, r *http.Request) {
	var req RetrieveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	k := req.TopK
	if k == 0 {
		k = a.svc.Options().TopK
	}

	start := time.Now()
	results, err := a.svc.Retrieve(r.Context(), req.Query, k, req.Filters)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidArgument):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, domain.ErrNotReady):
			writeError(w, http.StatusServiceUnavailable, "index not ready")
		case errors.Is(err, domain.ErrEmbedding):
			a.reg.Counter("investiq_retrieve_errors_total", "Failed retrieval requests").Inc()
			writeError(w, http.StatusBadGateway, "embedding backend unavailable")
		default:
			a.reg.Counter("investiq_retrieve_errors_total", "Failed retrieval requests").Inc()
			a.log.Error("retrieve failed", "err", err)
			writeError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}
	a.reg.Counter("investiq_retrievals_total", "Retrieval requests served").Inc()
	a.reg.Histogram("investiq_retrieve_duration_seconds", "Retrieval latency", nil).Since(start)

	assembled, err := retrieval.Assemble(results, a.liveSnippets(r.Context(), results), a.svc.Options().MaxContextChars)
	if err != nil {
		a.log.Error("context assembly failed", "err", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := RetrieveResponse{
		Results: make([]RetrievedDoc, len(results)),
		Context: assembled,
		Count:   len(results),
	}
	for i, res := range results {
		resp.Results[i] = RetrievedDoc{
			ID:       res.Doc.ID,
			Text:     res.Doc.Text,
			Score:    res.Score,
			Metadata: res.Doc.Metadata,
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// liveSnippets asks the graph for sector peers of the best hit. Graph
// errors degrade to no snippets.
func (a *app) liveSnippets(ctx context.Context, results []retrieval.Result) []string {
	if a.enricher == nil || len(results) == 0 {
		return nil
	}
	ticker := results[0].Doc.Meta(domain.MetaTicker)
	if ticker == "" {
		return nil
	}
	snippet, err := a.enricher.PeerSnippet(ctx, ticker, 5)
	if err != nil {
		a.log.Warn("peer snippet failed", "ticker", ticker, "error", err)
		return nil
	}
	if snippet == "" {
		return nil
	}
	return []string{snippet}
}

func (a *app) handleRebuild(w http.ResponseWriter, r *http.Request) {
	if a.nc != nil {
		req := ingest.RebuildRequest{Reason: "admin"}
		if err := natsutil.Publish(r.Context(), a.nc, ingest.RebuildSubject, req); err != nil {
			a.log.Error("rebuild publish failed", "err", err)
			writeError(w, http.StatusInternalServerError, "rebuild request failed")
			return
		}
	} else {
		go a.rebuild(context.WithoutCancel(r.Context()), "admin")
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "rebuild requested"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
