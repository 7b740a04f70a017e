// Package main implements the InvestIQ retrieval API server.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/investiq-ai/investiq/engine/embed"
	"github.com/investiq-ai/investiq/engine/graph"
	"github.com/investiq-ai/investiq/engine/ingest"
	"github.com/investiq-ai/investiq/engine/retrieval"
	"github.com/investiq-ai/investiq/engine/semantic"
	"github.com/investiq-ai/investiq/pkg/metrics"
	"github.com/investiq-ai/investiq/pkg/resilience"
)

// Config holds all environment-based configuration.
type Config struct {
	Port         string
	EmbedBackend string // "ollama" or "openai"
	OllamaURL    string
	OllamaModel  string
	OpenAIURL    string
	OpenAIKey    string
	OpenAIModel  string
	EmbedRPS     float64
	DataPath     string // company dataset JSON, optional
	DataURL      string // remote dataset URL, optional
	SnapshotPath string // index snapshot file, optional
	NatsURL      string // optional
	Neo4jURL     string // optional
	Neo4jUser    string
	Neo4jPass    string
	QdrantURL    string // optional
	Collection   string
	ServeBackend string // "local" or "qdrant"
	CORSOrigin   string
	RetrieveRPS  float64
}

func loadConfig() Config {
	return Config{
		Port:         envOr("PORT", "8080"),
		EmbedBackend: envOr("EMBED_BACKEND", "ollama"),
		OllamaURL:    envOr("OLLAMA_URL", "http://localhost:11434"),
		OllamaModel:  envOr("OLLAMA_EMBED_MODEL", "nomic-embed-text"),
		OpenAIURL:    envOr("OPENAI_BASE_URL", ""),
		OpenAIKey:    envOr("OPENAI_API_KEY", ""),
		OpenAIModel:  envOr("OPENAI_EMBED_MODEL", "text-embedding-3-small"),
		EmbedRPS:     envFloat("EMBED_RPS", 10),
		DataPath:     envOr("COMPANIES_PATH", ""),
		DataURL:      envOr("COMPANIES_URL", ""),
		SnapshotPath: envOr("SNAPSHOT_PATH", "data/index.snapshot"),
		NatsURL:      envOr("NATS_URL", ""),
		Neo4jURL:     envOr("NEO4J_URL", ""),
		Neo4jUser:    envOr("NEO4J_USER", "neo4j"),
		Neo4jPass:    envOr("NEO4J_PASS", "password"),
		QdrantURL:    envOr("QDRANT_URL", ""),
		Collection:   envOr("QDRANT_COLLECTION", "sp500"),
		ServeBackend: envOr("SERVE_BACKEND", "local"),
		CORSOrigin:   envOr("CORS_ORIGIN", "*"),
		RetrieveRPS:  envFloat("RETRIEVE_RPS", 20),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func newEmbedder(cfg Config) (embed.Client, error) {
	embedCfg := embed.Config{MaxInputChars: 8192, TruncateLongInput: true}
	var client embed.Client
	switch cfg.EmbedBackend {
	case "openai":
		c, err := embed.NewOpenAIClient(cfg.OpenAIURL, cfg.OpenAIKey, cfg.OpenAIModel, embedCfg, cfg.EmbedRPS)
		if err != nil {
			return nil, err
		}
		client = c
	case "ollama":
		client = embed.NewOllamaClient(cfg.OllamaURL, cfg.OllamaModel, embedCfg, cfg.EmbedRPS)
	default:
		return nil, fmt.Errorf("unknown embed backend %q", cfg.EmbedBackend)
	}
	return embed.WithBreaker(client, resilience.NewBreaker(resilience.DefaultBreakerOpts)), nil
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg := loadConfig()

	if err := run(cfg, logger); err != nil {
		logger.Error("server exited with error", "err", err)
		os.Exit(1)
	}
}

func run(cfg Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	embedder, err := newEmbedder(cfg)
	if err != nil {
		return fmt.Errorf("embedder: %w", err)
	}

	svc := retrieval.New(embedder, retrieval.DefaultOptions(), logger)
	reg := metrics.New()

	a := &app{
		cfg:     cfg,
		log:     logger,
		svc:     svc,
		reg:     reg,
		limiter: resilience.NewLimiter(cfg.RetrieveRPS, int(cfg.RetrieveRPS)),
	}
	a.deps = ingest.Deps{
		Embedder: embedder,
		Records:  a.loadRecords,
		OnBuild:  a.publishBuild,
		Logger:   logger,
	}

	// --- Optional Neo4j ---
	if cfg.Neo4jURL != "" {
		driver, err := neo4j.NewDriverWithContext(cfg.Neo4jURL, neo4j.BasicAuth(cfg.Neo4jUser, cfg.Neo4jPass, ""))
		if err != nil {
			return fmt.Errorf("neo4j driver: %w", err)
		}
		defer driver.Close(ctx)
		store := graph.New(driver)
		a.deps.Graph = store
		a.enricher = graph.NewEnricher(store)
	}

	// --- Optional Qdrant ---
	if cfg.QdrantURL != "" {
		vs, err := semantic.New(cfg.QdrantURL, cfg.Collection)
		if err != nil {
			return fmt.Errorf("qdrant connect: %w", err)
		}
		defer vs.Close()
		a.deps.Mirror = vs
		a.remote = semantic.HitSearcher{Store: vs}
	}
	if cfg.ServeBackend == "qdrant" && a.remote == nil {
		return fmt.Errorf("SERVE_BACKEND=qdrant requires QDRANT_URL")
	}

	// --- Optional NATS ---
	if cfg.NatsURL != "" {
		nc, err := nats.Connect(cfg.NatsURL)
		if err != nil {
			return fmt.Errorf("nats connect: %w", err)
		}
		defer nc.Close()
		a.nc = nc

		subs, err := ingest.StartConsumers(nc, a.deps)
		if err != nil {
			return fmt.Errorf("ingest consumers: %w", err)
		}
		defer func() {
			for _, s := range subs {
				s.Unsubscribe()
			}
		}()
	}

	// Serve immediately; the index builds in the background and the
	// service reports not-ready until the first generation lands.
	go a.initialBuild(ctx)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      a.routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("api server starting", "port", cfg.Port)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutCtx)
}
