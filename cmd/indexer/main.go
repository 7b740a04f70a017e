// Command indexer builds the S&P 500 knowledge base offline: it loads the
// company dataset, embeds every document, and writes an index snapshot that
// the API server can restore at startup. Optionally it mirrors the corpus
// into Qdrant and seeds the Neo4j company graph.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/investiq-ai/investiq/engine/corpus"
	"github.com/investiq-ai/investiq/engine/domain"
	"github.com/investiq-ai/investiq/engine/embed"
	"github.com/investiq-ai/investiq/engine/graph"
	"github.com/investiq-ai/investiq/engine/ingest"
	"github.com/investiq-ai/investiq/engine/semantic"
	"github.com/investiq-ai/investiq/pkg/resilience"
)

func main() {
	var (
		dataPath   = flag.String("data", "", "path to a companies JSON file")
		fetchURL   = flag.String("fetch", "", "URL to fetch the companies dataset from")
		out        = flag.String("out", "data/index.snapshot", "snapshot output path")
		ollamaURL  = flag.String("ollama", "http://localhost:11434", "Ollama base URL")
		model      = flag.String("model", "nomic-embed-text", "Ollama embedding model")
		rps        = flag.Float64("rps", 10, "embedding requests per second")
		qdrantAddr = flag.String("qdrant", "", "Qdrant gRPC address (empty disables mirroring)")
		collection = flag.String("collection", "sp500", "Qdrant collection name")
		neo4jURL   = flag.String("neo4j", "", "Neo4j bolt URL (empty disables graph seeding)")
		neo4jUser  = flag.String("neo4j-user", "neo4j", "Neo4j username")
		neo4jPass  = flag.String("neo4j-pass", "", "Neo4j password")
	)
	flag.Parse()

	log := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, buildOpts{
		dataPath:   *dataPath,
		fetchURL:   *fetchURL,
		out:        *out,
		ollamaURL:  *ollamaURL,
		model:      *model,
		rps:        *rps,
		qdrantAddr: *qdrantAddr,
		collection: *collection,
		neo4jURL:   *neo4jURL,
		neo4jUser:  *neo4jUser,
		neo4jPass:  *neo4jPass,
	}, log); err != nil {
		log.Error("index build failed", "error", err)
		os.Exit(1)
	}
}

type buildOpts struct {
	dataPath   string
	fetchURL   string
	out        string
	ollamaURL  string
	model      string
	rps        float64
	qdrantAddr string
	collection string
	neo4jURL   string
	neo4jUser  string
	neo4jPass  string
}

func run(ctx context.Context, opts buildOpts, log *slog.Logger) error {
	records, err := loadRecords(ctx, opts, log)
	if err != nil {
		return err
	}
	log.Info("dataset loaded", "companies", len(records))

	client := embed.NewOllamaClient(opts.ollamaURL, opts.model, embed.Config{
		MaxInputChars:     8192,
		TruncateLongInput: true,
	}, opts.rps)
	deps := ingest.Deps{
		Embedder: embed.WithBreaker(client, resilience.NewBreaker(resilience.DefaultBreakerOpts)),
		Logger:   log,
	}

	if opts.qdrantAddr != "" {
		vs, err := semantic.New(opts.qdrantAddr, opts.collection)
		if err != nil {
			return fmt.Errorf("indexer: qdrant connect: %w", err)
		}
		defer vs.Close()
		deps.Mirror = vs
		log.Info("mirroring to Qdrant", "addr", opts.qdrantAddr, "collection", opts.collection)
	}

	if opts.neo4jURL != "" {
		driver, err := neo4j.NewDriverWithContext(opts.neo4jURL, neo4j.BasicAuth(opts.neo4jUser, opts.neo4jPass, ""))
		if err != nil {
			return fmt.Errorf("indexer: neo4j connect: %w", err)
		}
		defer driver.Close(ctx)
		if err := driver.VerifyConnectivity(ctx); err != nil {
			return fmt.Errorf("indexer: neo4j verify: %w", err)
		}
		deps.Graph = graph.New(driver)
		log.Info("seeding company graph", "url", opts.neo4jURL)
	}

	start := time.Now()
	build, err := ingest.Rebuild(ctx, records, deps)
	if err != nil {
		return err
	}
	log.Info("corpus built",
		"documents", build.Store.Size(),
		"skipped", build.Store.Skipped(),
		"dims", build.Index.Dims(),
		"duration", time.Since(start))

	if err := os.MkdirAll(filepath.Dir(opts.out), 0o755); err != nil {
		return fmt.Errorf("indexer: snapshot dir: %w", err)
	}
	if err := build.Index.SaveFile(opts.out); err != nil {
		return err
	}
	if err := corpus.SaveCompanies(opts.out+".companies.json", build.Records); err != nil {
		return err
	}
	log.Info("snapshot written", "path", opts.out)
	return nil
}

func loadRecords(ctx context.Context, opts buildOpts, log *slog.Logger) ([]domain.CompanyRecord, error) {
	if opts.dataPath != "" {
		return corpus.LoadCompanies(opts.dataPath)
	}
	if opts.fetchURL != "" {
		return corpus.FetchCompanies(ctx, opts.fetchURL)
	}
	log.Info("no dataset configured, using seed companies")
	return corpus.SeedCompanies(), nil
}
