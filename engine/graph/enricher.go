package graph

import (
	"context"
	"fmt"
	"strings"
)

// Enricher renders graph lookups as plain-text snippets that can be
// appended to an assembled retrieval context.
type Enricher struct {
	store *Store
}

// NewEnricher creates an Enricher over the given store.
func NewEnricher(store *Store) *Enricher {
	return &Enricher{store: store}
}

// PeerSnippet describes the sector peers of a company as a single text
// block. Returns an empty string when the company is unknown or has no
// peers in the graph.
func (e *Enricher) PeerSnippet(ctx context.Context, ticker string, limit int) (string, error) {
	company, err := e.store.Company(ctx, ticker)
	if err != nil {
		return "", err
	}
	peers, err := e.store.PeersOf(ctx, ticker, limit)
	if err != nil {
		return "", err
	}
	if len(peers) == 0 {
		return "", nil
	}

	names := make([]string, 0, len(peers))
	for _, p := range peers {
		names = append(names, fmt.Sprintf("%s (%s)", p.Name, p.Ticker))
	}
	return fmt.Sprintf("Sector peers: %s (%s) operates in the %s sector alongside %s.",
		company.Name, company.Ticker, company.Sector, strings.Join(names, ", ")), nil
}

// SectorSnippet summarizes company counts per sector.
func (e *Enricher) SectorSnippet(ctx context.Context) (string, error) {
	stats, err := e.store.SectorCounts(ctx)
	if err != nil {
		return "", err
	}
	if len(stats) == 0 {
		return "", nil
	}

	parts := make([]string, 0, len(stats))
	for _, st := range stats {
		parts = append(parts, fmt.Sprintf("%s: %d", st.Sector, st.Companies))
	}
	return "S&P 500 sector coverage: " + strings.Join(parts, ", ") + ".", nil
}
