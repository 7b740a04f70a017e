package graph

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"

	"github.com/investiq-ai/investiq/engine/domain"
)

type mockResult struct {
	records []*neo4j.Record
	idx     int
}

func newMockResult(records ...*neo4j.Record) *mockResult {
	return &mockResult{records: records}
}

func (m *mockResult) Next(ctx context.Context) bool {
	if m.idx < len(m.records) {
		m.idx++
		return true
	}
	return false
}

func (m *mockResult) Record() *neo4j.Record {
	return m.records[m.idx-1]
}

type mockSession struct {
	runResult *mockResult
	runErr    error
	queries   []string
	params    []map[string]any
}

func (s *mockSession) Run(_ context.Context, cypher string, params map[string]any) (CypherResult, error) {
	s.queries = append(s.queries, cypher)
	s.params = append(s.params, params)
	if s.runErr != nil {
		return nil, s.runErr
	}
	return s.runResult, nil
}

func (s *mockSession) ExecuteWrite(ctx context.Context, work func(tx CypherRunner) (any, error)) (any, error) {
	return work(s)
}

func (s *mockSession) Close(_ context.Context) error { return nil }

type mockOpener struct {
	session CypherSession
}

func (o *mockOpener) OpenSession(_ context.Context) CypherSession {
	return o.session
}

func companyNode(ticker, name, sector string) *neo4j.Record {
	return &neo4j.Record{
		Keys: []string{"n"},
		Values: []any{dbtype.Node{Props: map[string]any{
			"ticker": ticker, "name": name, "sector": sector,
		}}},
	}
}

func TestSaveCompanyLinksSector(t *testing.T) {
	sess := &mockSession{runResult: newMockResult()}
	store := NewWithOpener(&mockOpener{session: sess})

	err := store.SaveCompany(context.Background(), Company{
		Ticker:      "AAPL",
		Name:        "Apple Inc.",
		Sector:      "Information Technology",
		SubIndustry: "Technology Hardware, Storage & Peripherals",
	})
	if err != nil {
		t.Fatal(err)
	}

	if len(sess.queries) != 3 {
		t.Fatalf("expected 3 statements, got %d: %v", len(sess.queries), sess.queries)
	}
	if !strings.Contains(sess.queries[0], "MERGE (n:Company {ticker: $ticker})") {
		t.Errorf("company upsert missing: %q", sess.queries[0])
	}
	if !strings.Contains(sess.queries[1], "IN_SECTOR") {
		t.Errorf("sector link missing: %q", sess.queries[1])
	}
	if !strings.Contains(sess.queries[2], "IN_SUBINDUSTRY") {
		t.Errorf("sub-industry link missing: %q", sess.queries[2])
	}
}

func TestSaveCompanyNoSector(t *testing.T) {
	sess := &mockSession{runResult: newMockResult()}
	store := NewWithOpener(&mockOpener{session: sess})

	if err := store.SaveCompany(context.Background(), Company{Ticker: "X", Name: "X Corp"}); err != nil {
		t.Fatal(err)
	}
	if len(sess.queries) != 1 {
		t.Fatalf("expected 1 statement without sector, got %d", len(sess.queries))
	}
}

func TestSaveCompanyMissingTicker(t *testing.T) {
	store := NewWithOpener(&mockOpener{session: &mockSession{}})
	err := store.SaveCompany(context.Background(), Company{Name: "Nameless"})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestSaveBatchSingleTransaction(t *testing.T) {
	sess := &mockSession{runResult: newMockResult()}
	store := NewWithOpener(&mockOpener{session: sess})

	records := []domain.CompanyRecord{
		{Symbol: "AAPL", Name: "Apple Inc.", Sector: "Information Technology"},
		{Symbol: "JPM", Name: "JPMorgan Chase & Co.", Sector: "Financials"},
	}
	if err := store.SaveBatch(context.Background(), records); err != nil {
		t.Fatal(err)
	}
	// Two companies with sectors: 2 upserts + 2 sector links.
	if len(sess.queries) != 4 {
		t.Fatalf("expected 4 statements, got %d", len(sess.queries))
	}
}

func TestCompanyNotFound(t *testing.T) {
	sess := &mockSession{runResult: newMockResult()}
	store := NewWithOpener(&mockOpener{session: sess})

	_, err := store.Company(context.Background(), "GHOST")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCompanyFound(t *testing.T) {
	sess := &mockSession{runResult: newMockResult(companyNode("AAPL", "Apple Inc.", "Information Technology"))}
	store := NewWithOpener(&mockOpener{session: sess})

	c, err := store.Company(context.Background(), "AAPL")
	if err != nil {
		t.Fatal(err)
	}
	if c.Name != "Apple Inc." || c.Sector != "Information Technology" {
		t.Fatalf("got %+v", c)
	}
}

func TestPeersOf(t *testing.T) {
	rec := func(ticker, name string) *neo4j.Record {
		return &neo4j.Record{
			Keys:   []string{"p"},
			Values: []any{dbtype.Node{Props: map[string]any{"ticker": ticker, "name": name, "sector": "Financials"}}},
		}
	}
	sess := &mockSession{runResult: newMockResult(rec("BAC", "Bank of America"), rec("GS", "Goldman Sachs"))}
	store := NewWithOpener(&mockOpener{session: sess})

	peers, err := store.PeersOf(context.Background(), "JPM", 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(peers) != 2 {
		t.Fatalf("expected 2 peers, got %d", len(peers))
	}
	if peers[0].Ticker != "BAC" || peers[1].Ticker != "GS" {
		t.Fatalf("unexpected peers: %+v", peers)
	}
	if got := sess.params[0]["limit"]; got != 5 {
		t.Fatalf("limit param = %v, want 5", got)
	}
}

func TestPeersOfDefaultLimit(t *testing.T) {
	sess := &mockSession{runResult: newMockResult()}
	store := NewWithOpener(&mockOpener{session: sess})

	if _, err := store.PeersOf(context.Background(), "JPM", 0); err != nil {
		t.Fatal(err)
	}
	if got := sess.params[0]["limit"]; got != 10 {
		t.Fatalf("default limit = %v, want 10", got)
	}
}

func TestSectorCounts(t *testing.T) {
	recs := []*neo4j.Record{
		{Keys: []string{"sector", "companies"}, Values: []any{"Financials", int64(3)}},
		{Keys: []string{"sector", "companies"}, Values: []any{"Energy", int64(2)}},
	}
	sess := &mockSession{runResult: newMockResult(recs...)}
	store := NewWithOpener(&mockOpener{session: sess})

	stats, err := store.SectorCounts(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(stats) != 2 {
		t.Fatalf("expected 2 sectors, got %d", len(stats))
	}
	// Sorted by sector name.
	if stats[0].Sector != "Energy" || stats[0].Companies != 2 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestRunErrorWrapped(t *testing.T) {
	dbErr := errors.New("connection refused")
	sess := &mockSession{runErr: dbErr}
	store := NewWithOpener(&mockOpener{session: sess})

	if _, err := store.Company(context.Background(), "AAPL"); !errors.Is(err, dbErr) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
	if _, err := store.PeersOf(context.Background(), "AAPL", 3); !errors.Is(err, dbErr) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}
