package repo

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/investiq-ai/investiq/engine/domain"
)

type fakeResult struct {
	records []*neo4j.Record
	idx     int
}

func (f *fakeResult) Next(ctx context.Context) bool {
	if f.idx < len(f.records) {
		f.idx++
		return true
	}
	return false
}

func (f *fakeResult) Record() *neo4j.Record {
	return f.records[f.idx-1]
}

type fakeRunner struct {
	result  *fakeResult
	err     error
	cyphers []string
	params  []map[string]any
}

func (f *fakeRunner) Run(ctx context.Context, cypher string, params map[string]any) (result, error) {
	f.cyphers = append(f.cyphers, cypher)
	f.params = append(f.params, params)
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func (f *fakeRunner) Close(ctx context.Context) error { return nil }

type company struct {
	Ticker string
	Name   string
}

func companyRecord(ticker, name string) *neo4j.Record {
	return &neo4j.Record{
		Values: []any{map[string]any{"ticker": ticker, "name": name}},
		Keys:   []string{"n"},
	}
}

func newCompanyRepo(f *fakeRunner) *Neo4jRepo[company, string] {
	r := NewNeo4jRepo[company, string](
		nil, "Company",
		func(c company) map[string]any { return map[string]any{"ticker": c.Ticker, "name": c.Name} },
		func(rec *neo4j.Record) (company, error) {
			if len(rec.Values) == 0 {
				return company{}, errors.New("empty record")
			}
			m, ok := rec.Values[0].(map[string]any)
			if !ok {
				return company{}, errors.New("bad record type")
			}
			return company{Ticker: m["ticker"].(string), Name: m["name"].(string)}, nil
		},
		WithIDKey[company, string]("ticker"),
	)
	r.newSession = func(ctx context.Context) runner { return f }
	return r
}

func TestGet(t *testing.T) {
	f := &fakeRunner{result: &fakeResult{records: []*neo4j.Record{companyRecord("AAPL", "Apple Inc.")}}}
	r := newCompanyRepo(f)

	c, err := r.Get(context.Background(), "AAPL")
	if err != nil {
		t.Fatal(err)
	}
	if c.Ticker != "AAPL" || c.Name != "Apple Inc." {
		t.Fatalf("got %+v", c)
	}
	if !strings.Contains(f.cyphers[0], "{ticker: $id}") {
		t.Fatalf("Get should match on the ticker id key, got %q", f.cyphers[0])
	}
}

func TestGetNotFound(t *testing.T) {
	f := &fakeRunner{result: &fakeResult{}}
	r := newCompanyRepo(f)

	_, err := r.Get(context.Background(), "GHOST")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGetRunError(t *testing.T) {
	dbErr := errors.New("db down")
	f := &fakeRunner{err: dbErr}
	r := newCompanyRepo(f)

	_, err := r.Get(context.Background(), "AAPL")
	if !errors.Is(err, dbErr) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestList(t *testing.T) {
	f := &fakeRunner{result: &fakeResult{records: []*neo4j.Record{
		companyRecord("AAPL", "Apple Inc."),
		companyRecord("MSFT", "Microsoft"),
	}}}
	r := newCompanyRepo(f)

	items, err := r.List(context.Background(), ListOpts{Limit: 10})
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[1].Ticker != "MSFT" {
		t.Fatalf("unexpected order: %+v", items)
	}
}

func TestListDefaultLimit(t *testing.T) {
	f := &fakeRunner{result: &fakeResult{}}
	r := newCompanyRepo(f)

	if _, err := r.List(context.Background(), ListOpts{}); err != nil {
		t.Fatal(err)
	}
	if got := f.params[0]["limit"]; got != 100 {
		t.Fatalf("default limit = %v, want 100", got)
	}
}

func TestCreate(t *testing.T) {
	f := &fakeRunner{result: &fakeResult{records: []*neo4j.Record{companyRecord("JPM", "JPMorgan Chase")}}}
	r := newCompanyRepo(f)

	c, err := r.Create(context.Background(), company{Ticker: "JPM", Name: "JPMorgan Chase"})
	if err != nil {
		t.Fatal(err)
	}
	if c.Ticker != "JPM" {
		t.Fatalf("got %+v", c)
	}
	if !strings.Contains(f.cyphers[0], "CREATE") {
		t.Fatalf("expected CREATE cypher, got %q", f.cyphers[0])
	}
}

func TestMergeUpserts(t *testing.T) {
	f := &fakeRunner{result: &fakeResult{records: []*neo4j.Record{companyRecord("AAPL", "Apple Inc.")}}}
	r := newCompanyRepo(f)

	if _, err := r.Merge(context.Background(), company{Ticker: "AAPL", Name: "Apple Inc."}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(f.cyphers[0], "MERGE") {
		t.Fatalf("expected MERGE cypher, got %q", f.cyphers[0])
	}
	if got := f.params[0]["id"]; got != "AAPL" {
		t.Fatalf("merge id = %v, want AAPL", got)
	}
}

func TestDelete(t *testing.T) {
	f := &fakeRunner{result: &fakeResult{}}
	r := newCompanyRepo(f)

	if err := r.Delete(context.Background(), "XOM"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(f.cyphers[0], "DETACH DELETE") {
		t.Fatalf("expected DETACH DELETE cypher, got %q", f.cyphers[0])
	}
}
