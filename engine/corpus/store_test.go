package corpus

import (
	"errors"
	"strings"
	"testing"

	"github.com/investiq-ai/investiq/engine/domain"
)

func sampleRecords() []domain.CompanyRecord {
	return []domain.CompanyRecord{
		{Symbol: "AAPL", Name: "Apple Inc.", Sector: "Information Technology", SubIndustry: "Technology Hardware"},
		{Symbol: "JPM", Name: "JPMorgan Chase & Co.", Sector: "Financials", SubIndustry: "Diversified Banks"},
	}
}

func TestIngestRecords(t *testing.T) {
	s, err := IngestRecords(sampleRecords(), IngestOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Two documents per company.
	if s.Size() != 4 {
		t.Fatalf("Size() = %d, want 4", s.Size())
	}

	doc, err := s.Get("AAPL-profile")
	if err != nil {
		t.Fatalf("Get(AAPL-profile): %v", err)
	}
	if !strings.Contains(doc.Text, "Apple Inc.") || !strings.Contains(doc.Text, "Ticker: AAPL") {
		t.Errorf("unexpected profile text: %s", doc.Text)
	}
	if doc.Meta(domain.MetaType) != domain.DocTypeProfile {
		t.Errorf("profile doc type = %q", doc.Meta(domain.MetaType))
	}

	sector, err := s.Get("JPM-sector")
	if err != nil {
		t.Fatalf("Get(JPM-sector): %v", err)
	}
	if sector.Meta(domain.MetaSector) != "Financials" {
		t.Errorf("sector meta = %q", sector.Meta(domain.MetaSector))
	}
}

func TestIngestRecords_InvalidRejected(t *testing.T) {
	records := append(sampleRecords(), domain.CompanyRecord{Symbol: "bad!", Name: "Bad Co", Sector: "Energy"})

	if _, err := IngestRecords(records, IngestOptions{}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}

	// Skip policy drops the bad record but keeps the rest.
	s, err := IngestRecords(records, IngestOptions{SkipInvalid: true})
	if err != nil {
		t.Fatalf("unexpected error with SkipInvalid: %v", err)
	}
	if s.Size() != 4 {
		t.Errorf("Size() = %d, want 4", s.Size())
	}
	if s.Skipped() != 1 {
		t.Errorf("Skipped() = %d, want 1", s.Skipped())
	}
}

func TestIngest_DuplicateID(t *testing.T) {
	docs := []domain.Document{
		{ID: "dup", Text: "first"},
		{ID: "dup", Text: "second"},
	}
	if _, err := Ingest(docs, IngestOptions{}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation for duplicate id, got %v", err)
	}
}

func TestIngest_AssignsMissingIDs(t *testing.T) {
	docs := []domain.Document{
		{ID: "named", Text: "has its own id"},
		{Text: "a document with no id"},
		{Text: "another without an id"},
	}
	s, err := Ingest(docs, IngestOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Size() != 3 {
		t.Fatalf("Size() = %d, want 3", s.Size())
	}
	for _, id := range []string{"named", "doc-1", "doc-2"} {
		if _, err := s.Get(id); err != nil {
			t.Errorf("Get(%s): %v", id, err)
		}
	}
}

func TestGet_NotFound(t *testing.T) {
	s, err := Ingest(nil, IngestOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := s.Get("missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSeedCompanies(t *testing.T) {
	records := SeedCompanies()
	if len(records) != 20 {
		t.Fatalf("seed list has %d records, want 20", len(records))
	}
	for _, rec := range records {
		if err := domain.ValidateCompanyRecord(rec); err != nil {
			t.Errorf("seed record %s fails validation: %v", rec.Symbol, err)
		}
	}
}

func TestRenderCompanyDocs_StableIDs(t *testing.T) {
	rec := sampleRecords()[0]
	a := RenderCompanyDocs(rec)
	b := RenderCompanyDocs(rec)
	if len(a) != 2 || len(b) != 2 {
		t.Fatalf("expected 2 docs per record")
	}
	for i := range a {
		if a[i].ID != b[i].ID || a[i].Text != b[i].Text {
			t.Errorf("render not deterministic at %d", i)
		}
	}
	if a[0].ID != "AAPL-profile" || a[1].ID != "AAPL-sector" {
		t.Errorf("unexpected ids: %s, %s", a[0].ID, a[1].ID)
	}
}
