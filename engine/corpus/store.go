// Package corpus owns the canonical document collection: ingestion of raw
// company records, rendering them into retrievable documents, and
// id-to-document lookups. A Store is immutable once built; replacing the
// corpus means building a new Store.
package corpus

import (
	"fmt"

	"github.com/investiq-ai/investiq/engine/domain"
)

// IngestOptions controls how malformed records are treated.
type IngestOptions struct {
	// SkipInvalid drops records that fail validation instead of failing
	// the whole ingest.
	SkipInvalid bool
}

// Store holds the immutable corpus and answers id lookups.
type Store struct {
	docs  []domain.Document
	byID  map[string]int
	skips int
}

// Ingest builds a Store from documents. A document without an id gets a
// sequential one based on its position. Duplicate ids and (unless
// opts.SkipInvalid) invalid documents fail the ingest; there is no partial
// upsert.
func Ingest(docs []domain.Document, opts IngestOptions) (*Store, error) {
	s := &Store{
		docs: make([]domain.Document, 0, len(docs)),
		byID: make(map[string]int, len(docs)),
	}
	for i, doc := range docs {
		if doc.ID == "" {
			doc.ID = fmt.Sprintf("doc-%d", i)
		}
		if err := domain.ValidateDocument(doc); err != nil {
			if opts.SkipInvalid {
				s.skips++
				continue
			}
			return nil, fmt.Errorf("corpus: ingest %q: %w", doc.ID, err)
		}
		if _, dup := s.byID[doc.ID]; dup {
			return nil, fmt.Errorf("corpus: duplicate document id %q: %w", doc.ID, domain.ErrValidation)
		}
		s.byID[doc.ID] = len(s.docs)
		s.docs = append(s.docs, doc)
	}
	return s, nil
}

// IngestRecords validates and renders company records into documents, then
// builds a Store over them. Two documents are produced per company.
func IngestRecords(records []domain.CompanyRecord, opts IngestOptions) (*Store, error) {
	docs := make([]domain.Document, 0, 2*len(records))
	skips := 0
	for _, rec := range records {
		if err := domain.ValidateCompanyRecord(rec); err != nil {
			if opts.SkipInvalid {
				skips++
				continue
			}
			return nil, fmt.Errorf("corpus: ingest record %q: %w", rec.Symbol, err)
		}
		docs = append(docs, RenderCompanyDocs(rec)...)
	}
	s, err := Ingest(docs, opts)
	if err != nil {
		return nil, err
	}
	s.skips += skips
	return s, nil
}

// Get returns the document with the given id.
func (s *Store) Get(id string) (domain.Document, error) {
	i, ok := s.byID[id]
	if !ok {
		return domain.Document{}, fmt.Errorf("corpus: document %q: %w", id, domain.ErrNotFound)
	}
	return s.docs[i], nil
}

// Size returns the number of documents in the store.
func (s *Store) Size() int { return len(s.docs) }

// Skipped returns how many invalid records were dropped during ingest.
func (s *Store) Skipped() int { return s.skips }

// All returns the documents in ingestion order. The returned slice must not
// be mutated.
func (s *Store) All() []domain.Document { return s.docs }
