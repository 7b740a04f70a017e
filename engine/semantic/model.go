// Package semantic owns all Qdrant operations: the optional remote mirror
// of the in-memory vector index.
package semantic

import (
	"crypto/md5"
	"fmt"

	"github.com/investiq-ai/investiq/engine/domain"
)

// SearchResult represents a single vector search hit.
type SearchResult struct {
	DocID   string            `json:"doc_id"`
	Score   float32           `json:"score"`
	Content string            `json:"content"`
	Ticker  string            `json:"ticker"`
	Sector  string            `json:"sector"`
	DocType string            `json:"doc_type"`
	Meta    map[string]string `json:"meta,omitempty"`
}

// VectorRecord represents a single vector to store in Qdrant.
type VectorRecord struct {
	ID        string
	Embedding []float32
	Payload   map[string]any
}

// FromDocument builds a VectorRecord from a document and its embedding.
// The document id is carried in the payload; the point id is a
// deterministic UUID derived from it.
func FromDocument(doc domain.Document, embedding []float32) VectorRecord {
	payload := map[string]any{
		"doc_id":  doc.ID,
		"content": doc.Text,
	}
	for k, v := range doc.Metadata {
		payload[k] = v
	}
	return VectorRecord{
		ID:        PointID(doc.ID),
		Embedding: embedding,
		Payload:   payload,
	}
}

// PointID derives a stable UUID-shaped point id from a document id.
func PointID(docID string) string {
	sum := md5.Sum([]byte(docID))
	return fmt.Sprintf("%x-%x-%x-%x-%x", sum[0:4], sum[4:6], sum[6:8], sum[8:10], sum[10:16])
}
