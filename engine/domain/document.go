// Package domain holds the core types shared across the retrieval engine:
// documents, corpus records, validation, and the error taxonomy.
package domain

// Document is one unit of retrievable knowledge. Documents are created in
// bulk during corpus ingestion and are immutable afterwards.
type Document struct {
	ID       string            `json:"id"`
	Text     string            `json:"text"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Meta returns the metadata value for key, or "" if absent.
func (d Document) Meta(key string) string {
	if d.Metadata == nil {
		return ""
	}
	return d.Metadata[key]
}

// Well-known metadata keys written by the corpus renderer.
const (
	MetaTicker = "ticker"
	MetaName   = "name"
	MetaSector = "sector"
	MetaType   = "type"
)

// Document type values for MetaType.
const (
	DocTypeProfile = "company_profile"
	DocTypeSector  = "sector_analysis"
)

// CompanyRecord is a raw corpus record for one index constituent, as found
// in the bulk company dataset.
type CompanyRecord struct {
	Symbol       string `json:"symbol"`
	Name         string `json:"name"`
	Sector       string `json:"sector"`
	SubIndustry  string `json:"sub_industry"`
	Headquarters string `json:"headquarters,omitempty"`
	DateAdded    string `json:"date_added,omitempty"`
	Founded      string `json:"founded,omitempty"`
}
