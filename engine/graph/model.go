// Package graph provides Neo4j knowledge graph operations for S&P 500
// companies and their sector hierarchy.
package graph

// Company represents a listed company node.
type Company struct {
	Ticker       string `json:"ticker"`
	Name         string `json:"name"`
	Sector       string `json:"sector"`
	SubIndustry  string `json:"sub_industry,omitempty"`
	Headquarters string `json:"headquarters,omitempty"`
}

// SectorStats holds aggregate counts per GICS sector.
type SectorStats struct {
	Sector    string `json:"sector"`
	Companies int64  `json:"companies"`
}
