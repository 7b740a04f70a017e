package corpus

import (
	"fmt"

	"github.com/investiq-ai/investiq/engine/domain"
)

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

// RenderCompanyDocs renders one company record into its two corpus
// documents: a company profile and a sector-analysis view. Document ids are
// derived from the ticker and are stable across rebuilds.
func RenderCompanyDocs(rec domain.CompanyRecord) []domain.Document {
	profile := fmt.Sprintf(
		"%s (Ticker: %s) is a company listed in the S&P 500 index. "+
			"It operates in the %s sector within the %s sub-industry. "+
			"Headquartered in %s. Added to S&P 500: %s. Founded: %s.",
		rec.Name, rec.Symbol, rec.Sector, rec.SubIndustry,
		orNA(rec.Headquarters), orNA(rec.DateAdded), orNA(rec.Founded),
	)
	sector := fmt.Sprintf(
		"For investors interested in the %s sector: %s (%s) operates in %s. "+
			"It is one of the S&P 500 constituents headquartered in %s. "+
			"Consider %s when looking at %s sector investments.",
		rec.Sector, rec.Name, rec.Symbol, rec.SubIndustry,
		orNA(rec.Headquarters), rec.Symbol, rec.Sector,
	)

	meta := func(docType string) map[string]string {
		return map[string]string{
			domain.MetaTicker: rec.Symbol,
			domain.MetaName:   rec.Name,
			domain.MetaSector: rec.Sector,
			domain.MetaType:   docType,
		}
	}

	return []domain.Document{
		{ID: rec.Symbol + "-profile", Text: profile, Metadata: meta(domain.DocTypeProfile)},
		{ID: rec.Symbol + "-sector", Text: sector, Metadata: meta(domain.DocTypeSector)},
	}
}
