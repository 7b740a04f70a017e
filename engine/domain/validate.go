package domain

import "strings"

// tickerOK reports whether a ticker symbol looks plausible: 1-6 characters,
// uppercase letters plus the odd digit, dot, or dash (BRK-B, BF.B).
func tickerOK(sym string) bool {
	if len(sym) == 0 || len(sym) > 6 {
		return false
	}
	for _, r := range sym {
		switch {
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '.' || r == '-':
		default:
			return false
		}
	}
	return true
}

// ValidateCompanyRecord checks a raw corpus record before ingestion.
func ValidateCompanyRecord(rec CompanyRecord) error {
	if !tickerOK(rec.Symbol) {
		return NewValidationError("symbol", rec.Symbol)
	}
	if strings.TrimSpace(rec.Name) == "" {
		return NewValidationError("name", rec.Name)
	}
	if strings.TrimSpace(rec.Sector) == "" {
		return NewValidationError("sector", rec.Sector)
	}
	return nil
}

// ValidateDocument checks a document before it enters the store.
func ValidateDocument(doc Document) error {
	if doc.ID == "" {
		return NewValidationError("id", doc.ID)
	}
	if strings.TrimSpace(doc.Text) == "" {
		return NewValidationError("text", doc.Text)
	}
	return nil
}
