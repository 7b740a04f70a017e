package corpus

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/investiq-ai/investiq/engine/domain"
)

// LoadCompanies reads a company dataset from a JSON file (an array of
// company records).
func LoadCompanies(path string) ([]domain.CompanyRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("corpus: read dataset %s: %w", path, err)
	}
	var records []domain.CompanyRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("corpus: parse dataset %s: %w", path, err)
	}
	return records, nil
}

// SaveCompanies writes a company dataset as a JSON array, replacing the
// file atomically.
func SaveCompanies(path string, records []domain.CompanyRecord) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("corpus: encode dataset: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("corpus: write dataset %s: %w", path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("corpus: write dataset %s: %w", path, err)
	}
	return nil
}

// FetchCompanies downloads a company dataset from a URL serving the same
// JSON array format as LoadCompanies.
func FetchCompanies(ctx context.Context, url string) ([]domain.CompanyRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("corpus: fetch dataset: %w", err)
	}

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("corpus: fetch dataset %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("corpus: fetch dataset %s: status %d", url, resp.StatusCode)
	}

	var records []domain.CompanyRecord
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, fmt.Errorf("corpus: decode dataset %s: %w", url, err)
	}
	return records, nil
}
