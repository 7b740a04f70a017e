package graph

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"

	"github.com/investiq-ai/investiq/pkg/repo"
)

// newCompanyRepo creates a Neo4j-backed repository for Company nodes,
// keyed by ticker.
func newCompanyRepo(driver neo4j.DriverWithContext) *repo.Neo4jRepo[Company, string] {
	return repo.NewNeo4jRepo[Company, string](
		driver,
		"Company",
		companyToMap,
		companyFromRecord,
		repo.WithIDKey[Company, string]("ticker"),
	)
}

func companyToMap(c Company) map[string]any {
	return map[string]any{
		"ticker":       c.Ticker,
		"name":         c.Name,
		"sector":       c.Sector,
		"sub_industry": c.SubIndustry,
		"headquarters": c.Headquarters,
	}
}

func companyFromRecord(rec *neo4j.Record) (Company, error) {
	node, _, err := neo4j.GetRecordValue[dbtype.Node](rec, "n")
	if err != nil {
		return Company{}, err
	}
	return companyFromProps(node.Props), nil
}

// ListCompanies pages through company nodes ordered by ticker.
func (s *Store) ListCompanies(ctx context.Context, opts repo.ListOpts) ([]Company, error) {
	if s.companies == nil {
		return nil, fmt.Errorf("graph: list companies: store has no driver")
	}
	return s.companies.List(ctx, opts)
}

// DeleteCompany removes a company node and its relationships.
func (s *Store) DeleteCompany(ctx context.Context, ticker string) error {
	if s.companies == nil {
		return fmt.Errorf("graph: delete company: store has no driver")
	}
	return s.companies.Delete(ctx, ticker)
}
