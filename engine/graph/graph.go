package graph

import (
	"context"
	"fmt"
	"sort"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"

	"github.com/investiq-ai/investiq/engine/domain"
	"github.com/investiq-ai/investiq/pkg/repo"
)

// CypherResult is the minimal result cursor used by the store.
type CypherResult interface {
	Next(ctx context.Context) bool
	Record() *neo4j.Record
}

// CypherRunner executes a single Cypher statement.
type CypherRunner interface {
	Run(ctx context.Context, cypher string, params map[string]any) (CypherResult, error)
}

// CypherSession is a session capable of single statements and write
// transactions.
type CypherSession interface {
	CypherRunner
	ExecuteWrite(ctx context.Context, work func(tx CypherRunner) (any, error)) (any, error)
	Close(ctx context.Context) error
}

// SessionOpener opens graph sessions. Satisfied by the Neo4j driver
// adapter in production and by mocks in tests.
type SessionOpener interface {
	OpenSession(ctx context.Context) CypherSession
}

type driverOpener struct {
	driver neo4j.DriverWithContext
}

func (o *driverOpener) OpenSession(ctx context.Context) CypherSession {
	return &driverSession{sess: o.driver.NewSession(ctx, neo4j.SessionConfig{})}
}

type driverSession struct {
	sess neo4j.SessionWithContext
}

func (s *driverSession) Run(ctx context.Context, cypher string, params map[string]any) (CypherResult, error) {
	return s.sess.Run(ctx, cypher, params)
}

func (s *driverSession) Close(ctx context.Context) error {
	return s.sess.Close(ctx)
}

func (s *driverSession) ExecuteWrite(ctx context.Context, work func(tx CypherRunner) (any, error)) (any, error) {
	return s.sess.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return work(&managedTxRunner{tx: tx})
	})
}

type managedTxRunner struct {
	tx neo4j.ManagedTransaction
}

func (r *managedTxRunner) Run(ctx context.Context, cypher string, params map[string]any) (CypherResult, error) {
	return r.tx.Run(ctx, cypher, params)
}

// Store provides company and sector graph operations.
type Store struct {
	opener    SessionOpener
	companies *repo.Neo4jRepo[Company, string]
}

// New creates a Store backed by a Neo4j driver.
func New(driver neo4j.DriverWithContext) *Store {
	return &Store{
		opener:    &driverOpener{driver: driver},
		companies: newCompanyRepo(driver),
	}
}

// NewWithOpener creates a Store with a custom session opener, used in tests.
func NewWithOpener(o SessionOpener) *Store {
	return &Store{opener: o}
}

// SaveCompany upserts a company node and links it into the sector
// hierarchy: (Company)-[:IN_SECTOR]->(Sector) and, when a sub-industry is
// known, (Company)-[:IN_SUBINDUSTRY]->(SubIndustry)-[:PART_OF]->(Sector).
func (s *Store) SaveCompany(ctx context.Context, c Company) error {
	if c.Ticker == "" {
		return fmt.Errorf("graph: save company: ticker: %w", domain.ErrValidation)
	}
	sess := s.opener.OpenSession(ctx)
	defer sess.Close(ctx)

	if err := saveCompanyTx(ctx, sess, c); err != nil {
		return fmt.Errorf("graph: save company %s: %w", c.Ticker, err)
	}
	return nil
}

func saveCompanyTx(ctx context.Context, tx CypherRunner, c Company) error {
	cypher := `MERGE (n:Company {ticker: $ticker})
	           SET n.name = $name, n.sector = $sector, n.sub_industry = $subIndustry, n.headquarters = $hq`
	if _, err := tx.Run(ctx, cypher, map[string]any{
		"ticker":      c.Ticker,
		"name":        c.Name,
		"sector":      c.Sector,
		"subIndustry": c.SubIndustry,
		"hq":          c.Headquarters,
	}); err != nil {
		return err
	}
	if c.Sector == "" {
		return nil
	}
	cypher = `MERGE (s:Sector {name: $sector})
	          WITH s
	          MATCH (n:Company {ticker: $ticker})
	          MERGE (n)-[:IN_SECTOR]->(s)`
	if _, err := tx.Run(ctx, cypher, map[string]any{"sector": c.Sector, "ticker": c.Ticker}); err != nil {
		return err
	}
	if c.SubIndustry == "" {
		return nil
	}
	cypher = `MERGE (si:SubIndustry {name: $subIndustry})
	          WITH si
	          MATCH (s:Sector {name: $sector}), (n:Company {ticker: $ticker})
	          MERGE (si)-[:PART_OF]->(s)
	          MERGE (n)-[:IN_SUBINDUSTRY]->(si)`
	_, err := tx.Run(ctx, cypher, map[string]any{
		"subIndustry": c.SubIndustry,
		"sector":      c.Sector,
		"ticker":      c.Ticker,
	})
	return err
}

// SaveBatch upserts multiple companies in a single write transaction.
func (s *Store) SaveBatch(ctx context.Context, records []domain.CompanyRecord) error {
	if len(records) == 0 {
		return nil
	}
	sess := s.opener.OpenSession(ctx)
	defer sess.Close(ctx)

	_, err := sess.ExecuteWrite(ctx, func(tx CypherRunner) (any, error) {
		for _, rec := range records {
			if err := saveCompanyTx(ctx, tx, FromRecord(rec)); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("graph: save batch: %w", err)
	}
	return nil
}

// FromRecord converts a dataset record to a graph company node.
func FromRecord(rec domain.CompanyRecord) Company {
	return Company{
		Ticker:       rec.Symbol,
		Name:         rec.Name,
		Sector:       rec.Sector,
		SubIndustry:  rec.SubIndustry,
		Headquarters: rec.Headquarters,
	}
}

// Company returns a company node by ticker.
func (s *Store) Company(ctx context.Context, ticker string) (Company, error) {
	sess := s.opener.OpenSession(ctx)
	defer sess.Close(ctx)

	cypher := `MATCH (n:Company {ticker: $ticker}) RETURN n`
	result, err := sess.Run(ctx, cypher, map[string]any{"ticker": ticker})
	if err != nil {
		return Company{}, fmt.Errorf("graph: company %s: %w", ticker, err)
	}
	if !result.Next(ctx) {
		return Company{}, fmt.Errorf("graph: company %s: %w", ticker, domain.ErrNotFound)
	}
	node, _, err := neo4j.GetRecordValue[dbtype.Node](result.Record(), "n")
	if err != nil {
		return Company{}, fmt.Errorf("graph: company %s: %w", ticker, err)
	}
	return companyFromProps(node.Props), nil
}

// PeersOf returns companies sharing a sector with the given ticker,
// ordered by ticker, excluding the company itself.
func (s *Store) PeersOf(ctx context.Context, ticker string, limit int) ([]Company, error) {
	if limit <= 0 {
		limit = 10
	}
	sess := s.opener.OpenSession(ctx)
	defer sess.Close(ctx)

	cypher := `MATCH (a:Company {ticker: $ticker})-[:IN_SECTOR]->(s:Sector)<-[:IN_SECTOR]-(p:Company)
	           WHERE p.ticker <> $ticker
	           RETURN DISTINCT p ORDER BY p.ticker LIMIT $limit`
	result, err := sess.Run(ctx, cypher, map[string]any{"ticker": ticker, "limit": limit})
	if err != nil {
		return nil, fmt.Errorf("graph: peers of %s: %w", ticker, err)
	}
	return collectCompanies(ctx, result, "p")
}

// SectorCounts returns the number of companies per sector.
func (s *Store) SectorCounts(ctx context.Context) ([]SectorStats, error) {
	sess := s.opener.OpenSession(ctx)
	defer sess.Close(ctx)

	cypher := `MATCH (n:Company)-[:IN_SECTOR]->(s:Sector)
	           RETURN s.name AS sector, count(n) AS companies`
	result, err := sess.Run(ctx, cypher, nil)
	if err != nil {
		return nil, fmt.Errorf("graph: sector counts: %w", err)
	}

	var stats []SectorStats
	for result.Next(ctx) {
		rec := result.Record()
		name, _ := rec.Get("sector")
		count, _ := rec.Get("companies")
		st := SectorStats{}
		if v, ok := name.(string); ok {
			st.Sector = v
		}
		if v, ok := count.(int64); ok {
			st.Companies = v
		}
		stats = append(stats, st)
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Sector < stats[j].Sector })
	return stats, nil
}

func collectCompanies(ctx context.Context, result CypherResult, key string) ([]Company, error) {
	var items []Company
	for result.Next(ctx) {
		node, _, err := neo4j.GetRecordValue[dbtype.Node](result.Record(), key)
		if err != nil {
			return nil, err
		}
		items = append(items, companyFromProps(node.Props))
	}
	return items, nil
}

func companyFromProps(props map[string]any) Company {
	return Company{
		Ticker:       strProp(props, "ticker"),
		Name:         strProp(props, "name"),
		Sector:       strProp(props, "sector"),
		SubIndustry:  strProp(props, "sub_industry"),
		Headquarters: strProp(props, "headquarters"),
	}
}

func strProp(props map[string]any, key string) string {
	if v, ok := props[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
