package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/pgvector/pgvector-go"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	contractx "github.com/renzovallejo/lima-property-agent/agent/contract"
)

type Config struct {
	DatabaseURL string `envconfig:"DATABASE_URL" split_words:"true" required:"true"`
}

// NewDB opens a bun handle over the pgdriver connector.
func NewDB(cfg Config) *bun.DB {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.DatabaseURL)))
	return bun.NewDB(sqldb, pgdialect.New())
}

// Catalog implements contract.Catalog over Postgres.
type Catalog struct {
	db *bun.DB
}

func NewCatalog(db *bun.DB) *Catalog {
	return &Catalog{db: db}
}

type similarityRow struct {
	ID       string  `bun:"id"`
	Distance float64 `bun:"distance"`
}

// SimilaritySearch orders by cosine distance to the query vector with the
// structural filters applied server-side. Score is 1 - distance so higher
// means closer.
func (c *Catalog) SimilaritySearch(ctx context.Context, vector []float32, filters contractx.SearchFilters, limit int) ([]contractx.ScoredID, error) {
	if limit <= 0 {
		limit = 5
	}

	var rows []similarityRow
	q := c.db.NewSelect().
		Model((*Property)(nil)).
		ColumnExpr("prop.id").
		ColumnExpr("prop.embedding <=> ? AS distance", pgvector.NewVector(vector)).
		Where("prop.embedding IS NOT NULL")

	if filters.MaxPrice != nil {
		q = q.Where("prop.pricing <= ?", *filters.MaxPrice)
	}
	if filters.MinPrice != nil {
		q = q.Where("prop.pricing >= ?", *filters.MinPrice)
	}
	if filters.PropertyType != "" {
		q = q.Where("prop.type = ?", filters.PropertyType)
	}
	if filters.Bedrooms != nil {
		q = q.Join("JOIN typologies AS typ ON typ.id = prop.typology_id").
			Where("typ.num_bedrooms = ?", *filters.Bedrooms)
	}
	if filters.District != "" {
		q = q.Join("JOIN projects AS proj ON proj.id = prop.project_id").
			Where("proj.district ILIKE ?", filters.District)
	}

	err := q.OrderExpr("distance ASC").
		Limit(limit).
		Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("%w: similarity search: %v", contractx.ErrUpstream, err)
	}

	out := make([]contractx.ScoredID, 0, len(rows))
	for _, row := range rows {
		out = append(out, contractx.ScoredID{ID: row.ID, Score: 1 - row.Distance})
	}
	return out, nil
}

// FetchByIDs loads property summaries preserving the requested order.
// Missing ids are silently dropped.
func (c *Catalog) FetchByIDs(ctx context.Context, ids []string) ([]contractx.PropertySummary, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var props []Property
	err := c.db.NewSelect().
		Model(&props).
		Relation("Project").
		Relation("Typology").
		Where("prop.id IN (?)", bun.In(ids)).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch properties: %v", contractx.ErrUpstream, err)
	}

	byID := make(map[string]Property, len(props))
	for _, p := range props {
		byID[p.ID] = p
	}

	out := make([]contractx.PropertySummary, 0, len(ids))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			out = append(out, summarize(p))
		}
	}
	return out, nil
}

func (c *Catalog) PropertiesForProject(ctx context.Context, projectID string, limit int) ([]contractx.PropertySummary, error) {
	if limit <= 0 {
		limit = 5
	}

	var props []Property
	err := c.db.NewSelect().
		Model(&props).
		Relation("Project").
		Relation("Typology").
		Where("prop.project_id = ?", projectID).
		OrderExpr("prop.pricing ASC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: project properties: %v", contractx.ErrUpstream, err)
	}

	out := make([]contractx.PropertySummary, 0, len(props))
	for _, p := range props {
		out = append(out, summarize(p))
	}
	return out, nil
}

func (c *Catalog) ProjectByID(ctx context.Context, projectID string) (*contractx.ProjectInfo, error) {
	var proj Project
	err := c.db.NewSelect().
		Model(&proj).
		Where("proj.id = ?", projectID).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: project lookup: %v", contractx.ErrUpstream, err)
	}
	return projectInfo(proj), nil
}

// MatchProject finds a project whose name appears inside the message text.
func (c *Catalog) MatchProject(ctx context.Context, text string) (*contractx.ProjectInfo, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, nil
	}

	var proj Project
	err := c.db.NewSelect().
		Model(&proj).
		Where("? ILIKE '%' || proj.name || '%'", trimmed).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: project match: %v", contractx.ErrUpstream, err)
	}
	return projectInfo(proj), nil
}

func projectInfo(p Project) *contractx.ProjectInfo {
	return &contractx.ProjectInfo{
		ID:       p.ID,
		Name:     p.Name,
		District: p.District,
		Address:  p.Address,
	}
}

func summarize(p Property) contractx.PropertySummary {
	s := contractx.PropertySummary{
		ID:        p.ID,
		Title:     p.Title,
		Type:      p.Type,
		ProjectID: p.ProjectID,
		Floor:     p.Floor,
		PriceUSD:  p.Pricing,
	}
	if p.Project != nil {
		s.ProjectName = p.Project.Name
		s.District = p.Project.District
	}
	if p.Typology != nil {
		s.Bedrooms = p.Typology.NumBedrooms
		s.Bathrooms = p.Typology.NumBathrooms
		s.AreaM2 = p.Typology.AreaM2
	}
	return s
}
