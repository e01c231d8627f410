package catalog

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/resensebox/Mindful-Libraries-sub000/internal/model"
)

// Querier is the subset of core/db.DB the postgres source needs.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// catalog_items mirrors the sheet; position keeps the curated order that
// score ties fall back to.
const selectCatalogItems = `
SELECT title,
       COALESCE(type, ''),
       COALESCE(summary, ''),
       COALESCE(tags, ''),
       COALESCE(image, ''),
       COALESCE(url, '')
FROM catalog_items
ORDER BY position, title`

type PostgresSource struct {
	db Querier
}

func NewPostgresSource(db Querier) *PostgresSource {
	return &PostgresSource{db: db}
}

func (s *PostgresSource) Name() string {
	return "postgres"
}

func (s *PostgresSource) Fetch(ctx context.Context) ([]model.RawRow, error) {
	rows, err := s.db.Query(ctx, selectCatalogItems)
	if err != nil {
		return nil, fmt.Errorf("querying catalog items: %w", err)
	}

	result, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.RawRow, error) {
		var r model.RawRow
		err := row.Scan(&r.Title, &r.Type, &r.Summary, &r.Tags, &r.Image, &r.URL)
		return r, err
	})
	if err != nil {
		return nil, fmt.Errorf("scanning catalog items: %w", err)
	}
	return result, nil
}
