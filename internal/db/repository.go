package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/mauv0809/sales-dashboard/internal/ingest"
	"github.com/mauv0809/sales-dashboard/internal/models"
)

// Querier is the subset of *pgxpool.Pool the repository needs.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// Repository reads and writes order rows in Postgres.
type Repository struct {
	pool  Querier
	table string
	loc   *time.Location
}

// NewRepository creates a repository over table. Order dates are reported
// in loc.
func NewRepository(pool Querier, table string, loc *time.Location) *Repository {
	return &Repository{pool: pool, table: table, loc: loc}
}

func (r *Repository) tableName() string {
	return pgx.Identifier{r.table}.Sanitize()
}

// FetchOrders returns the orders processed within [from, to].
// processed_at is stored without a zone and holds UTC wall time.
func (r *Repository) FetchOrders(ctx context.Context, from, to time.Time) ([]models.Order, error) {
	query := fmt.Sprintf(`
		SELECT id, name, processed_at, channel_tags, total_price::text, line_items::text
		FROM %s
		WHERE processed_at >= $1 AND processed_at <= $2
		ORDER BY processed_at, id
	`, r.tableName())

	rows, err := r.pool.Query(ctx, query, from.UTC(), to.UTC())
	if err != nil {
		return nil, fmt.Errorf("querying orders: %w", err)
	}
	defer rows.Close()

	var raw []ingest.Row
	for rows.Next() {
		var (
			id          string
			name        *string
			processedAt time.Time
			channelTags *string
			totalPrice  *string
			lineItems   *string
		)
		if err := rows.Scan(&id, &name, &processedAt, &channelTags, &totalPrice, &lineItems); err != nil {
			return nil, fmt.Errorf("scanning order: %w", err)
		}
		raw = append(raw, ingest.Row{
			ingest.ColID:          id,
			ingest.ColName:        deref(name),
			ingest.ColProcessedAt: processedAt,
			ingest.ColChannelTags: deref(channelTags),
			ingest.ColTotalPrice:  deref(totalPrice),
			ingest.ColLineItems:   deref(lineItems),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading orders: %w", err)
	}

	return ingest.ParseOrders(raw, r.loc), nil
}

// deref returns nil for a NULL column so it reads as absent.
func deref(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

// UpsertOrders inserts or updates orders. Returns the number of rows affected.
func (r *Repository) UpsertOrders(ctx context.Context, orders []models.Order) (int, error) {
	if len(orders) == 0 {
		return 0, nil
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, name, processed_at, channel_tags, total_price, line_items)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			processed_at = EXCLUDED.processed_at,
			channel_tags = EXCLUDED.channel_tags,
			total_price = EXCLUDED.total_price,
			line_items = EXCLUDED.line_items
	`, r.tableName())

	batch := &pgx.Batch{}
	for _, o := range orders {
		items, err := lineItemsJSON(o.LineItems)
		if err != nil {
			return 0, fmt.Errorf("encoding line items of order %s: %w", o.ID, err)
		}
		batch.Queue(query, o.ID, o.Name, o.ProcessedAt.UTC(), o.Channel, o.TotalPrice, items)
	}

	br := r.pool.SendBatch(ctx, batch)
	defer br.Close()

	count := 0
	for range orders {
		tag, err := br.Exec()
		if err != nil {
			return count, fmt.Errorf("upserting order: %w", err)
		}
		count += int(tag.RowsAffected())
	}

	return count, nil
}

// lineItemsJSON returns the payload as JSON text for the jsonb column.
// Text payloads are stored as-is.
func lineItemsJSON(v any) (any, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case string:
		return t, nil
	case []byte:
		return string(t), nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// CountOrders returns the number of rows in the orders table.
func (r *Repository) CountOrders(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM "+r.tableName()).Scan(&count)
	return count, err
}
