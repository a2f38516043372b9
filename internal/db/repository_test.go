package db

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRows serves fixed rows to Scan; each value must have the exact type
// of its destination, or be nil.
type fakeRows struct {
	data [][]any
	pos  int
	err  error
}

func (r *fakeRows) Close()                                       {}
func (r *fakeRows) Err() error                                   { return r.err }
func (r *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fakeRows) RawValues() [][]byte                          { return nil }
func (r *fakeRows) Conn() *pgx.Conn                              { return nil }

func (r *fakeRows) Next() bool {
	if r.pos >= len(r.data) {
		return false
	}
	r.pos++
	return true
}

func (r *fakeRows) Values() ([]any, error) { return r.data[r.pos-1], nil }

func (r *fakeRows) Scan(dest ...any) error {
	row := r.data[r.pos-1]
	if len(dest) != len(row) {
		return errors.New("column count mismatch")
	}
	for i, v := range row {
		target := reflect.ValueOf(dest[i]).Elem()
		if v == nil {
			target.Set(reflect.Zero(target.Type()))
			continue
		}
		target.Set(reflect.ValueOf(v))
	}
	return nil
}

type fakeQuerier struct {
	rows  *fakeRows
	err   error
	query string
	args  []any
}

func (q *fakeQuerier) Query(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
	q.query, q.args = sql, args
	if q.err != nil {
		return nil, q.err
	}
	return q.rows, nil
}

func (q *fakeQuerier) QueryRow(context.Context, string, ...any) pgx.Row { return nil }

func (q *fakeQuerier) SendBatch(context.Context, *pgx.Batch) pgx.BatchResults { return nil }

func strPtr(s string) *string { return &s }

func TestFetchOrders(t *testing.T) {
	loc, err := time.LoadLocation("America/Mexico_City")
	require.NoError(t, err)

	q := &fakeQuerier{rows: &fakeRows{data: [][]any{
		{"1001", strPtr("#1001"), time.Date(2026, 10, 2, 4, 0, 0, 0, time.UTC), strPtr("TikTok"), strPtr("120.00"), strPtr(`[{"sku":"A","price":60,"quantity":2}]`)},
		{"1002", nil, time.Date(2026, 10, 2, 18, 0, 0, 0, time.UTC), nil, nil, nil},
	}}}
	repo := NewRepository(q, "orders_final", loc)

	from := time.Date(2026, 10, 1, 0, 0, 0, 0, loc)
	to := time.Date(2026, 10, 2, 23, 59, 59, 0, loc)
	orders, err := repo.FetchOrders(context.Background(), from, to)
	require.NoError(t, err)

	assert.Contains(t, q.query, `FROM "orders_final"`)
	require.Len(t, q.args, 2)
	assert.Equal(t, time.UTC, q.args[0].(time.Time).Location())
	assert.True(t, q.args[0].(time.Time).Equal(from))

	require.Len(t, orders, 2)
	assert.Equal(t, "2026-10-01", orders[0].Date)
	assert.Equal(t, "TikTok", orders[0].Channel)
	assert.Equal(t, "120", orders[0].TotalPrice.String())
	assert.Equal(t, `[{"sku":"A","price":60,"quantity":2}]`, orders[0].LineItems)

	assert.Equal(t, "2026-10-02", orders[1].Date)
	assert.Equal(t, "Otro", orders[1].Channel)
	assert.Nil(t, orders[1].LineItems)
}

func TestFetchOrders_QueryError(t *testing.T) {
	repo := NewRepository(&fakeQuerier{err: errors.New("connection refused")}, "orders_final", time.UTC)

	_, err := repo.FetchOrders(context.Background(), time.Now(), time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "querying orders")
}

func TestFetchOrders_RowsError(t *testing.T) {
	q := &fakeQuerier{rows: &fakeRows{err: errors.New("broken pipe")}}
	repo := NewRepository(q, "orders_final", time.UTC)

	_, err := repo.FetchOrders(context.Background(), time.Now(), time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading orders")
}

func TestLineItemsJSON(t *testing.T) {
	v, err := lineItemsJSON([]any{map[string]any{"sku": "A"}})
	require.NoError(t, err)
	assert.Equal(t, `[{"sku":"A"}]`, v)

	v, err = lineItemsJSON(`[]`)
	require.NoError(t, err)
	assert.Equal(t, `[]`, v)

	v, err = lineItemsJSON(nil)
	require.NoError(t, err)
	assert.Nil(t, v)
}
