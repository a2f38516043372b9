package ingest

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOrders_NativeValues(t *testing.T) {
	loc := mexicoCity(t)
	rows := []Row{
		{
			ColID:          "1001",
			ColName:        "#1001",
			ColProcessedAt: time.Date(2026, 1, 1, 5, 59, 0, 0, time.UTC),
			ColChannelTags: "   ",
			ColTotalPrice:  decimal.RequireFromString("10.10"),
			ColLineItems:   `[{"sku":"A"}]`,
		},
		{
			ColID:          "1002",
			ColProcessedAt: time.Date(2026, 1, 1, 6, 0, 0, 0, time.UTC),
			ColChannelTags: "Mercado Libre",
			ColTotalPrice:  "not a number",
		},
		{ColProcessedAt: time.Now()},
	}

	orders := ParseOrders(rows, loc)
	require.Len(t, orders, 2)

	assert.Equal(t, "#1001", orders[0].Name)
	assert.Equal(t, "2025-12-31", orders[0].Date)
	assert.Equal(t, DefaultChannel, orders[0].Channel)
	assert.True(t, orders[0].TotalPrice.Equal(decimal.RequireFromString("10.1")))
	assert.Equal(t, `[{"sku":"A"}]`, orders[0].LineItems)
	assert.Equal(t, loc, orders[0].ProcessedAt.Location())

	assert.Equal(t, "2026-01-01", orders[1].Date)
	assert.Equal(t, "Mercado Libre", orders[1].Channel)
	assert.True(t, orders[1].TotalPrice.IsZero())
	assert.Nil(t, orders[1].LineItems)
}
