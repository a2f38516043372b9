package format

import (
	"testing"

	"github.com/mauv0809/sales-dashboard/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCurrency(t *testing.T) {
	assert.Equal(t, "$1,234.50", Currency(decimal.RequireFromString("1234.5")))
	assert.Equal(t, "$0.00", Currency(decimal.Zero))
	assert.Equal(t, "$1,000,000.01", Currency(decimal.RequireFromString("1000000.005")))
	assert.Equal(t, "$12.00 MXN", Money(decimal.NewFromInt(12)))
}

func TestPercent(t *testing.T) {
	assert.Equal(t, "33.3%", Percent(decimal.RequireFromString("33.33")))
	assert.Equal(t, "100.0%", Percent(decimal.NewFromInt(100)))
	assert.Equal(t, "12.2%", Percent(decimal.RequireFromString("12.25")))
	assert.Equal(t, "12.4%", Percent(decimal.RequireFromString("12.35")))
}

func TestUnits(t *testing.T) {
	assert.Equal(t, "12,345", Units(decimal.RequireFromString("12345.9")))
	assert.Equal(t, "7", Units(decimal.NewFromInt(7)))
	assert.Equal(t, "1,200", Count(1200))
}

func TestProductRows(t *testing.T) {
	rows := ProductRows([]models.ProductAggregate{{
		Rank:       1,
		SKU:        "X1",
		Name:       "Widget",
		Units:      decimal.NewFromInt(2500),
		Revenue:    decimal.RequireFromString("25000"),
		Percentage: decimal.RequireFromString("62.5"),
	}})

	assert.Equal(t, []ProductRow{{
		Rank:       1,
		SKU:        "X1",
		Product:    "Widget",
		Units:      "2,500",
		Revenue:    "$25,000.00",
		Percentage: "62.5%",
	}}, rows)
}
