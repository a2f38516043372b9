// Package format renders report numbers as display strings.
package format

import (
	"github.com/mauv0809/sales-dashboard/internal/models"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// Currency renders d as "$1,234.56".
func Currency(d decimal.Decimal) string {
	return printer.Sprintf("$%.2f", d.Round(2).InexactFloat64())
}

// Money renders d as "$1,234.56 MXN".
func Money(d decimal.Decimal) string {
	return Currency(d) + " MXN"
}

// Percent renders a percentage with one decimal, e.g. "12.3%". Halves round
// to even, so 12.25 renders as "12.2%".
func Percent(d decimal.Decimal) string {
	return d.StringFixedBank(1) + "%"
}

// Units renders the integer part of d with thousands separators.
func Units(d decimal.Decimal) string {
	return printer.Sprintf("%d", d.IntPart())
}

// Count renders n with thousands separators.
func Count(n int) string {
	return printer.Sprintf("%d", n)
}

// ProductRow is a display-ready row of the top products table.
type ProductRow struct {
	Rank       int    `json:"rank"`
	SKU        string `json:"sku"`
	Product    string `json:"product"`
	Units      string `json:"units"`
	Revenue    string `json:"revenue"`
	Percentage string `json:"percentage"`
}

func ProductRows(aggs []models.ProductAggregate) []ProductRow {
	rows := make([]ProductRow, 0, len(aggs))
	for _, a := range aggs {
		rows = append(rows, ProductRow{
			Rank:       a.Rank,
			SKU:        a.SKU,
			Product:    a.Name,
			Units:      Units(a.Units),
			Revenue:    Currency(a.Revenue),
			Percentage: Percent(a.Percentage),
		})
	}
	return rows
}
