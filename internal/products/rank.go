package products

import (
	"fmt"
	"sort"

	"github.com/mauv0809/sales-dashboard/internal/models"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

type groupKey struct {
	sku  string
	name string
}

// Rank groups lines by (SKU, name) and returns the topN groups by revenue.
// Percentages are shares of the revenue of all groups, not only the ones
// returned. Revenue ties are ordered by SKU, then name.
func Rank(lines []models.TransactionLine, topN int) ([]models.ProductAggregate, error) {
	if len(lines) == 0 {
		return []models.ProductAggregate{}, nil
	}
	if topN <= 0 {
		return nil, fmt.Errorf("%w: top N must be positive, got %d", ErrInvalidArgument, topN)
	}

	index := make(map[groupKey]int)
	groups := make([]models.ProductAggregate, 0)
	for _, l := range lines {
		k := groupKey{sku: l.SKU, name: l.Name}
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, models.ProductAggregate{SKU: l.SKU, Name: l.Name})
		}
		groups[i].Units = groups[i].Units.Add(l.Quantity)
		groups[i].Revenue = groups[i].Revenue.Add(l.LineTotal)
	}

	total := decimal.Zero
	for _, g := range groups {
		total = total.Add(g.Revenue)
	}
	for i := range groups {
		pct, err := Percentage(groups[i].Revenue, total)
		if err != nil {
			// Zero total: every share is reported as 0.
			pct = decimal.Zero
		}
		groups[i].Percentage = pct
	}

	sort.SliceStable(groups, func(a, b int) bool {
		ga, gb := groups[a], groups[b]
		if c := ga.Revenue.Cmp(gb.Revenue); c != 0 {
			return c > 0
		}
		if ga.SKU != gb.SKU {
			return ga.SKU < gb.SKU
		}
		return ga.Name < gb.Name
	})

	if len(groups) > topN {
		groups = groups[:topN]
	}
	for i := range groups {
		groups[i].Rank = i + 1
	}
	return groups, nil
}

// Percentage returns part/total*100 rounded to two decimals.
func Percentage(part, total decimal.Decimal) (decimal.Decimal, error) {
	if total.IsZero() {
		return decimal.Zero, ErrDegenerateAggregate
	}
	return part.Mul(hundred).Div(total).Round(2), nil
}

// Summary holds the totals shown above the ranking table.
type Summary struct {
	Units      decimal.Decimal `json:"units"`
	Revenue    decimal.Decimal `json:"revenue"`
	UniqueSKUs int             `json:"unique_skus"`
}

// Summarize totals units and revenue over lines and counts distinct SKUs.
func Summarize(lines []models.TransactionLine) Summary {
	skus := make(map[string]struct{})
	s := Summary{Revenue: lineRevenue(lines)}
	for _, l := range lines {
		s.Units = s.Units.Add(l.Quantity)
		skus[l.SKU] = struct{}{}
	}
	s.UniqueSKUs = len(skus)
	return s
}
