package report

import (
	"sort"

	"github.com/mauv0809/sales-dashboard/internal/models"
	"github.com/mauv0809/sales-dashboard/internal/products"
	"github.com/shopspring/decimal"
)

// Channels with their own trend chart, in display order.
var TrackedChannels = []string{"Amazon", "Mercado Libre", "Shopify", "TikTok"}

// Filter returns the orders whose date falls in r.
func Filter(orders []models.Order, r Range) []models.Order {
	out := make([]models.Order, 0, len(orders))
	for _, o := range orders {
		if r.Contains(o.Date) {
			out = append(out, o)
		}
	}
	return out
}

// KPIs computes total sales, order count and average ticket over orders
// dated within r.
func KPIs(orders []models.Order, r Range) models.KPIs {
	var k models.KPIs
	for _, o := range orders {
		if !r.Contains(o.Date) {
			continue
		}
		k.TotalSales = k.TotalSales.Add(o.TotalPrice)
		k.OrderCount++
	}
	if k.OrderCount > 0 {
		k.AverageTicket = k.TotalSales.Div(decimal.NewFromInt(int64(k.OrderCount)))
	}
	return k
}

// ChannelBreakdown sums sales per channel, largest first.
func ChannelBreakdown(orders []models.Order) []models.ChannelSales {
	index := make(map[string]int)
	var out []models.ChannelSales
	total := decimal.Zero
	for _, o := range orders {
		i, ok := index[o.Channel]
		if !ok {
			i = len(out)
			index[o.Channel] = i
			out = append(out, models.ChannelSales{Channel: o.Channel})
		}
		out[i].Sales = out[i].Sales.Add(o.TotalPrice)
		out[i].Orders++
		total = total.Add(o.TotalPrice)
	}

	for i := range out {
		if pct, err := products.Percentage(out[i].Sales, total); err == nil {
			out[i].Percentage = pct
		}
	}
	sort.SliceStable(out, func(a, b int) bool {
		if c := out[a].Sales.Cmp(out[b].Sales); c != 0 {
			return c > 0
		}
		return out[a].Channel < out[b].Channel
	})
	return out
}

// DailyTrend sums sales per day in ascending date order. An empty channel
// includes every channel.
func DailyTrend(orders []models.Order, channel string) []models.DailySales {
	index := make(map[string]int)
	var out []models.DailySales
	for _, o := range orders {
		if channel != "" && o.Channel != channel {
			continue
		}
		i, ok := index[o.Date]
		if !ok {
			i = len(out)
			index[o.Date] = i
			out = append(out, models.DailySales{Date: o.Date})
		}
		out[i].Sales = out[i].Sales.Add(o.TotalPrice)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Date < out[b].Date })
	return out
}
