package ingest

import (
	"log"
	"strings"
	"time"

	"github.com/mauv0809/sales-dashboard/internal/coerce"
	"github.com/mauv0809/sales-dashboard/internal/models"
)

// getString safely extracts a string column.
func getString(row Row, col string) string {
	s, _ := coerce.String(row[col])
	return s
}

// ParseOrders normalizes raw rows into orders: processed_at is moved to loc
// (values without an offset are UTC), date is its civil date there, and
// channel_tags is trimmed with blanks labelled DefaultChannel. Rows without
// an id or a readable processed_at are dropped.
func ParseOrders(rows []Row, loc *time.Location) []models.Order {
	orders := make([]models.Order, 0, len(rows))
	dropped := 0

	for _, row := range rows {
		id := getString(row, ColID)
		processedAt, ok := coerce.Time(row[ColProcessedAt])
		if id == "" || !ok {
			dropped++
			continue
		}
		local := processedAt.In(loc)

		channel := strings.TrimSpace(getString(row, ColChannelTags))
		if channel == "" {
			channel = DefaultChannel
		}

		orders = append(orders, models.Order{
			ID:          id,
			Name:        getString(row, ColName),
			ProcessedAt: local,
			Date:        local.Format(time.DateOnly),
			Channel:     channel,
			TotalPrice:  coerce.Decimal(row[ColTotalPrice]),
			LineItems:   row[ColLineItems],
		})
	}

	if dropped > 0 {
		log.Printf("Dropped %d order rows without id or processed_at", dropped)
	}
	return orders
}
