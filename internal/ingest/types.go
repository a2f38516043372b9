package ingest

import "time"

// Row is one order row as returned by the store: column name to value.
// PostgREST rows are decoded with json.Number for numbers; rows scanned by
// pgx carry native Go values.
type Row map[string]any

// Columns read from the orders table.
const (
	ColID          = "id"
	ColName        = "name"
	ColProcessedAt = "processed_at"
	ColChannelTags = "channel_tags"
	ColTotalPrice  = "total_price"
	ColLineItems   = "line_items"
)

// DefaultChannel labels orders without channel tags.
const DefaultChannel = "Otro"

// Range is an inclusive timestamp window on processed_at.
type Range struct {
	From time.Time
	To   time.Time
}
