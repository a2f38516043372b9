package products

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/mauv0809/sales-dashboard/internal/coerce"
	"github.com/mauv0809/sales-dashboard/internal/models"
	"github.com/shopspring/decimal"
)

const (
	defaultSKU   = "N/A"
	defaultName  = "Sin nombre"
	defaultTitle = "Sin título"
)

// SkippedOrder records an order that contributed no lines, and why.
type SkippedOrder struct {
	OrderID string
	Reason  error
}

// Extraction is the result of flattening a batch of orders.
type Extraction struct {
	// Orders is the number of orders examined.
	Orders int
	// Lines is nil when no orders were given, and a non-nil empty slice when
	// orders were given but none yielded a line.
	Lines   []models.TransactionLine
	Skipped []SkippedOrder
}

// Extract flattens the line items of every order into transaction lines.
// An order whose payload cannot be read is skipped as a whole; it never
// aborts the batch.
func Extract(orders []models.Order) Extraction {
	if len(orders) == 0 {
		return Extraction{}
	}

	ex := Extraction{
		Orders: len(orders),
		Lines:  make([]models.TransactionLine, 0, len(orders)),
	}
	for _, o := range orders {
		lines, err := extractOrder(o)
		if err != nil {
			ex.Skipped = append(ex.Skipped, SkippedOrder{OrderID: o.ID, Reason: err})
			continue
		}
		ex.Lines = append(ex.Lines, lines...)
	}
	return ex
}

func extractOrder(o models.Order) ([]models.TransactionLine, error) {
	items, err := decodeItems(o.LineItems)
	if err != nil {
		return nil, err
	}

	lines := make([]models.TransactionLine, 0, len(items))
	for i, item := range items {
		if item == nil {
			return nil, fmt.Errorf("%w: item %d is not an object", ErrMalformedPayload, i)
		}
		lines = append(lines, newLine(o, item))
	}
	return lines, nil
}

// decodeItems turns a raw payload into item objects. Every element must be
// an object, otherwise the whole payload is rejected.
func decodeItems(raw any) ([]map[string]any, error) {
	var list []any
	switch v := raw.(type) {
	case string:
		return parseItems([]byte(v))
	case []byte:
		return parseItems(v)
	case json.RawMessage:
		return parseItems(v)
	case []map[string]any:
		return v, nil
	case []any:
		list = v
	default:
		return nil, ErrMissingPayload
	}

	items := make([]map[string]any, 0, len(list))
	for i, el := range list {
		m, ok := el.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: item %d is %T, not an object", ErrMalformedPayload, i, el)
		}
		items = append(items, m)
	}
	return items, nil
}

func parseItems(data []byte) ([]map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var items []map[string]any
	if err := dec.Decode(&items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if dec.More() {
		return nil, fmt.Errorf("%w: trailing data after line items", ErrMalformedPayload)
	}
	if items == nil {
		return nil, fmt.Errorf("%w: payload is null", ErrMalformedPayload)
	}
	return items, nil
}

func newLine(o models.Order, item map[string]any) models.TransactionLine {
	name, hasName := field(item, "name")
	title, hasTitle := field(item, "title")
	if !hasTitle {
		title, hasTitle = name, hasName
	}

	quantity := coerce.Decimal(item["quantity"])
	price := coerce.Decimal(item["price"])

	line := models.TransactionLine{
		OrderID:       o.ID,
		OrderDate:     o.Date,
		Channel:       o.Channel,
		SKU:           stringOr(item, "sku", defaultSKU),
		Name:          name,
		Title:         title,
		Quantity:      quantity,
		Price:         price,
		TotalDiscount: coerce.Decimal(item["total_discount"]),
		LineTotal:     price.Mul(quantity),
	}
	line.LineItemID, _ = field(item, "id")
	line.ProductID, _ = field(item, "product_id")
	line.VariantID, _ = field(item, "variant_id")
	if !hasName {
		line.Name = defaultName
	}
	if !hasTitle {
		line.Title = defaultTitle
	}
	return line
}

// field reads a string attribute; a JSON null counts as absent.
func field(item map[string]any, key string) (string, bool) {
	return coerce.String(item[key])
}

func stringOr(item map[string]any, key, fallback string) string {
	if s, ok := field(item, key); ok {
		return s
	}
	return fallback
}

// lineRevenue sums LineTotal over lines.
func lineRevenue(lines []models.TransactionLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.LineTotal)
	}
	return total
}
