package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order is one purchase as delivered by an order source, already filtered
// to the requested range and normalized to the report time zone.
type Order struct {
	ID          string          `json:"id"`
	Name        string          `json:"name,omitempty"`
	ProcessedAt time.Time       `json:"processed_at"`
	Date        string          `json:"date"` // YYYY-MM-DD in the report time zone
	Channel     string          `json:"channel"`
	TotalPrice  decimal.Decimal `json:"total_price"`
	// LineItems is the raw payload: JSON text, a decoded list of objects,
	// or anything else (treated as absent).
	LineItems any `json:"line_items"`
}

// TransactionLine is one line item flattened together with its order context.
type TransactionLine struct {
	OrderID       string          `json:"order_id"`
	OrderDate     string          `json:"order_date"`
	Channel       string          `json:"channel"`
	LineItemID    string          `json:"line_item_id,omitempty"`
	ProductID     string          `json:"product_id,omitempty"`
	VariantID     string          `json:"variant_id,omitempty"`
	SKU           string          `json:"sku"`
	Name          string          `json:"name"`
	Title         string          `json:"title"`
	Quantity      decimal.Decimal `json:"quantity"`
	Price         decimal.Decimal `json:"price"`
	TotalDiscount decimal.Decimal `json:"total_discount"`
	LineTotal     decimal.Decimal `json:"line_total"`
}

// ProductAggregate is a ranked row of the top products table.
type ProductAggregate struct {
	Rank       int             `json:"rank"`
	SKU        string          `json:"sku"`
	Name       string          `json:"name"`
	Units      decimal.Decimal `json:"units"`
	Revenue    decimal.Decimal `json:"revenue"`
	Percentage decimal.Decimal `json:"percentage"` // share of all revenue, 2 decimals
}

type KPIs struct {
	TotalSales    decimal.Decimal `json:"total_sales"`
	OrderCount    int             `json:"order_count"`
	AverageTicket decimal.Decimal `json:"average_ticket"`
}

type ChannelSales struct {
	Channel    string          `json:"channel"`
	Sales      decimal.Decimal `json:"sales"`
	Orders     int             `json:"orders"`
	Percentage decimal.Decimal `json:"percentage"`
}

type DailySales struct {
	Date  string          `json:"date"`
	Sales decimal.Decimal `json:"sales"`
}
