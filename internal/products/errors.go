package products

import "errors"

var (
	// ErrMalformedPayload marks an order whose line items could not be read
	// as a list of objects. The order is skipped, never surfaced.
	ErrMalformedPayload = errors.New("malformed line items payload")

	// ErrMissingPayload marks an order with no line items field, or one of a
	// type that cannot hold line items.
	ErrMissingPayload = errors.New("missing line items payload")

	// ErrInvalidArgument is returned for a request the reports cannot serve,
	// such as a non-positive top N or an inverted date range.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrDegenerateAggregate is returned when a share is requested of a zero total.
	ErrDegenerateAggregate = errors.New("total revenue is zero")
)
