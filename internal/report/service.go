package report

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/mauv0809/sales-dashboard/internal/cache"
	"github.com/mauv0809/sales-dashboard/internal/metrics"
	"github.com/mauv0809/sales-dashboard/internal/models"
	"github.com/mauv0809/sales-dashboard/internal/products"
)

// OrderSource returns the orders processed within [from, to], normalized
// to the report time zone.
type OrderSource interface {
	FetchOrders(ctx context.Context, from, to time.Time) ([]models.Order, error)
}

// Service loads orders through a cache and builds the dashboard reports.
type Service struct {
	source  OrderSource
	cache   cache.Cache
	ttl     time.Duration
	loc     *time.Location
	metrics *metrics.Registry
	now     func() time.Time
}

// NewService creates a Service. cache and m may be nil.
func NewService(source OrderSource, c cache.Cache, ttl time.Duration, loc *time.Location, m *metrics.Registry) *Service {
	if m == nil {
		m = metrics.NewRegistry()
	}
	return &Service{
		source:  source,
		cache:   c,
		ttl:     ttl,
		loc:     loc,
		metrics: m,
		now:     time.Now,
	}
}

// Location is the report time zone.
func (s *Service) Location() *time.Location { return s.loc }

// Now is the current time in the report time zone.
func (s *Service) Now() time.Time { return s.now().In(s.loc) }

// Orders returns the orders in r, from the cache when present. Cache
// failures are logged and fall through to the source.
func (s *Service) Orders(ctx context.Context, r Range) ([]models.Order, error) {
	key := "orders:" + r.key()

	if s.cache != nil {
		data, ok, err := s.cache.Get(ctx, key)
		if err != nil {
			log.Printf("Cache read failed for %s: %v", key, err)
		} else if ok {
			orders, err := decodeOrders(data)
			if err == nil {
				s.metrics.CacheHits.Inc()
				return orders, nil
			}
			log.Printf("Discarding unreadable cache entry %s: %v", key, err)
		}
		s.metrics.CacheMisses.Inc()
	}

	start := time.Now()
	orders, err := s.source.FetchOrders(ctx, r.From(), r.To())
	s.metrics.FetchSeconds.Observe(time.Since(start).Seconds())
	if err != nil {
		s.metrics.SourceErrors.Inc()
		return nil, fmt.Errorf("loading orders %s..%s: %w", r.StartDate(), r.EndDate(), err)
	}
	s.metrics.OrdersFetched.Add(float64(len(orders)))
	log.Printf("Loaded %d orders for %s..%s in %v", len(orders), r.StartDate(), r.EndDate(), time.Since(start))

	if s.cache == nil {
		return orders, nil
	}
	data, err := json.Marshal(textPayloads(orders))
	if err != nil {
		log.Printf("Not caching %s: %v", key, err)
		return orders, nil
	}
	if err := s.cache.Set(ctx, key, data, s.ttl); err != nil {
		log.Printf("Cache write failed for %s: %v", key, err)
	}
	// Serve the decoded copy so a miss returns what a later hit will.
	cached, err := decodeOrders(data)
	if err != nil {
		return orders, nil
	}
	return cached, nil
}

// textPayloads returns orders with byte payloads turned into text, which
// json.Marshal would otherwise store as base64. The input is not modified.
func textPayloads(orders []models.Order) []models.Order {
	var out []models.Order
	for i, o := range orders {
		var text string
		switch v := o.LineItems.(type) {
		case []byte:
			text = string(v)
		case json.RawMessage:
			text = string(v)
		default:
			continue
		}
		if out == nil {
			out = append([]models.Order(nil), orders...)
		}
		out[i].LineItems = text
	}
	if out == nil {
		return orders
	}
	return out
}

// decodeOrders keeps numbers in line item payloads as json.Number so large
// ids survive the round trip.
func decodeOrders(data []byte) ([]models.Order, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var orders []models.Order
	if err := dec.Decode(&orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// Refresh drops every cached result.
func (s *Service) Refresh(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		return fmt.Errorf("invalidating cache: %w", err)
	}
	log.Println("Cache invalidated")
	return nil
}

// Overview is the content of the overview tab.
type Overview struct {
	Range         Range                          `json:"-"`
	Start         string                         `json:"start"`
	End           string                         `json:"end"`
	Orders        int                            `json:"orders"`
	Selected      models.KPIs                    `json:"selected"`
	Today         models.KPIs                    `json:"today"`
	Month         models.KPIs                    `json:"month"`
	TodayChannels []models.ChannelSales          `json:"today_by_channel"`
	MonthChannels []models.ChannelSales          `json:"month_by_channel"`
	MonthTrend    []models.DailySales            `json:"month_trend"`
	ChannelTrend  map[string][]models.DailySales `json:"channel_trend"`
}

// Overview loads the orders in r and computes today's and month-to-date
// figures from them.
func (s *Service) Overview(ctx context.Context, r Range) (*Overview, error) {
	orders, err := s.Orders(ctx, r)
	if err != nil {
		return nil, err
	}

	now := s.Now()
	today := Today(now, s.loc)
	month := MonthToDate(now, s.loc)
	monthOrders := Filter(orders, month)

	ov := &Overview{
		Range:         r,
		Start:         r.StartDate(),
		End:           r.EndDate(),
		Orders:        len(orders),
		Selected:      KPIs(orders, r),
		Today:         KPIs(orders, today),
		Month:         KPIs(orders, month),
		TodayChannels: ChannelBreakdown(Filter(orders, today)),
		MonthChannels: ChannelBreakdown(monthOrders),
		MonthTrend:    DailyTrend(monthOrders, ""),
		ChannelTrend:  make(map[string][]models.DailySales, len(TrackedChannels)),
	}
	for _, ch := range TrackedChannels {
		ov.ChannelTrend[ch] = DailyTrend(monthOrders, ch)
	}
	return ov, nil
}

// TopProducts is the content of the top products tab.
type TopProducts struct {
	Range    Range                     `json:"-"`
	Start    string                    `json:"start"`
	End      string                    `json:"end"`
	TopN     int                       `json:"top_n"`
	Orders   int                       `json:"orders"`
	Skipped  int                       `json:"skipped_orders"`
	Summary  products.Summary          `json:"summary"`
	Products []models.ProductAggregate `json:"products"`
}

// ErrNoLines is returned when orders exist but none yielded a line item.
var ErrNoLines = errors.New("no line items could be extracted")

// TopProducts ranks the products sold in r.
func (s *Service) TopProducts(ctx context.Context, r Range, topN int) (*TopProducts, error) {
	if topN <= 0 {
		return nil, fmt.Errorf("%w: top N must be positive, got %d", products.ErrInvalidArgument, topN)
	}
	orders, err := s.Orders(ctx, r)
	if err != nil {
		return nil, err
	}
	orders = Filter(orders, r)

	ex := products.Extract(orders)
	s.record(ex)

	tp := &TopProducts{
		Range:   r,
		Start:   r.StartDate(),
		End:     r.EndDate(),
		TopN:    topN,
		Orders:  ex.Orders,
		Skipped: len(ex.Skipped),
	}
	if ex.Orders > 0 && len(ex.Lines) == 0 {
		return tp, ErrNoLines
	}

	ranked, err := products.Rank(ex.Lines, topN)
	if err != nil {
		return nil, err
	}
	tp.Summary = products.Summarize(ex.Lines)
	tp.Products = ranked
	return tp, nil
}

func (s *Service) record(ex products.Extraction) {
	s.metrics.LinesExtracted.Add(float64(len(ex.Lines)))
	for _, sk := range ex.Skipped {
		reason := "malformed"
		if errors.Is(sk.Reason, products.ErrMissingPayload) {
			reason = "missing"
		}
		s.metrics.OrdersSkipped.WithLabelValues(reason).Inc()
	}
	if len(ex.Skipped) > 0 {
		log.Printf("Skipped %d of %d orders while extracting line items", len(ex.Skipped), ex.Orders)
	}
}
