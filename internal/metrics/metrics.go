package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds the dashboard's collectors on a private registry.
type Registry struct {
	reg            *prometheus.Registry
	OrdersFetched  prometheus.Counter
	OrdersSkipped  *prometheus.CounterVec
	LinesExtracted prometheus.Counter
	CacheHits      prometheus.Counter
	CacheMisses    prometheus.Counter
	FetchSeconds   prometheus.Histogram
	SourceErrors   prometheus.Counter
}

func NewRegistry() *Registry {
	r := prometheus.NewRegistry()
	fetched := prometheus.NewCounter(prometheus.CounterOpts{Name: "dashboard_orders_fetched_total"})
	skipped := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dashboard_orders_skipped_total",
		Help: "Orders whose line items could not be extracted.",
	}, []string{"reason"})
	lines := prometheus.NewCounter(prometheus.CounterOpts{Name: "dashboard_lines_extracted_total"})
	hits := prometheus.NewCounter(prometheus.CounterOpts{Name: "dashboard_cache_hits_total"})
	misses := prometheus.NewCounter(prometheus.CounterOpts{Name: "dashboard_cache_misses_total"})
	fetchSeconds := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "dashboard_source_fetch_seconds",
		Buckets: prometheus.DefBuckets,
	})
	sourceErrors := prometheus.NewCounter(prometheus.CounterOpts{Name: "dashboard_source_errors_total"})

	r.MustRegister(fetched, skipped, lines, hits, misses, fetchSeconds, sourceErrors)
	return &Registry{
		reg:            r,
		OrdersFetched:  fetched,
		OrdersSkipped:  skipped,
		LinesExtracted: lines,
		CacheHits:      hits,
		CacheMisses:    misses,
		FetchSeconds:   fetchSeconds,
		SourceErrors:   sourceErrors,
	}
}

func (r *Registry) Handler() http.Handler { return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{}) }
