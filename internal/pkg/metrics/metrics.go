package metrics

import (
	"net/http"
	"time"

	"github.com/google/wire"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ProviderSet is metrics providers.
var ProviderSet = wire.NewSet(
	NewRegistry,
	NewMetrics,
	wire.Bind(new(prometheus.Registerer), new(*prometheus.Registry)),
)

// Ingest outcomes.
const (
	OutcomeTracked       = "tracked"
	OutcomeInvalidInput  = "invalid_input"
	OutcomeNotConfigured = "not_configured"
	OutcomeStoreError    = "store_error"
)

// Metrics holds all Prometheus collectors of the service.
type Metrics struct {
	// Ingestion
	IngestTotal        *prometheus.CounterVec
	DispatchTotal      *prometheus.CounterVec
	DispatchQueueDepth prometheus.Gauge

	// Click store
	StoreQueryDuration *prometheus.HistogramVec
	StoreErrorsTotal   *prometheus.CounterVec

	// Aggregation
	StatsMetricFailuresTotal *prometheus.CounterVec

	// Registry cache
	CacheRequestsTotal *prometheus.CounterVec
}

// NewMetrics creates and registers all collectors on registry.
func NewMetrics(registry prometheus.Registerer) *Metrics {
	m := &Metrics{
		IngestTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "linktrack_ingest_total",
				Help: "Click ingestion attempts by outcome",
			},
			[]string{"outcome"},
		),
		DispatchTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "linktrack_dispatch_total",
				Help: "Clicks handed to the background queue by result",
			},
			[]string{"result"},
		),
		DispatchQueueDepth: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "linktrack_dispatch_queue_depth",
				Help: "Clicks waiting in the background queue",
			},
		),
		StoreQueryDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "linktrack_store_query_duration_seconds",
				Help:    "Click store round trip duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		StoreErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "linktrack_store_errors_total",
				Help: "Failed click store round trips",
			},
			[]string{"operation", "kind"},
		),
		StatsMetricFailuresTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "linktrack_stats_metric_failures_total",
				Help: "Stats breakdowns replaced by an empty result",
			},
			[]string{"metric"},
		),
		CacheRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "linktrack_cache_requests_total",
				Help: "Short URL cache lookups by result",
			},
			[]string{"result"},
		),
	}

	registry.MustRegister(
		m.IngestTotal,
		m.DispatchTotal,
		m.DispatchQueueDepth,
		m.StoreQueryDuration,
		m.StoreErrorsTotal,
		m.StatsMetricFailuresTotal,
		m.CacheRequestsTotal,
	)

	return m
}

// NewRegistry returns a registry with the Go runtime and process collectors.
func NewRegistry() *prometheus.Registry {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return registry
}

// Handler exposes registry in the Prometheus text format.
func Handler(registry *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry})
}

func (m *Metrics) RecordIngest(outcome string) {
	m.IngestTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RecordDispatch(result string) {
	m.DispatchTotal.WithLabelValues(result).Inc()
}

// RecordStoreQuery observes one store round trip. kind is empty on success.
func (m *Metrics) RecordStoreQuery(operation string, started time.Time, kind string) {
	m.StoreQueryDuration.WithLabelValues(operation).Observe(time.Since(started).Seconds())
	if kind != "" {
		m.StoreErrorsTotal.WithLabelValues(operation, kind).Inc()
	}
}

func (m *Metrics) RecordStatsFailure(metric string) {
	m.StatsMetricFailuresTotal.WithLabelValues(metric).Inc()
}

func (m *Metrics) RecordCache(result string) {
	m.CacheRequestsTotal.WithLabelValues(result).Inc()
}
