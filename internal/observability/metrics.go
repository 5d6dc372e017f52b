package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "weather_dashboard"

// Metrics holds the Prometheus counters, histograms, and gauges for the dashboard data layer.
type Metrics struct {
	// Upstream API metrics.
	UpstreamRequests *prometheus.CounterVec   // labels: endpoint={search,current,forecast,geolocation}, outcome={success,error,empty}
	UpstreamDuration *prometheus.HistogramVec // labels: endpoint
	BreakerState     *prometheus.GaugeVec     // labels: endpoint; 0 closed, 1 half-open, 2 open

	// Query cache metrics.
	CacheLookups *prometheus.CounterVec // labels: kind={current,forecast,search}, result={hit,stale,miss}
	CacheJoins   *prometheus.CounterVec // labels: kind
	CacheRetries *prometheus.CounterVec // labels: kind

	Favorites prometheus.Gauge

	// Refresher metrics.
	RefreshRounds         *prometheus.CounterVec // labels: outcome={success,partial,failed}
	RefreshErrors         prometheus.Counter
	RefresherRunning      prometheus.Gauge
	ObservationsPublished prometheus.Counter
}

func newMetrics() *Metrics {
	return &Metrics{
		UpstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_requests_total",
			Help:      "Upstream API requests by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
		UpstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_duration_seconds",
			Help:      "Upstream API request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"endpoint"}),
		BreakerState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "circuit_breaker_state",
			Help:      "Circuit breaker state per upstream endpoint (0 closed, 1 half-open, 2 open).",
		}, []string{"endpoint"}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Query cache lookups by kind and result.",
		}, []string{"kind", "result"}),
		CacheJoins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_inflight_joins_total",
			Help:      "Callers that attached to an in-flight fetch instead of starting one.",
		}, []string{"kind"}),
		CacheRetries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_retries_total",
			Help:      "Fetch retries after transport failures.",
		}, []string{"kind"}),
		Favorites: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "favorites",
			Help:      "Number of tracked favorite places.",
		}),
		RefreshRounds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refresh_rounds_total",
			Help:      "Favorites refresh rounds by outcome.",
		}, []string{"outcome"}),
		RefreshErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refresh_errors_total",
			Help:      "Per-favorite refresh failures.",
		}),
		RefresherRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "refresher_running",
			Help:      "1 when the favorites refresher is scheduled, 0 when stopped.",
		}),
		ObservationsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "observations_published_total",
			Help:      "Observations written to the sink topic.",
		}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.UpstreamRequests,
		m.UpstreamDuration,
		m.BreakerState,
		m.CacheLookups,
		m.CacheJoins,
		m.CacheRetries,
		m.Favorites,
		m.RefreshRounds,
		m.RefreshErrors,
		m.RefresherRunning,
		m.ObservationsPublished,
	}
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(m.collectors()...)
	return m
}

// NewMetricsForTesting creates Metrics registered on a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	m := newMetrics()
	prometheus.NewRegistry().MustRegister(m.collectors()...)
	return m
}
