package providers

import (
	"dailytrack/internal/structures"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type MetricsProviderInterface interface {
	IncRequestsTotal(endpoint string, status int)
	ObserveRequestDuration(endpoint string, duration time.Duration)
	IncCacheHits(view string)
	IncCacheMisses(view string)
	ObservePersistenceDuration(duration time.Duration)
	IncPersistenceErrors()
	SetDaysTotal(count int)
	AddReconcileChanges(metric string, count int)
	IncRollovers()
	SetFastingActive(active bool)
}

type MetricsProvider struct {
	requestsTotal       *prometheus.CounterVec
	requestDuration     *prometheus.HistogramVec
	cacheHits           *prometheus.CounterVec
	cacheMisses         *prometheus.CounterVec
	persistenceDuration prometheus.Histogram
	persistenceErrors   prometheus.Counter
	daysTotal           prometheus.Gauge
	reconcileChanges    *prometheus.CounterVec
	rollovers           prometheus.Counter
	fastingActive       prometheus.Gauge
}

func (m *MetricsProvider) IncRequestsTotal(endpoint string, status int) {
	m.requestsTotal.WithLabelValues(endpoint, httpStatusBucket(status)).Inc()
}

func (m *MetricsProvider) ObserveRequestDuration(endpoint string, duration time.Duration) {
	m.requestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func (m *MetricsProvider) IncCacheHits(view string) {
	m.cacheHits.WithLabelValues(view).Inc()
}

func (m *MetricsProvider) IncCacheMisses(view string) {
	m.cacheMisses.WithLabelValues(view).Inc()
}

func (m *MetricsProvider) ObservePersistenceDuration(duration time.Duration) {
	m.persistenceDuration.Observe(duration.Seconds())
}

func (m *MetricsProvider) IncPersistenceErrors() {
	m.persistenceErrors.Inc()
}

func (m *MetricsProvider) SetDaysTotal(count int) {
	m.daysTotal.Set(float64(count))
}

func (m *MetricsProvider) AddReconcileChanges(metric string, count int) {
	m.reconcileChanges.WithLabelValues(metric).Add(float64(count))
}

func (m *MetricsProvider) IncRollovers() {
	m.rollovers.Inc()
}

func (m *MetricsProvider) SetFastingActive(active bool) {
	if active {
		m.fastingActive.Set(1)
		return
	}
	m.fastingActive.Set(0)
}

func httpStatusBucket(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}

func NewMetricsProvider(conf *structures.Config) MetricsProviderInterface {
	if !conf.Metrics.Enabled {
		return &noopMetrics{}
	}

	return &MetricsProvider{
		requestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "dailytrack_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"endpoint", "status"}),

		requestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "dailytrack_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),

		cacheHits: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "dailytrack_cache_hits_total",
			Help: "Rendered view cache hits",
		}, []string{"view"}),

		cacheMisses: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "dailytrack_cache_misses_total",
			Help: "Rendered view cache misses",
		}, []string{"view"}),

		persistenceDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "dailytrack_persistence_duration_seconds",
			Help:    "Duration of persistence writes in seconds",
			Buckets: prometheus.DefBuckets,
		}),

		persistenceErrors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "dailytrack_persistence_errors_total",
			Help: "Total number of failed persistence writes",
		}),

		daysTotal: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "dailytrack_days_total",
			Help: "Number of calendar days present in the daily log",
		}),

		reconcileChanges: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "dailytrack_reconcile_changes_total",
			Help: "Days changed by health sample reconciliation",
		}, []string{"metric"}),

		rollovers: promauto.NewCounter(prometheus.CounterOpts{
			Name: "dailytrack_rollovers_total",
			Help: "Number of medication taken-state resets",
		}),

		fastingActive: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "dailytrack_fasting_active",
			Help: "1 while a fast is in progress",
		}),
	}
}

// noopMetrics is a no-op implementation for when metrics are disabled.
type noopMetrics struct{}

func (n *noopMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (n *noopMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (n *noopMetrics) IncCacheHits(_ string)                            {}
func (n *noopMetrics) IncCacheMisses(_ string)                          {}
func (n *noopMetrics) ObservePersistenceDuration(_ time.Duration)       {}
func (n *noopMetrics) IncPersistenceErrors()                            {}
func (n *noopMetrics) SetDaysTotal(_ int)                               {}
func (n *noopMetrics) AddReconcileChanges(_ string, _ int)              {}
func (n *noopMetrics) IncRollovers()                                    {}
func (n *noopMetrics) SetFastingActive(_ bool)                          {}
