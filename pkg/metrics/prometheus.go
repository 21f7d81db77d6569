// Package metrics provides Prometheus metrics for the covid19india API service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 10 * time.Second
	subsystem              = "api"
)

// Manager manages all Prometheus metrics for the service.
type Manager struct {
	namespace        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	registry         prometheus.Registerer

	// Business metrics
	districtsCreated prometheus.Counter
	districtsUpdated prometheus.Counter
	districtsDeleted prometheus.Counter
	notFound         *prometheus.CounterVec

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Repository Metrics - one histogram per statement kind
	repositoryQueryLatency *prometheus.HistogramVec
	repositoryErrors       *prometheus.CounterVec

	// Connection pool gauges mirrored from sql.DBStats
	dbOpenConnections prometheus.Gauge
	dbInUse           prometheus.Gauge
	dbIdle            prometheus.Gauge
	dbWaitCount       prometheus.Gauge

	// Error Metrics
	errorRateByType     *prometheus.CounterVec
	errorRateByEndpoint *prometheus.CounterVec
	errorLatency        *prometheus.HistogramVec

	// System Performance Metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "covid19india",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// RefreshInterval returns how often pool and system gauges should be refreshed.
func (m *Manager) RefreshInterval() time.Duration {
	return m.refreshInterval
}

// Enabled reports whether the manager records observations.
func (m *Manager) Enabled() bool {
	return m.enabled
}


// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)

	m.districtsCreated = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: subsystem,
		Name:      "districts_created_total",
		Help:      "Total number of district insert statements that succeeded",
	})

	m.districtsUpdated = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: subsystem,
		Name:      "districts_updated_total",
		Help:      "Total number of district rows updated by a successful statement",
	})

	m.districtsDeleted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: subsystem,
		Name:      "districts_deleted_total",
		Help:      "Total number of district rows removed by a successful statement",
	})

	m.notFound = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: subsystem,
			Name:      "lookups_not_found_total",
			Help:      "Single-row lookups that matched no row, by entity",
		},
		[]string{"entity"},
	)

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: subsystem,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by endpoint and method",
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: subsystem,
			Name:      "http_request_duration_milliseconds",
			Help:      "HTTP request duration in milliseconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.repositoryQueryLatency = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: subsystem,
			Name:      "repository_query_latency_milliseconds",
			Help:      "Repository statement latency in milliseconds by operation",
			Buckets:   m.histogramBuckets,
		},
		[]string{"operation"},
	)

	m.repositoryErrors = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: subsystem,
			Name:      "repository_errors_total",
			Help:      "Storage failures by operation",
		},
		[]string{"operation"},
	)

	m.dbOpenConnections = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: subsystem,
		Name:      "db_open_connections",
		Help:      "Established database connections, in use and idle",
	})

	m.dbInUse = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: subsystem,
		Name:      "db_in_use_connections",
		Help:      "Database connections currently in use",
	})

	m.dbIdle = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: subsystem,
		Name:      "db_idle_connections",
		Help:      "Idle database connections",
	})

	m.dbWaitCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: subsystem,
		Name:      "db_wait_count",
		Help:      "Total number of connections waited for",
	})

	m.errorRateByType = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: subsystem,
			Name:      "errors_by_type_total",
			Help:      "Total number of errors by type and severity",
		},
		[]string{"error_type", "severity"},
	)

	m.errorRateByEndpoint = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: subsystem,
			Name:      "errors_by_endpoint_total",
			Help:      "Total number of errors by HTTP endpoint",
		},
		[]string{"endpoint", "method", "error_type"},
	)

	m.errorLatency = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: subsystem,
			Name:      "error_latency_milliseconds",
			Help:      "Latency of requests that ended in an error",
			Buckets:   m.histogramBuckets,
		},
		[]string{"component", "error_type"},
	)

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: subsystem,
		Name:      "system_memory_usage_bytes",
		Help:      "System memory usage in bytes",
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: subsystem,
		Name:      "system_goroutine_count",
		Help:      "Number of goroutines",
	})

	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: subsystem,
		Name:      "system_gc_pause_time_milliseconds",
		Help:      "GC pause time in milliseconds",
		Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
	})
}

// RecordDistrictCreated increments the created districts counter.
func RecordDistrictCreated() {
	if globalManager.enabled {
		globalManager.districtsCreated.Inc()
	}
}

// RecordDistrictUpdated increments the update statements counter.
func RecordDistrictUpdated() {
	if globalManager.enabled {
		globalManager.districtsUpdated.Inc()
	}
}

// RecordDistrictDeleted increments the delete statements counter.
func RecordDistrictDeleted() {
	if globalManager.enabled {
		globalManager.districtsDeleted.Inc()
	}
}

// RecordNotFound counts a lookup of entity that matched no row.
func RecordNotFound(entity string) {
	if globalManager.enabled {
		globalManager.notFound.WithLabelValues(entity).Inc()
	}
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	if globalManager.enabled {
		globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	}
}

// RecordHTTPRequestDuration records HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	if globalManager.enabled {
		globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
	}
}

// RecordRepositoryQueryLatency records statement latency for operation.
func RecordRepositoryQueryLatency(operation string, latencyMs float64) {
	if globalManager.enabled {
		globalManager.repositoryQueryLatency.WithLabelValues(operation).Observe(latencyMs)
	}
}

// RecordRepositoryError counts a storage failure for operation.
func RecordRepositoryError(operation string) {
	if globalManager.enabled {
		globalManager.repositoryErrors.WithLabelValues(operation).Inc()
	}
}

// UpdateDBPool mirrors the connection pool counters.
func UpdateDBPool(open, inUse, idle int, waitCount int64) {
	globalManager.dbOpenConnections.Set(float64(open))
	globalManager.dbInUse.Set(float64(inUse))
	globalManager.dbIdle.Set(float64(idle))
	globalManager.dbWaitCount.Set(float64(waitCount))
}

// RecordErrorByType records errors by type and severity.
func RecordErrorByType(errorType, severity string) {
	if globalManager.enabled {
		globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
	}
}

// RecordErrorByEndpoint records errors by HTTP endpoint.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	if globalManager.enabled {
		globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
	}
}

// RecordErrorLatency records the latency of a failed request.
func RecordErrorLatency(component, errorType string, latencyMs float64) {
	if globalManager.enabled {
		globalManager.errorLatency.WithLabelValues(component, errorType).Observe(latencyMs)
	}
}

// UpdateSystemMemoryUsage updates the system memory usage gauge.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount updates the goroutine count gauge.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom registry used by the global manager.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// RefreshInterval returns the refresh interval of the global manager.
func RefreshInterval() time.Duration {
	return globalManager.refreshInterval
}
