// Package metrics provides Prometheus metrics for the dungeond service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the dungeond service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	registry         prometheus.Registerer

	// Submission pipeline metrics
	submissionsExtracted prometheus.Counter
	submissionsRejected  prometheus.Counter
	rotationRuns         *prometheus.CounterVec
	commentFetchLatency  prometheus.Histogram
	commentFetchErrors   prometheus.Counter

	// Gameplay metrics
	scoreSubmissions   prometheus.Counter
	ghostUpserts       prometheus.Counter
	leaderboardEntries prometheus.Gauge

	// Storage metrics
	kvOpLatency *prometheus.HistogramVec
	kvErrors    *prometheus.CounterVec

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorsByEndpoint    *prometheus.CounterVec
	errorsByType        *prometheus.CounterVec

	// System metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "dungeond",
		subsystem:        "game",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) initializeMetrics() {
	// Ensure metrics are registered on the configured registry (custom by default)
	auto := promauto.With(m.registry)

	m.submissionsExtracted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "submissions_extracted_total",
		Help:      "Total number of comments successfully parsed into dungeon submissions",
	})

	m.submissionsRejected = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "submissions_rejected_total",
		Help:      "Total number of comments that did not contain a valid submission",
	})

	m.rotationRuns = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "rotation_runs_total",
			Help:      "Total number of daily rotation passes by outcome",
		},
		[]string{"outcome"},
	)

	m.commentFetchLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "comment_fetch_latency_milliseconds",
		Help:      "Histogram of comment source fetch latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.commentFetchErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "comment_fetch_errors_total",
		Help:      "Total number of failed comment source fetches",
	})

	m.scoreSubmissions = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "score_submissions_total",
		Help:      "Total number of score submissions accepted",
	})

	m.ghostUpserts = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ghost_upserts_total",
		Help:      "Total number of ghost marker upserts",
	})

	m.leaderboardEntries = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "leaderboard_entries",
		Help:      "Number of leaderboard entries recorded for the current day",
	})

	m.kvOpLatency = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "kv_op_latency_milliseconds",
			Help:      "Key-value backend operation latency in milliseconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"op"},
	)

	m.kvErrors = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "kv_errors_total",
			Help:      "Total number of key-value backend errors by operation",
		},
		[]string{"op"},
	)

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by endpoint and method",
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_request_duration_milliseconds",
			Help:      "HTTP request duration in milliseconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.errorsByEndpoint = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "errors_by_endpoint_total",
			Help:      "Total number of errors by endpoint, method and type",
		},
		[]string{"endpoint", "method", "error_type"},
	)

	m.errorsByType = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "errors_by_type_total",
			Help:      "Total number of errors by type and severity",
		},
		[]string{"error_type", "severity"},
	)

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "system",
		Name:      "memory_usage_bytes",
		Help:      "Current heap memory usage in bytes",
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "system",
		Name:      "goroutine_count",
		Help:      "Current number of goroutines",
	})

	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "system",
		Name:      "gc_pause_milliseconds",
		Help:      "Histogram of average GC pause time in milliseconds",
		Buckets:   m.histogramBuckets,
	})
}

// Package-level helpers operating on the global manager.

// RecordSubmissionExtracted increments the extracted-submissions counter.
func RecordSubmissionExtracted() {
	if globalManager.enabled {
		globalManager.submissionsExtracted.Inc()
	}
}

// RecordSubmissionRejected increments the rejected-comments counter.
func RecordSubmissionRejected() {
	if globalManager.enabled {
		globalManager.submissionsRejected.Inc()
	}
}

// RecordRotationRun records one rotation pass with its outcome label.
func RecordRotationRun(outcome string) {
	if globalManager.enabled {
		globalManager.rotationRuns.WithLabelValues(outcome).Inc()
	}
}

// RecordCommentFetchLatency observes one comment source fetch duration.
func RecordCommentFetchLatency(latencyMs float64) {
	if globalManager.enabled {
		globalManager.commentFetchLatency.Observe(latencyMs)
	}
}

// RecordCommentFetchError increments the comment fetch error counter.
func RecordCommentFetchError() {
	if globalManager.enabled {
		globalManager.commentFetchErrors.Inc()
	}
}

// RecordScoreSubmission increments the accepted score submissions counter.
func RecordScoreSubmission() {
	if globalManager.enabled {
		globalManager.scoreSubmissions.Inc()
	}
}

// RecordGhostUpsert increments the ghost upsert counter.
func RecordGhostUpsert() {
	if globalManager.enabled {
		globalManager.ghostUpserts.Inc()
	}
}

// UpdateLeaderboardEntries sets the current-day leaderboard entry gauge.
func UpdateLeaderboardEntries(count int) {
	if globalManager.enabled {
		globalManager.leaderboardEntries.Set(float64(count))
	}
}

// RecordKVOpLatency observes one key-value backend operation duration.
func RecordKVOpLatency(op string, latencyMs float64) {
	if globalManager.enabled {
		globalManager.kvOpLatency.WithLabelValues(op).Observe(latencyMs)
	}
}

// RecordKVError increments the key-value backend error counter for op.
func RecordKVError(op string) {
	if globalManager.enabled {
		globalManager.kvErrors.WithLabelValues(op).Inc()
	}
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	if globalManager.enabled {
		globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	}
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	if globalManager.enabled {
		globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
	}
}

// RecordErrorByEndpoint records an error for a specific endpoint.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	if globalManager.enabled {
		globalManager.errorsByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
	}
}

// RecordErrorByType records an error by type and severity.
func RecordErrorByType(errorType, severity string) {
	if globalManager.enabled {
		globalManager.errorsByType.WithLabelValues(errorType, severity).Inc()
	}
}

// UpdateSystemMemoryUsage sets the heap usage gauge.
func UpdateSystemMemoryUsage(bytes uint64) {
	if globalManager.enabled {
		globalManager.systemMemoryUsage.Set(float64(bytes))
	}
}

// UpdateSystemGoroutineCount sets the goroutine count gauge.
func UpdateSystemGoroutineCount(count int) {
	if globalManager.enabled {
		globalManager.systemGoroutineCount.Set(float64(count))
	}
}

// RecordSystemGCPauseTime observes an average GC pause duration.
func RecordSystemGCPauseTime(pauseMs float64) {
	if globalManager.enabled {
		globalManager.systemGCPauseTime.Observe(pauseMs)
	}
}

// GetRegistry returns the custom registry used by the global manager.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
