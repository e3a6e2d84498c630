// Package metrics provides Prometheus metrics for the tally availability service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 10 * time.Second
)

// Manager manages all Prometheus metrics for the tally service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	customLabels     map[string]string
	registry         prometheus.Registerer

	// Core Business Metrics - batched availability resolution
	batchesResolved     prometheus.Counter
	batchKeys           prometheus.Histogram
	batchZones          prometheus.Histogram
	resolveLatency      prometheus.Histogram
	resultsClamped      prometheus.Counter
	zeroQuantityResults prometheus.Counter

	// Store Metrics - backing stock store queries
	storeQueries      prometheus.Counter
	storeQueryErrors  prometheus.Counter
	storeRecords      prometheus.Counter
	storeQueryLatency prometheus.Histogram

	// Batcher Metrics - key accumulation and flushing
	batcherFlushes       *prometheus.CounterVec
	batcherBatchSize     prometheus.Histogram
	batcherCoalescedKeys prometheus.Counter
	batcherPending       prometheus.Gauge

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Enhanced Error Metrics - detailed error tracking
	errorRateByComponent *prometheus.CounterVec
	errorRateByType      *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec

	// System Performance Metrics
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
		namespace:        "tally",
		subsystem:        "availability",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	// Ensure metrics are registered on the configured registry (custom by default)
	auto := promauto.With(m.registry)

	m.batchesResolved = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "batches_resolved_total",
		Help:      "Total number of availability batches resolved",
	})

	m.batchKeys = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "batch_keys",
		Help:      "Histogram of lookup keys per resolved batch",
		Buckets:   []float64{1, 2, 5, 10, 25, 50, 100, 250, 500, 1000, 2500},
	})

	m.batchZones = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "batch_zones",
		Help:      "Histogram of distinct shipping zones per resolved batch",
		Buckets:   []float64{1, 2, 3, 5, 8, 13, 21},
	})

	m.resolveLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "resolve_latency_milliseconds",
		Help:      "Histogram of end-to-end batch resolve latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.resultsClamped = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "results_clamped_total",
		Help:      "Total number of results capped at the per-line maximum",
	})

	m.zeroQuantityResults = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "zero_quantity_results_total",
		Help:      "Total number of lookups that resolved to zero quantity",
	})

	m.storeQueries = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_queries_total",
		Help:      "Total number of stock store queries issued (one per zone group)",
	})

	m.storeQueryErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_query_errors_total",
		Help:      "Total number of failed stock store queries",
	})

	m.storeRecords = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_records_total",
		Help:      "Total number of stock records returned by the store",
	})

	m.storeQueryLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_query_latency_milliseconds",
		Help:      "Histogram of stock store query latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.batcherFlushes = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "batcher_flushes_total",
		Help:      "Total number of batcher flushes by trigger (size, window, drain)",
	}, []string{"trigger"})

	m.batcherBatchSize = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "batcher_batch_size",
		Help:      "Histogram of distinct keys per flushed batch",
		Buckets:   []float64{1, 2, 5, 10, 25, 50, 100, 250, 500},
	})

	m.batcherCoalescedKeys = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "batcher_coalesced_keys_total",
		Help:      "Total number of loads that joined an already pending key",
	})

	m.batcherPending = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "batcher_pending_keys",
		Help:      "Number of keys waiting in the current accumulation window",
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests by endpoint, method and status code",
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_milliseconds",
		Help:      "Histogram of HTTP request duration in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})

	m.errorRateByComponent = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "errors_by_component_total",
		Help:      "Total number of errors by component and error type",
	}, []string{"component", "error_type"})

	m.errorRateByType = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "errors_by_type_total",
		Help:      "Total number of errors by type and severity",
	}, []string{"error_type", "severity"})

	m.errorRateByEndpoint = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "errors_by_endpoint_total",
		Help:      "Total number of errors by endpoint, method and error type",
	}, []string{"endpoint", "method", "error_type"})

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_memory_usage_bytes",
		Help:      "System memory usage in bytes",
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_goroutine_count",
		Help:      "Number of goroutines",
	})

	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_gc_pause_time_milliseconds",
		Help:      "GC pause time in milliseconds",
		Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
	})
}

// ObserveBatchKeys records a resolved batch and its lookup key count.
func ObserveBatchKeys(n int) {
	globalManager.batchesResolved.Inc()
	globalManager.batchKeys.Observe(float64(n))
}

// ObserveBatchZones records the number of distinct zones in a batch.
func ObserveBatchZones(n int) {
	globalManager.batchZones.Observe(float64(n))
}

// ObserveResolveLatency records batch resolve latency in milliseconds.
func ObserveResolveLatency(latencyMs float64) {
	globalManager.resolveLatency.Observe(latencyMs)
}

// RecordResultClamped increments the clamped results counter.
func RecordResultClamped() {
	globalManager.resultsClamped.Inc()
}

// RecordZeroQuantityResult increments the zero-quantity results counter.
func RecordZeroQuantityResult() {
	globalManager.zeroQuantityResults.Inc()
}

// RecordStoreQuery increments the store query counter.
func RecordStoreQuery() {
	globalManager.storeQueries.Inc()
}

// RecordStoreQueryError increments the failed store query counter.
func RecordStoreQueryError() {
	globalManager.storeQueryErrors.Inc()
}

// RecordStoreRecords adds to the fetched records counter.
func RecordStoreRecords(n int) {
	globalManager.storeRecords.Add(float64(n))
}

// ObserveStoreQueryLatency records store query latency in milliseconds.
func ObserveStoreQueryLatency(latencyMs float64) {
	globalManager.storeQueryLatency.Observe(latencyMs)
}

// RecordBatcherFlush increments the flush counter for a trigger.
func RecordBatcherFlush(trigger string) {
	globalManager.batcherFlushes.WithLabelValues(trigger).Inc()
}

// ObserveBatcherBatchSize records the distinct key count of a flushed batch.
func ObserveBatcherBatchSize(n int) {
	globalManager.batcherBatchSize.Observe(float64(n))
}

// RecordBatcherCoalescedKey increments the coalesced loads counter.
func RecordBatcherCoalescedKey() {
	globalManager.batcherCoalescedKeys.Inc()
}

// UpdateBatcherPending sets the pending key gauge.
func UpdateBatcherPending(n int) {
	globalManager.batcherPending.Set(float64(n))
}

// RecordHTTPRequest increments the HTTP requests counter.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByComponent increments the error counter for a component.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByType increments the error counter for a type and severity.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint increments the error counter for an endpoint.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// UpdateSystemMemoryUsage sets the memory usage gauge.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the goroutine count gauge.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
