// Package metrics provides Prometheus metrics for the woke matching service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Classification
	classifications *prometheus.CounterVec
	llmRequests     *prometheus.CounterVec
	llmLatency      prometheus.Histogram

	// Followups and matching
	followups          *prometheus.CounterVec
	matches            *prometheus.CounterVec
	matchLatency       prometheus.Histogram
	matchEligible      prometheus.Histogram
	matchShortlistSize prometheus.Histogram

	// Reference data
	catalogServices  prometheus.Gauge
	catalogProviders prometheus.Gauge

	// Classification cache
	cacheRequests *prometheus.CounterVec

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Queue
	queueSize       prometheus.Gauge
	queueCapacity   prometheus.Gauge
	queueEnqueued   prometheus.Counter
	queueRejected   *prometheus.CounterVec
	queueWaitMillis prometheus.Histogram

	// Workers
	workerActiveCount       prometheus.Gauge
	workerProcessingLatency prometheus.Histogram

	// Errors
	errorRateByComponent *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec

	// System
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

// Configure rebuilds the global manager from opts on a fresh registry.
// It is not safe to call while metrics are being recorded; call it once at startup.
func Configure(opts ...Option) {
	registry := prometheus.NewRegistry()
	globalManager = NewManager(append([]Option{WithPrometheusRegistry(registry)}, opts...)...)
	customRegistry = registry
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "woke",
		subsystem:        "matching",
		histogramBuckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}, labels)
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	})
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	})
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     buckets,
		ConstLabels: m.constLabels,
	})
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	m.classifications = m.counterVec("classifications_total",
		"Classifications by candidate source and degradation cause", "source", "cause")
	m.llmRequests = m.counterVec("llm_requests_total",
		"Language-model collaborator calls by outcome", "outcome")
	m.llmLatency = m.histogram("llm_latency_milliseconds",
		"Language-model collaborator call latency in milliseconds", m.histogramBuckets)

	m.followups = m.counterVec("followup_resolutions_total",
		"Followup resolutions by readiness", "ready")
	m.matches = m.counterVec("matches_total",
		"Match requests by outcome", "outcome")
	m.matchLatency = m.histogram("match_latency_milliseconds",
		"Provider match latency in milliseconds",
		[]float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25, 50})
	m.matchEligible = m.histogram("match_eligible_providers",
		"Providers that passed the skill and radius filter per request",
		[]float64{0, 1, 2, 3, 5, 10, 25, 50, 100, 250})
	m.matchShortlistSize = m.histogram("match_shortlist_size",
		"Providers returned per match request",
		[]float64{0, 1, 2, 3})

	m.catalogServices = m.gauge("catalog_services", "Service categories in the loaded catalog")
	m.catalogProviders = m.gauge("catalog_providers", "Providers in the loaded snapshot")

	m.cacheRequests = m.counterVec("classification_cache_requests_total",
		"Classification cache lookups by backend and result", "backend", "result")

	m.httpRequests = m.counterVec("http_requests_total",
		"Total number of HTTP requests by endpoint and method", "endpoint", "method", "status_code")
	m.httpRequestDuration = promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "http_request_duration_milliseconds",
		Help:        "HTTP request duration in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}, []string{"endpoint", "method", "status_code"})

	m.queueSize = m.gauge("queue_size", "Collaborator jobs waiting for a worker")
	m.queueCapacity = m.gauge("queue_capacity", "Maximum collaborator jobs that may wait")
	m.queueEnqueued = m.counter("queue_enqueued_total", "Collaborator jobs accepted by the queue")
	m.queueRejected = m.counterVec("queue_rejected_total",
		"Collaborator jobs rejected by the queue", "reason")
	m.queueWaitMillis = m.histogram("queue_wait_milliseconds",
		"Time a collaborator job waited before a worker picked it up", m.histogramBuckets)

	m.workerActiveCount = m.gauge("worker_active_count", "Collaborator workers running")
	m.workerProcessingLatency = m.histogram("worker_processing_latency_milliseconds",
		"Time a worker spent on one job", m.histogramBuckets)

	m.errorRateByComponent = m.counterVec("errors_by_component_total",
		"Total number of errors by component", "component", "error_type")
	m.errorRateByEndpoint = m.counterVec("errors_by_endpoint_total",
		"Total number of errors by endpoint", "endpoint", "method", "error_type")

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "System memory usage in bytes")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
	m.systemGCPauseTime = m.histogram("system_gc_pause_time_milliseconds", "GC pause time in milliseconds",
		[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000})
}

// RecordClassification counts one classification outcome.
func RecordClassification(source, cause string) {
	if cause == "" {
		cause = "none"
	}
	globalManager.classifications.WithLabelValues(source, cause).Inc()
}

// RecordLLMRequest counts one collaborator call and its latency.
func RecordLLMRequest(outcome string, latencyMs float64) {
	globalManager.llmRequests.WithLabelValues(outcome).Inc()
	globalManager.llmLatency.Observe(latencyMs)
}

// RecordFollowupResolution counts one followup resolution.
func RecordFollowupResolution(ready bool) {
	label := "false"
	if ready {
		label = "true"
	}
	globalManager.followups.WithLabelValues(label).Inc()
}

// RecordMatch counts one match request outcome.
func RecordMatch(outcome string) {
	globalManager.matches.WithLabelValues(outcome).Inc()
}

// RecordMatchResult records latency and sizes of a successful match.
func RecordMatchResult(latencyMs float64, eligible, shortlist int) {
	globalManager.matchLatency.Observe(latencyMs)
	globalManager.matchEligible.Observe(float64(eligible))
	globalManager.matchShortlistSize.Observe(float64(shortlist))
}

// UpdateCatalogSize sets the reference data gauges.
func UpdateCatalogSize(services, providers int) {
	globalManager.catalogServices.Set(float64(services))
	globalManager.catalogProviders.Set(float64(providers))
}

// RecordCacheRequest counts one classification cache lookup.
func RecordCacheRequest(backend, result string) {
	globalManager.cacheRequests.WithLabelValues(backend, result).Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueued.Inc()
}

// RecordQueueRejected counts a job the queue refused.
func RecordQueueRejected(reason string) {
	globalManager.queueRejected.WithLabelValues(reason).Inc()
}

// RecordQueueWait records how long a job waited in the queue.
func RecordQueueWait(latencyMs float64) {
	globalManager.queueWaitMillis.Observe(latencyMs)
}

// UpdateWorkerActiveCount sets the number of active workers.
func UpdateWorkerActiveCount(count int) {
	globalManager.workerActiveCount.Set(float64(count))
}

// RecordWorkerProcessingLatency records worker processing latency.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
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
