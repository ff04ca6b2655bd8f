package service

import (
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Reconciliation pass outcomes recorded on the passes counter.
const (
	PassResultPublished = "published"
	PassResultDegraded  = "degraded"
	PassResultFailed    = "failed"
)

// MetricsService encapsulates Prometheus instrumentation for the gateway
// and the reconciliation pipeline.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	pollCycles      *prometheus.CounterVec
	pollFailures    *prometheus.CounterVec
	hashChanges     *prometheus.CounterVec
	passTotal       *prometheus.CounterVec
	passDuration    prometheus.Observer
	stabilized      prometheus.Counter
	publishedSize   prometheus.Gauge
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	cacheLatency    prometheus.Observer
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	pollCycles := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "recon_poll_cycles_total",
		Help: "Total poll cycles per source",
	}, []string{"source"})

	pollFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "recon_poll_failures_total",
		Help: "Total failed poll cycles per source",
	}, []string{"source"})

	hashChanges := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "recon_hash_changes_total",
		Help: "Total change-hash transitions per source",
	}, []string{"source"})

	passTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "recon_passes_total",
		Help: "Total reconciliation passes by result",
	}, []string{"result"})

	passDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "recon_pass_duration_seconds",
		Help:    "Duration of reconciliation passes",
		Buckets: prometheus.DefBuckets,
	})

	stabilized := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "recon_stabilized_records_total",
		Help: "Records whose fields were kept from the prior batch",
	})

	publishedSize := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "recon_published_records",
		Help: "Size of the last published batch",
	})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Total cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "Total cache misses",
	})

	cacheLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_latency_seconds",
		Help:    "Latency for cache operations",
		Buckets: prometheus.DefBuckets,
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, pollCycles, pollFailures, hashChanges,
		passTotal, passDuration, stabilized, publishedSize, cacheHits, cacheMisses, cacheLatency, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		pollCycles:      pollCycles,
		pollFailures:    pollFailures,
		hashChanges:     hashChanges,
		passTotal:       passTotal,
		passDuration:    passDuration,
		stabilized:      stabilized,
		publishedSize:   publishedSize,
		cacheHits:       cacheHits,
		cacheMisses:     cacheMisses,
		cacheLatency:    cacheLatency,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labels := prometheus.Labels{"method": method, "path": path, "status": statusLabel(status)}
	m.requestDuration.With(labels).Observe(duration.Seconds())
	m.requestTotal.With(labels).Inc()
}

// RecordPollCycle counts a completed poll cycle for a source.
func (m *MetricsService) RecordPollCycle(sourceName string, failed bool) {
	if m == nil {
		return
	}
	m.pollCycles.WithLabelValues(sourceName).Inc()
	if failed {
		m.pollFailures.WithLabelValues(sourceName).Inc()
	}
}

// RecordHashChange counts a change-hash transition for a source.
func (m *MetricsService) RecordHashChange(sourceName string) {
	if m == nil {
		return
	}
	m.hashChanges.WithLabelValues(sourceName).Inc()
}

// RecordPass records a reconciliation pass outcome and its duration.
func (m *MetricsService) RecordPass(result string, duration time.Duration) {
	if m == nil {
		return
	}
	m.passTotal.WithLabelValues(result).Inc()
	m.passDuration.Observe(duration.Seconds())
}

// RecordStabilized counts records whose fields were kept from the prior batch.
func (m *MetricsService) RecordStabilized(count int) {
	if m == nil || count <= 0 {
		return
	}
	m.stabilized.Add(float64(count))
}

// SetPublishedSize records the size of the last published batch.
func (m *MetricsService) SetPublishedSize(size int) {
	if m == nil {
		return
	}
	m.publishedSize.Set(float64(size))
}

// RecordCacheOperation aggregates cache hit/miss counters.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	if hit {
		m.cacheHits.Inc()
	} else {
		m.cacheMisses.Inc()
	}
	m.cacheLatency.Observe(duration.Seconds())
}

func statusLabel(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
