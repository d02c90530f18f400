package service

import (
	"fmt"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the client core and
// the dev server. All methods are safe on a nil receiver.
type MetricsService struct {
	registry           *prometheus.Registry
	handler            http.Handler
	apiCallDuration    *prometheus.HistogramVec
	apiCallTotal       *prometheus.CounterVec
	pagesLoaded        *prometheus.CounterVec
	itemsLoaded        prometheus.Counter
	validationFailures *prometheus.CounterVec
	requestDuration    *prometheus.HistogramVec

	apiCallCount      uint64
	apiFailureCount   uint64
	pageCount         uint64
	validationRejects uint64
}

// MetricsSnapshot is a compact view of the counters, used by the CLI.
type MetricsSnapshot struct {
	APICalls          uint64
	APIFailures       uint64
	PagesLoaded       uint64
	ValidationRejects uint64
	Goroutines        int
	GeneratedAt       time.Time
}

// NewMetricsService registers the collectors on a private registry.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	apiCallDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tracker_api_call_duration_seconds",
		Help:    "Duration of remote API calls in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "status"})

	apiCallTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tracker_api_calls_total",
		Help: "Total remote API calls by outcome",
	}, []string{"operation", "status"})

	pagesLoaded := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tracker_feed_pages_loaded_total",
		Help: "Feed pages applied to the in-memory collection",
	}, []string{"kind"})

	itemsLoaded := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "tracker_feed_items_loaded_total",
		Help: "Feed items received across all applied pages",
	})

	validationFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tracker_stage_validation_failures_total",
		Help: "Stage forms rejected locally, by rule",
	}, []string{"code"})

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests served by the dev server",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(apiCallDuration, apiCallTotal, pagesLoaded, itemsLoaded, validationFailures, requestDuration, goroutines)

	return &MetricsService{
		registry:           registry,
		handler:            promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		apiCallDuration:    apiCallDuration,
		apiCallTotal:       apiCallTotal,
		pagesLoaded:        pagesLoaded,
		itemsLoaded:        itemsLoaded,
		validationFailures: validationFailures,
		requestDuration:    requestDuration,
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

// ObserveAPICall records a remote call. Status 0 means no response was received.
func (m *MetricsService) ObserveAPICall(operation string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	label := fmt.Sprintf("%d", status)
	if status == 0 {
		label = "transport_error"
	}
	m.apiCallDuration.WithLabelValues(operation, label).Observe(duration.Seconds())
	m.apiCallTotal.WithLabelValues(operation, label).Inc()
	atomic.AddUint64(&m.apiCallCount, 1)
	if status == 0 || status >= 400 {
		atomic.AddUint64(&m.apiFailureCount, 1)
	}
}

// ObservePageLoaded records a page applied by a pagination controller.
func (m *MetricsService) ObservePageLoaded(kind string, items int) {
	if m == nil {
		return
	}
	m.pagesLoaded.WithLabelValues(kind).Inc()
	m.itemsLoaded.Add(float64(items))
	atomic.AddUint64(&m.pageCount, 1)
}

// RecordValidationFailure counts a stage form rejected by the given rule code.
func (m *MetricsService) RecordValidationFailure(code string) {
	if m == nil {
		return
	}
	m.validationFailures.WithLabelValues(code).Inc()
	atomic.AddUint64(&m.validationRejects, 1)
}

// ObserveHTTPRequest records a request served by the dev server.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requestDuration.WithLabelValues(method, path, fmt.Sprintf("%d", status)).Observe(duration.Seconds())
}

// Snapshot returns the aggregated counters.
func (m *MetricsService) Snapshot() MetricsSnapshot {
	if m == nil {
		return MetricsSnapshot{}
	}
	return MetricsSnapshot{
		APICalls:          atomic.LoadUint64(&m.apiCallCount),
		APIFailures:       atomic.LoadUint64(&m.apiFailureCount),
		PagesLoaded:       atomic.LoadUint64(&m.pageCount),
		ValidationRejects: atomic.LoadUint64(&m.validationRejects),
		Goroutines:        runtime.NumGoroutine(),
		GeneratedAt:       time.Now().UTC(),
	}
}
