package service

import (
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for HTTP traffic and registrar lifecycles.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	lifecycle       *prometheus.CounterVec
	overdueFlipped  prometheus.Counter
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

	lifecycle := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "registrar_lifecycle_events_total",
		Help: "Enrollment and borrow lifecycle transitions",
	}, []string{"entity", "action"})

	overdueFlipped := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "registrar_overdue_flipped_total",
		Help: "Borrow records moved to overdue by the sweep",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, lifecycle, overdueFlipped, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		lifecycle:       lifecycle,
		overdueFlipped:  overdueFlipped,
	}
}

// Registry exposes the registry so background jobs can register their collectors.
func (m *MetricsService) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
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
	labelStatus := strconv.Itoa(status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// RecordLifecycle counts one enrollment or borrow transition.
func (m *MetricsService) RecordLifecycle(entity, action string) {
	if m == nil {
		return
	}
	m.lifecycle.WithLabelValues(entity, action).Inc()
}

// RecordOverdueFlipped adds the rows moved by one sweep.
func (m *MetricsService) RecordOverdueFlipped(n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.overdueFlipped.Add(float64(n))
}
