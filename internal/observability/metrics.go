package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes Prometheus collectors for the HTTP layer and the job lifecycle.
type Metrics struct {
	requestCount   *prometheus.CounterVec
	errorCount     *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
	transitions    *prometheus.CounterVec
}

// NewMetrics registers collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requestCount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "jobboard_http_requests_total",
			Help: "HTTP requests by route, method and status.",
		}, []string{"path", "method", "status"}),
		errorCount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "jobboard_http_errors_total",
			Help: "HTTP error responses by route, method and error code.",
		}, []string{"path", "method", "code"}),
		requestLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "jobboard_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"path", "method"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "jobboard_job_transitions_total",
			Help: "Job lifecycle transitions by event.",
		}, []string{"event"}),
	}
	reg.MustRegister(m.requestCount, m.errorCount, m.requestLatency, m.transitions)
	return m
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requestCount.WithLabelValues(path, method, strconv.Itoa(status)).Inc()
	m.requestLatency.WithLabelValues(path, method).Observe(duration.Seconds())
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	m.errorCount.WithLabelValues(path, method, code).Inc()
}

// RecordTransition counts a lifecycle event applied by the job service.
func (m *Metrics) RecordTransition(event string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(event).Inc()
}
