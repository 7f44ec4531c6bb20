package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the server's Prometheus collectors in their own registry.
type Metrics struct {
	Registry *prometheus.Registry

	requests      *prometheus.CounterVec
	duration      *prometheus.HistogramVec
	submissions   *prometheus.CounterVec
	storageErrors *prometheus.CounterVec
}

// NewMetrics creates and registers the collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),

		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "hiscore",
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests handled.",
			},
			[]string{"method", "route", "status"},
		),

		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "hiscore",
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "Duration of HTTP requests.",
				Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12), // 0.5ms to ~1s
			},
			[]string{"method", "route"},
		),

		submissions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "hiscore",
				Name:      "submissions_total",
				Help:      "Accepted score submissions by whether they made the list.",
			},
			[]string{"result"},
		),

		storageErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "hiscore",
				Name:      "storage_errors_total",
				Help:      "Storage failures by operation.",
			},
			[]string{"op"},
		),
	}

	m.Registry.MustRegister(
		m.requests,
		m.duration,
		m.submissions,
		m.storageErrors,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)

	return m
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

func (m *Metrics) recordSubmission(kept bool) {
	result := "rejected"
	if kept {
		result = "kept"
	}

	m.submissions.WithLabelValues(result).Inc()
}
