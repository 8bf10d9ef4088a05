// Package metrics exposes Prometheus collectors for the dashboard.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles Prometheus collectors on a dedicated registry.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	Registry        *prometheus.Registry
	LoadsTotal      *prometheus.CounterVec
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	ExportsTotal    *prometheus.CounterVec
	BrokenLinks     prometheus.Gauge
}

// NewMetrics constructs and registers all metrics on a dedicated registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	loads := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "linkboard_loads_total",
			Help: "Result document loads by outcome.",
		},
		[]string{"outcome"},
	)
	requests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "linkboard_http_requests_total",
			Help: "HTTP requests served by route and status code.",
		},
		[]string{"route", "code"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "linkboard_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)
	exports := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "linkboard_exports_total",
			Help: "Report exports by format.",
		},
		[]string{"format"},
	)
	broken := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "linkboard_broken_links",
			Help: "Broken links in the most recently loaded run.",
		},
	)

	registry.MustRegister(loads, requests, requestDuration, exports, broken)

	return &Metrics{
		Registry:        registry,
		LoadsTotal:      loads,
		RequestsTotal:   requests,
		RequestDuration: requestDuration,
		ExportsTotal:    exports,
		BrokenLinks:     broken,
	}
}

// IncLoad increments the load counter for an outcome.
func (m *Metrics) IncLoad(outcome string) {
	if m == nil {
		return
	}
	m.LoadsTotal.WithLabelValues(outcome).Inc()
}

// IncRequest increments the request counter.
func (m *Metrics) IncRequest(route string, code int) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(route, strconv.Itoa(code)).Inc()
}

// ObserveDuration records an HTTP request duration.
func (m *Metrics) ObserveDuration(route string, d time.Duration) {
	if m == nil {
		return
	}
	m.RequestDuration.WithLabelValues(route).Observe(d.Seconds())
}

// IncExport increments the export counter for a format.
func (m *Metrics) IncExport(format string) {
	if m == nil {
		return
	}
	m.ExportsTotal.WithLabelValues(format).Inc()
}

// SetBrokenLinks records the broken-link count of the current run.
func (m *Metrics) SetBrokenLinks(n int) {
	if m == nil {
		return
	}
	m.BrokenLinks.Set(float64(n))
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}
