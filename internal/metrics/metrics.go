// Package metrics provides Prometheus metrics for the pagesift service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all Prometheus collectors for the service.
type Metrics struct {
	registry *prometheus.Registry

	// HTTP request metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Pipeline metrics
	ProcessDuration *prometheus.HistogramVec
	PagesProcessed  prometheus.Counter
	BlocksExtracted prometheus.Counter
	ProcessFailures *prometheus.CounterVec
}

// New creates and registers all collectors on a private registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{registry: reg}

	m.RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pagesift_http_requests_total",
			Help: "HTTP requests by route and status code",
		},
		[]string{"route", "code"},
	)
	m.RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pagesift_http_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)
	m.ProcessDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pagesift_process_duration_seconds",
			Help:    "Document processing time by operation (image, pdf, structure)",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"operation"},
	)
	m.PagesProcessed = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "pagesift_pages_processed_total",
		Help: "Total rasterized pages run through recognition",
	})
	m.BlocksExtracted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "pagesift_blocks_extracted_total",
		Help: "Total text blocks produced by the normalizer",
	})
	m.ProcessFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pagesift_process_failures_total",
			Help: "Processing failures by kind (not_found, raster, recognize, other)",
		},
		[]string{"kind"},
	)

	reg.MustRegister(
		m.RequestsTotal,
		m.RequestDuration,
		m.ProcessDuration,
		m.PagesProcessed,
		m.BlocksExtracted,
		m.ProcessFailures,
	)
	return m
}

// Registry exposes the underlying registry for the /metrics handler.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveProcess records one completed processing call.
func (m *Metrics) ObserveProcess(operation string, pages, blocks int, elapsed time.Duration) {
	m.ProcessDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
	m.PagesProcessed.Add(float64(pages))
	m.BlocksExtracted.Add(float64(blocks))
}
