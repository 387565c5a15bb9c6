// Package metrics defines the Prometheus metric collectors used across the
// knowledge base and exposes an HTTP handler for scraping.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus collectors for the application.
type Metrics struct {
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge
	SearchQueriesTotal   *prometheus.CounterVec
	SearchLatency        prometheus.Histogram
	SearchResultsCount   prometheus.Histogram
	CacheHitsTotal       prometheus.Counter
	CacheMissesTotal     prometheus.Counter
	DocsIndexedTotal     prometheus.Counter
	IndexWritesTotal     *prometheus.CounterVec
	SnapshotDocs         prometheus.Gauge
	RecordsLearnedTotal  *prometheus.CounterVec
	RecordsImportedTotal *prometheus.CounterVec

	registry *prometheus.Registry
}

// New creates all collectors on a fresh registry, so independent instances
// (one per process, many per test binary) never collide.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "manki_http_requests_total",
				Help: "Total number of HTTP requests by method, path, and status.",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "manki_http_request_duration_seconds",
				Help:    "HTTP request latency in seconds.",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"method", "path"},
		),
		HTTPRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "manki_http_requests_in_flight",
				Help: "Number of HTTP requests currently being served.",
			},
		),
		SearchQueriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "manki_search_queries_total",
				Help: "Total number of search queries by language filter and outcome.",
			},
			[]string{"lang", "status"},
		),
		SearchLatency: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "manki_search_latency_seconds",
				Help:    "Search execution latency in seconds.",
				Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
			},
		),
		SearchResultsCount: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "manki_search_results_count",
				Help:    "Number of results returned per search.",
				Buckets: []float64{0, 1, 2, 5, 10, 20, 50},
			},
		),
		CacheHitsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "manki_cache_hits_total",
				Help: "Total query cache hits.",
			},
		),
		CacheMissesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "manki_cache_misses_total",
				Help: "Total query cache misses.",
			},
		),
		DocsIndexedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "manki_docs_indexed_total",
				Help: "Total documents written to the index.",
			},
		),
		IndexWritesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "manki_index_writes_total",
				Help: "Index write operations by kind (rebuild, upsert, delete) and status.",
			},
			[]string{"op", "status"},
		),
		SnapshotDocs: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "manki_snapshot_docs",
				Help: "Documents in the current index snapshot.",
			},
		),
		RecordsLearnedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "manki_records_learned_total",
				Help: "Learned commands by outcome (learned, skipped, failed).",
			},
			[]string{"status"},
		),
		RecordsImportedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "manki_records_imported_total",
				Help: "Imported markdown records by outcome (imported, skipped, failed).",
			},
			[]string{"status"},
		),
	}

	m.registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPRequestsInFlight,
		m.SearchQueriesTotal,
		m.SearchLatency,
		m.SearchResultsCount,
		m.CacheHitsTotal,
		m.CacheMissesTotal,
		m.DocsIndexedTotal,
		m.IndexWritesTotal,
		m.SnapshotDocs,
		m.RecordsLearnedTotal,
		m.RecordsImportedTotal,
	)

	return m
}

// Handler returns the scrape handler for this instance's registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
