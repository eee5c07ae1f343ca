// Package metrics provides Prometheus metrics collection for the API.
// It exports HTTP request metrics (request totals, latency, in-flight
// gauge) plus dictionary-level counters for imports and search latency.
//
// All metrics are automatically registered with the Prometheus default registry
// during package initialization.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	HTTPRequestTotals = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_request_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method", "path"},
	)

	HTTPRequestInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_request_in_flight",
			Help: "Current in-flight requests",
		},
	)

	RateLimiterBucketsTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "rate_limiter_buckets_total",
			Help: "Total number of rate limiter buckets (IPs seen in last ~5 minutes)",
		},
	)

	DictionaryImportRecords = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dictionary_import_records_total",
			Help: "Records loaded by dictionary imports",
		},
		[]string{"dictionary"},
	)

	DictionaryImportDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dictionary_import_duration_seconds",
			Help:    "Full dictionary import duration",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1200},
		},
		[]string{"dictionary"},
	)

	DictionarySearchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dictionary_search_duration_seconds",
			Help:    "Dictionary search latency",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"dictionary"},
	)
)

func init() {
	prometheus.MustRegister(HTTPRequestTotals)
	prometheus.MustRegister(HTTPRequestDuration)
	prometheus.MustRegister(HTTPRequestInFlight)
	prometheus.MustRegister(RateLimiterBucketsTotal)
	prometheus.MustRegister(DictionaryImportRecords)
	prometheus.MustRegister(DictionaryImportDuration)
	prometheus.MustRegister(DictionarySearchDuration)
}
