package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Fetch Metrics
var (
	// FetchRequestsTotal counts fetches by source and outcome (ok, cached, error, rejected)
	FetchRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "confessit_fetch_requests_total",
			Help: "Total confession fetches by source and outcome",
		},
		[]string{"source", "outcome"},
	)

	FetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "confessit_fetch_duration_seconds",
			Help:    "Duration of confession fetches that reached the source",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"source"},
	)

	// FetchCacheTotal counts fetch cache lookups by result (hit, miss, error)
	FetchCacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "confessit_fetch_cache_total",
			Help: "Fetch cache lookups by result",
		},
		[]string{"result"},
	)
)

// Source Metrics
var (
	// SourceReachable is 1 while the last health probe of the source succeeded
	SourceReachable = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "confessit_source_reachable",
			Help: "1 if the last health probe of the source succeeded, 0 otherwise",
		},
		[]string{"source"},
	)

	// SourceBreakerState tracks the source circuit breaker (0=closed, 1=half-open, 2=open)
	SourceBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "confessit_source_breaker_state",
			Help: "Current source circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"source"},
	)
)

// Analysis Metrics
var (
	ConfessionsAnalyzedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "confessit_confessions_analyzed_total",
			Help: "Total confessions analyzed by resulting sentiment",
		},
		[]string{"sentiment"},
	)

	AnalysisRecoveredTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "confessit_analysis_recovered_total",
			Help: "Confessions that failed to analyze and were kept as neutral",
		},
	)
)

// HTTP Metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "confessit_http_requests_total",
			Help: "Total HTTP requests by method, route and status",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "confessit_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

// BoolGauge converts a boolean into a gauge value.
func BoolGauge(v bool) float64 {
	if v {
		return 1
	}
	return 0
}
