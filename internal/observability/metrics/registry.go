// Package metrics provides centralized Prometheus metrics for the application.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics track HTTP request patterns and performance
var (
	// HTTPRequestsTotal counts total HTTP requests by method, route pattern, and status
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	// HTTPRequestDuration measures HTTP request duration in seconds.
	// Buckets cover fast (5ms) to slow (10s) API responses for p95/p99 measurement.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "route", "status"},
	)

	// HTTPRequestsInFlight tracks the current number of HTTP requests being processed
	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Current number of HTTP requests being served",
		},
	)

	// HTTPResponseSize measures HTTP response body size in bytes
	HTTPResponseSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_response_size_bytes",
			Help:    "HTTP response size in bytes",
			Buckets: prometheus.ExponentialBuckets(100, 10, 8),
		},
		[]string{"method", "route"},
	)
)

// Business metrics track article manager operations
var (
	// ArticleOperationsTotal counts manager operations by operation name and outcome kind
	ArticleOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "article_operations_total",
			Help: "Total number of article manager operations",
		},
		[]string{"operation", "outcome"},
	)

	// ArticleOperationDuration measures manager operation duration in seconds
	ArticleOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "article_operation_duration_seconds",
			Help:    "Article manager operation duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 14),
		},
		[]string{"operation"},
	)

	// ArticleCommitsTotal counts unit-of-work commits by result: success, conflict, error
	ArticleCommitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "article_commits_total",
			Help: "Total number of article unit-of-work commits",
		},
		[]string{"result"},
	)

	// ArticleInvariantViolationsTotal counts aggregates found with duplicate country attributes
	ArticleInvariantViolationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "article_invariant_violations_total",
			Help: "Total number of detected article invariant violations",
		},
	)
)

// Database metrics track database performance and the breaker guarding it
var (
	// DBQueryDuration measures database query duration
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 10),
		},
		[]string{"operation"},
	)

	// CircuitBreakerState is 0 when closed, 1 when half-open and 2 when open
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Current circuit breaker state (0 closed, 1 half-open, 2 open)",
		},
		[]string{"name"},
	)

	// CircuitBreakerRejectionsTotal counts calls refused without reaching the database
	CircuitBreakerRejectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_rejections_total",
			Help: "Total number of calls rejected by an open or saturated circuit breaker",
		},
		[]string{"name"},
	)
)
