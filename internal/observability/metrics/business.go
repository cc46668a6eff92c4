package metrics

import "time"

// Commit results recorded by RecordCommit.
const (
	CommitSuccess  = "success"
	CommitConflict = "conflict"
	CommitError    = "error"
)

// RecordArticleOperation records the outcome and duration of one manager operation.
// Outcome is the error kind name ("ok" on success).
func RecordArticleOperation(operation, outcome string, duration time.Duration) {
	ArticleOperationsTotal.WithLabelValues(operation, outcome).Inc()
	ArticleOperationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordCommit records the result of a unit-of-work commit.
func RecordCommit(result string) {
	ArticleCommitsTotal.WithLabelValues(result).Inc()
}

// RecordInvariantViolation records that an aggregate broke the one-attribute-per-country rule.
func RecordInvariantViolation() {
	ArticleInvariantViolationsTotal.Inc()
}

// RecordDBQuery records the duration of a database operation.
func RecordDBQuery(operation string, duration time.Duration) {
	DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordBreakerState publishes a breaker's state as 0 (closed), 1 (half-open) or 2 (open).
func RecordBreakerState(name string, state int) {
	CircuitBreakerState.WithLabelValues(name).Set(float64(state))
}

// RecordBreakerRejection counts a call the breaker refused to run.
func RecordBreakerRejection(name string) {
	CircuitBreakerRejectionsTotal.WithLabelValues(name).Inc()
}
