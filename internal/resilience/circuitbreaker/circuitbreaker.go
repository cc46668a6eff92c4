// Package circuitbreaker stops storage calls from piling up against a
// database that keeps failing. It is built on github.com/sony/gobreaker and
// publishes its state and rejections as Prometheus series.
package circuitbreaker

import (
	"errors"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"

	"article-management/internal/observability/metrics"
)

// Config holds the configuration for a circuit breaker.
type Config struct {
	// Name labels the breaker in logs, metrics and /health.
	Name string

	// MaxRequests is how many probe calls half-open admits.
	MaxRequests uint32

	// Interval clears the closed-state counts. Zero never clears them.
	Interval time.Duration

	// Timeout is how long the circuit stays open before probing.
	Timeout time.Duration

	// ConsecutiveFailures trips the circuit after that many failures in a row.
	// Zero disables this rule.
	ConsecutiveFailures uint32

	// FailureRatio trips the circuit once at least MinRequests calls were
	// counted and this share of them failed. Zero disables this rule.
	FailureRatio float64
	MinRequests  uint32

	// IsSuccessful reports errors that must not count as failures.
	// Nil counts every non-nil error as a failure.
	IsSuccessful func(err error) bool
}

// DBConfig returns the configuration guarding the article database: five
// failed round trips in a row, or half of at least twenty within a minute,
// open the circuit for 30 seconds.
func DBConfig() Config {
	return Config{
		Name:                "database",
		MaxRequests:         3,
		Interval:            time.Minute,
		Timeout:             30 * time.Second,
		ConsecutiveFailures: 5,
		FailureRatio:        0.5,
		MinRequests:         20,
	}
}

// readyToTrip applies both trip rules.
func (c Config) readyToTrip(counts gobreaker.Counts) bool {
	if c.ConsecutiveFailures > 0 && counts.ConsecutiveFailures >= c.ConsecutiveFailures {
		return true
	}
	if c.FailureRatio <= 0 || counts.Requests < c.MinRequests || counts.Requests == 0 {
		return false
	}
	return float64(counts.TotalFailures)/float64(counts.Requests) >= c.FailureRatio
}

// CircuitBreaker wraps gobreaker.CircuitBreaker.
type CircuitBreaker struct {
	breaker *gobreaker.CircuitBreaker
	name    string
}

// New creates a closed circuit breaker.
func New(cfg Config) *CircuitBreaker {
	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: cfg.readyToTrip,
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.RecordBreakerState(name, int(to))
			slog.Warn("circuit breaker state changed",
				slog.String("circuit", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()))
		},
		IsSuccessful: cfg.IsSuccessful,
	}
	metrics.RecordBreakerState(cfg.Name, int(gobreaker.StateClosed))

	return &CircuitBreaker{
		breaker: gobreaker.NewCircuitBreaker(settings),
		name:    cfg.Name,
	}
}

// Do runs fn through cb. While the circuit is open, or half-open with all
// probes in flight, fn is not called and gobreaker.ErrOpenState or
// gobreaker.ErrTooManyRequests is returned.
func Do[T any](cb *CircuitBreaker, fn func() (T, error)) (T, error) {
	res, err := cb.breaker.Execute(func() (interface{}, error) {
		return fn()
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		metrics.RecordBreakerRejection(cb.name)
	}
	v, _ := res.(T)
	return v, err
}

// State returns the current state of the circuit breaker.
func (cb *CircuitBreaker) State() gobreaker.State {
	return cb.breaker.State()
}

// Name returns the name of the circuit breaker.
func (cb *CircuitBreaker) Name() string {
	return cb.name
}

// IsOpen reports whether calls are currently being rejected outright.
func (cb *CircuitBreaker) IsOpen() bool {
	return cb.breaker.State() == gobreaker.StateOpen
}
