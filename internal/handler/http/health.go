// Package http provides the HTTP surface of the article service: middleware,
// health and metrics endpoints. The article routes live in the article
// subpackage.
package http

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"article-management/internal/resilience/circuitbreaker"
)

// Check states reported by HealthHandler.
const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// HealthResponse represents the JSON response for health check endpoints.
type HealthResponse struct {
	Status    string                 `json:"status"`    // "healthy" or "unhealthy"
	Timestamp string                 `json:"timestamp"` // RFC 3339, UTC
	Checks    map[string]CheckStatus `json:"checks"`
	Version   string                 `json:"version"`
}

// CheckStatus represents the status of a single health check.
type CheckStatus struct {
	Status  string         `json:"status"`
	Message string         `json:"message,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// HealthHandler reports the state of the article storage.
// DB is nil when the in-memory store is used. Breaker is nil when the
// database circuit breaker is disabled.
type HealthHandler struct {
	DB      *sql.DB
	Breaker *circuitbreaker.CircuitBreaker
	Driver  string
	Version string
}

// ServeHTTP returns 200 OK if every check passes or is degraded, or 503
// Service Unavailable if any check fails.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := map[string]CheckStatus{"database": h.checkDatabase(ctx)}
	if h.Breaker != nil {
		checks["circuit_breaker"] = h.checkBreaker()
	}

	status := StatusHealthy
	statusCode := http.StatusOK
	for _, c := range checks {
		if c.Status == StatusUnhealthy {
			status = StatusUnhealthy
			statusCode = http.StatusServiceUnavailable
			break
		}
	}

	response := HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
		Version:   h.Version,
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		slog.Error("health: failed to encode response", slog.Any("error", err))
	}
}

// checkDatabase pings the database and reports connection pool statistics.
func (h *HealthHandler) checkDatabase(ctx context.Context) CheckStatus {
	if h.DB == nil {
		return CheckStatus{
			Status:  StatusHealthy,
			Message: "in-memory store",
			Details: map[string]any{"driver": h.Driver},
		}
	}

	if err := h.DB.PingContext(ctx); err != nil {
		return CheckStatus{
			Status:  StatusUnhealthy,
			Message: "database unreachable",
			Details: map[string]any{"driver": h.Driver},
		}
	}

	stats := h.DB.Stats()
	details := map[string]any{
		"driver":               h.Driver,
		"max_open_connections": stats.MaxOpenConnections,
		"open_connections":     stats.OpenConnections,
		"in_use":               stats.InUse,
		"idle":                 stats.Idle,
		"wait_count":           stats.WaitCount,
		"wait_duration_ms":     stats.WaitDuration.Milliseconds(),
	}

	// MaxOpenConnections is 0 when the pool is unbounded.
	if stats.MaxOpenConnections == 0 {
		return CheckStatus{Status: StatusHealthy, Details: details}
	}

	utilizationPercent := float64(stats.InUse) / float64(stats.MaxOpenConnections) * 100
	details["utilization_percent"] = utilizationPercent
	if utilizationPercent >= 80.0 {
		return CheckStatus{
			Status:  StatusDegraded,
			Message: "connection pool utilization above 80%",
			Details: details,
		}
	}
	return CheckStatus{Status: StatusHealthy, Details: details}
}

// checkBreaker maps the breaker state: open means storage calls are being
// rejected, half-open means it is probing for recovery.
func (h *HealthHandler) checkBreaker() CheckStatus {
	state := h.Breaker.State()
	details := map[string]any{"name": h.Breaker.Name(), "state": state.String()}
	switch state {
	case gobreaker.StateOpen:
		return CheckStatus{Status: StatusUnhealthy, Message: "circuit open", Details: details}
	case gobreaker.StateHalfOpen:
		return CheckStatus{Status: StatusDegraded, Message: "circuit half-open", Details: details}
	default:
		return CheckStatus{Status: StatusHealthy, Details: details}
	}
}

// ReadyHandler handles readiness probe requests.
// It returns 200 OK once the database answers a ping; with no DB it is
// always ready.
type ReadyHandler struct {
	DB *sql.DB
}

func (h *ReadyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if h.DB != nil {
		if err := h.DB.PingContext(ctx); err != nil {
			http.Error(w, "database not ready", http.StatusServiceUnavailable)
			return
		}
	}

	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// LiveHandler handles liveness probe requests. It always returns 200 OK
// while the process can serve HTTP.
type LiveHandler struct{}

func (h *LiveHandler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("alive"))
}

// RegisterOps mounts the operational endpoints on mux.
func RegisterOps(mux *http.ServeMux, health *HealthHandler) {
	mux.Handle("GET /health", health)
	mux.Handle("GET /ready", &ReadyHandler{DB: health.DB})
	mux.Handle("GET /live", &LiveHandler{})
	mux.Handle("GET /metrics", MetricsHandler())
}
