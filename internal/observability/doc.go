// Package observability groups what the article service emits about itself.
// logging builds the slog handler and request attributes, metrics owns the
// Prometheus series, and tracing installs the OpenTelemetry provider and the
// server-span middleware.
package observability
