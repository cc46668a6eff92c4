// Package tracing wires OpenTelemetry into the article service.
//
// Init installs the SDK provider and the W3C propagator at startup. Until it
// runs, the global no-op provider makes every span free, which is what tests
// that do not install an exporter get.
//
//	handler := tracing.Middleware(mux)
//
//	ctx, span := tracing.StartSpan(ctx, "article.delete_article",
//		attribute.Int("article.number", n))
//	defer span.End()
package tracing
