// Package metrics declares the Prometheus series of the article service and
// small Record* helpers the other layers call instead of touching collectors.
//
// Everything is registered with the default registry through promauto and
// served on /metrics. Series fall into four groups: HTTP traffic by route,
// article manager operations by outcome kind, unit-of-work commits, and the
// database with its circuit breaker.
//
//	start := time.Now()
//	err := run()
//	metrics.RecordArticleOperation("create_article", article.KindOf(err).String(), time.Since(start))
package metrics
