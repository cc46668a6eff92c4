// Package resilience groups the fault tolerance helpers used around the
// article database.
//
// The subpackages provide:
//   - circuitbreaker: a gobreaker wrapper and a guarded article store
//   - retry: exponential backoff with jitter for connecting to the database
//
// Usage Example:
//
//	store := circuitbreaker.NewArticleStore(postgres.NewArticleStore(db), circuitbreaker.DBConfig())
//
//	err := retry.WithBackoff(ctx, retry.DBConnectConfig(), func() error {
//	    return db.PingContext(ctx)
//	})
package resilience
