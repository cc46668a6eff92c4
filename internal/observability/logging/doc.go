// Package logging provides structured logging utilities on top of log/slog.
//
// Loggers are built once at startup from configuration and passed down
// explicitly; request-scoped loggers carry the request ID.
//
// Example usage:
//
//	logger := logging.New(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})
//	slog.SetDefault(logger)
//
//	func handle(ctx context.Context) {
//	    logging.WithRequestID(ctx, logger).Info("processing request")
//	}
package logging
