// Package db opens the SQL connection pool and creates the article schema.
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"article-management/internal/resilience/retry"
)

// Supported storage drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// ConnectionConfig holds database connection pool configuration.
type ConnectionConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// DefaultConnectionConfig returns the default connection pool configuration.
func DefaultConnectionConfig() ConnectionConfig {
	return ConnectionConfig{
		MaxOpenConns:    25,
		MaxIdleConns:    10,
		ConnMaxLifetime: 1 * time.Hour,
		ConnMaxIdleTime: 30 * time.Minute,
	}
}

// Open creates a connection pool for driver, applies the pool settings and
// waits until the database answers a ping.
func Open(ctx context.Context, driver, dsn string, cfg ConnectionConfig) (*sql.DB, error) {
	sqlDriver, dsn, err := resolve(driver, dsn)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(sqlDriver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}

	if driver == DriverSQLite && isMemoryDSN(dsn) {
		// Every connection to an in-memory database sees its own empty database.
		cfg.MaxOpenConns = 1
		cfg.MaxIdleConns = 1
		cfg.ConnMaxLifetime = 0
		cfg.ConnMaxIdleTime = 0
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	slog.Info("database connection pool configured",
		slog.String("driver", driver),
		slog.Int("max_open_conns", cfg.MaxOpenConns),
		slog.Int("max_idle_conns", cfg.MaxIdleConns),
		slog.Duration("conn_max_lifetime", cfg.ConnMaxLifetime),
		slog.Duration("conn_max_idle_time", cfg.ConnMaxIdleTime))

	// A single ping may run out of time while the server is still starting;
	// only the caller's own deadline ends the wait.
	retryCfg := retry.DBConnectConfig()
	retryCfg.Retryable = func(err error) bool {
		return retry.IsRetryable(err) || (errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil)
	}
	err = retry.WithBackoff(ctx, retryCfg, func() error {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return db.PingContext(pingCtx)
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}

	slog.Info("database connection established successfully", slog.String("driver", driver))
	return db, nil
}

// resolve maps a storage driver to its database/sql driver name and final DSN.
func resolve(driver, dsn string) (string, string, error) {
	switch driver {
	case DriverPostgres:
		if dsn == "" {
			return "", "", fmt.Errorf("postgres: empty DSN")
		}
		return "pgx", dsn, nil
	case DriverSQLite:
		if dsn == "" {
			dsn = "file:articles.db"
		}
		return "sqlite", SQLiteDSN(dsn), nil
	default:
		return "", "", fmt.Errorf("unsupported database driver %q", driver)
	}
}

// SQLiteDSN enables foreign keys, which ON DELETE CASCADE depends on, and a
// busy timeout so concurrent writers wait instead of failing at once.
func SQLiteDSN(dsn string) string {
	if strings.Contains(dsn, "foreign_keys") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

func isMemoryDSN(dsn string) bool {
	return strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory")
}
