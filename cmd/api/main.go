package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"article-management/internal/config"
	"article-management/internal/infra/adapter/persistence/memory"
	pgRepo "article-management/internal/infra/adapter/persistence/postgres"
	sqliteRepo "article-management/internal/infra/adapter/persistence/sqlite"
	"article-management/internal/infra/db"
	"article-management/internal/observability/logging"
	"article-management/internal/observability/tracing"
	"article-management/internal/repository"
	"article-management/internal/resilience/circuitbreaker"
	pkgconfig "article-management/pkg/config"

	artUC "article-management/internal/usecase/article"

	hhttp "article-management/internal/handler/http"
	harticle "article-management/internal/handler/http/article"
	"article-management/internal/handler/http/requestid"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", slog.Any("error", err))
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := initLogger(&cfg)
	version := getVersion()

	shutdownTracing := tracing.Init(version)
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Error("failed to stop tracer provider", slog.Any("error", err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStorage(ctx, &cfg, logger)
	if err != nil {
		return err
	}
	defer st.close(logger)

	handler := setupServer(&cfg, logger, st, version)
	return runServer(ctx, &cfg, logger, handler, version)
}

// initLogger builds the process logger from configuration and installs it as
// the slog default.
func initLogger(cfg *config.Config) *slog.Logger {
	logger := logging.New(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})
	slog.SetDefault(logger)
	return logger
}

// getVersion returns the application version from environment or default.
func getVersion() string {
	return pkgconfig.GetEnvString("VERSION", "dev")
}

// storage bundles the article store with the handles the ops endpoints need.
// DB and Breaker are nil for the in-memory store.
type storage struct {
	Store   repository.ArticleStore
	DB      *sql.DB
	Breaker *circuitbreaker.CircuitBreaker
}

func (s *storage) close(logger *slog.Logger) {
	if s.DB == nil {
		return
	}
	if err := s.DB.Close(); err != nil {
		logger.Error("failed to close database", slog.Any("error", err))
	}
}

// openStorage connects to the configured backend, applies the schema and
// wraps SQL stores in the database circuit breaker when enabled.
func openStorage(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*storage, error) {
	if cfg.StorageDriver == config.StorageMemory {
		logger.Warn("using in-memory article store; data is lost on restart")
		return &storage{Store: memory.NewStore()}, nil
	}

	database, err := db.Open(ctx, cfg.StorageDriver, cfg.DatabaseURL, cfg.DB.Connection())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.MigrateUp(ctx, database, cfg.StorageDriver); err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	var store repository.ArticleStore
	switch cfg.StorageDriver {
	case config.StoragePostgres:
		store = pgRepo.NewArticleStore(database)
	case config.StorageSQLite:
		store = sqliteRepo.NewArticleStore(database)
	}

	st := &storage{Store: store, DB: database}
	if cfg.BreakerEnabled {
		guarded := circuitbreaker.NewArticleStore(store, circuitbreaker.DBConfig())
		st.Store = guarded
		st.Breaker = guarded.Breaker()
	}
	logger.Info("article store ready",
		slog.String("driver", cfg.StorageDriver),
		slog.Bool("circuit_breaker", cfg.BreakerEnabled))
	return st, nil
}

// setupServer registers all routes and wraps them in the middleware chain.
// Order, outermost first: Request ID, Tracing, Recovery, Logging, Input
// validation, Metrics.
func setupServer(cfg *config.Config, logger *slog.Logger, st *storage, version string) http.Handler {
	mgr := &artUC.Manager{
		Store:        st.Store,
		QueryTimeout: cfg.QueryTimeout,
		Logger:       logger,
	}

	mux := http.NewServeMux()
	harticle.Register(mux, mgr)
	hhttp.RegisterOps(mux, &hhttp.HealthHandler{
		DB:      st.DB,
		Breaker: st.Breaker,
		Driver:  cfg.StorageDriver,
		Version: version,
	})

	return hhttp.Chain(mux,
		requestid.Middleware,
		tracing.Middleware,
		hhttp.Recover(logger),
		hhttp.Logging(logger),
		hhttp.InputValidation(hhttp.MaxRequestBytes),
		hhttp.MetricsMiddleware,
	)
}

// runServer serves until ctx is cancelled, then drains in-flight requests
// for at most cfg.ShutdownTimeout.
func runServer(ctx context.Context, cfg *config.Config, logger *slog.Logger, handler http.Handler, version string) error {
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second, // Prevent Slowloris attacks
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server starting",
			slog.String("addr", cfg.HTTPAddr),
			slog.String("version", version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		logger.Info("server stopped")
		return nil
	})
	return g.Wait()
}
