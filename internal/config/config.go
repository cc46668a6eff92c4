// Package config assembles the service configuration.
//
// Values are resolved in this order, later sources winning: built-in
// defaults, the YAML file named by CONFIG_FILE, environment variables.
// A .env file (ENV_FILE, default ".env") is loaded into the environment first
// without overriding variables that are already set.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"article-management/internal/infra/db"
	envcfg "article-management/pkg/config"
)

// Storage drivers accepted by STORAGE_DRIVER.
const (
	StoragePostgres = db.DriverPostgres
	StorageSQLite   = db.DriverSQLite
	StorageMemory   = "memory"
)

// Config is the complete runtime configuration of the API process.
type Config struct {
	HTTPAddr        string        `yaml:"http_addr"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	StorageDriver  string        `yaml:"storage_driver"`
	DatabaseURL    string        `yaml:"database_url"`
	DB             PoolConfig    `yaml:"db"`
	QueryTimeout   time.Duration `yaml:"article_query_timeout"`
	BreakerEnabled bool          `yaml:"db_breaker_enabled"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

// PoolConfig mirrors db.ConnectionConfig with YAML keys.
type PoolConfig struct {
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `yaml:"conn_max_idle_time"`
}

// Connection converts the pool settings for db.Open.
func (p PoolConfig) Connection() db.ConnectionConfig {
	return db.ConnectionConfig{
		MaxOpenConns:    p.MaxOpenConns,
		MaxIdleConns:    p.MaxIdleConns,
		ConnMaxLifetime: p.ConnMaxLifetime,
		ConnMaxIdleTime: p.ConnMaxIdleTime,
	}
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	pool := db.DefaultConnectionConfig()
	return Config{
		HTTPAddr:        ":8080",
		ShutdownTimeout: 5 * time.Second,
		StorageDriver:   StoragePostgres,
		DB: PoolConfig{
			MaxOpenConns:    pool.MaxOpenConns,
			MaxIdleConns:    pool.MaxIdleConns,
			ConnMaxLifetime: pool.ConnMaxLifetime,
			ConnMaxIdleTime: pool.ConnMaxIdleTime,
		},
		QueryTimeout:   60 * time.Second,
		BreakerEnabled: true,
		LogLevel:       "info",
		LogFormat:      "json",
	}
}

// Load resolves and validates the configuration.
func Load() (Config, error) {
	if err := loadDotEnv(envcfg.GetEnvString("ENV_FILE", ".env")); err != nil {
		return Config{}, err
	}

	cfg := Default()
	if path := envcfg.GetEnvString("CONFIG_FILE", ""); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return Config{}, err
		}
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Debug("no .env file, using process environment", slog.String("path", path))
		return nil
	}
	if err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// loadFile overlays the YAML document at path onto c.
// The path comes from the operator environment, not from requests.
func (c *Config) loadFile(path string) error {
	// #nosec G304 -- path is set by the operator
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.HTTPAddr = envcfg.GetEnvString("HTTP_ADDR", c.HTTPAddr)
	c.ShutdownTimeout = envcfg.GetEnvDuration("SHUTDOWN_TIMEOUT", c.ShutdownTimeout)

	c.StorageDriver = envcfg.GetEnvString("STORAGE_DRIVER", c.StorageDriver)
	c.DatabaseURL = envcfg.GetEnvString("DATABASE_URL", c.DatabaseURL)
	c.DB.MaxOpenConns = envcfg.GetEnvInt("DB_MAX_OPEN_CONNS", c.DB.MaxOpenConns)
	c.DB.MaxIdleConns = envcfg.GetEnvInt("DB_MAX_IDLE_CONNS", c.DB.MaxIdleConns)
	c.DB.ConnMaxLifetime = envcfg.GetEnvDuration("DB_CONN_MAX_LIFETIME", c.DB.ConnMaxLifetime)
	c.DB.ConnMaxIdleTime = envcfg.GetEnvDuration("DB_CONN_MAX_IDLE_TIME", c.DB.ConnMaxIdleTime)
	c.QueryTimeout = envcfg.GetEnvDuration("ARTICLE_QUERY_TIMEOUT", c.QueryTimeout)
	c.BreakerEnabled = envcfg.GetEnvBool("DB_BREAKER_ENABLED", c.BreakerEnabled)

	c.LogLevel = envcfg.GetEnvString("LOG_LEVEL", c.LogLevel)
	c.LogFormat = envcfg.GetEnvString("LOG_FORMAT", c.LogFormat)
}

// Validate reports the first setting the process cannot start with.
func (c Config) Validate() error {
	switch c.StorageDriver {
	case StoragePostgres:
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required for the postgres driver")
		}
	case StorageSQLite, StorageMemory:
	default:
		return fmt.Errorf("unsupported STORAGE_DRIVER %q", c.StorageDriver)
	}

	if c.HTTPAddr == "" {
		return errors.New("HTTP_ADDR must not be empty")
	}
	if c.QueryTimeout <= 0 {
		return fmt.Errorf("ARTICLE_QUERY_TIMEOUT must be positive, got %v", c.QueryTimeout)
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("SHUTDOWN_TIMEOUT must be positive, got %v", c.ShutdownTimeout)
	}
	if c.DB.MaxOpenConns <= 0 {
		return fmt.Errorf("DB_MAX_OPEN_CONNS must be positive, got %d", c.DB.MaxOpenConns)
	}
	if c.DB.MaxIdleConns < 0 || c.DB.MaxIdleConns > c.DB.MaxOpenConns {
		return fmt.Errorf("DB_MAX_IDLE_CONNS must be between 0 and %d, got %d", c.DB.MaxOpenConns, c.DB.MaxIdleConns)
	}
	switch c.LogFormat {
	case "json", "text":
	default:
		return fmt.Errorf("unsupported LOG_FORMAT %q", c.LogFormat)
	}
	return nil
}
