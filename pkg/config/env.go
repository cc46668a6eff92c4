// Package config provides typed environment variable lookups with defaults.
// Malformed values fall back to the default and are logged as warnings.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// GetEnvString returns the trimmed value of key, or defaultValue when the
// variable is unset or blank.
//
//	addr := GetEnvString("HTTP_ADDR", ":8080")
func GetEnvString(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

// GetEnvInt parses key as a base-10 integer.
func GetEnvInt(key string, defaultValue int) int {
	return lookup(key, defaultValue, strconv.Atoi)
}

// GetEnvBool parses key with strconv.ParseBool.
func GetEnvBool(key string, defaultValue bool) bool {
	return lookup(key, defaultValue, strconv.ParseBool)
}

// GetEnvDuration parses key with time.ParseDuration ("30s", "1h30m").
func GetEnvDuration(key string, defaultValue time.Duration) time.Duration {
	return lookup(key, defaultValue, time.ParseDuration)
}

func lookup[T any](key string, defaultValue T, parse func(string) (T, error)) T {
	raw := GetEnvString(key, "")
	if raw == "" {
		return defaultValue
	}
	value, err := parse(raw)
	if err != nil {
		slog.Warn("invalid value for environment variable, using default",
			slog.String("key", key),
			slog.String("value", raw),
			slog.String("default", fmt.Sprint(defaultValue)),
			slog.String("error", err.Error()))
		return defaultValue
	}
	return value
}
