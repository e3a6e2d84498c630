// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults; Load layers file/env on top.
// - External errors must be wrapped via this package's error helpers.
package config

import "runtime"

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// DatabaseURL is the Postgres DSN for the stock store. Empty means
	// the in-memory store is used (local runs and tests).
	DatabaseURL string `koanf:"database_url"`

	// MaxLineQuantity caps every resolved quantity so callers cannot
	// probe exact stock levels. Must not be negative.
	MaxLineQuantity int64 `koanf:"max_line_quantity"`

	// MaxConcurrentZones bounds parallel zone queries per batch.
	MaxConcurrentZones int `koanf:"max_concurrent_zones"`

	// BatchWindowMS is the key accumulation window in milliseconds.
	BatchWindowMS int `koanf:"batch_window_ms"`

	// BatchMaxKeys flushes an accumulation window early once reached.
	BatchMaxKeys int `koanf:"batch_max_keys"`

	// MaxBatchKeys caps how many keys one POST /availability may carry.
	MaxBatchKeys int `koanf:"max_batch_keys"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:           "info",
		Addr:               ":9080",
		DatabaseURL:        "",
		MaxLineQuantity:    50,
		MaxConcurrentZones: runtime.NumCPU(),
		BatchWindowMS:      5,
		BatchMaxKeys:       250,
		MaxBatchKeys:       1000,
	}
}
