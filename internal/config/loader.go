package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):.
//  1. defaults (New())
//  2. file (YAML) if TALLY_CONFIG is set
//  3. env (prefix TALLY_)
func Load(_ context.Context) (*Config, error) {
	// Start with defaults
	base := New()

	k := koanf.New(".")

	// Load from file if provided
	if path := os.Getenv("TALLY_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: TALLY_ADDR, TALLY_MAX_LINE_QUANTITY, ...
	// Map env keys like TALLY_MAX_LINE_QUANTITY -> max_line_quantity
	// (flat keys); underscores are preserved to match koanf tags.
	envProvider := env.Provider("TALLY_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "tally_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// validate rejects configurations the service must not start with.
// The quantity cap in particular is checked here so a bad value fails
// the process at boot rather than a resolve call at runtime.
func (c *Config) validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.New("addr must not be empty"))
	case c.MaxLineQuantity < 0:
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.New("max_line_quantity must not be negative"))
	case c.BatchWindowMS <= 0:
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.New("batch_window_ms must be positive"))
	case c.BatchMaxKeys <= 0:
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.New("batch_max_keys must be positive"))
	case c.MaxBatchKeys <= 0:
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.New("max_batch_keys must be positive"))
	}
	return nil
}
