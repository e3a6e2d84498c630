// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/okian/tally/internal/adapters/batcher"
	"github.com/okian/tally/internal/adapters/repository"
	"github.com/okian/tally/internal/domain/availability"
	"github.com/okian/tally/internal/domain/model"
	"github.com/okian/tally/pkg/logger"
)

// Service implements the API dependencies for the availability system.
type Service struct {
	mu sync.RWMutex

	// Core components
	store   repository.Store
	loader  *availability.Loader
	batcher *batcher.Batcher

	// Configuration
	databaseURL        string
	maxLineQuantity    int64
	maxConcurrentZones int
	batchWindow        time.Duration
	batchMaxKeys       int

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithDatabaseURL points the service at a Postgres stock store. An
// empty URL keeps the in-memory store.
func WithDatabaseURL(dsn string) Option {
	return func(s *Service) {
		s.databaseURL = dsn
	}
}

// WithStore injects a pre-built stock store, overriding the URL-based
// selection. Used by tests and embedded setups.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithMaxLineQuantity sets the per-line quantity cap.
func WithMaxLineQuantity(limit int64) Option {
	return func(s *Service) {
		s.maxLineQuantity = limit
	}
}

// WithMaxConcurrentZones bounds parallel zone queries per batch.
func WithMaxConcurrentZones(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxConcurrentZones = n
		}
	}
}

// WithBatchWindow sets the key accumulation window.
func WithBatchWindow(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.batchWindow = d
		}
	}
}

// WithBatchMaxKeys sets the key count that flushes a window early.
func WithBatchMaxKeys(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.batchMaxKeys = n
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		maxLineQuantity:    50,
		maxConcurrentZones: runtime.NumCPU(),
		batchWindow:        5 * time.Millisecond,
		batchMaxKeys:       250,
		logger:             nil, // Will be replaced when service starts
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting availability service...")

	if s.store == nil {
		if s.databaseURL != "" {
			store, err := repository.NewPostgresStore(ctx, s.databaseURL)
			if err != nil {
				return fmt.Errorf("open stock store: %w", err)
			}
			s.store = store
			s.logger.Info(ctx, "using postgres stock store")
		} else {
			s.store = repository.NewMemoryStore()
			s.logger.Info(ctx, "using in-memory stock store")
		}
	}

	loader, err := availability.NewLoader(s.store,
		availability.WithMaxPerLine(s.maxLineQuantity),
		availability.WithMaxConcurrentZones(s.maxConcurrentZones),
	)
	if err != nil {
		return fmt.Errorf("build loader: %w", err)
	}
	s.loader = loader

	b, err := batcher.New(loader,
		batcher.WithWindow(s.batchWindow),
		batcher.WithMaxKeys(s.batchMaxKeys),
	)
	if err != nil {
		return fmt.Errorf("build batcher: %w", err)
	}
	s.batcher = b

	s.started = true
	s.logger.Info(ctx, "availability service started",
		logger.Int64("maxLineQuantity", s.maxLineQuantity),
		logger.Int("maxConcurrentZones", s.maxConcurrentZones),
		logger.Any("batchWindow", s.batchWindow),
		logger.Int("batchMaxKeys", s.batchMaxKeys),
	)

	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping availability service...")

	// Drain pending loads before closing the store they depend on.
	if s.batcher != nil {
		s.batcher.Stop()
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			s.logger.Warn(context.Background(), "stock store close failed", logger.Error(err))
		}
	}

	s.started = false
	s.logger.Info(context.Background(), "availability service stopped")
}

// Availability resolves a whole batch of lookup keys positionally.
func (s *Service) Availability(ctx context.Context, keys []model.Key) ([]int64, error) {
	s.mu.RLock()
	loader := s.loader
	s.mu.RUnlock()

	if loader == nil {
		return nil, ErrNotStarted
	}
	out, err := loader.Resolve(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("resolve availability: %w", err)
	}
	return out, nil
}

// Load resolves a single key through the accumulation window, so
// concurrent callers are coalesced into one batch.
func (s *Service) Load(ctx context.Context, key model.Key) (int64, error) {
	s.mu.RLock()
	b := s.batcher
	s.mu.RUnlock()

	if b == nil {
		return 0, ErrNotStarted
	}
	qty, err := b.Load(ctx, key)
	if err != nil {
		return 0, fmt.Errorf("load availability: %w", err)
	}
	return qty, nil
}

// MaxLineQuantity returns the configured per-line quantity cap.
func (s *Service) MaxLineQuantity() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.maxLineQuantity
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	storeKind := "none"
	switch s.store.(type) {
	case *repository.PostgresStore:
		storeKind = "postgres"
	case *repository.MemoryStore:
		storeKind = "memory"
	}

	return map[string]interface{}{
		"started":            s.started,
		"store":              storeKind,
		"maxLineQuantity":    s.maxLineQuantity,
		"maxConcurrentZones": s.maxConcurrentZones,
		"batchWindowMs":      s.batchWindow.Milliseconds(),
		"batchMaxKeys":       s.batchMaxKeys,
	}
}
