package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/okian/tally/internal/domain/model"
	"github.com/okian/tally/pkg/metrics"
)

// Default Postgres store configuration constants.
const (
	defaultMaxOpenConns = 16
	defaultQueryTimeout = 5 * time.Second
)

// Stock rows keep Saleor-style quantity bookkeeping: the available
// quantity is the on-hand quantity net of allocations, floored at zero.
const (
	fetchAllZonesQuery = `
		SELECT s.product_variant_id, s.warehouse_id,
		       GREATEST(s.quantity - s.quantity_allocated, 0) AS available
		FROM stock s
		WHERE s.product_variant_id = ANY($1)`

	fetchZoneQuery = `
		SELECT s.product_variant_id, s.warehouse_id,
		       GREATEST(s.quantity - s.quantity_allocated, 0) AS available
		FROM stock s
		WHERE s.product_variant_id = ANY($1)
		  AND EXISTS (
		      SELECT 1 FROM warehouse_shipping_zone wz
		      WHERE wz.warehouse_id = s.warehouse_id
		        AND wz.zone_code = $2)`
)

// PostgresStore implements Store on top of Postgres via database/sql.
type PostgresStore struct {
	db           *sql.DB
	queryTimeout time.Duration
}

// PostgresOption applies a configuration option to the PostgresStore.
type PostgresOption func(*PostgresStore)

// WithQueryTimeout bounds each fetch query.
func WithQueryTimeout(d time.Duration) PostgresOption {
	return func(s *PostgresStore) {
		if d > 0 {
			s.queryTimeout = d
		}
	}
}

// NewPostgresStore opens a Postgres-backed store using the provided DSN
// and verifies connectivity before returning.
func NewPostgresStore(ctx context.Context, dsn string, opts ...PostgresOption) (*PostgresStore, error) {
	if dsn == "" {
		return nil, ErrEmptyDSN
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(defaultMaxOpenConns)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	s := &PostgresStore{
		db:           db,
		queryTimeout: defaultQueryTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// FetchRecords executes one query for the whole variant set. The zone
// restriction is pushed into SQL so only rows from warehouses serving
// the zone come back; an empty zone skips the restriction entirely.
func (s *PostgresStore) FetchRecords(ctx context.Context, variantIDs []int64, zone string) ([]model.StockRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	start := time.Now()
	var (
		rows *sql.Rows
		err  error
	)
	if zone == model.GlobalZone {
		rows, err = s.db.QueryContext(ctx, fetchAllZonesQuery, pq.Array(variantIDs))
	} else {
		rows, err = s.db.QueryContext(ctx, fetchZoneQuery, pq.Array(variantIDs), zone)
	}
	if err != nil {
		return nil, fmt.Errorf("query stock: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.StockRecord
	for rows.Next() {
		var r model.StockRecord
		if err := rows.Scan(&r.VariantID, &r.WarehouseID, &r.Quantity); err != nil {
			return nil, fmt.Errorf("scan stock row: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stock rows: %w", err)
	}

	metrics.ObserveStoreQueryLatency(float64(time.Since(start).Milliseconds()))
	return out, nil
}

// Close releases the underlying connection pool.
func (s *PostgresStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close postgres: %w", err)
	}
	return nil
}
