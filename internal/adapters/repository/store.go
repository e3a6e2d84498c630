// Package repository provides stock record stores backing the
// availability engine.
package repository

import (
	"context"

	"github.com/okian/tally/internal/domain/model"
)

// Store provides read access to stock records.
type Store interface {
	// FetchRecords returns the stock rows for the requested variants.
	// A non-empty zone restricts rows to warehouses serving that zone;
	// an empty zone applies no restriction and all warehouses holding
	// the variants are considered. The same (variant, warehouse) pair
	// may appear in several rows; callers sum them.
	FetchRecords(ctx context.Context, variantIDs []int64, zone string) ([]model.StockRecord, error)

	// Close releases store resources.
	Close() error
}
