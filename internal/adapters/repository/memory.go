package repository

import (
	"context"
	"sync"

	"github.com/okian/tally/internal/domain/model"
)

// MemoryStore implements Store in memory. It backs tests and local runs
// where no database is configured; rows are kept exactly as added so the
// engine sees the same duplicate-row shape a SQL store can produce.
type MemoryStore struct {
	mu     sync.RWMutex
	rows   []model.StockRecord
	zones  map[int64]map[string]struct{} // warehouse -> zones it serves
	closed bool
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		zones: make(map[int64]map[string]struct{}),
	}
}

// AddStock appends one stock row. Multiple rows for the same
// (variant, warehouse) pair are kept as-is.
func (s *MemoryStore) AddStock(variantID, warehouseID, quantity int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, model.StockRecord{
		VariantID:   variantID,
		WarehouseID: warehouseID,
		Quantity:    quantity,
	})
}

// AssignZone marks a warehouse as serving a shipping zone.
func (s *MemoryStore) AssignZone(warehouseID int64, zone string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	set, ok := s.zones[warehouseID]
	if !ok {
		set = make(map[string]struct{})
		s.zones[warehouseID] = set
	}
	set[zone] = struct{}{}
}

// FetchRecords returns the rows matching the variant set, restricted to
// warehouses serving zone when zone is non-empty.
func (s *MemoryStore) FetchRecords(_ context.Context, variantIDs []int64, zone string) ([]model.StockRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	wanted := make(map[int64]struct{}, len(variantIDs))
	for _, id := range variantIDs {
		wanted[id] = struct{}{}
	}

	var out []model.StockRecord
	for _, row := range s.rows {
		if _, ok := wanted[row.VariantID]; !ok {
			continue
		}
		if zone != model.GlobalZone && !s.servesZone(row.WarehouseID, zone) {
			continue
		}
		out = append(out, row)
	}
	return out, nil
}

// servesZone must be called with s.mu held.
func (s *MemoryStore) servesZone(warehouseID int64, zone string) bool {
	set, ok := s.zones[warehouseID]
	if !ok {
		return false
	}
	_, ok = set[zone]
	return ok
}

// Close marks the store closed; subsequent fetches fail.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
