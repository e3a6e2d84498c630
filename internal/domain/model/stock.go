// Package model contains domain models passed between layers.
package model

// Key identifies one availability lookup: a product variant plus an
// optional shipping zone scope. Keys are comparable and can be used as
// map keys; two keys that differ only in Zone (including one empty and
// one set) are resolved independently and never aggregated together.
type Key struct {
	VariantID int64  // product variant identifier
	Zone      string // shipping zone code; empty means no zone scope
}

// GlobalZone is the Zone value of a key with no zone scope.
const GlobalZone = ""

// Scoped reports whether the key is restricted to a shipping zone.
func (k Key) Scoped() bool {
	return k.Zone != GlobalZone
}

// StockRecord is one stock row as returned by the record store.
// Quantity is the available quantity the warehouse can fulfill, never
// negative; the store nets out allocations before returning rows.
type StockRecord struct {
	VariantID   int64
	WarehouseID int64
	Quantity    int64
}
