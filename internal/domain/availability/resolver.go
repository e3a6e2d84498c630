package availability

import (
	"context"
	"fmt"

	"github.com/okian/tally/internal/domain/model"
	"github.com/okian/tally/pkg/metrics"
)

// RecordSource is the outbound port to the stock store. One call fetches
// every record for the given variants; when zone is non-empty the store
// restricts rows to warehouses serving that zone, otherwise all
// warehouses holding the variants are considered.
type RecordSource interface {
	FetchRecords(ctx context.Context, variantIDs []int64, zone string) ([]model.StockRecord, error)
}

// resolveZone issues the single store query for one zone group and
// reduces the rows to one quantity per variant. Quantities are summed
// within a warehouse first (a warehouse may report several rows for the
// same variant) and the best single warehouse wins across warehouses:
// independent warehouses cannot be combined to fill one order line, so
// summing across them would overstate availability.
//
// Variants with no matching rows are absent from the result; callers
// treat absence as zero.
func (l *Loader) resolveZone(ctx context.Context, zone string, variantIDs []int64) (map[int64]int64, error) {
	records, err := l.source.FetchRecords(ctx, variantIDs, zone)
	if err != nil {
		metrics.RecordStoreQueryError()
		return nil, fmt.Errorf("fetch stock records for zone %q: %w", zone, err)
	}
	metrics.RecordStoreQuery()
	metrics.RecordStoreRecords(len(records))

	perWarehouse := make(map[int64]map[int64]int64)
	for _, r := range records {
		sums, ok := perWarehouse[r.VariantID]
		if !ok {
			sums = make(map[int64]int64)
			perWarehouse[r.VariantID] = sums
		}
		sums[r.WarehouseID] += r.Quantity
	}

	best := make(map[int64]int64, len(perWarehouse))
	for variantID, sums := range perWarehouse {
		top := int64(0)
		first := true
		for _, sum := range sums {
			if first || sum > top {
				top = sum
				first = false
			}
		}
		best[variantID] = top
	}
	return best, nil
}
