package availability_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/okian/tally/internal/domain/availability"
	"github.com/okian/tally/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

// fetchCall records one store query for assertion.
type fetchCall struct {
	variantIDs []int64
	zone       string
}

// fakeSource serves canned rows per zone and counts queries.
type fakeSource struct {
	mu         sync.Mutex
	calls      []fetchCall
	rowsByZone map[string][]model.StockRecord
	err        error
}

func (f *fakeSource) FetchRecords(_ context.Context, variantIDs []int64, zone string) ([]model.StockRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, fetchCall{variantIDs: append([]int64(nil), variantIDs...), zone: zone})
	if f.err != nil {
		return nil, f.err
	}

	wanted := make(map[int64]struct{}, len(variantIDs))
	for _, id := range variantIDs {
		wanted[id] = struct{}{}
	}
	var out []model.StockRecord
	for _, r := range f.rowsByZone[zone] {
		if _, ok := wanted[r.VariantID]; ok {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeSource) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeSource) callFor(zone string) (fetchCall, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.calls {
		if c.zone == zone {
			return c, true
		}
	}
	return fetchCall{}, false
}

func TestNewLoader(t *testing.T) {
	Convey("Given loader construction", t, func() {
		Convey("When the source is nil", func() {
			l, err := availability.NewLoader(nil)

			Convey("Then construction fails", func() {
				So(l, ShouldBeNil)
				So(err, ShouldEqual, availability.ErrNilSource)
			})
		})

		Convey("When the per-line bound is negative", func() {
			l, err := availability.NewLoader(&fakeSource{}, availability.WithMaxPerLine(-1))

			Convey("Then construction fails before any resolve can run", func() {
				So(l, ShouldBeNil)
				So(err, ShouldEqual, availability.ErrInvalidMaxPerLine)
			})
		})

		Convey("When options are valid", func() {
			l, err := availability.NewLoader(&fakeSource{},
				availability.WithMaxPerLine(25),
				availability.WithMaxConcurrentZones(2),
			)

			Convey("Then the loader carries the configured bound", func() {
				So(err, ShouldBeNil)
				So(l.MaxPerLine(), ShouldEqual, 25)
			})
		})
	})
}

func TestResolveAggregation(t *testing.T) {
	Convey("Given stock rows spread over warehouses within one zone", t, func() {
		// Two rows for warehouse 100 sum to 8; warehouse 200 holds 4.
		// The best single warehouse wins, so variant 1 resolves to 8.
		source := &fakeSource{rowsByZone: map[string][]model.StockRecord{
			"EU": {
				{VariantID: 1, WarehouseID: 100, Quantity: 5},
				{VariantID: 1, WarehouseID: 100, Quantity: 3},
				{VariantID: 1, WarehouseID: 200, Quantity: 4},
			},
		}}

		Convey("When the per-line bound is above the aggregate", func() {
			l, err := availability.NewLoader(source, availability.WithMaxPerLine(10))
			So(err, ShouldBeNil)

			out, err := l.Resolve(context.Background(), []model.Key{{VariantID: 1, Zone: "EU"}})

			Convey("Then the warehouse sums are maxed, not summed", func() {
				So(err, ShouldBeNil)
				So(out, ShouldResemble, []int64{8})
			})
		})

		Convey("When the per-line bound is below the aggregate", func() {
			l, err := availability.NewLoader(source, availability.WithMaxPerLine(6))
			So(err, ShouldBeNil)

			out, err := l.Resolve(context.Background(), []model.Key{{VariantID: 1, Zone: "EU"}})

			Convey("Then the result is capped", func() {
				So(err, ShouldBeNil)
				So(out, ShouldResemble, []int64{6})
			})
		})

		Convey("When the per-line bound is zero", func() {
			l, err := availability.NewLoader(source, availability.WithMaxPerLine(0))
			So(err, ShouldBeNil)

			out, err := l.Resolve(context.Background(), []model.Key{{VariantID: 1, Zone: "EU"}})

			Convey("Then every result is zero", func() {
				So(err, ShouldBeNil)
				So(out, ShouldResemble, []int64{0})
			})
		})
	})
}

func TestResolveBatchShape(t *testing.T) {
	Convey("Given a batch with duplicates and a missing variant", t, func() {
		source := &fakeSource{rowsByZone: map[string][]model.StockRecord{
			"EU": {
				{VariantID: 1, WarehouseID: 100, Quantity: 12},
				{VariantID: 2, WarehouseID: 100, Quantity: 3},
			},
		}}
		l, err := availability.NewLoader(source, availability.WithMaxPerLine(50))
		So(err, ShouldBeNil)

		keys := []model.Key{
			{VariantID: 1, Zone: "EU"},
			{VariantID: 2, Zone: "EU"},
			{VariantID: 1, Zone: "EU"}, // duplicate
			{VariantID: 9, Zone: "EU"}, // no stock anywhere
		}

		Convey("When resolving", func() {
			out, err := l.Resolve(context.Background(), keys)

			Convey("Then the output mirrors input order and multiplicity", func() {
				So(err, ShouldBeNil)
				So(len(out), ShouldEqual, len(keys))
				So(out, ShouldResemble, []int64{12, 3, 12, 0})
			})

			Convey("Then duplicate keys receive identical values", func() {
				So(out[0], ShouldEqual, out[2])
			})

			Convey("Then the store saw one query with deduplicated variants", func() {
				So(source.callCount(), ShouldEqual, 1)
				call, ok := source.callFor("EU")
				So(ok, ShouldBeTrue)
				So(call.variantIDs, ShouldResemble, []int64{1, 2, 9})
			})
		})
	})

	Convey("Given an empty batch", t, func() {
		source := &fakeSource{}
		l, err := availability.NewLoader(source)
		So(err, ShouldBeNil)

		Convey("When resolving", func() {
			out, err := l.Resolve(context.Background(), nil)

			Convey("Then the result is empty and the store is never queried", func() {
				So(err, ShouldBeNil)
				So(out, ShouldBeEmpty)
				So(source.callCount(), ShouldEqual, 0)
			})
		})
	})
}

func TestResolveZoneIsolation(t *testing.T) {
	Convey("Given the same variant stocked differently per zone", t, func() {
		source := &fakeSource{rowsByZone: map[string][]model.StockRecord{
			"EU": {{VariantID: 1, WarehouseID: 100, Quantity: 9}},
			"US": {{VariantID: 1, WarehouseID: 300, Quantity: 2}},
			model.GlobalZone: {
				{VariantID: 1, WarehouseID: 100, Quantity: 9},
				{VariantID: 1, WarehouseID: 300, Quantity: 2},
			},
		}}
		l, err := availability.NewLoader(source, availability.WithMaxPerLine(50))
		So(err, ShouldBeNil)

		keys := []model.Key{
			{VariantID: 1, Zone: "EU"},
			{VariantID: 1, Zone: "US"},
			{VariantID: 1}, // no zone scope: all warehouses considered
		}

		Convey("When resolving across zones", func() {
			out, err := l.Resolve(context.Background(), keys)

			Convey("Then zones never bleed into each other", func() {
				So(err, ShouldBeNil)
				So(out, ShouldResemble, []int64{9, 2, 9})
			})

			Convey("Then the store is queried exactly once per distinct zone", func() {
				So(source.callCount(), ShouldEqual, 3)
			})
		})
	})
}

func TestResolveStoreFailure(t *testing.T) {
	Convey("Given a store that fails", t, func() {
		storeErr := errors.New("connection refused")
		source := &fakeSource{err: storeErr}
		l, err := availability.NewLoader(source)
		So(err, ShouldBeNil)

		Convey("When resolving a batch", func() {
			out, err := l.Resolve(context.Background(), []model.Key{
				{VariantID: 1, Zone: "EU"},
				{VariantID: 2, Zone: "US"},
			})

			Convey("Then the whole call fails with no partial results", func() {
				So(out, ShouldBeNil)
				So(errors.Is(err, storeErr), ShouldBeTrue)
			})
		})
	})
}
