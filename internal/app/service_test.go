package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/okian/tally/internal/adapters/repository"
	service "github.com/okian/tally/internal/app"
	"github.com/okian/tally/internal/domain/model"
	"github.com/okian/tally/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func seededStore() *repository.MemoryStore {
	store := repository.NewMemoryStore()
	// Variant 1: 5+3 in warehouse 100, 4 in warehouse 200, both EU.
	store.AddStock(1, 100, 5)
	store.AddStock(1, 100, 3)
	store.AddStock(1, 200, 4)
	// Variant 2 only ships from the US.
	store.AddStock(2, 300, 70)
	store.AssignZone(100, "EU")
	store.AssignZone(200, "EU")
	store.AssignZone(300, "US")
	return store
}

func TestServiceLifecycle(t *testing.T) {
	if err := logger.Init(); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}

	Convey("Given a service over a seeded in-memory store", t, func() {
		svc := service.New(
			service.WithStore(seededStore()),
			service.WithMaxLineQuantity(10),
			service.WithBatchWindow(5*time.Millisecond),
		)
		So(svc.Start(context.Background()), ShouldBeNil)
		defer svc.Stop()

		Convey("When resolving a batch", func() {
			out, err := svc.Availability(context.Background(), []model.Key{
				{VariantID: 1, Zone: "EU"},
				{VariantID: 2, Zone: "EU"},
				{VariantID: 2, Zone: "US"},
				{VariantID: 1}, // global scope
			})

			Convey("Then quantities follow sum-then-max with the cap applied", func() {
				So(err, ShouldBeNil)
				// Variant 1 in EU: max(5+3, 4) = 8.
				// Variant 2 has no EU stock, 70 in US capped at 10.
				So(out, ShouldResemble, []int64{8, 0, 10, 8})
			})
		})

		Convey("When loading single keys concurrently", func() {
			var wg sync.WaitGroup
			results := make([]int64, 4)
			for i := 0; i < 4; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					results[i], _ = svc.Load(context.Background(), model.Key{VariantID: 1, Zone: "EU"})
				}(i)
			}
			wg.Wait()

			Convey("Then every caller sees the same coalesced answer", func() {
				for _, got := range results {
					So(got, ShouldEqual, 8)
				}
			})
		})

		Convey("When reading stats", func() {
			stats := svc.GetStats()

			Convey("Then the configured shape is reported", func() {
				So(stats["started"], ShouldEqual, true)
				So(stats["store"], ShouldEqual, "memory")
				So(stats["maxLineQuantity"], ShouldEqual, int64(10))
			})
		})

		Convey("When the cap is reported", func() {
			So(svc.MaxLineQuantity(), ShouldEqual, 10)
		})
	})

	Convey("Given a service that was never started", t, func() {
		svc := service.New()

		Convey("When calling into it", func() {
			_, batchErr := svc.Availability(context.Background(), nil)
			_, loadErr := svc.Load(context.Background(), model.Key{VariantID: 1})

			Convey("Then calls fail with ErrNotStarted", func() {
				So(batchErr, ShouldNotBeNil)
				So(loadErr, ShouldNotBeNil)
			})
		})
	})
}

func TestServiceInvalidCap(t *testing.T) {
	if err := logger.Init(); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}

	Convey("Given a negative quantity cap", t, func() {
		svc := service.New(
			service.WithStore(repository.NewMemoryStore()),
			service.WithMaxLineQuantity(-5),
		)

		Convey("When starting", func() {
			err := svc.Start(context.Background())

			Convey("Then startup fails before any resolve can run", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})
}
