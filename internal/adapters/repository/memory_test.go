package repository_test

import (
	"context"
	"testing"

	"github.com/okian/tally/internal/adapters/repository"
	"github.com/okian/tally/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMemoryStore(t *testing.T) {
	Convey("Given a memory store with zoned warehouses", t, func() {
		store := repository.NewMemoryStore()
		store.AddStock(1, 10, 5)
		store.AddStock(1, 10, 3) // second row for the same pair stays separate
		store.AddStock(1, 20, 4)
		store.AddStock(2, 20, 7)
		store.AssignZone(10, "EU")
		store.AssignZone(20, "US")

		Convey("When fetching without a zone", func() {
			rows, err := store.FetchRecords(context.Background(), []int64{1, 2}, model.GlobalZone)

			Convey("Then all warehouses are considered", func() {
				So(err, ShouldBeNil)
				So(len(rows), ShouldEqual, 4)
			})
		})

		Convey("When fetching with a zone", func() {
			rows, err := store.FetchRecords(context.Background(), []int64{1, 2}, "EU")

			Convey("Then only rows from warehouses serving that zone come back", func() {
				So(err, ShouldBeNil)
				So(len(rows), ShouldEqual, 2)
				for _, r := range rows {
					So(r.WarehouseID, ShouldEqual, 10)
				}
			})
		})

		Convey("When fetching variants outside the requested set", func() {
			rows, err := store.FetchRecords(context.Background(), []int64{99}, model.GlobalZone)

			Convey("Then no rows are returned and no error is raised", func() {
				So(err, ShouldBeNil)
				So(rows, ShouldBeEmpty)
			})
		})

		Convey("When fetching from a warehouse with no zone assignment", func() {
			store.AddStock(3, 30, 9)
			rows, err := store.FetchRecords(context.Background(), []int64{3}, "EU")

			Convey("Then the unassigned warehouse is excluded", func() {
				So(err, ShouldBeNil)
				So(rows, ShouldBeEmpty)
			})

			Convey("Then a global fetch still sees it", func() {
				rows, err = store.FetchRecords(context.Background(), []int64{3}, model.GlobalZone)
				So(err, ShouldBeNil)
				So(len(rows), ShouldEqual, 1)
			})
		})

		Convey("When the store is closed", func() {
			So(store.Close(), ShouldBeNil)

			Convey("Then fetches fail with ErrStoreClosed", func() {
				_, err := store.FetchRecords(context.Background(), []int64{1}, model.GlobalZone)
				So(err, ShouldEqual, repository.ErrStoreClosed)
			})
		})
	})
}
