package model_test

import (
	"testing"

	"github.com/okian/tally/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestKey(t *testing.T) {
	Convey("Given availability lookup keys", t, func() {
		Convey("When two keys share variant and zone", func() {
			a := model.Key{VariantID: 42, Zone: "EU"}
			b := model.Key{VariantID: 42, Zone: "EU"}

			Convey("Then they compare equal and collide as map keys", func() {
				So(a == b, ShouldBeTrue)

				seen := map[model.Key]int{a: 1}
				seen[b]++
				So(len(seen), ShouldEqual, 1)
				So(seen[a], ShouldEqual, 2)
			})
		})

		Convey("When keys differ only in zone", func() {
			global := model.Key{VariantID: 42}
			scoped := model.Key{VariantID: 42, Zone: "EU"}

			Convey("Then they are distinct map keys", func() {
				seen := map[model.Key]int{global: 1, scoped: 1}
				So(len(seen), ShouldEqual, 2)
			})

			Convey("Then only the zoned key reports a scope", func() {
				So(global.Scoped(), ShouldBeFalse)
				So(scoped.Scoped(), ShouldBeTrue)
			})
		})
	})
}
