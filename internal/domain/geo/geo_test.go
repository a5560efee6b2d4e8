package geo_test

import (
	"math"
	"testing"

	"github.com/okian/woke/internal/domain/geo"
	"github.com/okian/woke/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestDistanceKm(t *testing.T) {
	Convey("Given two points", t, func() {
		bangalore := model.Location{Lat: 12.9716, Lng: 77.5946}
		mumbai := model.Location{Lat: 19.0760, Lng: 72.8777}

		Convey("Then identical points are zero apart", func() {
			So(geo.DistanceKm(bangalore, bangalore), ShouldEqual, 0)
		})

		Convey("Then the distance is symmetric", func() {
			So(geo.DistanceKm(bangalore, mumbai), ShouldAlmostEqual, geo.DistanceKm(mumbai, bangalore), 1e-9)
		})

		Convey("Then Bangalore to Mumbai is roughly 845 km", func() {
			So(geo.DistanceKm(bangalore, mumbai), ShouldAlmostEqual, 845, 5)
		})

		Convey("Then one degree of latitude is about 111.19 km", func() {
			d := geo.DistanceKm(model.Location{Lat: 0, Lng: 0}, model.Location{Lat: 1, Lng: 0})
			So(d, ShouldAlmostEqual, 111.19, 0.01)
		})

		Convey("Then antipodal points are half the circumference apart", func() {
			d := geo.DistanceKm(model.Location{Lat: 0, Lng: 0}, model.Location{Lat: 0, Lng: 180})
			So(d, ShouldAlmostEqual, math.Pi*geo.EarthRadiusKm, 1e-6)
		})
	})
}
