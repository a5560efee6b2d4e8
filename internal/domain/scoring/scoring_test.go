package scoring_test

import (
	"errors"
	"testing"

	scoring "github.com/okian/woke/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

func TestNormalize(t *testing.T) {
	Convey("Given the normalization helper", t, func() {
		Convey("Then values inside the range map linearly", func() {
			So(scoring.Normalize(5, 0, 10), ShouldEqual, 0.5)
			So(scoring.Normalize(300, 300, 500), ShouldEqual, 0)
			So(scoring.Normalize(500, 300, 500), ShouldEqual, 1)
		})

		Convey("Then values outside the range are clamped", func() {
			So(scoring.Normalize(-5, 0, 10), ShouldEqual, 0)
			So(scoring.Normalize(15, 0, 10), ShouldEqual, 1)
		})

		Convey("Then a degenerate range yields zero", func() {
			So(scoring.Normalize(7, 3, 3), ShouldEqual, 0)
			So(scoring.Normalize(7, 5, 3), ShouldEqual, 0)
		})
	})
}

func TestCompute(t *testing.T) {
	Convey("Given a near, well-rated provider", t, func() {
		f := scoring.Compute(scoring.Input{
			DistanceKm:     2,
			RadiusKm:       20,
			CompletionRate: 0.95,
			AvgRating:      4.5,
			RateHour:       500,
			MinRate:        300,
			MaxRate:        500,
			Reliability:    0.85,
			JobsDone:       250,
		})

		Convey("Then each factor follows its formula", func() {
			So(f.Skill, ShouldEqual, 1.0)
			So(f.Success, ShouldEqual, 0.95)
			So(f.Distance, ShouldAlmostEqual, 0.9, 1e-9)
			So(f.Rating, ShouldAlmostEqual, 0.9, 1e-9)
			So(f.Price, ShouldEqual, 0)
			So(f.Availability, ShouldEqual, 0.8)
			So(f.Reliability, ShouldEqual, 0.85)
			So(f.Experience, ShouldEqual, 1)
		})
	})

	Convey("Given out-of-range raw values", t, func() {
		f := scoring.Compute(scoring.Input{
			DistanceKm:     25,
			RadiusKm:       20,
			CompletionRate: 1.4,
			AvgRating:      7,
			RateHour:       100,
			MinRate:        100,
			MaxRate:        100,
			Reliability:    -0.2,
		})

		Convey("Then every factor stays in [0,1]", func() {
			for _, v := range []float64{f.Skill, f.Success, f.Distance, f.Rating, f.Price, f.Availability, f.Reliability, f.Experience} {
				So(v, ShouldBeBetweenOrEqual, 0, 1)
			}
			So(f.Distance, ShouldEqual, 0)
			So(f.Price, ShouldEqual, 1)
		})
	})
}

func TestWeights(t *testing.T) {
	Convey("Given the default weights", t, func() {
		w := scoring.DefaultWeights()

		Convey("Then they are valid", func() {
			So(w.Validate(), ShouldBeNil)
		})

		Convey("Then experience does not move the aggregate", func() {
			base := scoring.Factors{Skill: 1, Success: 0.9, Distance: 0.5, Rating: 0.9, Price: 0.5, Availability: 0.8, Reliability: 0.85}
			more := base
			more.Experience = 1
			So(w.Aggregate(more), ShouldEqual, w.Aggregate(base))
		})

		Convey("Then all-ones factors aggregate to one", func() {
			ones := scoring.Factors{Skill: 1, Success: 1, Distance: 1, Rating: 1, Price: 1, Availability: 1, Reliability: 1}
			So(w.Aggregate(ones), ShouldAlmostEqual, 1, 1e-9)
		})
	})

	Convey("Given weights that do not sum to one", t, func() {
		w := scoring.DefaultWeights()
		w.Price = 0.5

		Convey("Then validation fails", func() {
			So(errors.Is(w.Validate(), scoring.ErrInvalidWeights), ShouldBeTrue)
		})
	})

	Convey("Given a negative weight", t, func() {
		w := scoring.DefaultWeights()
		w.Price = -0.1
		w.Skill = 0.45

		Convey("Then validation fails", func() {
			So(errors.Is(w.Validate(), scoring.ErrInvalidWeights), ShouldBeTrue)
		})
	})
}
