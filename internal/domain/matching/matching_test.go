package matching_test

import (
	"errors"
	"math"
	"testing"

	"github.com/okian/woke/internal/domain/catalog"
	"github.com/okian/woke/internal/domain/geo"
	"github.com/okian/woke/internal/domain/matching"
	"github.com/okian/woke/internal/domain/model"
	"github.com/okian/woke/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

var origin = model.Location{Lat: 0, Lng: 0}

// kmNorth places a point d kilometres north of the origin.
func kmNorth(d float64) (float64, float64) {
	return d / (geo.EarthRadiusKm * math.Pi / 180), 0
}

func provider(id string, km, rate, completion float64, jobs int, tags ...string) model.Provider {
	lat, lng := kmNorth(km)
	if len(tags) == 0 {
		tags = []string{"home_cleaning"}
	}
	return model.Provider{
		ID:        id,
		Name:      id,
		Lat:       lat,
		Lng:       lng,
		SkillTags: tags,
		RateHour:  rate,
		Stats: map[string]model.SkillStats{
			"home_cleaning": {JobsDone: jobs, CompletionRate: completion},
		},
	}
}

func newMatcher(providers []model.Provider, opts ...matching.Option) *matching.Matcher {
	cat, err := catalog.New([]model.ServiceCategory{
		{ID: "home_cleaning", Label: "Home Cleaning"},
		{ID: "car_wash", Label: "Car Wash", SkillTag: "car_care"},
	}, providers, origin)
	if err != nil {
		panic(err)
	}
	return matching.New(cat, opts...)
}

func resultIDs(res matching.Result) []string {
	out := make([]string, len(res.Providers))
	for i, p := range res.Providers {
		out[i] = p.ID
	}
	return out
}

func TestMatch(t *testing.T) {
	Convey("Given a near expensive reliable provider and a far cheap one", t, func() {
		m := newMatcher([]model.Provider{
			provider("P2", 15, 300, 0.80, 10),
			provider("P1", 2, 500, 0.95, 40),
		})

		Convey("When matching at the origin", func() {
			res, err := m.Match("home_cleaning", nil, &origin)
			So(err, ShouldBeNil)

			Convey("Then the near provider ranks first", func() {
				So(resultIDs(res), ShouldResemble, []string{"P1", "P2"})
				So(res.Scored[0].Score, ShouldAlmostEqual, 0.8325, 1e-3)
				So(res.Scored[1].Score, ShouldAlmostEqual, 0.805, 1e-3)
			})

			Convey("Then price favours the cheaper provider", func() {
				So(res.Scored[0].Factors.Price, ShouldEqual, 0)
				So(res.Scored[1].Factors.Price, ShouldEqual, 1)
			})

			Convey("Then ETA and reason lines are rendered", func() {
				So(res.Providers[0].EtaMin, ShouldEqual, 20)
				So(res.Providers[1].EtaMin, ShouldEqual, 12)
				So(res.Providers[0].ReasonLine, ShouldEqual, "P1 — 40 similar jobs (95%), ~20 min away, ₹500/hr.")
				So(res.Providers[1].ReasonLine, ShouldEqual, "P2 — 10 similar jobs (80%), ~12 min away, ₹300/hr.")
				So(res.Providers[0].AvgRating, ShouldEqual, 4.5)
			})

			Convey("Then every factor and score is within [0,1]", func() {
				for _, sp := range res.Scored {
					f := sp.Factors
					for _, v := range []float64{f.Skill, f.Success, f.Distance, f.Rating, f.Price, f.Availability, f.Reliability, f.Experience} {
						So(v, ShouldBeBetweenOrEqual, 0, 1)
					}
					So(sp.Score, ShouldBeBetweenOrEqual, 0, 1)
				}
			})
		})

		Convey("When no location is given", func() {
			res, err := m.Match("home_cleaning", map[string]any{"rooms": "2"}, nil)

			Convey("Then the catalog default location is used", func() {
				So(err, ShouldBeNil)
				So(res.Location, ShouldResemble, origin)
				So(resultIDs(res), ShouldResemble, []string{"P1", "P2"})
			})
		})
	})

	Convey("Given providers with mismatched skills or out of range", t, func() {
		far := provider("far", 8, 400, 0.9, 0)
		far.ServiceRadiusKm = 5
		m := newMatcher([]model.Provider{
			provider("washer", 1, 200, 0.9, 0, "car_care"),
			far,
			provider("edge", 19.9, 400, 0.9, 0),
			provider("beyond", 20.5, 400, 0.9, 0),
		})

		Convey("When matching home cleaning", func() {
			res, err := m.Match("home_cleaning", nil, nil)

			Convey("Then only skilled providers within their radius remain", func() {
				So(err, ShouldBeNil)
				So(resultIDs(res), ShouldResemble, []string{"edge"})
				So(res.Eligible, ShouldEqual, 1)
			})

			Convey("Then a single candidate gets the full price factor", func() {
				So(res.Scored[0].Factors.Price, ShouldEqual, 1)
			})
		})

		Convey("When matching a service whose skill tag differs from its id", func() {
			res, err := m.Match("car_wash", nil, nil)

			Convey("Then the skill tag drives the filter", func() {
				So(err, ShouldBeNil)
				So(resultIDs(res), ShouldResemble, []string{"washer"})
			})

			Convey("Then missing stats default to zero jobs at 90%", func() {
				So(res.Providers[0].ReasonLine, ShouldStartWith, "washer — 0 similar jobs (90%)")
			})
		})
	})

	Convey("Given no eligible providers", t, func() {
		m := newMatcher([]model.Provider{provider("far", 50, 100, 0.9, 0)})

		Convey("When matching", func() {
			res, err := m.Match("home_cleaning", nil, nil)

			Convey("Then the result is empty without error", func() {
				So(err, ShouldBeNil)
				So(res.Providers, ShouldNotBeNil)
				So(res.Providers, ShouldBeEmpty)
			})
		})
	})

	Convey("Given an unknown service", t, func() {
		m := newMatcher(nil)

		Convey("Then ErrUnknownService is returned", func() {
			_, err := m.Match("plumbing", nil, nil)
			So(errors.Is(err, catalog.ErrUnknownService), ShouldBeTrue)
		})
	})

	Convey("Given five eligible providers", t, func() {
		m := newMatcher([]model.Provider{
			provider("a", 1, 300, 0.9, 0),
			provider("b", 2, 300, 0.9, 0),
			provider("c", 3, 300, 0.9, 0),
			provider("d", 4, 300, 0.9, 0),
			provider("e", 5, 300, 0.9, 0),
		})

		Convey("Then only the best three are returned", func() {
			res, _ := m.Match("home_cleaning", nil, nil)
			So(resultIDs(res), ShouldResemble, []string{"a", "b", "c"})
			So(res.Eligible, ShouldEqual, 5)
		})

		Convey("Then the limit is configurable", func() {
			m := newMatcher([]model.Provider{provider("a", 1, 300, 0.9, 0), provider("b", 2, 300, 0.9, 0)}, matching.WithLimit(1))
			res, _ := m.Match("home_cleaning", nil, nil)
			So(resultIDs(res), ShouldResemble, []string{"a"})
		})
	})

	Convey("Given providers with identical scores", t, func() {
		m := newMatcher([]model.Provider{
			provider("zeta", 4, 300, 0.9, 0),
			provider("alpha", 4, 300, 0.9, 0),
			provider("mid", 4, 300, 0.9, 0),
		})

		Convey("Then ties break on provider id", func() {
			res, _ := m.Match("home_cleaning", nil, nil)
			So(resultIDs(res), ShouldResemble, []string{"alpha", "mid", "zeta"})
		})
	})

	Convey("Given a custom currency symbol", t, func() {
		m := newMatcher([]model.Provider{provider("a", 1, 12.5, 0.9, 3)}, matching.WithCurrencySymbol("$"))

		Convey("Then the reason line uses it", func() {
			res, _ := m.Match("home_cleaning", nil, nil)
			So(res.Providers[0].ReasonLine, ShouldEqual, "a — 3 similar jobs (90%), ~20 min away, $12.5/hr.")
		})
	})

	Convey("Given invalid custom weights", t, func() {
		bad := scoring.DefaultWeights()
		bad.Skill = 2
		m := newMatcher([]model.Provider{provider("a", 1, 300, 0.9, 0)}, matching.WithWeights(bad))

		Convey("Then the defaults stay in force", func() {
			res, _ := m.Match("home_cleaning", nil, nil)
			So(res.Scored[0].Score, ShouldBeLessThanOrEqualTo, 1)
		})
	})
}

func TestETA(t *testing.T) {
	Convey("Given distance factors around the cutoff", t, func() {
		So(matching.ETA(0.9), ShouldEqual, 20)
		So(matching.ETA(0.51), ShouldEqual, 20)
		So(matching.ETA(0.5), ShouldEqual, 12)
		So(matching.ETA(0), ShouldEqual, 12)
	})
}
