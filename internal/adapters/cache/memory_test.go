package cache_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/okian/woke/internal/adapters/cache"
	"github.com/okian/woke/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func candidates(ids ...string) []model.Candidate {
	out := make([]model.Candidate, len(ids))
	for i, id := range ids {
		out[i] = model.Candidate{ServiceID: id, Label: id, Reason: "r", Confidence: 0.7}
	}
	return out
}

func TestMemory(t *testing.T) {
	Convey("Given an in-memory cache", t, func() {
		ctx := context.Background()
		now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		m := cache.NewMemory(
			cache.WithMaxEntries(2),
			cache.WithMemoryTTL(time.Minute),
			cache.WithClock(func() time.Time { return now }),
		)

		Convey("When a key was never set", func() {
			_, err := m.Get(ctx, "missing")

			Convey("Then it is a miss", func() {
				So(errors.Is(err, cache.ErrMiss), ShouldBeTrue)
			})
		})

		Convey("When a key is set", func() {
			So(m.Set(ctx, "k", candidates("car_wash")), ShouldBeNil)
			got, err := m.Get(ctx, "k")

			Convey("Then it is returned", func() {
				So(err, ShouldBeNil)
				So(got, ShouldResemble, candidates("car_wash"))
			})

			Convey("Then the returned slice is a copy", func() {
				got[0].ServiceID = "changed"
				again, _ := m.Get(ctx, "k")
				So(again[0].ServiceID, ShouldEqual, "car_wash")
			})
		})

		Convey("When an entry outlives its TTL", func() {
			_ = m.Set(ctx, "k", candidates("car_wash"))
			now = now.Add(2 * time.Minute)
			_, err := m.Get(ctx, "k")

			Convey("Then it is dropped", func() {
				So(errors.Is(err, cache.ErrMiss), ShouldBeTrue)
				So(m.Len(), ShouldEqual, 0)
			})
		})

		Convey("When more keys are set than the bound", func() {
			_ = m.Set(ctx, "a", candidates("a"))
			_ = m.Set(ctx, "b", candidates("b"))
			_ = m.Set(ctx, "c", candidates("c"))

			Convey("Then the oldest is evicted", func() {
				So(m.Len(), ShouldEqual, 2)
				_, err := m.Get(ctx, "a")
				So(errors.Is(err, cache.ErrMiss), ShouldBeTrue)
				_, err = m.Get(ctx, "c")
				So(err, ShouldBeNil)
			})
		})

		Convey("When an existing key is overwritten", func() {
			_ = m.Set(ctx, "a", candidates("a"))
			_ = m.Set(ctx, "b", candidates("b"))
			_ = m.Set(ctx, "a", candidates("a2"))
			_ = m.Set(ctx, "c", candidates("c"))

			Convey("Then it counts as fresh", func() {
				got, err := m.Get(ctx, "a")
				So(err, ShouldBeNil)
				So(got[0].ServiceID, ShouldEqual, "a2")
				_, err = m.Get(ctx, "b")
				So(errors.Is(err, cache.ErrMiss), ShouldBeTrue)
			})
		})

		Convey("Then Close succeeds", func() {
			So(m.Close(), ShouldBeNil)
		})
	})

	Convey("Given concurrent writers", t, func() {
		m := cache.NewMemory(cache.WithMaxEntries(50))
		ctx := context.Background()

		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				for k := 0; k < 100; k++ {
					key := fmt.Sprintf("%d-%d", i, k)
					_ = m.Set(ctx, key, candidates("x"))
					_, _ = m.Get(ctx, key)
				}
			}(i)
		}
		wg.Wait()

		Convey("Then the bound holds", func() {
			So(m.Len(), ShouldEqual, 50)
		})
	})
}
