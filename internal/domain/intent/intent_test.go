package intent_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/okian/woke/internal/domain/catalog"
	"github.com/okian/woke/internal/domain/intent"
	"github.com/okian/woke/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

type fakeGenerator struct {
	mu      sync.Mutex
	reply   string
	err     error
	delay   time.Duration
	calls   int
	prompts []string
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	f.mu.Lock()
	f.calls++
	f.prompts = append(f.prompts, prompt)
	f.mu.Unlock()

	if f.delay > 0 {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(f.delay):
		}
	}
	return f.reply, f.err
}

type mapCache struct {
	entries map[string][]model.Candidate
}

func (m *mapCache) Get(_ context.Context, key string) ([]model.Candidate, error) {
	c, ok := m.entries[key]
	if !ok {
		return nil, errors.New("miss")
	}
	return c, nil
}

func (m *mapCache) Set(_ context.Context, key string, c []model.Candidate) error {
	m.entries[key] = c
	return nil
}

func testCatalog() *catalog.Catalog {
	c, err := catalog.New([]model.ServiceCategory{
		{ID: "beauty_massage", Label: "Massage Therapy", Keywords: []string{"massage", "back pain"}},
		{ID: "home_cleaning", Label: "Home Cleaning", Keywords: []string{"clean", "dust"}},
		{ID: "car_wash", Label: "Car Wash", Keywords: []string{"car", "wash"}},
		{ID: "appliance_repair", Label: "Appliance Repair", Keywords: []string{"fridge", "repair"}},
		{ID: "beauty_facial", Label: "Facial Treatment", Keywords: []string{"facial", "skin"}},
	}, nil, model.Location{})
	if err != nil {
		panic(err)
	}
	return c
}

func ids(cands []model.Candidate) []string {
	out := make([]string, len(cands))
	for i, c := range cands {
		out[i] = c.ServiceID
	}
	return out
}

func TestClassify(t *testing.T) {
	Convey("Given a classifier with a model collaborator", t, func() {
		ctx := context.Background()
		gen := &fakeGenerator{}
		c := intent.New(testCatalog(), gen)

		Convey("When the text is empty or blank", func() {
			for _, text := range []string{"", "   \n\t"} {
				out := c.Classify(ctx, text)
				So(out.Candidates, ShouldBeEmpty)
				So(out.Source, ShouldEqual, intent.SourceNone)
				So(out.Degraded, ShouldBeFalse)
			}

			Convey("Then the collaborator is never called", func() {
				So(gen.calls, ShouldEqual, 0)
			})
		})

		Convey("When the model returns valid candidates", func() {
			gen.reply = `{"candidates":[
				{"service_id":"beauty_massage","reason":"sore back","confidence":0.9},
				{"service_id":"beauty_facial","reason":"relaxing","confidence":0.4}]}`
			out := c.Classify(ctx, "my back hurts")

			Convey("Then they are labeled and returned in order", func() {
				So(out.Degraded, ShouldBeFalse)
				So(out.Source, ShouldEqual, intent.SourceModel)
				So(ids(out.Candidates), ShouldResemble, []string{"beauty_massage", "beauty_facial"})
				So(out.Candidates[0].Label, ShouldEqual, "Massage Therapy")
				So(out.Candidates[0].Reason, ShouldEqual, "sore back")
				So(out.Candidates[0].Confidence, ShouldEqual, 0.9)
			})

			Convey("Then the collaborator is called exactly once with every id in the prompt", func() {
				So(gen.calls, ShouldEqual, 1)
				So(gen.prompts[0], ShouldContainSubstring, "beauty_massage, home_cleaning, car_wash, appliance_repair, beauty_facial")
				So(gen.prompts[0], ShouldEndWith, `USER: "my back hurts"`)
			})
		})

		Convey("When the model proposes unknown ids", func() {
			gen.reply = `{"candidates":[{"service_id":"plumbing","reason":"x","confidence":0.9},{"service_id":"car_wash","reason":"y","confidence":0.8}]}`
			out := c.Classify(ctx, "leaky car")

			Convey("Then unknown ids are dropped silently", func() {
				So(out.Degraded, ShouldBeFalse)
				So(ids(out.Candidates), ShouldResemble, []string{"car_wash"})
			})
		})

		Convey("When the model proposes only unknown ids", func() {
			gen.reply = `{"candidates":[{"service_id":"plumbing","reason":"x","confidence":0.9}]}`
			out := c.Classify(ctx, "wash my car")

			Convey("Then the model outcome is an empty list, not a fallback", func() {
				So(out.Source, ShouldEqual, intent.SourceModel)
				So(out.Degraded, ShouldBeFalse)
				So(out.Cause, ShouldEqual, intent.CauseNone)
				So(out.Candidates, ShouldNotBeNil)
				So(out.Candidates, ShouldBeEmpty)
			})
		})

		Convey("When the model proposes more than five candidates", func() {
			gen.reply = `{"candidates":[
				{"service_id":"car_wash"},{"service_id":"home_cleaning"},{"service_id":"beauty_massage"},
				{"service_id":"beauty_facial"},{"service_id":"appliance_repair"},{"service_id":"car_wash"}]}`
			out := c.Classify(ctx, "everything")

			Convey("Then only the first five are kept", func() {
				So(len(out.Candidates), ShouldEqual, 5)
				So(out.Candidates[4].ServiceID, ShouldEqual, "appliance_repair")
			})

			Convey("Then missing confidences default to 0.5", func() {
				So(out.Candidates[0].Confidence, ShouldEqual, 0.5)
			})
		})

		Convey("When the model returns out-of-range confidence", func() {
			gen.reply = `{"candidates":[{"service_id":"car_wash","reason":"r","confidence":1.7},{"service_id":"home_cleaning","reason":"r","confidence":-2}]}`
			out := c.Classify(ctx, "car")

			Convey("Then confidences are clamped to [0,1]", func() {
				So(out.Candidates[0].Confidence, ShouldEqual, 1)
				So(out.Candidates[1].Confidence, ShouldEqual, 0)
			})
		})

		Convey("When the model returns non-JSON text", func() {
			gen.reply = "I think you need a massage!"
			out := c.Classify(ctx, "I need a MASSAGE")

			Convey("Then keyword fallback runs with the candidate reason", func() {
				So(out.Degraded, ShouldBeTrue)
				So(out.Cause, ShouldEqual, intent.CauseMalformed)
				So(out.Source, ShouldEqual, intent.SourceFallback)
				So(errors.Is(out.Err, intent.ErrMalformedReply), ShouldBeTrue)
				So(ids(out.Candidates), ShouldResemble, []string{"beauty_massage"})
				So(out.Candidates[0].Reason, ShouldEqual, "Candidate: Massage Therapy")
				So(out.Candidates[0].Confidence, ShouldEqual, 0.5)
			})
		})

		Convey("When the model returns an empty candidate list", func() {
			gen.reply = `{"candidates":[]}`
			out := c.Classify(ctx, "something vague")

			Convey("Then the first three categories are proposed", func() {
				So(out.Degraded, ShouldBeTrue)
				So(out.Cause, ShouldEqual, intent.CauseEmpty)
				So(ids(out.Candidates), ShouldResemble, []string{"beauty_massage", "home_cleaning", "car_wash"})
			})
		})

		Convey("When the collaborator fails", func() {
			gen.err = errors.New("connection refused")
			out := c.Classify(ctx, "wash my car and clean the house")

			Convey("Then keyword fallback runs with the keyword reason", func() {
				So(out.Degraded, ShouldBeTrue)
				So(out.Cause, ShouldEqual, intent.CauseTransport)
				So(out.Err, ShouldEqual, gen.err)
				So(ids(out.Candidates), ShouldResemble, []string{"home_cleaning", "car_wash"})
				So(out.Candidates[0].Reason, ShouldEqual, "Keyword match: Home Cleaning")
			})
		})
	})

	Convey("Given a slow collaborator and a short timeout", t, func() {
		gen := &fakeGenerator{reply: `{"candidates":[{"service_id":"car_wash"}]}`, delay: time.Second}
		c := intent.New(testCatalog(), gen, intent.WithTimeout(20*time.Millisecond))

		Convey("When classifying", func() {
			start := time.Now()
			out := c.Classify(context.Background(), "fix my fridge")

			Convey("Then the call is abandoned and the fallback used", func() {
				So(time.Since(start), ShouldBeLessThan, 500*time.Millisecond)
				So(out.Degraded, ShouldBeTrue)
				So(out.Cause, ShouldEqual, intent.CauseTransport)
				So(errors.Is(out.Err, context.DeadlineExceeded), ShouldBeTrue)
				So(ids(out.Candidates), ShouldResemble, []string{"appliance_repair"})
			})
		})
	})

	Convey("Given a classifier capped at two candidates", t, func() {
		gen := &fakeGenerator{reply: `{"candidates":[{"service_id":"car_wash"},{"service_id":"home_cleaning"},{"service_id":"beauty_facial"}]}`}
		c := intent.New(testCatalog(), gen, intent.WithMaxCandidates(2))

		Convey("When the model proposes three", func() {
			out := c.Classify(context.Background(), "everything")

			Convey("Then only the first two are kept", func() {
				So(ids(out.Candidates), ShouldResemble, []string{"car_wash", "home_cleaning"})
			})
		})
	})

	Convey("Given a classifier with a cache", t, func() {
		ctx := context.Background()
		gen := &fakeGenerator{reply: `{"candidates":[{"service_id":"car_wash","reason":"car","confidence":0.8}]}`}
		cache := &mapCache{entries: map[string][]model.Candidate{}}
		c := intent.New(testCatalog(), gen, intent.WithCache(cache))

		Convey("When the same text is classified twice", func() {
			first := c.Classify(ctx, "Wash my  car")
			second := c.Classify(ctx, "wash my car")

			Convey("Then the second answer comes from the cache", func() {
				So(first.Source, ShouldEqual, intent.SourceModel)
				So(second.Source, ShouldEqual, intent.SourceCache)
				So(second.Candidates, ShouldResemble, first.Candidates)
				So(gen.calls, ShouldEqual, 1)
			})
		})

		Convey("When the model is degraded", func() {
			gen.err = errors.New("down")
			c.Classify(ctx, "dusty room")

			Convey("Then nothing is cached", func() {
				So(cache.entries, ShouldBeEmpty)
			})
		})

		Convey("When the model proposes only unknown ids", func() {
			gen.reply = `{"candidates":[{"service_id":"plumbing","reason":"x","confidence":0.9}]}`
			first := c.Classify(ctx, "leaky tap")
			second := c.Classify(ctx, "leaky tap")

			Convey("Then the empty answer is not cached", func() {
				So(first.Candidates, ShouldBeEmpty)
				So(second.Source, ShouldEqual, intent.SourceModel)
				So(cache.entries, ShouldBeEmpty)
				So(gen.calls, ShouldEqual, 2)
			})
		})
	})
}

func TestBuildPrompt(t *testing.T) {
	Convey("Given catalog ids and text", t, func() {
		p := intent.BuildPrompt([]string{"a", "b"}, "help")

		Convey("Then the prompt asks for strict JSON over those ids", func() {
			So(p, ShouldStartWith, "You classify vague home-service requests into up to 6 candidate intents with reasons.\n")
			So(p, ShouldContainSubstring, `{"candidates":[{"service_id":"...","reason":"...","confidence":0-1}]}`)
			So(p, ShouldContainSubstring, "Use ONLY these IDs: a, b.")
			So(strings.HasSuffix(p, "\n\nUSER: \"help\""), ShouldBeTrue)
		})
	})
}

func TestKeywordCandidates(t *testing.T) {
	Convey("Given the catalog services", t, func() {
		services := testCatalog().Services()

		Convey("Then matching is case-insensitive and in catalog order", func() {
			out := intent.KeywordCandidates(services, "My SKIN and my Car", "Keyword match: ")
			So(ids(out), ShouldResemble, []string{"car_wash", "beauty_facial"})
			So(out[1].Reason, ShouldEqual, "Keyword match: Facial Treatment")
		})

		Convey("Then no hits yields the first three categories", func() {
			out := intent.KeywordCandidates(services, "zzz", "Candidate: ")
			So(ids(out), ShouldResemble, []string{"beauty_massage", "home_cleaning", "car_wash"})
		})

		Convey("Then fewer than three categories are all returned", func() {
			out := intent.KeywordCandidates(services[:2], "zzz", "Candidate: ")
			So(len(out), ShouldEqual, 2)
		})
	})
}

func TestCacheKey(t *testing.T) {
	Convey("Given texts differing only in case and spacing", t, func() {
		Convey("Then they share a key", func() {
			So(intent.CacheKey("Clean  my\thouse"), ShouldEqual, intent.CacheKey("clean my house"))
			So(intent.CacheKey("clean my house"), ShouldNotEqual, intent.CacheKey("clean my car"))
		})
	})
}
