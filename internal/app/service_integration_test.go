package service_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/smartystreets/goconvey/convey"

	service "github.com/okian/woke/internal/app"
	"github.com/okian/woke/internal/config"
	"github.com/okian/woke/internal/domain/intent"
)

// fakeOllama answers /api/generate with reply and counts generate calls.
func fakeOllama(reply string, calls *atomic.Int32) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/tags":
			_, _ = w.Write([]byte(`{"models":[]}`))
		case "/api/generate":
			calls.Add(1)
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]any{"response": reply, "done": true})
		default:
			http.NotFound(w, r)
		}
	}))
}

func TestServiceIntegration(t *testing.T) {
	convey.Convey("Given a service wired from config with redis caching", t, func() {
		var calls atomic.Int32
		srv := fakeOllama(`{"candidates":[{"service_id":"beauty_massage","reason":"sore back","confidence":0.8},{"service_id":"not_a_service","reason":"x","confidence":0.4}]}`, &calls)
		defer srv.Close()

		mr := miniredis.RunT(t)

		cfg := config.New()
		cfg.CatalogPath = testCatalogPath
		cfg.LLMBaseURL = srv.URL
		cfg.LLMTimeoutMS = 2_000
		cfg.ClassifyWorkers = 2
		cfg.CacheBackend = config.CacheRedis
		cfg.RedisAddr = mr.Addr()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		opts, err := service.OptionsFromConfig(ctx, cfg)
		convey.So(err, convey.ShouldBeNil)

		svc := service.New(opts...)
		convey.So(svc.Start(ctx), convey.ShouldBeNil)
		defer func() { _ = svc.Stop(context.Background()) }()

		convey.Convey("When classifying the same request twice", func() {
			first, err := svc.Classify(ctx, "my back hurts, need a massage")
			convey.So(err, convey.ShouldBeNil)
			second, err := svc.Classify(ctx, "My back hurts,  need a massage")
			convey.So(err, convey.ShouldBeNil)

			convey.Convey("Then unknown ids are dropped and the answer is cached in redis", func() {
				convey.So(first.Source, convey.ShouldEqual, intent.SourceModel)
				convey.So(len(first.Candidates), convey.ShouldEqual, 1)
				convey.So(first.Candidates[0].Label, convey.ShouldEqual, "Massage Therapy")

				convey.So(second.Source, convey.ShouldEqual, intent.SourceCache)
				convey.So(calls.Load(), convey.ShouldEqual, 1)

				keys := mr.Keys()
				convey.So(len(keys), convey.ShouldEqual, 1)
				convey.So(strings.HasPrefix(keys[0], "woke:classify:"), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When walking the whole flow", func() {
			out, err := svc.Classify(ctx, "massage please")
			convey.So(err, convey.ShouldBeNil)
			serviceID := out.Candidates[0].ServiceID

			answers := map[string]any{}
			for {
				res, err := svc.Followups(ctx, serviceID, answers)
				convey.So(err, convey.ShouldBeNil)
				if res.Ready {
					break
				}
				answers[res.Next[0].ID] = "any"
			}
			match, err := svc.Match(ctx, serviceID, answers, nil)

			convey.Convey("Then massage providers are shortlisted", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(len(answers), convey.ShouldEqual, 3)
				convey.So(len(match.Providers), convey.ShouldBeBetweenOrEqual, 1, 3)
				for _, sp := range match.Scored {
					convey.So(sp.Provider.HasSkill("massage"), convey.ShouldBeTrue)
				}
			})
		})
	})

	convey.Convey("Given an unreachable language model", t, func() {
		cfg := config.New()
		cfg.CatalogPath = testCatalogPath
		cfg.LLMBaseURL = "http://127.0.0.1:1"
		cfg.LLMTimeoutMS = 500
		cfg.CacheBackend = config.CacheMemory

		ctx := context.Background()
		opts, err := service.OptionsFromConfig(ctx, cfg)
		convey.So(err, convey.ShouldBeNil)

		svc := service.New(opts...)
		convey.So(svc.Start(ctx), convey.ShouldBeNil)
		defer func() { _ = svc.Stop(context.Background()) }()

		convey.Convey("When classifying", func() {
			first, _ := svc.Classify(ctx, "fix my fridge")
			second, _ := svc.Classify(ctx, "fix my fridge")

			convey.Convey("Then both answers degrade and nothing is cached", func() {
				convey.So(first.Degraded, convey.ShouldBeTrue)
				convey.So(second.Degraded, convey.ShouldBeTrue)
				convey.So(second.Source, convey.ShouldEqual, intent.SourceFallback)
				convey.So(first.Candidates[0].ServiceID, convey.ShouldEqual, "appliance_repair")
			})
		})
	})

	convey.Convey("Given a postgres provider source that cannot connect", t, func() {
		cfg := config.New()
		cfg.ProviderSource = config.ProviderSourcePostgres
		cfg.PostgresDSN = "postgres://woke@127.0.0.1:1/woke?sslmode=disable&connect_timeout=1"
		cfg.LLMBaseURL = "http://127.0.0.1:1"
		cfg.LLMTimeoutMS = 500

		convey.Convey("Then wiring fails", func() {
			_, err := service.OptionsFromConfig(context.Background(), cfg)
			convey.So(err, convey.ShouldNotBeNil)
		})
	})
}
