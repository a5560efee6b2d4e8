package service

import (
	"context"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/okian/woke/internal/adapters/cache"
	"github.com/okian/woke/internal/adapters/llm"
	"github.com/okian/woke/internal/adapters/repository"
	"github.com/okian/woke/internal/config"
	"github.com/okian/woke/pkg/logger"
)

// OptionsFromConfig builds the adapters selected by cfg and returns the
// options that hand them to New. Resources opened here are released by Stop.
func OptionsFromConfig(ctx context.Context, cfg *config.Config) ([]Option, error) {
	log := logger.Get().Named("wiring")

	client := llm.NewOllamaClient(cfg.LLMBaseURL,
		llm.WithModel(cfg.LLMModel),
		llm.WithTimeout(cfg.LLMTimeout()),
		llm.WithRateLimit(cfg.LLMRatePerSec),
	)
	if err := client.Ping(ctx); err != nil {
		log.Warn(ctx, "language model endpoint unreachable, classification will use keyword fallback",
			logger.String("url", cfg.LLMBaseURL),
			logger.Error(err),
		)
	}

	opts := []Option{
		WithCatalogPath(cfg.CatalogPath),
		WithWorkerCount(cfg.ClassifyWorkers),
		WithQueueSize(cfg.ClassifyQueueSize),
		WithClassifyTimeout(cfg.LLMTimeout()),
		WithCurrencySymbol(cfg.CurrencySymbol),
		WithGenerator(client),
	}

	if strings.EqualFold(cfg.ProviderSource, config.ProviderSourcePostgres) {
		db, err := repository.OpenPostgres(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		src := repository.NewPostgresProviders(db)
		opts = append(opts, WithProviderSource(src), WithCloser(src))
		log.Info(ctx, "providers loaded from postgres")
	}

	switch strings.ToLower(cfg.CacheBackend) {
	case config.CacheMemory:
		mem := cache.NewMemory(
			cache.WithMaxEntries(cfg.CacheSize),
			cache.WithMemoryTTL(cfg.CacheTTL()),
		)
		opts = append(opts, WithCache(mem, config.CacheMemory), WithCloser(mem))
	case config.CacheRedis:
		rc := cache.NewRedis(redis.NewClient(&redis.Options{Addr: cfg.RedisAddr}), cfg.CacheTTL())
		if err := rc.Ping(ctx); err != nil {
			log.Warn(ctx, "redis unreachable, cache lookups will miss",
				logger.String("addr", cfg.RedisAddr),
				logger.Error(err),
			)
		}
		opts = append(opts, WithCache(rc, config.CacheRedis), WithCloser(rc))
	}

	return opts, nil
}
