package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/okian/woke/internal/domain/model"
	"github.com/okian/woke/pkg/metrics"
)

const (
	backendRedis     = "redis"
	defaultKeyPrefix = "woke:classify:"
	defaultRedisTTL  = 10 * time.Minute
)

// Redis stores classifications as JSON strings with a TTL.
type Redis struct {
	client redis.Cmdable
	prefix string
	ttl    time.Duration
}

// NewRedis wraps an existing client. A zero ttl uses the default.
func NewRedis(client redis.Cmdable, ttl time.Duration) *Redis {
	if ttl <= 0 {
		ttl = defaultRedisTTL
	}
	return &Redis{client: client, prefix: defaultKeyPrefix, ttl: ttl}
}

// Get returns the cached candidates or ErrMiss.
func (r *Redis) Get(ctx context.Context, key string) ([]model.Candidate, error) {
	raw, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		metrics.RecordCacheRequest(backendRedis, "miss")
		return nil, ErrMiss
	}
	if err != nil {
		metrics.RecordCacheRequest(backendRedis, "error")
		metrics.RecordErrorByComponent("cache", "redis_get")
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var out []model.Candidate
	if err := json.Unmarshal(raw, &out); err != nil {
		metrics.RecordCacheRequest(backendRedis, "error")
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	metrics.RecordCacheRequest(backendRedis, "hit")
	return out, nil
}

// Set stores candidates under key with the configured TTL.
func (r *Redis) Set(ctx context.Context, key string, candidates []model.Candidate) error {
	data, err := json.Marshal(candidates)
	if err != nil {
		return fmt.Errorf("encode candidates: %w", err)
	}
	if err := r.client.Set(ctx, r.prefix+key, data, r.ttl).Err(); err != nil {
		metrics.RecordErrorByComponent("cache", "redis_set")
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Ping checks connectivity.
func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close releases the underlying client when it owns a connection pool.
func (r *Redis) Close() error {
	if c, ok := r.client.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}
