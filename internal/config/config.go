// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults and Load(ctx) to layer file/env on top.
// - External errors are wrapped with this package's sentinel kinds.
package config

import (
	"fmt"
	"runtime"
	"sort"
	"strings"
	"time"
)

// Provider snapshot sources.
const (
	ProviderSourceFile     = "file"
	ProviderSourcePostgres = "postgres"
)

// Classification cache backends.
const (
	CacheNone   = "none"
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// CatalogPath points at the YAML reference data (services, providers, default location).
	CatalogPath string `koanf:"catalog_path"`

	// ProviderSource selects where the provider snapshot is read from: file or postgres.
	ProviderSource string `koanf:"provider_source"`

	// PostgresDSN is used when ProviderSource is postgres.
	PostgresDSN string `koanf:"postgres_dsn"`

	// LLMBaseURL is the Ollama-compatible endpoint root.
	LLMBaseURL string `koanf:"llm_base_url"`

	// LLMModel names the model passed to the generate endpoint.
	LLMModel string `koanf:"llm_model"`

	// LLMTimeoutMS bounds a single collaborator call.
	LLMTimeoutMS int `koanf:"llm_timeout_ms"`

	// LLMRatePerSec caps outbound collaborator calls; 0 disables the limiter.
	LLMRatePerSec float64 `koanf:"llm_rate_per_sec"`

	// ClassifyWorkers sets the number of collaborator workers.
	ClassifyWorkers int `koanf:"classify_workers"`

	// ClassifyQueueSize bounds pending collaborator jobs.
	ClassifyQueueSize int `koanf:"classify_queue_size"`

	// CacheBackend selects the classification cache: none, memory or redis.
	CacheBackend string `koanf:"cache_backend"`

	// CacheSize bounds the in-memory classification cache.
	CacheSize int `koanf:"cache_size"`

	// CacheTTLSec is the lifetime of cached classifications.
	CacheTTLSec int `koanf:"cache_ttl_sec"`

	// RedisAddr is used when CacheBackend is redis.
	RedisAddr string `koanf:"redis_addr"`

	// CurrencySymbol prefixes the hourly rate in reason lines.
	CurrencySymbol string `koanf:"currency_symbol"`

	// Metrics shapes the exported Prometheus series; empty fields keep the built-in names.
	Metrics Metrics `koanf:"metrics"`
}

// Metrics configures metric naming and latency buckets.
type Metrics struct {
	Namespace string            `koanf:"namespace"`
	Subsystem string            `koanf:"subsystem"`
	Buckets   []float64         `koanf:"buckets"`
	Labels    map[string]string `koanf:"labels"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:          "info",
		LogFormat:         "text",
		Addr:              ":9080",
		CatalogPath:       "configs/catalog.yaml",
		ProviderSource:    ProviderSourceFile,
		LLMBaseURL:        "http://localhost:11434",
		LLMModel:          "llama3.1:8b",
		LLMTimeoutMS:      30_000,
		LLMRatePerSec:     0,
		ClassifyWorkers:   runtime.NumCPU() * 2,
		ClassifyQueueSize: 1_000,
		CacheBackend:      CacheMemory,
		CacheSize:         10_000,
		CacheTTLSec:       600,
		RedisAddr:         "localhost:6379",
		CurrencySymbol:    "₹",
	}
}

// LLMTimeout returns the collaborator timeout as a duration.
func (c *Config) LLMTimeout() time.Duration {
	return time.Duration(c.LLMTimeoutMS) * time.Millisecond
}

// CacheTTL returns the classification cache lifetime as a duration.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSec) * time.Second
}

// Validate reports the first invalid field, wrapped with ErrInvalidConfig.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.CatalogPath == "":
		return fmt.Errorf("%w: catalog_path must not be empty", ErrInvalidConfig)
	case c.LLMTimeoutMS <= 0:
		return fmt.Errorf("%w: llm_timeout_ms must be positive", ErrInvalidConfig)
	case c.LLMRatePerSec < 0:
		return fmt.Errorf("%w: llm_rate_per_sec must not be negative", ErrInvalidConfig)
	case c.ClassifyWorkers <= 0:
		return fmt.Errorf("%w: classify_workers must be positive", ErrInvalidConfig)
	case c.ClassifyQueueSize <= 0:
		return fmt.Errorf("%w: classify_queue_size must be positive", ErrInvalidConfig)
	case !sort.Float64sAreSorted(c.Metrics.Buckets):
		return fmt.Errorf("%w: metrics.buckets must be in increasing order", ErrInvalidConfig)
	}

	switch strings.ToLower(c.ProviderSource) {
	case ProviderSourceFile:
	case ProviderSourcePostgres:
		if c.PostgresDSN == "" {
			return fmt.Errorf("%w: postgres_dsn is required for provider_source=postgres", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown provider_source %q", ErrInvalidConfig, c.ProviderSource)
	}

	switch strings.ToLower(c.CacheBackend) {
	case CacheNone:
	case CacheMemory:
		if c.CacheSize <= 0 {
			return fmt.Errorf("%w: cache_size must be positive", ErrInvalidConfig)
		}
	case CacheRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("%w: redis_addr is required for cache_backend=redis", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown cache_backend %q", ErrInvalidConfig, c.CacheBackend)
	}
	return nil
}
