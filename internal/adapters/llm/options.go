package llm

import (
	"time"

	"golang.org/x/time/rate"
)

// Default client configuration constants.
const (
	defaultModel     = "llama3.1:8b"
	defaultTimeout   = 30 * time.Second
	defaultFormat    = "json"
	defaultUserAgent = "woke-matcher/1.0"
)

// Option applies a configuration option to the OllamaClient.
type Option func(*OllamaClient)

// WithModel sets the model name sent with every request.
func WithModel(model string) Option {
	return func(c *OllamaClient) {
		if model != "" {
			c.model = model
		}
	}
}

// WithTimeout bounds a whole request including reading the body.
func WithTimeout(d time.Duration) Option {
	return func(c *OllamaClient) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithRateLimit caps outbound requests per second. rps <= 0 means unlimited.
func WithRateLimit(rps float64) Option {
	return func(c *OllamaClient) {
		if rps <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), max(1, int(rps)))
	}
}

// WithFormat sets the Ollama output format; empty disables constrained output.
func WithFormat(format string) Option {
	return func(c *OllamaClient) {
		c.format = format
	}
}
