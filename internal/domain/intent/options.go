package intent

import "time"

// Default classifier configuration constants.
const (
	defaultTimeout       = 30 * time.Second
	defaultMaxCandidates = 5
	defaultFallbackCount = 3
	defaultConfidence    = 0.5
	promptMaxCandidates  = 6
)

// Option applies a configuration option to the Classifier.
type Option func(*Classifier)

// WithTimeout bounds each collaborator call.
func WithTimeout(d time.Duration) Option {
	return func(c *Classifier) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithCache enables caching of successful model classifications.
func WithCache(cache Cache) Option {
	return func(c *Classifier) {
		c.cache = cache
	}
}

// WithMaxCandidates caps the number of returned candidates.
func WithMaxCandidates(n int) Option {
	return func(c *Classifier) {
		if n > 0 {
			c.maxCandidates = n
		}
	}
}
