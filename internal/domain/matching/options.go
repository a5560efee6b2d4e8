package matching

import "github.com/okian/woke/internal/domain/scoring"

// Default matcher configuration constants.
const (
	defaultLimit          = 3
	defaultCurrencySymbol = "₹"

	etaNearMin        = 12
	etaFarMin         = 20
	etaDistanceCutoff = 0.5
)

// Option applies a configuration option to the Matcher.
type Option func(*Matcher)

// WithWeights replaces the default weighting. Invalid weights are ignored.
func WithWeights(w scoring.Weights) Option {
	return func(m *Matcher) {
		if w.Validate() == nil {
			m.weights = w
		}
	}
}

// WithLimit caps the shortlist length.
func WithLimit(n int) Option {
	return func(m *Matcher) {
		if n > 0 {
			m.limit = n
		}
	}
}

// WithCurrencySymbol sets the prefix used for rates in reason lines.
func WithCurrencySymbol(sym string) Option {
	return func(m *Matcher) {
		if sym != "" {
			m.currency = sym
		}
	}
}
