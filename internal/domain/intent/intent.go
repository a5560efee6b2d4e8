// Package intent maps free-text customer requests onto catalog service ids.
//
// A language-model collaborator is asked first; when it is unreachable or its
// reply is unusable the classifier degrades to keyword matching. Collaborator
// failures never escape Classify: they are reported on the returned Outcome.
package intent

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/okian/woke/internal/domain/catalog"
	"github.com/okian/woke/internal/domain/model"
)

// Generator is the language-model collaborator. It returns the model's raw
// text for prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Cache stores classifications keyed by CacheKey. Any Get error is a miss.
type Cache interface {
	Get(ctx context.Context, key string) ([]model.Candidate, error)
	Set(ctx context.Context, key string, candidates []model.Candidate) error
}

// Source identifies where an Outcome's candidates came from.
type Source string

const (
	SourceNone     Source = "none"
	SourceModel    Source = "model"
	SourceFallback Source = "fallback"
	SourceCache    Source = "cache"
)

// Cause explains why an Outcome is degraded.
type Cause string

const (
	CauseNone      Cause = ""
	CauseTransport Cause = "transport"
	CauseMalformed Cause = "malformed"
	CauseEmpty     Cause = "empty"
)

// Outcome is the result of one classification.
type Outcome struct {
	Candidates []model.Candidate
	Source     Source
	Degraded   bool
	Cause      Cause
	Err        error // underlying collaborator or parse error when Degraded
}

// Classifier turns text into ranked service candidates.
type Classifier struct {
	catalog       *catalog.Catalog
	gen           Generator
	cache         Cache
	timeout       time.Duration
	maxCandidates int
}

// New creates a Classifier over cat using gen as the model collaborator.
func New(cat *catalog.Catalog, gen Generator, opts ...Option) *Classifier {
	c := &Classifier{
		catalog:       cat,
		gen:           gen,
		timeout:       defaultTimeout,
		maxCandidates: defaultMaxCandidates,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify returns up to five candidates for text. Blank text yields no
// candidates and no collaborator call. The collaborator is called at most once.
func (c *Classifier) Classify(ctx context.Context, text string) Outcome {
	text = strings.TrimSpace(text)
	if text == "" {
		return Outcome{Candidates: []model.Candidate{}, Source: SourceNone}
	}

	key := CacheKey(text)
	if cached, ok := c.lookup(ctx, key); ok {
		return Outcome{Candidates: cached, Source: SourceCache}
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	raw, err := c.gen.Generate(callCtx, BuildPrompt(c.catalog.IDs(), text))
	cancel()
	if err != nil {
		return c.degrade(text, CauseTransport, err)
	}

	parsed, err := ParseReply(raw)
	if err != nil {
		cause := CauseMalformed
		if errors.Is(err, ErrEmptyReply) {
			cause = CauseEmpty
		}
		return c.degrade(text, cause, err)
	}

	// unknown ids are dropped without refill, so out may be empty
	out := c.enrich(parsed)
	if c.cache != nil && len(out) > 0 {
		// best effort
		_ = c.cache.Set(ctx, key, out)
	}
	return Outcome{Candidates: out, Source: SourceModel}
}

func (c *Classifier) lookup(ctx context.Context, key string) ([]model.Candidate, bool) {
	if c.cache == nil {
		return nil, false
	}
	cached, err := c.cache.Get(ctx, key)
	if err != nil || len(cached) == 0 {
		return nil, false
	}
	// the catalog may have changed since the entry was written
	out := c.enrich(cached)
	return out, len(out) > 0
}

// enrich truncates to maxCandidates, drops ids the catalog does not know,
// attaches labels, and clamps confidences.
func (c *Classifier) enrich(in []model.Candidate) []model.Candidate {
	if len(in) > c.maxCandidates {
		in = in[:c.maxCandidates]
	}
	out := make([]model.Candidate, 0, len(in))
	for _, cand := range in {
		svc, err := c.catalog.Service(cand.ServiceID)
		if err != nil {
			continue
		}
		cand.Label = svc.Label
		if cand.Reason == "" {
			cand.Reason = "Candidate: " + svc.Label
		}
		cand.Confidence = clamp01(cand.Confidence)
		out = append(out, cand)
	}
	return out
}

func (c *Classifier) degrade(text string, cause Cause, err error) Outcome {
	reason := "Candidate: "
	if cause == CauseTransport {
		reason = "Keyword match: "
	}
	return Outcome{
		Candidates: c.enrich(KeywordCandidates(c.catalog.Services(), text, reason)),
		Source:     SourceFallback,
		Degraded:   true,
		Cause:      cause,
		Err:        err,
	}
}

// CacheKey returns a stable key for text: lower-cased, whitespace collapsed,
// SHA-256 hex encoded.
func CacheKey(text string) string {
	norm := strings.Join(strings.Fields(strings.ToLower(text)), " ")
	sum := sha256.Sum256([]byte(norm))
	return hex.EncodeToString(sum[:])
}

func clamp01(x float64) float64 {
	switch {
	case x < 0:
		return 0
	case x > 1:
		return 1
	default:
		return x
	}
}
