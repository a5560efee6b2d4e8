// Package matching filters, scores, and ranks providers for a service request.
package matching

import (
	"fmt"
	"sort"
	"strconv"

	"gonum.org/v1/gonum/floats"

	"github.com/okian/woke/internal/domain/catalog"
	"github.com/okian/woke/internal/domain/geo"
	"github.com/okian/woke/internal/domain/model"
	"github.com/okian/woke/internal/domain/scoring"
)

// ScoredProvider is a provider that passed the skill and radius filter,
// together with its factors and aggregate score.
type ScoredProvider struct {
	Provider   model.Provider
	DistanceKm float64
	Stats      model.SkillStats
	Factors    scoring.Factors
	Score      float64
}

// Result is a ranked shortlist, best first.
type Result struct {
	Providers []model.MatchResult
	Scored    []ScoredProvider // same order as Providers
	Location  model.Location
	Eligible  int // providers that passed the filter
}

// Matcher ranks providers from a catalog snapshot.
type Matcher struct {
	catalog  *catalog.Catalog
	weights  scoring.Weights
	limit    int
	currency string
}

// New creates a Matcher over cat.
func New(cat *catalog.Catalog, opts ...Option) *Matcher {
	m := &Matcher{
		catalog:  cat,
		weights:  scoring.DefaultWeights(),
		limit:    defaultLimit,
		currency: defaultCurrencySymbol,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Match returns up to three providers for serviceID near loc. A nil loc uses
// the catalog default. The spec argument is accepted but does
// not influence scoring. No eligible providers is an empty result, not an error.
func (m *Matcher) Match(serviceID string, _ map[string]any, loc *model.Location) (Result, error) {
	svc, err := m.catalog.Service(serviceID)
	if err != nil {
		return Result{}, err
	}

	where := m.catalog.DefaultLocation()
	if loc != nil {
		where = *loc
	}

	eligible := m.filter(svc.Skill(), where)
	res := Result{Providers: []model.MatchResult{}, Location: where, Eligible: len(eligible)}
	if len(eligible) == 0 {
		return res, nil
	}

	ranked := m.rank(svc.Skill(), eligible)
	if len(ranked) > m.limit {
		ranked = ranked[:m.limit]
	}
	res.Scored = ranked
	res.Providers = make([]model.MatchResult, len(ranked))
	for i, sp := range ranked {
		res.Providers[i] = m.render(sp)
	}
	return res, nil
}

func (m *Matcher) filter(skill string, where model.Location) []ScoredProvider {
	var out []ScoredProvider
	for _, p := range m.catalog.Providers() {
		if !p.HasSkill(skill) {
			continue
		}
		d := geo.DistanceKm(where, p.Location())
		if d > p.Radius() {
			continue
		}
		out = append(out, ScoredProvider{Provider: p, DistanceKm: d, Stats: p.StatsFor(skill)})
	}
	return out
}

func (m *Matcher) rank(skill string, eligible []ScoredProvider) []ScoredProvider {
	rates := make([]float64, len(eligible))
	for i, sp := range eligible {
		rates[i] = sp.Provider.RateHour
	}
	minRate, maxRate := floats.Min(rates), floats.Max(rates)

	for i := range eligible {
		sp := &eligible[i]
		sp.Factors = scoring.Compute(scoring.Input{
			DistanceKm:     sp.DistanceKm,
			RadiusKm:       sp.Provider.Radius(),
			CompletionRate: sp.Stats.CompletionRate,
			AvgRating:      sp.Provider.Rating(),
			RateHour:       sp.Provider.RateHour,
			MinRate:        minRate,
			MaxRate:        maxRate,
			Reliability:    sp.Provider.ReliabilityScore(),
			JobsDone:       sp.Stats.JobsDone,
		})
		sp.Score = m.weights.Aggregate(sp.Factors)
	}

	// ties break on provider id so equal scores rank deterministically
	sort.Slice(eligible, func(i, j int) bool {
		if eligible[i].Score != eligible[j].Score {
			return eligible[i].Score > eligible[j].Score
		}
		return eligible[i].Provider.ID < eligible[j].Provider.ID
	})
	return eligible
}

func (m *Matcher) render(sp ScoredProvider) model.MatchResult {
	eta := ETA(sp.Factors.Distance)
	return model.MatchResult{
		ID:         sp.Provider.ID,
		Name:       sp.Provider.Name,
		RateHour:   sp.Provider.RateHour,
		AvgRating:  sp.Provider.Rating(),
		EtaMin:     eta,
		ReasonLine: ReasonLine(sp.Provider.Name, sp.Stats, eta, m.currency, sp.Provider.RateHour),
	}
}

// ETA buckets the distance factor into minutes. A factor above 0.5 maps to
// 20 minutes and anything else to 12; the mapping is kept as shipped.
func ETA(distanceFactor float64) int {
	if distanceFactor > etaDistanceCutoff {
		return etaFarMin
	}
	return etaNearMin
}

// ReasonLine renders the one-line justification shown next to a provider.
func ReasonLine(name string, stats model.SkillStats, etaMin int, currency string, rateHour float64) string {
	return fmt.Sprintf("%s — %d similar jobs (%d%%), ~%d min away, %s%s/hr.",
		name,
		stats.JobsDone,
		int(stats.CompletionRate*100),
		etaMin,
		currency,
		strconv.FormatFloat(rateHour, 'f', -1, 64),
	)
}
