// Package followup decides which clarifying questions remain for a chosen
// service category.
package followup

import (
	"github.com/okian/woke/internal/domain/catalog"
	"github.com/okian/woke/internal/domain/model"
)

// Result is the resolver's answer for one round of questions.
type Result struct {
	Next          []model.Followup `json:"next"`
	Ready         bool             `json:"ready"`
	EstimateHours [2]float64       `json:"estimate_hours"`
}

// Resolver is stateless; the caller carries the answers between rounds.
type Resolver struct {
	catalog *catalog.Catalog
}

// New creates a Resolver over cat.
func New(cat *catalog.Catalog) *Resolver {
	return &Resolver{catalog: cat}
}

// Resolve returns the unanswered followups of serviceID in catalog order.
// A followup counts as answered when its id is a key of answers, whatever
// the value. Unknown ids fail with catalog.ErrUnknownService.
func (r *Resolver) Resolve(serviceID string, answers map[string]any) (Result, error) {
	svc, err := r.catalog.Service(serviceID)
	if err != nil {
		return Result{}, err
	}

	next := make([]model.Followup, 0, len(svc.Followups))
	for _, f := range svc.Followups {
		if _, answered := answers[f.ID]; answered {
			continue
		}
		f.Options = append([]string(nil), f.Options...)
		next = append(next, f)
	}

	return Result{
		Next:          next,
		Ready:         len(next) == 0,
		EstimateHours: svc.Estimate(),
	}, nil
}
