// Package scoring holds the normalization helpers and the weighted factor
// model used to rank providers.
package scoring

import (
	"errors"
	"fmt"
	"math"
)

// Constant factor values. availability has no live signal yet.
const (
	SkillMatch        = 1.0
	AvailabilityScore = 0.8
	experienceJobs    = 100.0
	weightSumEpsilon  = 1e-9
)

// ErrInvalidWeights reports weights that are negative or do not sum to 1.
var ErrInvalidWeights = errors.New("invalid weights")

// Clamp01 limits x to [0,1].
func Clamp01(x float64) float64 {
	return math.Max(0, math.Min(1, x))
}

// Normalize maps x from [lo,hi] onto [0,1], clamping outside values.
// A degenerate range (hi <= lo) yields 0.
func Normalize(x, lo, hi float64) float64 {
	if hi <= lo {
		return 0
	}
	return Clamp01((x - lo) / (hi - lo))
}

// Factors are the per-provider components of a match score, each in [0,1].
type Factors struct {
	Skill        float64 `json:"skill"`
	Success      float64 `json:"success"`
	Distance     float64 `json:"distance"`
	Rating       float64 `json:"rating"`
	Price        float64 `json:"price"`
	Availability float64 `json:"availability"`
	Reliability  float64 `json:"reliability"`
	Experience   float64 `json:"experience"`
}

// Input is the raw material for one provider's factors.
type Input struct {
	DistanceKm     float64
	RadiusKm       float64
	CompletionRate float64
	AvgRating      float64
	RateHour       float64
	MinRate        float64
	MaxRate        float64
	Reliability    float64
	JobsDone       int
}

// Compute derives the factors for in. Every factor is clamped to [0,1].
func Compute(in Input) Factors {
	return Factors{
		Skill:        SkillMatch,
		Success:      Clamp01(in.CompletionRate),
		Distance:     Normalize(in.RadiusKm-in.DistanceKm, 0, in.RadiusKm),
		Rating:       Clamp01(in.AvgRating / 5),
		Price:        Clamp01(1 - Normalize(in.RateHour, in.MinRate, in.MaxRate)),
		Availability: AvailabilityScore,
		Reliability:  Clamp01(in.Reliability),
		Experience:   Clamp01(float64(in.JobsDone) / experienceJobs),
	}
}

// Weights are the aggregate coefficients. Experience has no weight:
// it is reported in Factors but never contributes to the score.
type Weights struct {
	Skill        float64
	Success      float64
	Distance     float64
	Rating       float64
	Price        float64
	Availability float64
	Reliability  float64
}

// DefaultWeights returns the production weighting.
func DefaultWeights() Weights {
	return Weights{
		Skill:        0.25,
		Success:      0.20,
		Distance:     0.15,
		Rating:       0.15,
		Price:        0.10,
		Availability: 0.10,
		Reliability:  0.05,
	}
}

func (w Weights) sum() float64 {
	return w.Skill + w.Success + w.Distance + w.Rating + w.Price + w.Availability + w.Reliability
}

// Validate checks that every weight is non-negative and they sum to 1.
func (w Weights) Validate() error {
	for _, v := range []float64{w.Skill, w.Success, w.Distance, w.Rating, w.Price, w.Availability, w.Reliability} {
		if v < 0 {
			return fmt.Errorf("%w: negative weight %v", ErrInvalidWeights, v)
		}
	}
	if s := w.sum(); math.Abs(s-1) > weightSumEpsilon {
		return fmt.Errorf("%w: sum is %v", ErrInvalidWeights, s)
	}
	return nil
}

// Aggregate is the convex combination of f under w.
func (w Weights) Aggregate(f Factors) float64 {
	return w.Skill*f.Skill +
		w.Success*f.Success +
		w.Distance*f.Distance +
		w.Rating*f.Rating +
		w.Price*f.Price +
		w.Availability*f.Availability +
		w.Reliability*f.Reliability
}
