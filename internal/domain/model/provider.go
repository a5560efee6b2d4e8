package model

// Provider defaults applied when the snapshot omits a value.
const (
	DefaultRadiusKm       = 20.0
	DefaultAvgRating      = 4.5
	DefaultReliability    = 0.85
	DefaultCompletionRate = 0.9
)

// SkillStats is a provider's track record for one skill.
type SkillStats struct {
	JobsDone       int     `json:"jobs_done"`
	CompletionRate float64 `json:"completion_rate"`
}

// Provider is a read-only snapshot of a tasker as seen by the matcher.
type Provider struct {
	ID              string
	Name            string
	Lat             float64
	Lng             float64
	SkillTags       []string
	RateHour        float64
	ServiceRadiusKm float64 // <= 0 means DefaultRadiusKm
	AvgRating       *float64
	Reliability     *float64
	Stats           map[string]SkillStats
}

// Location returns the provider position.
func (p Provider) Location() Location {
	return Location{Lat: p.Lat, Lng: p.Lng}
}

// HasSkill reports whether the provider advertises tag.
func (p Provider) HasSkill(tag string) bool {
	for _, t := range p.SkillTags {
		if t == tag {
			return true
		}
	}
	return false
}

// Radius returns the service radius in km.
func (p Provider) Radius() float64 {
	if p.ServiceRadiusKm <= 0 {
		return DefaultRadiusKm
	}
	return p.ServiceRadiusKm
}

// Rating returns the average rating or DefaultAvgRating.
func (p Provider) Rating() float64 {
	if p.AvgRating == nil {
		return DefaultAvgRating
	}
	return *p.AvgRating
}

// ReliabilityScore returns reliability or DefaultReliability.
func (p Provider) ReliabilityScore() float64 {
	if p.Reliability == nil {
		return DefaultReliability
	}
	return *p.Reliability
}

// StatsFor returns the stats for skill, or zero jobs at DefaultCompletionRate.
func (p Provider) StatsFor(skill string) SkillStats {
	if s, ok := p.Stats[skill]; ok {
		return s
	}
	return SkillStats{JobsDone: 0, CompletionRate: DefaultCompletionRate}
}

// MatchResult is one rendered entry of a shortlist.
type MatchResult struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	RateHour   float64 `json:"rate_hour"`
	AvgRating  float64 `json:"avg_rating"`
	EtaMin     int     `json:"eta_min"`
	ReasonLine string  `json:"reason_line"`
}
