// Package model contains domain models passed between layers.
package model

// Followup types.
const (
	FollowupText   = "text"
	FollowupSelect = "select"
)

// DefaultEstimateHours is used when a category carries no estimate.
var DefaultEstimateHours = [2]float64{1, 2}

// Location is a WGS-84 point in decimal degrees.
type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Followup is a clarifying question attached to a service category.
// Answered state lives only in the caller's answer map.
type Followup struct {
	ID       string   `json:"id"`
	Question string   `json:"q"`
	Type     string   `json:"type"`
	Options  []string `json:"options,omitempty"`
}

// ServiceCategory is one entry of the service catalog. Immutable after load.
type ServiceCategory struct {
	ID            string
	Label         string
	Keywords      []string
	SkillTag      string // required provider skill; empty means ID
	Followups     []Followup
	EstimateHours [2]float64 // low, high; zero value means DefaultEstimateHours
}

// Skill returns the provider skill tag required by this category.
func (s ServiceCategory) Skill() string {
	if s.SkillTag == "" {
		return s.ID
	}
	return s.SkillTag
}

// Estimate returns the category estimate or DefaultEstimateHours.
func (s ServiceCategory) Estimate() [2]float64 {
	if s.EstimateHours == [2]float64{} {
		return DefaultEstimateHours
	}
	return s.EstimateHours
}

// Candidate is one proposed interpretation of a free-text request.
type Candidate struct {
	ServiceID  string  `json:"service_id"`
	Label      string  `json:"label"`
	Reason     string  `json:"reason"`
	Confidence float64 `json:"confidence"`
}
