// Package probe drives the classify, followups and match endpoints of a
// running server the way a customer session would, and reports latency.
package probe

import "time"

// Config holds configuration for a probe run.
type Config struct {
	BaseURL    string        // Base URL of the service
	Texts      []string      // Free-text requests; DefaultTexts when empty
	Sessions   int           // Number of sessions to run
	Workers    int           // Number of concurrent sessions
	Timeout    time.Duration // HTTP request timeout
	Center     Location      // Sessions are placed around this point
	JitterKm   float64       // Max distance of a session from Center
	OutputFile string        // Optional JSON report of every session
	Verbose    bool          // Log every session
}

// Location mirrors the API location object.
type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Candidate mirrors a classify candidate.
type Candidate struct {
	ServiceID  string  `json:"service_id"`
	Label      string  `json:"label"`
	Reason     string  `json:"reason"`
	Confidence float64 `json:"confidence"`
}

type classifyResponse struct {
	Candidates []Candidate `json:"candidates"`
}

// Followup mirrors a followup question.
type Followup struct {
	ID      string   `json:"id"`
	Q       string   `json:"q"`
	Type    string   `json:"type"`
	Options []string `json:"options"`
}

type followupsResponse struct {
	Next          []Followup `json:"next"`
	Ready         bool       `json:"ready"`
	EstimateHours []float64  `json:"estimate_hours"`
}

// Provider mirrors a shortlist entry.
type Provider struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	RateHour   float64 `json:"rate_hour"`
	AvgRating  float64 `json:"avg_rating"`
	EtaMin     int     `json:"eta_min"`
	ReasonLine string  `json:"reason_line"`
}

type matchResponse struct {
	Providers []Provider `json:"providers"`
}

// Session is the record of one classify, followups, match walk.
type Session struct {
	ID            string         `json:"id"`
	Text          string         `json:"text"`
	Location      Location       `json:"location"`
	Source        string         `json:"classifier_source"`
	Degraded      bool           `json:"degraded"`
	ServiceID     string         `json:"service_id"`
	Rounds        int            `json:"followup_rounds"`
	Answers       map[string]any `json:"answers"`
	Providers     []Provider     `json:"providers"`
	ClassifyTime  time.Duration  `json:"classify_ns"`
	FollowupsTime time.Duration  `json:"followups_ns"`
	MatchTime     time.Duration  `json:"match_ns"`
	Err           string         `json:"error,omitempty"`
}

// Stats holds run statistics.
type Stats struct {
	Sessions       int
	Succeeded      int
	Failed         int
	Degraded       int
	NoCandidates   int
	EmptyShortlist int
	Classify       Latency
	Followups      Latency
	Match          Latency
	StartTime      time.Time
	EndTime        time.Time
	Duration       time.Duration
}

// Latency summarizes one step across sessions, in milliseconds.
type Latency struct {
	P50 float64
	P95 float64
	Max float64
}
