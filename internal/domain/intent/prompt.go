package intent

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/okian/woke/internal/domain/model"
)

// BuildPrompt renders the classification prompt for the given catalog ids.
func BuildPrompt(ids []string, text string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You classify vague home-service requests into up to %d candidate intents with reasons.\n", promptMaxCandidates)
	b.WriteString(`Return STRICT JSON: {"candidates":[{"service_id":"...","reason":"...","confidence":0-1}]}`)
	b.WriteString("\nUse ONLY these IDs: ")
	b.WriteString(strings.Join(ids, ", "))
	b.WriteString(".\n\nUSER: \"")
	b.WriteString(text)
	b.WriteString("\"")
	return b.String()
}

type replyCandidate struct {
	ServiceID  string   `json:"service_id"`
	Reason     string   `json:"reason"`
	Confidence *float64 `json:"confidence"`
}

type reply struct {
	Candidates []replyCandidate `json:"candidates"`
}

// ParseReply decodes the model's raw text. It fails with ErrMalformedReply
// when the text is not the expected JSON object and with ErrEmptyReply when
// the object holds no candidates.
func ParseReply(raw string) ([]model.Candidate, error) {
	var r reply
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &r); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedReply, err)
	}
	if len(r.Candidates) == 0 {
		return nil, ErrEmptyReply
	}

	out := make([]model.Candidate, len(r.Candidates))
	for i, rc := range r.Candidates {
		conf := defaultConfidence
		if rc.Confidence != nil {
			conf = *rc.Confidence
		}
		out[i] = model.Candidate{
			ServiceID:  strings.TrimSpace(rc.ServiceID),
			Reason:     rc.Reason,
			Confidence: conf,
		}
	}
	return out, nil
}
