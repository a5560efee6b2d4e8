package probe

import (
	"context"
	"math"
	"math/rand/v2"
	"time"
)

// runSession walks one text through classify, followups and match. The top
// candidate is chosen and one question is answered per round.
func runSession(ctx context.Context, c *client, id, text string, loc Location) Session {
	s := Session{ID: id, Text: text, Location: loc, Answers: map[string]any{}}

	start := time.Now()
	var cr classifyResponse
	resp, err := c.post(ctx, id, "/api/bot/classify", map[string]string{"text": text}, &cr)
	s.ClassifyTime = time.Since(start)
	if err != nil {
		s.Err = err.Error()
		return s
	}
	s.Source = resp.Header().Get("X-Classifier-Source")
	s.Degraded = resp.Header().Get("X-Classifier-Degraded") == "true"
	if len(cr.Candidates) == 0 {
		return s
	}
	s.ServiceID = cr.Candidates[0].ServiceID

	start = time.Now()
	for s.Rounds < maxFollowupRounds {
		var fr followupsResponse
		_, err := c.post(ctx, id, "/api/bot/followups", map[string]any{
			"service_id": s.ServiceID,
			"answers":    s.Answers,
		}, &fr)
		s.Rounds++
		if err != nil {
			s.FollowupsTime = time.Since(start)
			s.Err = err.Error()
			return s
		}
		if fr.Ready || len(fr.Next) == 0 {
			break
		}
		q := fr.Next[0]
		s.Answers[q.ID] = autoAnswer(q)
	}
	s.FollowupsTime = time.Since(start)

	start = time.Now()
	var mr matchResponse
	_, err = c.post(ctx, id, "/api/match", map[string]any{
		"service_id": s.ServiceID,
		"spec":       s.Answers,
		"location":   loc,
	}, &mr)
	s.MatchTime = time.Since(start)
	if err != nil {
		s.Err = err.Error()
		return s
	}
	s.Providers = mr.Providers
	return s
}

// autoAnswer picks the first option of a select question.
func autoAnswer(q Followup) any {
	if len(q.Options) > 0 {
		return q.Options[0]
	}
	return textAnswer
}

// jitter returns a point at most maxKm from center in a random direction.
func jitter(center Location, maxKm float64) Location {
	if maxKm <= 0 {
		return center
	}
	d := maxKm * math.Sqrt(rand.Float64())
	bearing := rand.Float64() * 2 * math.Pi
	dLat := d * math.Cos(bearing) / kmPerDegree
	dLng := d * math.Sin(bearing) / (kmPerDegree * math.Cos(center.Lat*math.Pi/180))
	return Location{Lat: center.Lat + dLat, Lng: center.Lng + dLng}
}
