package probe

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/okian/woke/pkg/logger"
)

const (
	reportPermission     = 0600
	percentageMultiplier = 100
)

func summarize(sessions []Session) *Stats {
	st := &Stats{Sessions: len(sessions)}
	var classify, followups, match []float64
	for i := range sessions {
		s := &sessions[i]
		if s.Err != "" {
			st.Failed++
		} else {
			st.Succeeded++
		}
		if s.Degraded {
			st.Degraded++
		}
		if s.ClassifyTime > 0 {
			classify = append(classify, millis(s.ClassifyTime))
		}
		if s.Err == "" && s.ServiceID == "" {
			st.NoCandidates++
			continue
		}
		if s.FollowupsTime > 0 {
			followups = append(followups, millis(s.FollowupsTime))
		}
		if s.MatchTime > 0 {
			match = append(match, millis(s.MatchTime))
		}
		if s.Err == "" && len(s.Providers) == 0 {
			st.EmptyShortlist++
		}
	}
	st.Classify = summarizeLatency(classify)
	st.Followups = summarizeLatency(followups)
	st.Match = summarizeLatency(match)
	return st
}

// summarizeLatency sorts xs in place.
func summarizeLatency(xs []float64) Latency {
	if len(xs) == 0 {
		return Latency{}
	}
	slices.Sort(xs)
	return Latency{
		P50: stat.Quantile(0.5, stat.Empirical, xs, nil),
		P95: stat.Quantile(0.95, stat.Empirical, xs, nil),
		Max: floats.Max(xs),
	}
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

func saveSessions(path string, sessions []Session) error {
	data, err := json.MarshalIndent(sessions, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal sessions: %w", err)
	}
	if err := os.WriteFile(path, data, reportPermission); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func displayFinalStats(ctx context.Context, log logger.Logger, st *Stats) {
	var successRate, sessionsPerSecond float64
	if st.Sessions > 0 {
		successRate = float64(st.Succeeded) / float64(st.Sessions) * percentageMultiplier
	}
	if st.Duration > 0 {
		sessionsPerSecond = float64(st.Sessions) / st.Duration.Seconds()
	}

	log.Info(ctx, "final statistics",
		logger.Int("sessions", st.Sessions),
		logger.Int("succeeded", st.Succeeded),
		logger.Int("failed", st.Failed),
		logger.Int("degraded", st.Degraded),
		logger.Int("noCandidates", st.NoCandidates),
		logger.Int("emptyShortlist", st.EmptyShortlist),
		logger.String("duration", st.Duration.String()),
		logger.Float64("successRate", successRate),
		logger.Float64("sessionsPerSecond", sessionsPerSecond))
	log.Info(ctx, "latency ms",
		logger.Float64("classifyP50", st.Classify.P50),
		logger.Float64("classifyP95", st.Classify.P95),
		logger.Float64("followupsP95", st.Followups.P95),
		logger.Float64("matchP50", st.Match.P50),
		logger.Float64("matchP95", st.Match.P95),
		logger.Float64("matchMax", st.Match.Max))
}
