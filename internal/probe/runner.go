package probe

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/okian/woke/pkg/logger"
)

// Run executes cfg.Sessions sessions against cfg.BaseURL and returns the
// per-session records with their summary.
func Run(ctx context.Context, cfg *Config) (*Stats, []Session, error) {
	applyDefaults(cfg)
	log := logger.Get().Named("probe")

	log.Info(ctx, "starting match probe",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("sessions", cfg.Sessions),
		logger.Int("workers", cfg.Workers),
		logger.String("timeout", cfg.Timeout.String()),
		logger.Float64("jitterKm", cfg.JitterKm))

	c := newClient(cfg.BaseURL, cfg.Timeout)
	if err := c.health(ctx); err != nil {
		return nil, nil, fmt.Errorf("service health check failed: %w", err)
	}

	start := time.Now()
	sessions := make([]Session, cfg.Sessions)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)
	for i := range sessions {
		text := cfg.Texts[i%len(cfg.Texts)]
		g.Go(func() error {
			id := uuid.NewString()
			sessions[i] = runSession(gctx, c, id, text, jitter(cfg.Center, cfg.JitterKm))
			if cfg.Verbose {
				logSession(gctx, log, &sessions[i])
			}
			// session failures are recorded, never fatal
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	stats := summarize(sessions)
	stats.StartTime = start
	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(start)

	if cfg.OutputFile != "" {
		if err := saveSessions(cfg.OutputFile, sessions); err != nil {
			log.Warn(ctx, "failed to save sessions", logger.Error(err))
		}
	}
	displayFinalStats(ctx, log, stats)
	return stats, sessions, nil
}

func applyDefaults(cfg *Config) {
	if len(cfg.Texts) == 0 {
		cfg.Texts = DefaultTexts
	}
	if cfg.Sessions <= 0 {
		cfg.Sessions = DefaultSessions
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU() * 2
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Center == (Location{}) {
		cfg.Center = DefaultCenter
	}
}

func logSession(ctx context.Context, log logger.Logger, s *Session) {
	ctx = logger.ContextWithRequestID(ctx, s.ID)
	if s.Err != "" {
		log.Warn(ctx, "session failed",
			logger.String("text", s.Text),
			logger.String("serviceId", s.ServiceID),
			logger.String("error", s.Err))
		return
	}
	log.Info(ctx, "session done",
		logger.String("text", s.Text),
		logger.String("source", s.Source),
		logger.String("serviceId", s.ServiceID),
		logger.Int("rounds", s.Rounds),
		logger.Int("providers", len(s.Providers)))
}
