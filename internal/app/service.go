// Package service wires the catalog, classifier, followup resolver and
// matcher together and implements the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"sync"
	"time"

	eventqueue "github.com/okian/woke/internal/adapters/mq/queue"
	workerpool "github.com/okian/woke/internal/adapters/mq/worker"
	"github.com/okian/woke/internal/adapters/repository"
	"github.com/okian/woke/internal/domain/catalog"
	"github.com/okian/woke/internal/domain/followup"
	"github.com/okian/woke/internal/domain/intent"
	"github.com/okian/woke/internal/domain/matching"
	"github.com/okian/woke/internal/domain/model"
	"github.com/okian/woke/pkg/logger"
	"github.com/okian/woke/pkg/metrics"
)

// Match outcomes reported to metrics.
const (
	matchMatched        = "matched"
	matchEmpty          = "empty"
	matchUnknownService = "unknown_service"
)

// ErrNotStarted is returned by operations called before Start.
var ErrNotStarted = errors.New("service not started")

// Service implements the API dependencies for the matching flow.
type Service struct {
	mu sync.RWMutex

	// Core components
	catalog    *catalog.Catalog
	classifier *intent.Classifier
	resolver   *followup.Resolver
	matcher    *matching.Matcher
	queue      *eventqueue.InMemoryQueue
	pool       *workerpool.Pool

	// stopWorkers ends the worker context; only Stop calls it
	stopWorkers context.CancelFunc

	// Collaborators
	generator workerpool.Generator
	providers repository.ProviderSource
	cache     intent.Cache
	closers   []io.Closer

	// Configuration
	catalogPath     string
	workerCount     int
	queueSize       int
	classifyTimeout time.Duration
	currencySymbol  string
	cacheBackend    string

	// State
	started   bool
	startedAt time.Time

	logger logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		catalogPath:     "configs/catalog.yaml",
		workerCount:     runtime.NumCPU() * 2,
		queueSize:       1_000,
		classifyTimeout: 30 * time.Second,
		currencySymbol:  "₹",
		cacheBackend:    "none",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start loads the reference data and starts the collaborator workers.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	if s.generator == nil {
		return fmt.Errorf("%w: no language-model collaborator configured", ErrNotStarted)
	}

	s.logger.Info(ctx, "starting matching service...", logger.String("catalog", s.catalogPath))

	snap, err := repository.Load(ctx, repository.NewFileCatalog(s.catalogPath), s.providers)
	if err != nil {
		return err
	}
	cat, err := catalog.New(snap.Services, snap.Providers, snap.DefaultLocation)
	if err != nil {
		return err
	}
	s.catalog = cat
	metrics.UpdateCatalogSize(len(snap.Services), len(snap.Providers))

	s.queue = eventqueue.NewInMemoryQueue(eventqueue.WithCapacity(s.queueSize))
	s.pool = workerpool.NewPool(s.workerCount, s.queue, s.generator)
	// workers outlive the caller's ctx and stop only through Stop
	workerCtx, stopWorkers := context.WithCancel(context.WithoutCancel(ctx))
	s.stopWorkers = stopWorkers
	s.pool.Start(workerCtx)

	classifierOpts := []intent.Option{intent.WithTimeout(s.classifyTimeout)}
	if s.cache != nil {
		classifierOpts = append(classifierOpts, intent.WithCache(s.cache))
	}
	s.classifier = intent.New(cat, s.pool, classifierOpts...)
	s.resolver = followup.New(cat)
	s.matcher = matching.New(cat, matching.WithCurrencySymbol(s.currencySymbol))

	s.started = true
	s.startedAt = time.Now()
	s.logger.Info(ctx, "matching service started",
		logger.Int("services", len(snap.Services)),
		logger.Int("providers", len(snap.Providers)),
		logger.Int("workers", s.pool.Size()),
		logger.Int("queueSize", s.queueSize),
		logger.String("cache", s.cacheBackend),
	)
	return nil
}

// Stop drains the worker pool and releases adapters.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}
	s.logger.Info(ctx, "stopping matching service...")

	var errs []error
	if err := s.pool.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}
	s.stopWorkers()
	for _, c := range s.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	s.started = false
	s.logger.Info(ctx, "matching service stopped")
	return errors.Join(errs...)
}

func (s *Service) ready() error {
	if !s.started {
		return ErrNotStarted
	}
	return nil
}

// Classify proposes service categories for free text. Collaborator failures
// are absorbed into a degraded outcome.
func (s *Service) Classify(ctx context.Context, text string) (intent.Outcome, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.ready(); err != nil {
		return intent.Outcome{}, err
	}

	out := s.classifier.Classify(ctx, text)
	metrics.RecordClassification(string(out.Source), string(out.Cause))
	if out.Degraded {
		s.logger.Warn(ctx, "classification degraded to keyword fallback",
			logger.String("cause", string(out.Cause)),
			logger.Error(out.Err),
			logger.Int("candidates", len(out.Candidates)),
		)
	} else {
		s.logger.Debug(ctx, "classified request",
			logger.String("source", string(out.Source)),
			logger.Int("candidates", len(out.Candidates)),
		)
	}
	return out, nil
}

// Followups returns the questions still unanswered for serviceID.
func (s *Service) Followups(ctx context.Context, serviceID string, answers map[string]any) (followup.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.ready(); err != nil {
		return followup.Result{}, err
	}

	res, err := s.resolver.Resolve(serviceID, answers)
	if err != nil {
		metrics.RecordErrorByComponent("followup", "unknown_service")
		s.logger.Debug(ctx, "followups for unknown service", logger.String("service_id", serviceID))
		return followup.Result{}, err
	}
	metrics.RecordFollowupResolution(res.Ready)
	s.logger.Debug(ctx, "resolved followups",
		logger.String("service_id", serviceID),
		logger.Bool("ready", res.Ready),
		logger.Int("pending", len(res.Next)),
	)
	return res, nil
}

// Match ranks providers for serviceID around loc, or the default location when loc is nil.
func (s *Service) Match(ctx context.Context, serviceID string, spec map[string]any, loc *model.Location) (matching.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.ready(); err != nil {
		return matching.Result{}, err
	}

	start := time.Now()
	res, err := s.matcher.Match(serviceID, spec, loc)
	if err != nil {
		metrics.RecordMatch(matchUnknownService)
		return matching.Result{}, err
	}

	outcome := matchMatched
	if len(res.Providers) == 0 {
		outcome = matchEmpty
	}
	metrics.RecordMatch(outcome)
	metrics.RecordMatchResult(float64(time.Since(start).Microseconds())/1000, res.Eligible, len(res.Providers))

	s.logger.Debug(ctx, "matched providers",
		logger.String("service_id", serviceID),
		logger.Int("eligible", res.Eligible),
		logger.Int("shortlist", len(res.Providers)),
	)
	return res, nil
}

// Services lists the catalog in load order.
func (s *Service) Services(_ context.Context) ([]model.ServiceCategory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.ready(); err != nil {
		return nil, err
	}
	return s.catalog.Services(), nil
}

// Ready reports whether Start has completed.
func (s *Service) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.started
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"cache":       s.cacheBackend,
	}
	if !s.started {
		return stats
	}

	queueLen := s.queue.Len(context.Background())
	stats["queueLength"] = queueLen
	stats["services"] = len(s.catalog.Services())
	stats["providers"] = len(s.catalog.Providers())
	stats["uptimeSeconds"] = int(time.Since(s.startedAt).Seconds())

	metrics.UpdateQueueSize(queueLen)
	metrics.UpdateWorkerActiveCount(s.pool.Size())
	return stats
}
