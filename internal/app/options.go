package service

import (
	"io"
	"time"

	workerpool "github.com/okian/woke/internal/adapters/mq/worker"
	"github.com/okian/woke/internal/adapters/repository"
	"github.com/okian/woke/internal/domain/intent"
	"github.com/okian/woke/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithCatalogPath sets the YAML catalog file.
func WithCatalogPath(path string) Option {
	return func(s *Service) {
		if path != "" {
			s.catalogPath = path
		}
	}
}

// WithWorkerCount sets the number of collaborator workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum number of pending collaborator jobs.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithClassifyTimeout bounds a single collaborator call.
func WithClassifyTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.classifyTimeout = d
		}
	}
}

// WithCurrencySymbol sets the symbol used in reason lines.
func WithCurrencySymbol(sym string) Option {
	return func(s *Service) {
		if sym != "" {
			s.currencySymbol = sym
		}
	}
}

// WithGenerator sets the language-model collaborator the workers call.
func WithGenerator(gen workerpool.Generator) Option {
	return func(s *Service) {
		s.generator = gen
	}
}

// WithProviderSource replaces the catalog file's providers with src's.
func WithProviderSource(src repository.ProviderSource) Option {
	return func(s *Service) {
		s.providers = src
	}
}

// WithCache enables the classification cache; backend is reported in stats.
func WithCache(c intent.Cache, backend string) Option {
	return func(s *Service) {
		s.cache = c
		if backend != "" {
			s.cacheBackend = backend
		}
	}
}

// WithCloser registers a resource released by Stop.
func WithCloser(c io.Closer) Option {
	return func(s *Service) {
		if c != nil {
			s.closers = append(s.closers, c)
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}
