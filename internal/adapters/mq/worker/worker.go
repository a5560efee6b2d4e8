// Package worker runs a bounded pool of goroutines that call the
// language-model collaborator on behalf of classify requests.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/okian/woke/internal/adapters/mq/queue"
	"github.com/okian/woke/pkg/logger"
	"github.com/okian/woke/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerMultiplier = 2 // multiplier for runtime.NumCPU()
	poolShutdownTimeout     = 30 * time.Second
)

// Generator is the collaborator a worker calls.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Queue defines how the pool hands jobs to workers.
type Queue interface {
	Enqueue(ctx context.Context, j queue.Job) bool
	Dequeue(ctx context.Context) <-chan queue.Job
	Close() error
	IsClosed() bool
}

// Worker processes jobs until its queue closes or it is shut down.
type Worker interface {
	Run(ctx context.Context)
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker for one goroutine.
type InMemoryWorker struct {
	queue Queue
	gen   Generator
	name  string

	shutdown     chan struct{}
	shutdownOnce sync.Once
	done         chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(q Queue, gen Generator, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:    q,
		gen:      gen,
		name:     "worker",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Get().Named("worker"),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}
	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	jobs := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case j, ok := <-jobs:
			if !ok {
				return
			}
			w.process(j)
		}
	}
}

// Shutdown gracefully stops the worker.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	w.shutdownOnce.Do(func() { close(w.shutdown) })

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// process answers one job. A job whose caller has already gone away is
// answered with the caller's context error and never reaches the collaborator.
func (w *InMemoryWorker) process(j queue.Job) { //nolint:gocritic // hugeParam: Job is passed by value for channel semantics
	start := time.Now()
	metrics.RecordQueueWait(float64(start.Sub(j.Enqueued).Milliseconds()))
	defer func() {
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Milliseconds()))
	}()

	if err := j.Ctx.Err(); err != nil {
		metrics.RecordErrorByComponent("worker", "stale_job")
		j.Reply <- queue.Reply{Err: err}
		return
	}

	text, err := w.gen.Generate(j.Ctx, j.Prompt)
	if err != nil {
		metrics.RecordErrorByComponent("worker", "generate_error")
		w.logger.Debug(j.Ctx, "generate failed", logger.Error(err))
	}
	j.Reply <- queue.Reply{Text: text, Err: err}
}

// Pool manages multiple workers and exposes them as a Generator.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue

	shutdownOnce sync.Once
	logger       logger.Logger
}

// NewPool creates a new worker pool reading from q and calling gen.
func NewPool(workerCount int, q Queue, gen Generator) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU() * defaultWorkerMultiplier
	}

	p := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   q,
		logger:  logger.Get().Named("worker-pool"),
	}
	for i := 0; i < workerCount; i++ {
		p.workers[i] = NewInMemoryWorker(q, gen, WithName("worker-"+strconv.Itoa(i)))
	}
	return p
}

// Size returns the number of workers.
func (p *Pool) Size() int {
	return len(p.workers)
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
	metrics.UpdateWorkerActiveCount(len(p.workers))
	p.logger.Info(ctx, "worker pool started", logger.Int("workers", len(p.workers)))
}

// Generate enqueues prompt and waits for a worker's reply or ctx. A full
// queue fails immediately with ErrBackpressure.
func (p *Pool) Generate(ctx context.Context, prompt string) (string, error) {
	if p.queue.IsClosed() {
		return "", ErrStopped
	}

	reply := make(chan queue.Reply, 1)
	if !p.queue.Enqueue(ctx, queue.Job{Ctx: ctx, Prompt: prompt, Reply: reply}) {
		if p.queue.IsClosed() {
			return "", ErrStopped
		}
		if err := ctx.Err(); err != nil {
			return "", err
		}
		return "", ErrBackpressure
	}

	select {
	case r := <-reply:
		return r.Text, r.Err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Shutdown closes the queue, lets workers drain it, and waits for them.
func (p *Pool) Shutdown(ctx context.Context) error {
	p.shutdownOnce.Do(func() {
		if err := p.queue.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	})

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	var timedOut int
	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-shutdownCtx.Done():
			timedOut++
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
		}
	}
	metrics.UpdateWorkerActiveCount(0)
	if timedOut > 0 {
		return fmt.Errorf("%d workers did not stop: %w", timedOut, shutdownCtx.Err())
	}
	return nil
}
