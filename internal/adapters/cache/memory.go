// Package cache stores successful classifications so repeated requests skip
// the language-model collaborator.
package cache

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/okian/woke/internal/domain/model"
	"github.com/okian/woke/pkg/metrics"
)

const (
	backendMemory     = "memory"
	defaultMaxEntries = 10_000
	defaultMemoryTTL  = 10 * time.Minute
)

type entry struct {
	key        string
	candidates []model.Candidate
	expires    time.Time
}

// Memory is a bounded in-process cache. When full, the oldest entry is
// evicted. Expired entries are dropped on read.
type Memory struct {
	mu    sync.Mutex
	items map[string]*list.Element
	order *list.List // front is newest
	max   int
	ttl   time.Duration
	now   func() time.Time
}

// MemoryOption applies a configuration option to Memory.
type MemoryOption func(*Memory)

// WithMaxEntries bounds the number of cached texts.
func WithMaxEntries(n int) MemoryOption {
	return func(m *Memory) {
		if n > 0 {
			m.max = n
		}
	}
}

// WithMemoryTTL sets the entry lifetime.
func WithMemoryTTL(ttl time.Duration) MemoryOption {
	return func(m *Memory) {
		if ttl > 0 {
			m.ttl = ttl
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) MemoryOption {
	return func(m *Memory) {
		if now != nil {
			m.now = now
		}
	}
}

// NewMemory creates an empty in-memory cache.
func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{
		items: make(map[string]*list.Element),
		order: list.New(),
		max:   defaultMaxEntries,
		ttl:   defaultMemoryTTL,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Get returns a copy of the cached candidates or ErrMiss.
func (m *Memory) Get(_ context.Context, key string) ([]model.Candidate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	el, ok := m.items[key]
	if !ok {
		metrics.RecordCacheRequest(backendMemory, "miss")
		return nil, ErrMiss
	}
	e := el.Value.(*entry)
	if !m.now().Before(e.expires) {
		m.remove(el)
		metrics.RecordCacheRequest(backendMemory, "expired")
		return nil, ErrMiss
	}
	metrics.RecordCacheRequest(backendMemory, "hit")
	return append([]model.Candidate(nil), e.candidates...), nil
}

// Set stores a copy of candidates under key.
func (m *Memory) Set(_ context.Context, key string, candidates []model.Candidate) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e := &entry{
		key:        key,
		candidates: append([]model.Candidate(nil), candidates...),
		expires:    m.now().Add(m.ttl),
	}
	if el, ok := m.items[key]; ok {
		el.Value = e
		m.order.MoveToFront(el)
		return nil
	}
	for m.order.Len() >= m.max {
		m.remove(m.order.Back())
	}
	m.items[key] = m.order.PushFront(e)
	return nil
}

// Len returns the number of stored entries, expired or not.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.order.Len()
}

// Close is a no-op.
func (m *Memory) Close() error { return nil }

// remove must be called with m.mu held.
func (m *Memory) remove(el *list.Element) {
	m.order.Remove(el)
	delete(m.items, el.Value.(*entry).key)
}
