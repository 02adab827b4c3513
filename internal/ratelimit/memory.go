package ratelimit

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	count       int
	windowStart time.Time
	window      time.Duration
}

func (e *entry) expired(now time.Time) bool {
	return now.Sub(e.windowStart) > e.window
}

// MemoryStore keeps window state in a process-local map. The check-and-
// increment runs under a single mutex so concurrent requests cannot both
// claim the last slot. Horizontal scale-out needs the Redis store instead.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]*entry
	clock   func() time.Time
}

// MemoryOption configures a MemoryStore.
type MemoryOption func(*MemoryStore)

// WithClock injects a time source for tests.
func WithClock(clock func() time.Time) MemoryOption {
	return func(s *MemoryStore) { s.clock = clock }
}

// NewMemoryStore creates an empty in-memory window store.
func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		entries: make(map[string]*entry),
		clock:   func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Take implements Store.
func (s *MemoryStore) Take(ctx context.Context, key string, limit int, window time.Duration) (Result, error) {
	now := s.clock()

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok || e.expired(now) {
		s.entries[key] = &entry{count: 1, windowStart: now, window: window}
		return Result{Allowed: true, Remaining: limit - 1, ResetAt: now.Add(window)}, nil
	}

	resetAt := e.windowStart.Add(e.window)
	if e.count >= limit {
		return Result{Allowed: false, Remaining: 0, ResetAt: resetAt}, nil
	}

	e.count++
	return Result{Allowed: true, Remaining: limit - e.count, ResetAt: resetAt}, nil
}

// Sweep removes entries whose window has fully expired. It snapshots the
// expired keys under the lock and deletes them in the same critical section;
// in-flight Take calls only ever see a fully consistent map.
func (s *MemoryStore) Sweep(ctx context.Context) {
	now := s.clock()

	s.mu.Lock()
	defer s.mu.Unlock()

	for key, e := range s.entries {
		if e.expired(now) {
			delete(s.entries, key)
		}
	}
}

// Len reports the number of live entries. Used by tests and diagnostics.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
