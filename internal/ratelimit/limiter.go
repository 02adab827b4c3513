// Package ratelimit implements fixed-window request limiting keyed by
// normalized identifiers. A window opens on the first request from an
// identifier and re-opens (count reset to 1) once it has fully expired;
// requests beyond the per-window maximum are denied until the window's
// scheduled expiry.
package ratelimit

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Result describes the outcome of a limiter check.
type Result struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
}

// Store holds per-identifier window state. Take performs an atomic
// check-and-increment for the given key; two concurrent callers must never
// both observe the last remaining slot.
type Store interface {
	Take(ctx context.Context, key string, limit int, window time.Duration) (Result, error)
	Sweep(ctx context.Context)
}

// Limiter owns a Store and the background sweep lifecycle. Construct isolated
// instances per test instead of sharing process state.
type Limiter struct {
	store      Store
	sweepEvery time.Duration
	logger     *zap.Logger

	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithSweepInterval overrides the background sweep interval. The interval is
// intentionally coarser than any active window so the sweep only ever removes
// fully expired entries.
func WithSweepInterval(d time.Duration) Option {
	return func(l *Limiter) { l.sweepEvery = d }
}

// WithLogger attaches a logger for sweep diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(l *Limiter) { l.logger = logger }
}

// NewLimiter creates a limiter around the given store.
func NewLimiter(store Store, opts ...Option) *Limiter {
	l := &Limiter{
		store:      store,
		sweepEvery: 2 * time.Hour,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Check normalizes the identifier and performs the window check-and-increment.
func (l *Limiter) Check(ctx context.Context, identifier string, maxRequests int, window time.Duration) (Result, error) {
	key := NormalizeIdentifier(identifier)
	return l.store.Take(ctx, key, maxRequests, window)
}

// Start launches the periodic sweep of expired entries. Calling Start on a
// running limiter is a no-op.
func (l *Limiter) Start(ctx context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.stop != nil || l.sweepEvery <= 0 {
		return
	}

	l.stop = make(chan struct{})
	l.done = make(chan struct{})

	go func(stop, done chan struct{}) {
		defer close(done)
		ticker := time.NewTicker(l.sweepEvery)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-stop:
				return
			case <-ticker.C:
				l.store.Sweep(ctx)
				if l.logger != nil {
					l.logger.Debug("rate limit sweep completed")
				}
			}
		}
	}(l.stop, l.done)
}

// Stop halts the background sweep and waits for it to exit.
func (l *Limiter) Stop() {
	l.mu.Lock()
	stop, done := l.stop, l.done
	l.stop, l.done = nil, nil
	l.mu.Unlock()

	if stop == nil {
		return
	}
	close(stop)
	<-done
}

// NormalizeIdentifier trims and lowercases an identifier. Callers namespace
// their keys (e.g. "ip:" and "email:") so one store can hold both axes
// without collision.
func NormalizeIdentifier(identifier string) string {
	return strings.ToLower(strings.TrimSpace(identifier))
}
