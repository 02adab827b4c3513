package ratelimit

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func fixedClock(at *time.Time) func() time.Time {
	return func() time.Time { return *at }
}

func TestWindowAllowsUpToMax(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := NewMemoryStore(WithClock(fixedClock(&now)))
	limiter := NewLimiter(store)

	for i := 1; i <= 5; i++ {
		res, err := limiter.Check(context.Background(), "ip:203.0.113.9", 5, time.Hour)
		require.NoError(t, err)
		require.True(t, res.Allowed, "request %d should be allowed", i)
		require.Equal(t, 5-i, res.Remaining)
	}

	res, err := limiter.Check(context.Background(), "ip:203.0.113.9", 5, time.Hour)
	require.NoError(t, err)
	require.False(t, res.Allowed)
	require.Equal(t, 0, res.Remaining)
	require.Equal(t, now.Add(time.Hour), res.ResetAt, "resetAt must be windowStart + window")
}

func TestWindowReopensAfterExpiry(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := NewMemoryStore(WithClock(fixedClock(&now)))
	limiter := NewLimiter(store)

	for i := 0; i < 3; i++ {
		_, err := limiter.Check(context.Background(), "email:a@b.co", 3, time.Hour)
		require.NoError(t, err)
	}
	res, err := limiter.Check(context.Background(), "email:a@b.co", 3, time.Hour)
	require.NoError(t, err)
	require.False(t, res.Allowed)

	// A window expires strictly after its full duration has elapsed.
	now = now.Add(time.Hour + time.Second)
	res, err = limiter.Check(context.Background(), "email:a@b.co", 3, time.Hour)
	require.NoError(t, err)
	require.True(t, res.Allowed, "old count must not carry over")
	require.Equal(t, 2, res.Remaining, "count restarts at 1")
	require.Equal(t, now.Add(time.Hour), res.ResetAt)
}

func TestWindowBoundaryIsInclusive(t *testing.T) {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	now := start
	store := NewMemoryStore(WithClock(fixedClock(&now)))
	limiter := NewLimiter(store)

	_, err := limiter.Check(context.Background(), "ip:x", 1, time.Hour)
	require.NoError(t, err)

	// Exactly at windowStart + window the entry is still active.
	now = start.Add(time.Hour)
	res, err := limiter.Check(context.Background(), "ip:x", 1, time.Hour)
	require.NoError(t, err)
	require.False(t, res.Allowed)
}

func TestDisjointNamespacesDoNotCollide(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := NewMemoryStore(WithClock(fixedClock(&now)))
	limiter := NewLimiter(store)

	res, err := limiter.Check(context.Background(), "ip:shared", 1, time.Hour)
	require.NoError(t, err)
	require.True(t, res.Allowed)

	res, err = limiter.Check(context.Background(), "email:shared", 1, time.Hour)
	require.NoError(t, err)
	require.True(t, res.Allowed, "email namespace must not see the ip entry")
}

func TestIdentifierNormalization(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := NewMemoryStore(WithClock(fixedClock(&now)))
	limiter := NewLimiter(store)

	_, err := limiter.Check(context.Background(), "email:Anna@Example.LV", 1, time.Hour)
	require.NoError(t, err)

	res, err := limiter.Check(context.Background(), "  email:anna@example.lv  ", 1, time.Hour)
	require.NoError(t, err)
	require.False(t, res.Allowed, "case/whitespace variants must share one entry")
}

func TestConcurrentCheckNeverOverAdmits(t *testing.T) {
	store := NewMemoryStore()
	limiter := NewLimiter(store)

	const (
		workers = 50
		limit   = 10
	)

	var allowed int64
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			res, err := limiter.Check(context.Background(), "ip:flood", limit, time.Hour)
			if err == nil && res.Allowed {
				atomic.AddInt64(&allowed, 1)
			}
		}()
	}
	wg.Wait()

	require.Equal(t, int64(limit), allowed, "exactly max requests may claim a slot")
}

func TestSweepRemovesOnlyExpiredEntries(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := NewMemoryStore(WithClock(fixedClock(&now)))

	_, err := store.Take(context.Background(), "ip:old", 5, time.Minute)
	require.NoError(t, err)

	now = now.Add(30 * time.Minute)
	_, err = store.Take(context.Background(), "ip:fresh", 5, time.Hour)
	require.NoError(t, err)
	require.Equal(t, 2, store.Len())

	store.Sweep(context.Background())
	require.Equal(t, 1, store.Len(), "expired entry is reclaimed, active one survives")

	// The surviving window still denies once exhausted.
	for i := 0; i < 5; i++ {
		_, err = store.Take(context.Background(), "ip:fresh", 5, time.Hour)
		require.NoError(t, err)
	}
	res, err := store.Take(context.Background(), "ip:fresh", 5, time.Hour)
	require.NoError(t, err)
	require.False(t, res.Allowed)
}

func TestLimiterStartStop(t *testing.T) {
	store := NewMemoryStore()
	limiter := NewLimiter(store, WithSweepInterval(10*time.Millisecond))

	limiter.Start(context.Background())
	limiter.Start(context.Background()) // second start is a no-op
	time.Sleep(30 * time.Millisecond)
	limiter.Stop()
	limiter.Stop() // second stop is a no-op
}

func TestNormalizeIdentifier(t *testing.T) {
	require.Equal(t, "email:a@b.co", NormalizeIdentifier("  Email:A@B.CO "))
}
