package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "rl:"

// redisCommands is the slice of the redis client the store depends on.
// redis.UniversalClient satisfies it; tests substitute a scripted fake.
type redisCommands interface {
	Incr(ctx context.Context, key string) *redis.IntCmd
	PExpire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
	PTTL(ctx context.Context, key string) *redis.DurationCmd
}

// RedisStore keeps window state in Redis so the same windows apply across
// replicas. INCR gives the atomic check-and-increment; key TTLs implement
// window expiry, so Sweep has nothing to do.
type RedisStore struct {
	client redisCommands
	clock  func() time.Time
}

// NewRedisStore wraps an existing Redis client.
func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{
		client: client,
		clock:  func() time.Time { return time.Now().UTC() },
	}
}

// Take implements Store.
func (s *RedisStore) Take(ctx context.Context, key string, limit int, window time.Duration) (Result, error) {
	rkey := redisKeyPrefix + key
	now := s.clock()

	count, err := s.client.Incr(ctx, rkey).Result()
	if err != nil {
		return Result{}, err
	}

	if count == 1 {
		if err := s.client.PExpire(ctx, rkey, window).Err(); err != nil {
			return Result{}, err
		}
		return Result{Allowed: true, Remaining: limit - 1, ResetAt: now.Add(window)}, nil
	}

	ttl, err := s.client.PTTL(ctx, rkey).Result()
	if err != nil {
		return Result{}, err
	}
	if ttl < 0 {
		// Key survived without a TTL (expire raced a crash); re-arm it.
		if err := s.client.PExpire(ctx, rkey, window).Err(); err != nil {
			return Result{}, err
		}
		ttl = window
	}

	resetAt := now.Add(ttl)
	if int(count) > limit {
		return Result{Allowed: false, Remaining: 0, ResetAt: resetAt}, nil
	}
	return Result{Allowed: true, Remaining: limit - int(count), ResetAt: resetAt}, nil
}

// Sweep is a no-op: Redis expires keys itself.
func (s *RedisStore) Sweep(ctx context.Context) {}
