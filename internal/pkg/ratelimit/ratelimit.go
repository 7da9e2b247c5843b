package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Limiter is a fixed-window counter backed by Redis. With a nil client
// every request is allowed, so Redis stays optional in development.
type Limiter struct {
	rdb    *redis.Client
	limit  int
	window time.Duration
	prefix string
}

// NewLimiter creates a limiter allowing limit hits per window per key.
func NewLimiter(rdb *redis.Client, prefix string, limit int, window time.Duration) *Limiter {
	return &Limiter{
		rdb:    rdb,
		limit:  limit,
		window: window,
		prefix: prefix,
	}
}

// Allow records one hit for the key and reports whether it is still
// within the limit. Redis errors fail open.
func (l *Limiter) Allow(ctx context.Context, key string) (bool, error) {
	if l.rdb == nil {
		return true, nil
	}

	redisKey := fmt.Sprintf("%s:%s", l.prefix, key)

	count, err := l.rdb.Incr(ctx, redisKey).Result()
	if err != nil {
		return true, fmt.Errorf("failed to increment counter: %w", err)
	}
	if count == 1 {
		if err := l.rdb.Expire(ctx, redisKey, l.window).Err(); err != nil {
			return true, fmt.Errorf("failed to set window expiry: %w", err)
		}
	}

	return count <= int64(l.limit), nil
}

// Reset clears the counter for a key, e.g. after a successful login.
func (l *Limiter) Reset(ctx context.Context, key string) error {
	if l.rdb == nil {
		return nil
	}
	return l.rdb.Del(ctx, fmt.Sprintf("%s:%s", l.prefix, key)).Err()
}
