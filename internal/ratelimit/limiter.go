package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// LimiterInterface defines a keyed fixed-window attempt counter.
type LimiterInterface interface {
	TooManyAttempts(ctx context.Context, key string) (bool, error)
	Hit(ctx context.Context, key string) (int64, error)
	Clear(ctx context.Context, key string) error
}

// Limiter counts attempts per key in Redis. The window opens on the first
// hit and every hit inside it counts; undercounting is impossible because
// INCR is atomic. Redis errors surface to the caller rather than failing
// open, since a limiter that fails open is not a limiter.
type Limiter struct {
	redis  *redis.Client
	max    int
	window time.Duration
}

// Ensure Limiter implements LimiterInterface
var _ LimiterInterface = (*Limiter)(nil)

// New creates a limiter allowing max hits per window for each key.
func New(client *redis.Client, max int, window time.Duration) *Limiter {
	return &Limiter{redis: client, max: max, window: window}
}

// TooManyAttempts reports whether the key has exhausted its window.
func (l *Limiter) TooManyAttempts(ctx context.Context, key string) (bool, error) {
	count, err := l.redis.Get(ctx, key).Int64()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read attempt counter: %w", err)
	}
	return count >= int64(l.max), nil
}

// Hit records an attempt and returns the running count. The expiry is set
// when the counter is created, so the window is measured from the first hit.
func (l *Limiter) Hit(ctx context.Context, key string) (int64, error) {
	count, err := l.redis.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("increment attempt counter: %w", err)
	}
	if count == 1 {
		if err := l.redis.Expire(ctx, key, l.window).Err(); err != nil {
			return count, fmt.Errorf("set attempt window: %w", err)
		}
	}
	return count, nil
}

// Clear resets the counter for the key.
func (l *Limiter) Clear(ctx context.Context, key string) error {
	if err := l.redis.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("clear attempt counter: %w", err)
	}
	return nil
}
