package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func newTestLimiter(t *testing.T, max int, window time.Duration) (*Limiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return New(client, max, window), mr
}

func TestLimiter_AllowsUpToMax(t *testing.T) {
	limiter, _ := newTestLimiter(t, 3, time.Hour)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		limited, err := limiter.TooManyAttempts(ctx, "reset-password:test@example.com")
		assert.NoError(t, err)
		assert.False(t, limited)

		count, err := limiter.Hit(ctx, "reset-password:test@example.com")
		assert.NoError(t, err)
		assert.Equal(t, int64(i+1), count)
	}

	limited, err := limiter.TooManyAttempts(ctx, "reset-password:test@example.com")
	assert.NoError(t, err)
	assert.True(t, limited)
}

func TestLimiter_KeysAreIndependent(t *testing.T) {
	limiter, _ := newTestLimiter(t, 1, time.Hour)
	ctx := context.Background()

	_, err := limiter.Hit(ctx, "reset-password:a@example.com")
	assert.NoError(t, err)

	limited, err := limiter.TooManyAttempts(ctx, "reset-password:b@example.com")
	assert.NoError(t, err)
	assert.False(t, limited)
}

func TestLimiter_ClearResetsCounter(t *testing.T) {
	limiter, _ := newTestLimiter(t, 1, time.Hour)
	ctx := context.Background()

	_, err := limiter.Hit(ctx, "reset-password:test@example.com")
	assert.NoError(t, err)

	limited, err := limiter.TooManyAttempts(ctx, "reset-password:test@example.com")
	assert.NoError(t, err)
	assert.True(t, limited)

	assert.NoError(t, limiter.Clear(ctx, "reset-password:test@example.com"))

	limited, err = limiter.TooManyAttempts(ctx, "reset-password:test@example.com")
	assert.NoError(t, err)
	assert.False(t, limited)
}

func TestLimiter_WindowExpires(t *testing.T) {
	limiter, mr := newTestLimiter(t, 1, time.Hour)
	ctx := context.Background()

	_, err := limiter.Hit(ctx, "reset-password:test@example.com")
	assert.NoError(t, err)

	limited, err := limiter.TooManyAttempts(ctx, "reset-password:test@example.com")
	assert.NoError(t, err)
	assert.True(t, limited)

	mr.FastForward(time.Hour + time.Second)

	limited, err = limiter.TooManyAttempts(ctx, "reset-password:test@example.com")
	assert.NoError(t, err)
	assert.False(t, limited)
}
