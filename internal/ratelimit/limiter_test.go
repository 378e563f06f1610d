package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLimiter(t *testing.T) (*Limiter, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewLimiter(client), mr
}

func TestLimiterUnderBudget(t *testing.T) {
	limiter, _ := newTestLimiter(t)
	ctx := context.Background()

	for i := 0; i < defaultMaxRequests-1; i++ {
		require.NoError(t, limiter.RecordIPRequestWithPurpose(ctx, "10.0.0.1", "signin"))
	}

	exceeded, err := limiter.CheckIPRateLimitWithPurpose(ctx, "10.0.0.1", "signin")
	require.NoError(t, err)
	assert.False(t, exceeded)
}

func TestLimiterExhaustedBudget(t *testing.T) {
	limiter, _ := newTestLimiter(t)
	ctx := context.Background()

	for i := 0; i < defaultMaxRequests; i++ {
		require.NoError(t, limiter.RecordIPRequestWithPurpose(ctx, "10.0.0.1", "signin"))
	}

	exceeded, err := limiter.CheckIPRateLimitWithPurpose(ctx, "10.0.0.1", "signin")
	require.NoError(t, err)
	assert.True(t, exceeded)
}

func TestLimiterIsolatesIPAndPurpose(t *testing.T) {
	limiter, _ := newTestLimiter(t)
	ctx := context.Background()

	for i := 0; i < defaultMaxRequests; i++ {
		require.NoError(t, limiter.RecordIPRequestWithPurpose(ctx, "10.0.0.1", "signin"))
	}

	// Another IP and another purpose keep their own budgets
	exceeded, err := limiter.CheckIPRateLimitWithPurpose(ctx, "10.0.0.2", "signin")
	require.NoError(t, err)
	assert.False(t, exceeded)

	exceeded, err = limiter.CheckIPRateLimitWithPurpose(ctx, "10.0.0.1", "signup")
	require.NoError(t, err)
	assert.False(t, exceeded)
}

func TestLimiterWindowExpires(t *testing.T) {
	limiter, mr := newTestLimiter(t)
	ctx := context.Background()

	for i := 0; i < defaultMaxRequests; i++ {
		require.NoError(t, limiter.RecordIPRequestWithPurpose(ctx, "10.0.0.1", "signin"))
	}

	mr.FastForward(defaultWindow + time.Second)

	exceeded, err := limiter.CheckIPRateLimitWithPurpose(ctx, "10.0.0.1", "signin")
	require.NoError(t, err)
	assert.False(t, exceeded)
}
