package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// Per-IP budget for sensitive endpoints within one window
	defaultMaxRequests = 10
	defaultWindow      = time.Minute
)

// Limiter is a fixed-window per-IP rate limiter backed by Redis.
// Counters expire with the window, so there is nothing to clean up.
type Limiter struct {
	client      *redis.Client
	maxRequests int64
	window      time.Duration
}

func NewLimiter(client *redis.Client) *Limiter {
	return &Limiter{
		client:      client,
		maxRequests: defaultMaxRequests,
		window:      defaultWindow,
	}
}

// getIPKey generates the Redis key for an IP and purpose
func getIPKey(ip, purpose string) string {
	return fmt.Sprintf("ratelimit:%s:%s", purpose, ip)
}

// CheckIPRateLimitWithPurpose reports whether the IP has exhausted its
// budget for the given purpose
func (l *Limiter) CheckIPRateLimitWithPurpose(ctx context.Context, ip, purpose string) (bool, error) {
	count, err := l.client.Get(ctx, getIPKey(ip, purpose)).Int64()
	if err != nil {
		if err == redis.Nil {
			return false, nil
		}
		return false, fmt.Errorf("failed to check rate limit: %w", err)
	}

	return count >= l.maxRequests, nil
}

// RecordIPRequestWithPurpose counts one request against the IP's window.
// The window starts on the first request and is fixed from there.
func (l *Limiter) RecordIPRequestWithPurpose(ctx context.Context, ip, purpose string) error {
	key := getIPKey(ip, purpose)

	pipe := l.client.Pipeline()
	pipe.Incr(ctx, key)
	// NX keeps the window anchored to the first request
	pipe.ExpireNX(ctx, key, l.window)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to record request: %w", err)
	}

	return nil
}
