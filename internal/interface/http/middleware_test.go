package http

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/orchardcare/orchard-advisor/internal/infra/config"
)

func TestClientRateLimiterRefills(t *testing.T) {
	now := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	limiter := newClientRateLimiter(config.RateLimitConfig{RequestsPerMinute: 2, Burst: 1}, func() time.Time { return now })

	require.True(t, limiter.allow("user:u1"))
	require.False(t, limiter.allow("user:u1"))
	require.True(t, limiter.allow("user:u2"))
	require.Equal(t, 30, limiter.retryAfterSeconds())

	now = now.Add(30 * time.Second)
	require.True(t, limiter.allow("user:u1"))
	require.False(t, limiter.allow("user:u1"))

	// idle buckets are dropped after the ttl
	now = now.Add(10 * time.Minute)
	require.True(t, limiter.allow("user:u3"))
	require.Len(t, limiter.clients, 1)
}
