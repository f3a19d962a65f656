package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Dropping the whole map above this size resets every bucket, which is
// acceptable: the limiter guards the public redirect and auth endpoints
// against bursts, not against patient attackers.
const limiterMapCap = 10000

// IPRateLimiter hands out one token bucket per client IP for the public
// endpoints. Buckets are created lazily and the map is reset by the
// Start worker when it grows past limiterMapCap.
type IPRateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
	logger   *slog.Logger
}

func NewIPRateLimiter(limit rate.Limit, burst int, logger *slog.Logger) *IPRateLimiter {
	return &IPRateLimiter{
		limiters: make(map[string]*rate.Limiter),
		limit:    limit,
		burst:    burst,
		logger:   logger,
	}
}

// Start runs the map-reset worker until ctx is cancelled. Run it with
// `go limiter.Start(ctx, interval)` alongside the other background workers.
func (i *IPRateLimiter) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			i.mu.Lock()
			if len(i.limiters) > limiterMapCap {
				i.logger.Info("Resetting rate limiter buckets", "count", len(i.limiters))
				i.limiters = make(map[string]*rate.Limiter)
			}
			i.mu.Unlock()
		}
	}
}

// GetLimiter returns the bucket for ip, creating it on first sight.
func (i *IPRateLimiter) GetLimiter(ip string) *rate.Limiter {
	i.mu.Lock()
	defer i.mu.Unlock()

	limiter, exists := i.limiters[ip]
	if !exists {
		limiter = rate.NewLimiter(i.limit, i.burst)
		i.limiters[ip] = limiter
	}

	return limiter
}
