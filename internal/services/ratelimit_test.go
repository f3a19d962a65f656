package services

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIPRateLimiter(t *testing.T) {
	limiter := NewIPRateLimiter(1, 2, slog.Default())

	t.Run("Same IP reuses limiter", func(t *testing.T) {
		a := limiter.GetLimiter("1.1.1.1")
		b := limiter.GetLimiter("1.1.1.1")
		assert.Same(t, a, b)
	})

	t.Run("Burst then limited", func(t *testing.T) {
		l := limiter.GetLimiter("2.2.2.2")
		assert.True(t, l.Allow())
		assert.True(t, l.Allow())
		assert.False(t, l.Allow())
	})

	t.Run("Distinct IPs independent", func(t *testing.T) {
		l := limiter.GetLimiter("3.3.3.3")
		assert.True(t, l.Allow())
	})
}

func TestIPRateLimiter_StartStopsOnCancel(t *testing.T) {
	limiter := NewIPRateLimiter(1, 2, slog.Default())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		limiter.Start(ctx, time.Millisecond)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop on cancel")
	}
}
