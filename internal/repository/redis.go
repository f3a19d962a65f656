package repository

import (
	"context"
	"fmt"
	"time"

	"qrtrack/internal/config"

	"github.com/redis/go-redis/v9"
)

const redisPingTimeout = 5 * time.Second

// InitRedis connects the resolve-cache client and verifies the connection
// with a bounded ping. The caller treats a failure as "cache disabled", so
// the error carries context instead of being logged here.
func InitRedis(ctx context.Context, cfg config.Config) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisURL,
		Password: cfg.RedisPassword,
	})

	pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()

	if _, err := rdb.Ping(pingCtx).Result(); err != nil {
		return nil, fmt.Errorf("failed to reach redis at %s: %w", cfg.RedisURL, err)
	}

	return rdb, nil
}
