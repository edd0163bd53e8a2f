// Package ratelimit builds the request limiter, backed by memory or redis.
package ratelimit

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"
)

const storePrefix = "easysplit_ratelimit"

// New parses rate (e.g. "100-M") and returns a limiter. With a redisURL the
// counters are shared across instances; otherwise they live in process memory.
// The returned close func releases the redis client, if any.
func New(ctx context.Context, rate, redisURL string, logger *slog.Logger) (*limiter.Limiter, func() error, error) {
	parsed, err := limiter.NewRateFromFormatted(rate)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid rate limit %q: %w", rate, err)
	}

	if redisURL == "" {
		logger.Info("Rate limiter using in-memory store", slog.String("rate", rate))
		store := memory.NewStoreWithOptions(limiter.StoreOptions{
			Prefix:          storePrefix,
			CleanUpInterval: limiter.DefaultCleanUpInterval,
		})
		return limiter.New(store, parsed), func() error { return nil }, nil
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	lim, err := NewWithRedisClient(client, parsed)
	if err != nil {
		_ = client.Close()
		return nil, nil, err
	}
	logger.Info("Rate limiter using redis store", slog.String("rate", rate), slog.String("addr", opts.Addr))
	return lim, client.Close, nil
}

// NewWithRedisClient builds a limiter on an existing redis client.
func NewWithRedisClient(client *redis.Client, rate limiter.Rate) (*limiter.Limiter, error) {
	store, err := sredis.NewStoreWithOptions(client, limiter.StoreOptions{
		Prefix:   storePrefix,
		MaxRetry: 3,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create redis limiter store: %w", err)
	}
	return limiter.New(store, rate), nil
}
