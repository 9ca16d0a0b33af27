// Package cache holds the Redis connection used for live temperature fan-out.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/frostvault/frostvault-backend/pkg/config"
	"github.com/frostvault/frostvault-backend/pkg/logger"
	"github.com/redis/go-redis/v9"
)

// Redis wraps a go-redis client
type Redis struct {
	*redis.Client
	logger *logger.Logger
}

// New connects to Redis and verifies the connection with a ping
func New(cfg *config.RedisConfig, log *logger.Logger) (*Redis, error) {
	if cfg == nil || !cfg.Enabled() {
		return nil, fmt.Errorf("redis address not configured")
	}

	c := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := c.Ping(ctx).Err(); err != nil {
		c.Close()
		return nil, fmt.Errorf("unable to ping redis at %s: %w", cfg.Addr, err)
	}

	log.Info().Str("addr", cfg.Addr).Msg("connected to Redis")
	return &Redis{Client: c, logger: log}, nil
}

// Health returns the health status of Redis
func (r *Redis) Health(ctx context.Context) map[string]string {
	status := map[string]string{
		"status": "up",
	}

	ctx, cancel := context.WithTimeout(ctx, 1*time.Second)
	defer cancel()

	if err := r.Ping(ctx).Err(); err != nil {
		status["status"] = "down"
		status["error"] = err.Error()
	}

	return status
}

// Close closes the client
func (r *Redis) Close() error {
	if r == nil || r.Client == nil {
		return nil
	}
	return r.Client.Close()
}
