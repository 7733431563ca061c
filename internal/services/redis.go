package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

// RedisConfig holds the connection settings for NewRedisClient
type RedisConfig struct {
	Address  string
	Password string
	DB       int
}

// NewRedisClient connects to Redis and verifies the connection
func NewRedisClient(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	slog.Info("connected to redis", "address", cfg.Address, "db", cfg.DB)
	return client, nil
}

// RedisChecker reports Redis health
type RedisChecker struct {
	BaseChecker
	client redis.UniversalClient
}

// NewRedisChecker wraps an existing client
func NewRedisChecker(client redis.UniversalClient) *RedisChecker {
	return &RedisChecker{
		BaseChecker: BaseChecker{name: "redis"},
		client:      client,
	}
}

// HealthCheck verifies Redis connectivity
func (p *RedisChecker) HealthCheck(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}
