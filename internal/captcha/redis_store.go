package captcha

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "pathfinder:captcha:"

// RedisStore keeps challenges in Redis, relying on key TTLs for expiry
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore wraps an existing Redis client
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func redisKey(id string) string {
	return redisKeyPrefix + id
}

// Save writes the challenge with a TTL matching its expiry
func (s *RedisStore) Save(ctx context.Context, c *Challenge) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal challenge: %w", err)
	}

	var ttl time.Duration
	if !c.ExpiresAt.IsZero() {
		ttl = time.Until(c.ExpiresAt)
		if ttl <= 0 {
			return s.Delete(ctx, c.ID)
		}
	}

	if err := s.client.Set(ctx, redisKey(c.ID), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to save challenge: %w", err)
	}
	return nil
}

// Load reads a challenge
func (s *RedisStore) Load(ctx context.Context, id string) (*Challenge, error) {
	data, err := s.client.Get(ctx, redisKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrChallengeNotFound
		}
		return nil, fmt.Errorf("failed to load challenge: %w", err)
	}

	var c Challenge
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal challenge: %w", err)
	}
	return &c, nil
}

// Delete removes a challenge
func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, redisKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete challenge: %w", err)
	}
	return nil
}

// Sweep is a no-op: Redis expires keys on its own
func (s *RedisStore) Sweep(context.Context, time.Time) (int, error) {
	return 0, nil
}
