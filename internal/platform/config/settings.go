package config

import (
	"context"
	"fmt"
	"os"

	"github.com/redis/go-redis/v9"
)

// Settings is the read contract against the deployment's key-value settings
// store. Only lookups matter here; writing and administering the store is a
// deployment concern.
type Settings interface {
	Lookup(ctx context.Context, key string) (string, bool, error)
}

// EnvSettings reads settings from the process environment. It is the default
// backend and the one used in local development.
type EnvSettings struct{}

func (EnvSettings) Lookup(_ context.Context, key string) (string, bool, error) {
	value, ok := os.LookupEnv(key)
	return value, ok, nil
}

// RedisSettings reads settings from Redis under a fixed key prefix. Deploys
// that share one settings store across instances use this backend.
type RedisSettings struct {
	client *redis.Client
	prefix string
}

// NewRedisSettings wraps a Redis client as a settings backend. Keys are
// looked up as "<prefix><KEY>"; an empty prefix means bare keys.
func NewRedisSettings(client *redis.Client, prefix string) *RedisSettings {
	return &RedisSettings{client: client, prefix: prefix}
}

func (s *RedisSettings) Lookup(ctx context.Context, key string) (string, bool, error) {
	value, err := s.client.Get(ctx, s.prefix+key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("lookup setting %q: %w", key, err)
	}
	return value, true, nil
}

// MapSettings is an in-memory backend for tests.
type MapSettings map[string]string

func (m MapSettings) Lookup(_ context.Context, key string) (string, bool, error) {
	value, ok := m[key]
	return value, ok, nil
}
