package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// swapIfChangedScript keeps compare and write in one server-side step.
var swapIfChangedScript = redis.NewScript(`
local prev = redis.call('GET', KEYS[1])
if prev == ARGV[1] then
  return prev
end
redis.call('SET', KEYS[1], ARGV[1], 'PX', ARGV[2])
return prev
`)

// RedisStore implements Store on Redis. SET NX GET needs Redis 7 or newer.
type RedisStore struct {
	client *redis.Client
	logger *slog.Logger
}

// NewRedisStore parses redisURL, applies an optional password override, and
// pings the server before returning.
func NewRedisStore(ctx context.Context, redisURL, password string, logger *slog.Logger) (*RedisStore, error) {
	if logger == nil {
		logger = slog.Default()
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	if password != "" {
		opt.Password = password
	}

	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	logger.Debug("redis connected", "addr", opt.Addr, "db", opt.DB)

	return &RedisStore{
		client: client,
		logger: logger.With("component", "redis_store"),
	}, nil
}

// SetIfAbsent issues SET key value NX GET EX ttl.
func (s *RedisStore) SetIfAbsent(ctx context.Context, key, value string, ttl time.Duration) (string, bool, error) {
	prev, err := s.client.SetArgs(ctx, key, value, redis.SetArgs{
		Mode: "NX",
		TTL:  ttl,
		Get:  true,
	}).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis SET NX GET %s: %w", key, err)
	}
	return prev, true, nil
}

// SwapIfChanged runs the compare-and-set script for key.
func (s *RedisStore) SwapIfChanged(ctx context.Context, key, value string, ttl time.Duration) (string, bool, error) {
	prev, err := swapIfChangedScript.Run(ctx, s.client, []string{key}, value, ttl.Milliseconds()).Text()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis swap %s: %w", key, err)
	}
	return prev, true, nil
}

// Get returns the value for key.
func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis GET %s: %w", key, err)
	}
	return val, true, nil
}

// Ping checks the connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the underlying client pool.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
