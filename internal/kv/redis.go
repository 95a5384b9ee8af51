package kv

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore is the shared Store backend for deployments where several
// processes must see the same recency queue and rate limit counters.
type RedisStore struct {
	rdb *redis.Client
}

// OpenRedis connects to Redis and verifies the connection.
func OpenRedis(ctx context.Context, addr, password string, db int) (*RedisStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}
	return &RedisStore{rdb: rdb}, nil
}

// Close closes the client connection pool.
func (s *RedisStore) Close() error {
	return s.rdb.Close()
}

// PushTrim prepends values and trims the list in one pipelined transaction.
func (s *RedisStore) PushTrim(ctx context.Context, key string, size int, values ...string) error {
	if len(values) == 0 {
		return nil
	}
	// values arrive newest first; LPUSH pushes its last argument to the
	// head, so reverse the batch to land values[0] there.
	args := make([]any, len(values))
	for i, v := range values {
		args[len(values)-1-i] = v
	}
	pipe := s.rdb.TxPipeline()
	pipe.LPush(ctx, key, args...)
	pipe.LTrim(ctx, key, 0, int64(size)-1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("push trim %q: %w", key, err)
	}
	return nil
}

// Range returns the list at key, newest first.
func (s *RedisStore) Range(ctx context.Context, key string) ([]string, error) {
	list, err := s.rdb.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("range %q: %w", key, err)
	}
	return list, nil
}

// IncrWindow increments an expiring counter, arming the TTL only when the
// increment opened the window.
func (s *RedisStore) IncrWindow(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	pipe := s.rdb.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, window)
	ttl := pipe.TTL(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, 0, fmt.Errorf("incr window %q: %w", key, err)
	}

	remaining := ttl.Val()
	if remaining < 0 {
		remaining = window
	}
	return incr.Val(), remaining, nil
}
