// Package cache provides Redis-backed caching.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"postboard/pkg/logger"
)

// Connect opens a client from a redis:// URL and pings it.
func Connect(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// Store keeps JSON-encoded values of type T under prefix:<key>.
// A nil client turns every operation into a no-op miss.
type Store[T any] struct {
	rc     *redis.Client
	prefix string
	ttl    time.Duration
}

// NewStore creates a Store.
func NewStore[T any](rc *redis.Client, prefix string, ttl time.Duration) *Store[T] {
	return &Store[T]{rc: rc, prefix: prefix, ttl: ttl}
}

// Key returns the redis key for key.
func (s *Store[T]) Key(key string) string {
	return s.prefix + ":" + key
}

// Get returns the cached value; ok is false on a miss.
func (s *Store[T]) Get(ctx context.Context, key string) (*T, bool, error) {
	if s.rc == nil {
		return nil, false, nil
	}

	raw, err := s.rc.Get(ctx, s.Key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get cache: %w", err)
	}

	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, false, fmt.Errorf("unmarshal cache data: %w", err)
	}
	return &v, true, nil
}

// Set stores v with the store's TTL.
func (s *Store[T]) Set(ctx context.Context, key string, v *T) error {
	if s.rc == nil {
		return nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal cache data: %w", err)
	}
	if err := s.rc.Set(ctx, s.Key(key), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("set cache: %w", err)
	}
	return nil
}

// Delete removes key.
func (s *Store[T]) Delete(ctx context.Context, key string) error {
	if s.rc == nil {
		return nil
	}
	if err := s.rc.Del(ctx, s.Key(key)).Err(); err != nil {
		return fmt.Errorf("delete cache: %w", err)
	}
	return nil
}

// logErr reports a cache failure without failing the request.
func logErr(ctx context.Context, op, key string, err error) {
	if err != nil {
		logger.Warn(ctx, "cache operation failed", "op", op, "key", key, "error", err)
	}
}
