/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package research

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// CacheTTL is how long lookups stay cached.
const CacheTTL = 24 * time.Hour

const cacheKeyPrefix = "labwave:research:"

// ErrCacheMiss is returned by a Cache when the key is absent.
var ErrCacheMiss = errors.New("cache miss")

// Cache stores lookup results between requests.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
}

// RedisCache is a Cache backed by Redis.
type RedisCache struct {
	c *redis.Client
}

// NewRedisCache wraps a Redis client.
func NewRedisCache(c *redis.Client) *RedisCache { return &RedisCache{c: c} }

// NewRedisCacheFromURL connects to the Redis server at url and pings it.
func NewRedisCacheFromURL(ctx context.Context, url string) (*RedisCache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return NewRedisCache(client), nil
}

// Get implements Cache.
func (r *RedisCache) Get(ctx context.Context, key string) (string, error) {
	val, err := r.c.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrCacheMiss
		}
		return "", err
	}

	return val, nil
}

// Set implements Cache.
func (r *RedisCache) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	return r.c.Set(ctx, key, value, ttl).Err()
}

// Close closes the underlying client.
func (r *RedisCache) Close() error {
	return r.c.Close()
}

// cached returns the cached value for key, or calls fetch and caches its
// result. Cache failures are logged and never fail the lookup.
func cached[T any](ctx context.Context, cache Cache, key string, fetch func() (T, error)) (T, error) {
	if cache == nil {
		return fetch()
	}

	key = cacheKeyPrefix + key

	if raw, err := cache.Get(ctx, key); err == nil {
		var v T
		if err := json.Unmarshal([]byte(raw), &v); err == nil {
			return v, nil
		}
	} else if !errors.Is(err, ErrCacheMiss) {
		logger.Warn("Research cache read failed", "key", key, "error", err)
	}

	v, err := fetch()
	if err != nil {
		return v, err
	}

	raw, err := json.Marshal(v)
	if err != nil {
		return v, nil
	}

	if err := cache.Set(ctx, key, string(raw), CacheTTL); err != nil {
		logger.Warn("Research cache write failed", "key", key, "error", err)
	}

	return v, nil
}
