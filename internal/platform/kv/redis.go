// Copyright (c) 2026 Viewr. All rights reserved.
// Author: dev@viewr.app

package kv

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore implements [Store] on top of a go-redis client.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore wraps an already-connected Redis client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

/*
Get returns the value stored under key.

Description: Returns [ErrNotFound] when the key is absent or its TTL elapsed.

Parameters:
  - ctx: context.Context
  - key: string

Returns:
  - string: Stored value
  - error: ErrNotFound or connectivity errors
*/
func (store *RedisStore) Get(ctx context.Context, key string) (string, error) {
	value, err := store.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("kv_redis_get_failed: %w", err)
	}
	return value, nil
}

/*
Set stores value under key with a TTL.

Parameters:
  - ctx: context.Context
  - key: string
  - value: string
  - ttl: time.Duration (0 = no expiry)

Returns:
  - error: Execution errors
*/
func (store *RedisStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := store.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("kv_redis_set_failed: %w", err)
	}
	return nil
}

/*
Del removes a single key. Absent keys are ignored.

Parameters:
  - ctx: context.Context
  - key: string

Returns:
  - error: Execution errors
*/
func (store *RedisStore) Del(ctx context.Context, key string) error {
	if err := store.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("kv_redis_del_failed: %w", err)
	}
	return nil
}

/*
DelMany removes every key in the slice in a single DEL round trip.

Parameters:
  - ctx: context.Context
  - keys: []string

Returns:
  - error: Execution errors
*/
func (store *RedisStore) DelMany(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := store.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("kv_redis_del_many_failed: %w", err)
	}
	return nil
}

/*
ScanPattern walks the keyspace with SCAN and returns all matching keys.

Description: SCAN is used instead of KEYS so production Redis instances are
never blocked by a full keyspace sweep.

Parameters:
  - ctx: context.Context
  - pattern: string (glob-style)

Returns:
  - []string: Matching keys (may be empty)
  - error: Execution errors
*/
func (store *RedisStore) ScanPattern(ctx context.Context, pattern string) ([]string, error) {
	var keys []string

	iterator := store.client.Scan(ctx, 0, pattern, 0).Iterator()
	for iterator.Next(ctx) {
		keys = append(keys, iterator.Val())
	}
	if err := iterator.Err(); err != nil {
		return nil, fmt.Errorf("kv_redis_scan_failed: %w", err)
	}

	return keys, nil
}
