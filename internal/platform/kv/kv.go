// Copyright (c) 2026 Viewr. All rights reserved.
// Author: dev@viewr.app

/*
Package kv abstracts the shared key-value store used for every ephemeral
auth entity: refresh tokens, OTPs, password-reset tokens, and the access-token
blacklist.

Architecture:

  - Store: A narrow interface (get / set-with-TTL / del / del-many / scan).
  - RedisStore: The production implementation on go-redis.
  - Injection: The store handle is passed through constructors; no component
    reaches a process-wide singleton.

Every mutation is single-key or pattern-scoped. There are no transactions —
concurrent writers for the same account produce independent keys.
*/
package kv

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by [Store.Get] when the key is absent or expired.
var ErrNotFound = errors.New("kv: key not found")

// Store is the contract for the shared ephemeral key-value store.
//
// # Timeouts
//
// Implementations do not impose deadlines of their own; callers are expected
// to supply a context with a timeout on every call.
type Store interface {

	// Get returns the value stored under key, or [ErrNotFound].
	Get(ctx context.Context, key string) (string, error)

	// Set stores value under key with the given TTL. A zero TTL means the
	// key never expires.
	Set(ctx context.Context, key, value string, ttl time.Duration) error

	// Del removes a single key. Deleting an absent key is not an error.
	Del(ctx context.Context, key string) error

	// DelMany removes every key in the slice in a single round trip.
	DelMany(ctx context.Context, keys []string) error

	// ScanPattern returns all keys matching a glob-style pattern
	// (e.g. "auth:refresh:alice@x.com:*").
	ScanPattern(ctx context.Context, pattern string) ([]string, error)
}
