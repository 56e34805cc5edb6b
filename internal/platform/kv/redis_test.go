// Copyright (c) 2026 Viewr. All rights reserved.
// Author: dev@viewr.app

package kv_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MohamedSbika/Viewr-Backend-sub000/internal/platform/kv"
)

// newTestStore spins up an in-memory Redis and returns a connected store.
func newTestStore(t *testing.T) (*kv.RedisStore, *miniredis.Miniredis) {
	t.Helper()

	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return kv.NewRedisStore(client), server
}

/*
TestRedisStore_SetGet verifies the basic round trip and the not-found sentinel.
*/
func TestRedisStore_SetGet(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	_, err := store.Get(ctx, "missing")
	assert.ErrorIs(t, err, kv.ErrNotFound)

	require.NoError(t, store.Set(ctx, "auth:otp:alice@x.com", "123456", time.Minute))

	value, err := store.Get(ctx, "auth:otp:alice@x.com")
	require.NoError(t, err)
	assert.Equal(t, "123456", value)
}

/*
TestRedisStore_TTLExpiry verifies that values disappear after their TTL.
*/
func TestRedisStore_TTLExpiry(t *testing.T) {
	store, server := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "auth:otp:alice@x.com", "123456", 300*time.Second))

	// Advance miniredis past the TTL
	server.FastForward(301 * time.Second)

	_, err := store.Get(ctx, "auth:otp:alice@x.com")
	assert.ErrorIs(t, err, kv.ErrNotFound)
}

/*
TestRedisStore_Del verifies single-key deletion is idempotent.
*/
func TestRedisStore_Del(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", "v", 0))
	require.NoError(t, store.Del(ctx, "k"))

	_, err := store.Get(ctx, "k")
	assert.ErrorIs(t, err, kv.ErrNotFound)

	// Deleting again must not fail
	assert.NoError(t, store.Del(ctx, "k"))
}

/*
TestRedisStore_ScanPattern_DelMany verifies pattern enumeration and bulk delete,
the primitives behind revoke-all.
*/
func TestRedisStore_ScanPattern_DelMany(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "auth:refresh:alice@x.com:t1", "a", 0))
	require.NoError(t, store.Set(ctx, "auth:refresh:alice@x.com:t2", "b", 0))
	require.NoError(t, store.Set(ctx, "auth:refresh:bob@x.com:t3", "c", 0))

	keys, err := store.ScanPattern(ctx, "auth:refresh:alice@x.com:*")
	require.NoError(t, err)
	assert.Len(t, keys, 2)

	require.NoError(t, store.DelMany(ctx, keys))

	// Alice's tokens are gone, Bob's survive
	remaining, err := store.ScanPattern(ctx, "auth:refresh:*")
	require.NoError(t, err)
	assert.Equal(t, []string{"auth:refresh:bob@x.com:t3"}, remaining)

	// Empty slice is a no-op
	assert.NoError(t, store.DelMany(ctx, nil))
}
