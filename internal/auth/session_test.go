// Copyright (c) 2026 Viewr. All rights reserved.
// Author: dev@viewr.app

package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MohamedSbika/Viewr-Backend-sub000/internal/auth"
	"github.com/MohamedSbika/Viewr-Backend-sub000/internal/platform/apperr"
	"github.com/MohamedSbika/Viewr-Backend-sub000/internal/platform/kv"
	"github.com/MohamedSbika/Viewr-Backend-sub000/internal/platform/sec"
)

// # Test Doubles

// staticRoleSource answers every role lookup with a fixed title.
type staticRoleSource struct {
	role string
	err  error
}

func (source *staticRoleSource) PrimaryRole(ctx context.Context, accountID string) (string, error) {
	return source.role, source.err
}

// failingStore wraps a working store but fails writes, for degraded-mode tests.
type failingStore struct {
	kv.Store
}

func (store *failingStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return errors.New("store unreachable")
}

func newTestRegistry(t *testing.T, roles auth.RoleSource) (*auth.SessionRegistry, *sec.TokenCodec, kv.Store) {
	t.Helper()

	store, _ := newTestKV(t)
	codec := sec.NewTokenCodec("unit-test-signing-secret", "viewr.app", 15*time.Minute, 14*24*time.Hour)
	registry := auth.NewSessionRegistry(store, codec, roles, testLogger())

	return registry, codec, store
}

var testUser = &auth.User{ID: "11111111-1111-7111-8111-111111111111", Email: "alice@x.com", IsVerified: true}

// # Tests

/*
TestSessionRegistry_CreateAndRedeem verifies the happy path: a registered
refresh token redeems for a fresh access token carrying the current role.
*/
func TestSessionRegistry_CreateAndRedeem(t *testing.T) {
	registry, codec, _ := newTestRegistry(t, &staticRoleSource{role: "Doctor"})
	ctx := context.Background()

	refreshToken, err := registry.CreateRefreshToken(ctx, testUser, "User")
	require.NoError(t, err)

	accessToken, err := registry.RedeemRefreshToken(ctx, refreshToken)
	require.NoError(t, err)

	claims, err := codec.VerifyAccess(accessToken)
	require.NoError(t, err)
	assert.Equal(t, testUser.ID, claims.Subject)

	// Role is re-derived from storage, not copied from the stale claim
	assert.Equal(t, "Doctor", claims.Role)
}

/*
TestSessionRegistry_RedeemUnregistered verifies a signed token the registry
never stored fails redemption.
*/
func TestSessionRegistry_RedeemUnregistered(t *testing.T) {
	registry, codec, _ := newTestRegistry(t, &staticRoleSource{role: "User"})

	// Signed by the same codec, but never registered
	token, _, err := codec.SignRefresh(testUser.ID, testUser.Email, "User")
	require.NoError(t, err)

	_, err = registry.RedeemRefreshToken(context.Background(), token)
	assert.True(t, apperr.IsCode(err, "UNAUTHORIZED"))
}

/*
TestSessionRegistry_RedeemGarbage verifies unparseable tokens fail cleanly.
*/
func TestSessionRegistry_RedeemGarbage(t *testing.T) {
	registry, _, _ := newTestRegistry(t, &staticRoleSource{role: "User"})

	_, err := registry.RedeemRefreshToken(context.Background(), "not-a-token")
	assert.True(t, apperr.IsCode(err, "UNAUTHORIZED"))
}

/*
TestSessionRegistry_RedeemNotRotated verifies redemption does not rotate the
refresh token: the same token redeems repeatedly while registered.
*/
func TestSessionRegistry_RedeemNotRotated(t *testing.T) {
	registry, _, _ := newTestRegistry(t, &staticRoleSource{role: "User"})
	ctx := context.Background()

	refreshToken, err := registry.CreateRefreshToken(ctx, testUser, "User")
	require.NoError(t, err)

	_, err = registry.RedeemRefreshToken(ctx, refreshToken)
	require.NoError(t, err)

	_, err = registry.RedeemRefreshToken(ctx, refreshToken)
	assert.NoError(t, err)
}

/*
TestSessionRegistry_DegradedMode verifies login still receives a token when
the store write fails, and that such a token cannot be redeemed.
*/
func TestSessionRegistry_DegradedMode(t *testing.T) {
	store, _ := newTestKV(t)
	codec := sec.NewTokenCodec("unit-test-signing-secret", "viewr.app", 15*time.Minute, 14*24*time.Hour)
	registry := auth.NewSessionRegistry(&failingStore{Store: store}, codec, &staticRoleSource{role: "User"}, testLogger())
	ctx := context.Background()

	// The write fails, the caller still gets a signed token
	refreshToken, err := registry.CreateRefreshToken(ctx, testUser, "User")
	require.NoError(t, err)
	require.NotEmpty(t, refreshToken)

	// Signature-valid but unregistered: redemption refuses it
	_, err = registry.RedeemRefreshToken(ctx, refreshToken)
	assert.True(t, apperr.IsCode(err, "UNAUTHORIZED"))
}

/*
TestSessionRegistry_RevokeAll verifies pattern revocation kills every session
of one email and spares others.
*/
func TestSessionRegistry_RevokeAll(t *testing.T) {
	registry, _, _ := newTestRegistry(t, &staticRoleSource{role: "User"})
	ctx := context.Background()

	bob := &auth.User{ID: "22222222-2222-7222-8222-222222222222", Email: "bob@x.com", IsVerified: true}

	aliceFirst, err := registry.CreateRefreshToken(ctx, testUser, "User")
	require.NoError(t, err)
	aliceSecond, err := registry.CreateRefreshToken(ctx, testUser, "User")
	require.NoError(t, err)
	bobToken, err := registry.CreateRefreshToken(ctx, bob, "User")
	require.NoError(t, err)

	require.NoError(t, registry.RevokeAll(ctx, testUser.Email))

	_, err = registry.RedeemRefreshToken(ctx, aliceFirst)
	assert.True(t, apperr.IsCode(err, "UNAUTHORIZED"))
	_, err = registry.RedeemRefreshToken(ctx, aliceSecond)
	assert.True(t, apperr.IsCode(err, "UNAUTHORIZED"))

	// Bob's session survives
	_, err = registry.RedeemRefreshToken(ctx, bobToken)
	assert.NoError(t, err)
}

/*
TestSessionRegistry_VerifyAccess verifies full validation: signature, expiry,
and blacklist membership.
*/
func TestSessionRegistry_VerifyAccess(t *testing.T) {
	registry, codec, _ := newTestRegistry(t, &staticRoleSource{role: "User"})
	ctx := context.Background()

	accessToken, err := codec.SignAccess(testUser.ID, testUser.Email, "User")
	require.NoError(t, err)

	claims, err := registry.VerifyAccess(ctx, accessToken)
	require.NoError(t, err)
	assert.Equal(t, testUser.Email, claims.Email)

	// Blacklisting voids the token even though the signature still checks out
	require.NoError(t, registry.Blacklist(ctx, accessToken, 15*time.Minute))

	_, err = registry.VerifyAccess(ctx, accessToken)
	assert.True(t, apperr.IsCode(err, "UNAUTHORIZED"))

	blacklisted, err := registry.IsBlacklisted(ctx, accessToken)
	require.NoError(t, err)
	assert.True(t, blacklisted)
}

/*
TestSessionRegistry_RoleLookupFailure verifies a role-derivation failure
during redemption surfaces as Internal, not Unauthorized.
*/
func TestSessionRegistry_RoleLookupFailure(t *testing.T) {
	registry, _, _ := newTestRegistry(t, &staticRoleSource{err: errors.New("db down")})
	ctx := context.Background()

	refreshToken, err := registry.CreateRefreshToken(ctx, testUser, "User")
	require.NoError(t, err)

	_, err = registry.RedeemRefreshToken(ctx, refreshToken)
	assert.True(t, apperr.IsCode(err, "INTERNAL_ERROR"))
}
