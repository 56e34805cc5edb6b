// Copyright (c) 2026 Viewr. All rights reserved.
// Author: dev@viewr.app

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/MohamedSbika/Viewr-Backend-sub000/internal/platform/apperr"
	"github.com/MohamedSbika/Viewr-Backend-sub000/internal/platform/constants"
	"github.com/MohamedSbika/Viewr-Backend-sub000/internal/platform/kv"
	"github.com/MohamedSbika/Viewr-Backend-sub000/internal/platform/sec"
)

// RoleSource re-derives an account's current primary role. Redemption must
// not trust the role frozen into a days-old refresh claim.
type RoleSource interface {
	PrimaryRole(ctx context.Context, accountID string) (string, error)
}

// SessionRegistry tracks live refresh-token sessions and the access-token
// blacklist in the volatile store.
//
// # Keys
//
//   - "auth:refresh:<email>:<tokenId>" -> signed refresh token, TTL = refresh lifetime.
//   - "auth:blacklist:<token>" -> "1", TTL = access lifetime.
//
// Scoping refresh keys by email keeps revoke-all a single pattern scan.
type SessionRegistry struct {
	store  kv.Store
	codec  *sec.TokenCodec
	roles  RoleSource
	logger *slog.Logger
}

// NewSessionRegistry wires the registry to its store, codec, and role source.
func NewSessionRegistry(store kv.Store, codec *sec.TokenCodec, roles RoleSource, logger *slog.Logger) *SessionRegistry {
	return &SessionRegistry{
		store:  store,
		codec:  codec,
		roles:  roles,
		logger: logger,
	}
}

/*
CreateRefreshToken mints and registers a refresh token for the user.

Description: A storage failure is logged but does not fail the surrounding
login: the caller still gets a signed token, it just cannot be redeemed
later. Availability of login wins over redeemability of this one session.

Parameters:
  - ctx: context.Context
  - user: *User
  - role: string (primary role at issuance)

Returns:
  - string: The signed refresh token
  - error: Signing failures only
*/
func (registry *SessionRegistry) CreateRefreshToken(ctx context.Context, user *User, role string) (string, error) {
	token, tokenID, err := registry.codec.SignRefresh(user.ID, user.Email, role)
	if err != nil {
		return "", apperr.Internal(fmt.Errorf("session_sign_refresh_failed: %w", err))
	}

	key := refreshKey(user.Email, tokenID)
	if err := registry.store.Set(ctx, key, token, registry.codec.RefreshTTL()); err != nil {
		// Degraded mode: the login proceeds with an unregistered token.
		registry.logger.WarnContext(ctx, "session_refresh_store_failed_degraded",
			slog.String("email", user.Email),
			slog.String("token_id", tokenID),
			slog.Any("error", err),
		)
	}

	return token, nil
}

/*
RedeemRefreshToken exchanges a live refresh token for a fresh access token.

Description: The token must carry a valid signature, be unexpired against
wall-clock time, and still be present in the store — absence means it was
revoked, expired, or never registered. The user's role is re-derived from
storage, not read from the stale claim. Refresh tokens are not rotated on
redemption.

Parameters:
  - ctx: context.Context
  - token: string (signed refresh token)

Returns:
  - string: A newly minted access token
  - error: apperr.Unauthorized on any trust failure, apperr.Internal on
    role re-derivation failures
*/
func (registry *SessionRegistry) RedeemRefreshToken(ctx context.Context, token string) (string, error) {
	claims, err := registry.codec.VerifyRefresh(token)
	if err != nil {
		return "", apperr.Unauthorized("Invalid or expired refresh token")
	}

	// Re-check expiry against the wall clock rather than trusting the
	// codec alone; the store lookup below is the real revocation check.
	if claims.ExpiresAt == nil || time.Now().After(claims.ExpiresAt.Time) {
		return "", apperr.Unauthorized("Invalid or expired refresh token")
	}

	key := refreshKey(claims.Email, claims.TokenID)
	if _, err := registry.store.Get(ctx, key); err != nil {
		if !errors.Is(err, kv.ErrNotFound) {
			// Fail closed: an unreachable store must not bypass revocation.
			registry.logger.ErrorContext(ctx, "session_redeem_lookup_failed",
				slog.String("email", claims.Email),
				slog.Any("error", err),
			)
		}
		return "", apperr.Unauthorized("Invalid or expired refresh token")
	}

	role, err := registry.roles.PrimaryRole(ctx, claims.Subject)
	if err != nil {
		return "", apperr.Internal(fmt.Errorf("session_redeem_role_lookup_failed: %w", err))
	}

	accessToken, err := registry.codec.SignAccess(claims.Subject, claims.Email, role)
	if err != nil {
		return "", apperr.Internal(fmt.Errorf("session_sign_access_failed: %w", err))
	}

	return accessToken, nil
}

/*
Blacklist voids an access token for the remainder of its lifetime.

Parameters:
  - ctx: context.Context
  - token: string (the raw signed token, used as the key suffix)
  - ttl: time.Duration (how long the entry must outlive the token)

Returns:
  - error: Store failures
*/
func (registry *SessionRegistry) Blacklist(ctx context.Context, token string, ttl time.Duration) error {
	if err := registry.store.Set(ctx, constants.RedisPrefixBlacklist+token, "1", ttl); err != nil {
		return apperr.Internal(fmt.Errorf("session_blacklist_failed: %w", err))
	}
	return nil
}

// IsBlacklisted reports whether an access token has been voided.
func (registry *SessionRegistry) IsBlacklisted(ctx context.Context, token string) (bool, error) {
	_, err := registry.store.Get(ctx, constants.RedisPrefixBlacklist+token)
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return false, nil
		}
		return false, apperr.Internal(fmt.Errorf("session_blacklist_lookup_failed: %w", err))
	}
	return true, nil
}

/*
VerifyAccess fully validates an access token: signature, expiry, and
blacklist membership.

Parameters:
  - ctx: context.Context
  - token: string

Returns:
  - *sec.AccessClaims: The verified claims
  - error: apperr.Unauthorized on any of the three failures
*/
func (registry *SessionRegistry) VerifyAccess(ctx context.Context, token string) (*sec.AccessClaims, error) {
	claims, err := registry.codec.VerifyAccess(token)
	if err != nil {
		if errors.Is(err, sec.ErrTokenExpired) {
			return nil, apperr.Unauthorized("Access token expired")
		}
		return nil, apperr.Unauthorized("Invalid access token")
	}

	blacklisted, err := registry.IsBlacklisted(ctx, token)
	if err != nil {
		return nil, err
	}
	if blacklisted {
		return nil, apperr.Unauthorized("Access token revoked")
	}

	return claims, nil
}

/*
RevokeAll deletes every refresh-token session of the given email.

Used by logout and password reset to guarantee no pre-existing session
survives.

Parameters:
  - ctx: context.Context
  - email: string

Returns:
  - error: Store failures
*/
func (registry *SessionRegistry) RevokeAll(ctx context.Context, email string) error {
	keys, err := registry.store.ScanPattern(ctx, constants.RedisPrefixRefresh+email+":*")
	if err != nil {
		return apperr.Internal(fmt.Errorf("session_revoke_all_scan_failed: %w", err))
	}

	if err := registry.store.DelMany(ctx, keys); err != nil {
		return apperr.Internal(fmt.Errorf("session_revoke_all_delete_failed: %w", err))
	}

	registry.logger.InfoContext(ctx, "session_revoked_all",
		slog.String("email", email),
		slog.Int("count", len(keys)),
	)

	return nil
}

// refreshKey builds the store key of one refresh-token session.
func refreshKey(email, tokenID string) string {
	return constants.RedisPrefixRefresh + email + ":" + tokenID
}
