// Copyright (c) 2026 Viewr. All rights reserved.
// Author: dev@viewr.app

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/MohamedSbika/Viewr-Backend-sub000/internal/platform/apperr"
	"github.com/MohamedSbika/Viewr-Backend-sub000/internal/platform/constants"
	"github.com/MohamedSbika/Viewr-Backend-sub000/internal/platform/kv"
	"github.com/MohamedSbika/Viewr-Backend-sub000/internal/platform/mail"
	"github.com/MohamedSbika/Viewr-Backend-sub000/internal/platform/sec"
)

// resetRequestedMessage is returned for every reset request, whether or not
// the account exists. Revealing which emails are registered would hand an
// attacker an enumeration oracle.
const resetRequestedMessage = "If an account exists for this email, a reset link has been sent"

// ResetFlow implements password reset with single-use, expiring tokens.
//
// # Storage
//
// "auth:reset:<email>:<token>" -> account id, TTL 3600 seconds. The token is
// an opaque random string; nothing about the account can be derived from it.
type ResetFlow struct {
	store       kv.Store
	users       UserRepository
	hasher      *sec.Hasher
	sessions    *SessionRegistry
	sender      mail.Sender
	frontendURL string
	logger      *slog.Logger
}

// NewResetFlow wires the reset flow to its collaborators.
func NewResetFlow(
	store kv.Store,
	users UserRepository,
	hasher *sec.Hasher,
	sessions *SessionRegistry,
	sender mail.Sender,
	frontendURL string,
	logger *slog.Logger,
) *ResetFlow {
	return &ResetFlow{
		store:       store,
		users:       users,
		hasher:      hasher,
		sessions:    sessions,
		sender:      sender,
		frontendURL: frontendURL,
		logger:      logger,
	}
}

/*
Request issues a reset token for the email if an account exists.

Description: The response is identical whether or not the account exists.
For real accounts, an opaque token is stored for one hour and a reset link
is dispatched by mail.

Parameters:
  - ctx: context.Context
  - email: string

Returns:
  - string: The generic confirmation message, always
  - error: Store or random-source failures only — never "no such account"
*/
func (flow *ResetFlow) Request(ctx context.Context, email string) (string, error) {
	user, err := flow.users.FindByEmail(ctx, email)
	if err != nil {
		if apperr.IsCode(err, "NOT_FOUND") {
			// Same answer as the success path.
			return resetRequestedMessage, nil
		}
		return "", err
	}

	token, err := sec.GenerateSecureToken(constants.ResetTokenLength)
	if err != nil {
		return "", apperr.Internal(fmt.Errorf("reset_token_generate_failed: %w", err))
	}

	key := resetKey(email, token)
	if err := flow.store.Set(ctx, key, user.ID, constants.ResetTokenTTL); err != nil {
		return "", apperr.Internal(fmt.Errorf("reset_token_store_failed: %w", err))
	}

	link := fmt.Sprintf("%s/reset-password?token=%s&email=%s",
		flow.frontendURL, token, url.QueryEscape(email))
	body := fmt.Sprintf("A password reset was requested for your Viewr account.\n\n"+
		"Follow this link to choose a new password (valid for %d minutes):\n%s\n\n"+
		"If you did not request this, you can ignore this message.",
		int(constants.ResetTokenTTL.Minutes()), link)

	if err := flow.sender.Send(ctx, email, "Reset your Viewr password", body); err != nil {
		flow.logger.ErrorContext(ctx, "reset_mail_dispatch_failed",
			slog.String("email", email),
			slog.Any("error", err),
		)
	}

	return resetRequestedMessage, nil
}

/*
Redeem consumes a reset token and installs a new password.

Description: On success the token is deleted (single use) and every live
session of the account is revoked, so nothing issued before the reset
survives it.

Parameters:
  - ctx: context.Context
  - email: string
  - token: string (opaque token from the reset link)
  - newPassword: string (plaintext; hashed here)

Returns:
  - error: apperr.BadRequest for an unknown or expired token, storage errors
*/
func (flow *ResetFlow) Redeem(ctx context.Context, email, token, newPassword string) error {
	key := resetKey(email, token)

	userID, err := flow.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return apperr.BadRequest("Invalid or expired reset token")
		}
		return apperr.Internal(fmt.Errorf("reset_token_lookup_failed: %w", err))
	}

	user, err := flow.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}

	passwordHash, err := flow.hasher.Hash(newPassword)
	if err != nil {
		return apperr.Internal(fmt.Errorf("reset_password_hash_failed: %w", err))
	}

	if err := flow.users.UpdatePassword(ctx, user.ID, passwordHash); err != nil {
		return err
	}

	// Single use: the token dies with its first successful redemption.
	if err := flow.store.Del(ctx, key); err != nil {
		flow.logger.ErrorContext(ctx, "reset_token_delete_failed",
			slog.String("email", email),
			slog.Any("error", err),
		)
	}

	// No session issued before the reset may survive it.
	if err := flow.sessions.RevokeAll(ctx, email); err != nil {
		return err
	}

	flow.logger.InfoContext(ctx, "password_reset_completed",
		slog.String("user_id", user.ID),
	)

	return nil
}

// resetKey builds the store key of one reset token.
func resetKey(email, token string) string {
	return constants.RedisPrefixReset + email + ":" + token
}
