// Copyright (c) 2026 Viewr. All rights reserved.
// Author: dev@viewr.app

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/MohamedSbika/Viewr-Backend-sub000/internal/platform/apperr"
	"github.com/MohamedSbika/Viewr-Backend-sub000/internal/platform/constants"
	"github.com/MohamedSbika/Viewr-Backend-sub000/internal/platform/kv"
	"github.com/MohamedSbika/Viewr-Backend-sub000/internal/platform/mail"
	"github.com/MohamedSbika/Viewr-Backend-sub000/internal/platform/sec"
)

// OTPService manages the emailed one-time codes that gate two-step login.
//
// # Storage
//
// One code per email, stored under "auth:otp:<email>" with a 300-second TTL.
// Regenerating a code silently invalidates the previous one (last writer
// wins — the code is delivered synchronously to the caller that overwrote).
type OTPService struct {
	store  kv.Store
	sender mail.Sender
	logger *slog.Logger
}

// NewOTPService wires the OTP service to its volatile store and mail sender.
func NewOTPService(store kv.Store, sender mail.Sender, logger *slog.Logger) *OTPService {
	return &OTPService{
		store:  store,
		sender: sender,
		logger: logger,
	}
}

/*
IsRequired reports whether an OTP challenge applies to the given account,
generating and dispatching a fresh code when it does.

Parameters:
  - ctx: context.Context
  - user: *User (nil when the account does not exist)

Returns:
  - bool: false for unknown accounts, true after a code was dispatched
  - error: Store or random-source failures
*/
func (service *OTPService) IsRequired(ctx context.Context, user *User) (bool, error) {
	if user == nil {
		return false, nil
	}

	code, err := service.Generate(ctx, user.Email)
	if err != nil {
		return false, err
	}

	body := fmt.Sprintf("Your Viewr verification code is %s. It expires in %d minutes.",
		code, int(constants.OTPTTL.Minutes()))

	if err := service.sender.Send(ctx, user.Email, "Your Viewr verification code", body); err != nil {
		// The code is already stored; a delivery failure should not leak
		// it nor fail the login that triggered it.
		service.logger.ErrorContext(ctx, "otp_mail_dispatch_failed",
			slog.String("email", user.Email),
			slog.Any("error", err),
		)
	}

	return true, nil
}

/*
Generate creates and stores a fresh six-digit code for the email.

Any existing code for the same email is deleted first, so at most one code
is live per account at any time.

Parameters:
  - ctx: context.Context
  - email: string

Returns:
  - string: The generated code
  - error: Store or random-source failures
*/
func (service *OTPService) Generate(ctx context.Context, email string) (string, error) {
	key := constants.RedisPrefixOTP + email

	if err := service.store.Del(ctx, key); err != nil {
		return "", apperr.Internal(fmt.Errorf("otp_delete_previous_failed: %w", err))
	}

	code, err := sec.GenerateOTP()
	if err != nil {
		return "", apperr.Internal(fmt.Errorf("otp_generate_failed: %w", err))
	}

	if err := service.store.Set(ctx, key, code, constants.OTPTTL); err != nil {
		return "", apperr.Internal(fmt.Errorf("otp_store_failed: %w", err))
	}

	return code, nil
}

/*
Verify checks a candidate code against the stored value.

Verification does not consume the code — [OTPService.Remove] is the explicit
second step after a successful OTP-gated login.

Parameters:
  - ctx: context.Context
  - email: string
  - candidate: string

Returns:
  - bool: true only on a string-exact match
  - error: Store failures (a missing code is a clean false)
*/
func (service *OTPService) Verify(ctx context.Context, email, candidate string) (bool, error) {
	stored, err := service.store.Get(ctx, constants.RedisPrefixOTP+email)
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return false, nil
		}
		return false, apperr.Internal(fmt.Errorf("otp_lookup_failed: %w", err))
	}

	return stored == candidate, nil
}

// Remove deletes the stored code, preventing replay within the remaining
// TTL window.
func (service *OTPService) Remove(ctx context.Context, email string) error {
	if err := service.store.Del(ctx, constants.RedisPrefixOTP+email); err != nil {
		return apperr.Internal(fmt.Errorf("otp_remove_failed: %w", err))
	}
	return nil
}
