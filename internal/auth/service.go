// Copyright (c) 2026 Viewr. All rights reserved.
// Author: dev@viewr.app

package auth

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/MohamedSbika/Viewr-Backend-sub000/internal/platform/apperr"
	"github.com/MohamedSbika/Viewr-Backend-sub000/internal/platform/constants"
	"github.com/MohamedSbika/Viewr-Backend-sub000/internal/platform/sec"
	"github.com/MohamedSbika/Viewr-Backend-sub000/internal/platform/validate"
	"github.com/MohamedSbika/Viewr-Backend-sub000/internal/rbac"
	"github.com/MohamedSbika/Viewr-Backend-sub000/pkg/uuid"
)

// # Role Derivation

// PrimaryRoleSource derives an account's primary role from RBAC storage.
// The first role by title order wins; roleless accounts fall back to the
// default role title.
type PrimaryRoleSource struct {
	roles rbac.RoleRepository
}

// NewPrimaryRoleSource wraps the role repository as a [RoleSource].
func NewPrimaryRoleSource(roles rbac.RoleRepository) *PrimaryRoleSource {
	return &PrimaryRoleSource{roles: roles}
}

// PrimaryRole implements [RoleSource].
func (source *PrimaryRoleSource) PrimaryRole(ctx context.Context, accountID string) (string, error) {
	roles, err := source.roles.ListByAccount(ctx, accountID)
	if err != nil {
		return "", fmt.Errorf("primary_role_lookup_failed: %w", err)
	}
	if len(roles) == 0 {
		return constants.DefaultRoleTitle, nil
	}
	return roles[0].Title, nil
}

// # Orchestrator

// ProfileInput carries the personal data collected at registration.
type ProfileInput struct {
	FirstName string
	LastName  string
	Address   string
	Gender    string
	CIN       string
	DOB       string
}

// LoginUser is the identity block returned alongside the tokens.
type LoginUser struct {
	ID       string
	FullName string
	Email    string
	Role     string
}

// LoginResult bundles the three tokens issued at login.
type LoginResult struct {
	AccessToken  string
	RefreshToken string
	UserToken    string
	User         LoginUser
}

// Service orchestrates the identity lifecycle: registration, both login
// steps, token refresh, logout, and password reset.
type Service struct {
	users      UserRepository
	roles      rbac.RoleRepository
	roleSource RoleSource
	aggregator *rbac.Aggregator
	sessions   *SessionRegistry
	otp        *OTPService
	reset      *ResetFlow
	hasher     *sec.Hasher
	codec      *sec.TokenCodec
	logger     *slog.Logger
}

// NewService wires the orchestrator to its collaborators.
func NewService(
	users UserRepository,
	roles rbac.RoleRepository,
	roleSource RoleSource,
	aggregator *rbac.Aggregator,
	sessions *SessionRegistry,
	otp *OTPService,
	reset *ResetFlow,
	hasher *sec.Hasher,
	codec *sec.TokenCodec,
	logger *slog.Logger,
) *Service {
	return &Service{
		users:      users,
		roles:      roles,
		roleSource: roleSource,
		aggregator: aggregator,
		sessions:   sessions,
		otp:        otp,
		reset:      reset,
		hasher:     hasher,
		codec:      codec,
		logger:     logger,
	}
}

/*
Register creates a new, unverified account with its profile and default role.

Description: Account, profile, and role assignment are persisted atomically;
a failure anywhere leaves no partial account behind.

Parameters:
  - ctx: context.Context
  - email, password, phoneNumber: string
  - profile: ProfileInput

Returns:
  - *User: The created (unverified) account
  - error: apperr.ValidationError, apperr.Conflict on duplicate email
*/
func (service *Service) Register(ctx context.Context, email, password, phoneNumber string, profile ProfileInput) (*User, error) {
	v := &validate.Validator{}
	err := v.
		Required("email", email).
		Email("email", email).
		Required("password", password).
		MinLen("password", password, 8).
		MaxLen("password", password, 72).
		Required("phone_number", phoneNumber).
		Required("profile.FirstName", profile.FirstName).
		Required("profile.LastName", profile.LastName).
		Err()
	if err != nil {
		return nil, err
	}

	passwordHash, err := service.hasher.Hash(password)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("register_hash_failed: %w", err))
	}

	defaultRole, err := service.roles.FindByTitle(ctx, constants.DefaultRoleTitle)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("register_default_role_missing: %w", err))
	}

	user := &User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: passwordHash,
		PhoneNumber:  phoneNumber,
		IsVerified:   false,
	}

	profileRecord := &Profile{
		FirstName: profile.FirstName,
		LastName:  profile.LastName,
		Address:   profile.Address,
		Gender:    profile.Gender,
		CIN:       profile.CIN,
		DOB:       profile.DOB,
	}

	if err := service.users.CreateWithProfile(ctx, user, profileRecord, defaultRole.ID); err != nil {
		return nil, err
	}

	service.logger.InfoContext(ctx, "auth_user_registered",
		slog.String("user_id", user.ID),
	)

	return user, nil
}

/*
Verify marks an account as verified, unlocking login.

Parameters:
  - ctx: context.Context
  - userID: string

Returns:
  - error: apperr.ValidationError, apperr.NotFound
*/
func (service *Service) Verify(ctx context.Context, userID string) error {
	v := &validate.Validator{}
	if err := v.UUID("userId", userID).Err(); err != nil {
		return err
	}

	if err := service.users.MarkVerified(ctx, userID); err != nil {
		return err
	}

	service.logger.InfoContext(ctx, "auth_user_verified",
		slog.String("user_id", userID),
	)

	return nil
}

/*
Login authenticates a password and issues the full token set.

Description: On valid credentials a fresh OTP is always generated and
dispatched as a side effect — password-only login stays valid, the OTP is
supplementary for clients that enforce the second step.

Parameters:
  - ctx: context.Context
  - email, password: string

Returns:
  - *LoginResult: Access, refresh, and permission tokens plus the identity block
  - error: apperr.Unauthorized for unknown, unverified, or mismatched credentials
*/
func (service *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	v := &validate.Validator{}
	if err := v.Required("email", email).Email("email", email).Required("password", password).Err(); err != nil {
		return nil, err
	}

	user, err := service.authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}

	result, err := service.issueTokens(ctx, user)
	if err != nil {
		return nil, err
	}

	// Side effect: a fresh OTP for clients that gate on the second step.
	if _, err := service.otp.IsRequired(ctx, user); err != nil {
		return nil, err
	}

	service.logger.InfoContext(ctx, "auth_login_succeeded",
		slog.String("user_id", user.ID),
	)

	return result, nil
}

/*
LoginWithOTP completes the two-step login.

Description: The OTP is checked before anything else and consumed on
success, so a replayed code fails even within its TTL. Credential checking
and token issuance then match plain login, except no new OTP is generated.

Parameters:
  - ctx: context.Context
  - email, password, code: string

Returns:
  - *LoginResult: Same shape as [Service.Login]
  - error: apperr.PreconditionFailed for a wrong or consumed OTP,
    apperr.Unauthorized for credential failures
*/
func (service *Service) LoginWithOTP(ctx context.Context, email, password, code string) (*LoginResult, error) {
	v := &validate.Validator{}
	err := v.
		Required("email", email).
		Email("email", email).
		Required("password", password).
		OTP("otp", code).
		Err()
	if err != nil {
		return nil, err
	}

	valid, err := service.otp.Verify(ctx, email, code)
	if err != nil {
		return nil, err
	}
	if !valid {
		return nil, apperr.PreconditionFailed("Invalid or expired OTP")
	}

	// Consume before issuing anything — a correct code works exactly once.
	if err := service.otp.Remove(ctx, email); err != nil {
		return nil, err
	}

	user, err := service.authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}

	result, err := service.issueTokens(ctx, user)
	if err != nil {
		return nil, err
	}

	service.logger.InfoContext(ctx, "auth_login_otp_succeeded",
		slog.String("user_id", user.ID),
	)

	return result, nil
}

/*
Refresh exchanges a live refresh token for a fresh access token.

Parameters:
  - ctx: context.Context
  - refreshToken: string

Returns:
  - string: The new access token
  - error: apperr.Unauthorized on any trust failure
*/
func (service *Service) Refresh(ctx context.Context, refreshToken string) (string, error) {
	if refreshToken == "" {
		return "", validate.RequiredError("refresh_token", "This field is required")
	}
	return service.sessions.RedeemRefreshToken(ctx, refreshToken)
}

/*
Logout voids an access token and revokes every session of its holder.

Description: Only the signature is required to be valid — an expired token
is still accepted, since the goal is cleanup, not access. The blacklist
write comes first: if revocation then fails, the system errs in the more
restrictive direction.

Parameters:
  - ctx: context.Context
  - accessToken: string

Returns:
  - error: apperr.Unauthorized for a bad signature, storage errors
*/
func (service *Service) Logout(ctx context.Context, accessToken string) error {
	if accessToken == "" {
		return validate.RequiredError("access_token", "This field is required")
	}

	claims, err := service.codec.ParseAccessSignatureOnly(accessToken)
	if err != nil {
		return apperr.Unauthorized("Invalid access token")
	}

	if err := service.sessions.Blacklist(ctx, accessToken, service.codec.AccessTTL()); err != nil {
		return err
	}

	if err := service.sessions.RevokeAll(ctx, claims.Email); err != nil {
		return err
	}

	service.logger.InfoContext(ctx, "auth_logout_succeeded",
		slog.String("user_id", claims.Subject),
	)

	return nil
}

/*
RequestPasswordReset starts the reset flow for an email.

Returns:
  - string: A generic confirmation, identical for known and unknown emails
  - error: Storage failures only
*/
func (service *Service) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	v := &validate.Validator{}
	if err := v.Required("email", email).Email("email", email).Err(); err != nil {
		return "", err
	}
	return service.reset.Request(ctx, email)
}

/*
ResetPassword redeems a reset token and installs the new password.

Returns:
  - error: apperr.BadRequest for an unknown or expired token
*/
func (service *Service) ResetPassword(ctx context.Context, email, resetToken, newPassword string) error {
	v := &validate.Validator{}
	err := v.
		Required("email", email).
		Email("email", email).
		Required("resetToken", resetToken).
		Required("newPassword", newPassword).
		MinLen("newPassword", newPassword, 8).
		MaxLen("newPassword", newPassword, 72).
		Err()
	if err != nil {
		return err
	}
	return service.reset.Redeem(ctx, email, resetToken, newPassword)
}

// # Internal Steps

// authenticate resolves and checks a credential pair. Every failure mode
// collapses into Unauthorized so callers cannot probe which part failed.
func (service *Service) authenticate(ctx context.Context, email, password string) (*User, error) {
	user, err := service.users.FindByEmail(ctx, email)
	if err != nil {
		if apperr.IsCode(err, "NOT_FOUND") {
			return nil, apperr.Unauthorized("Invalid credentials")
		}
		return nil, err
	}

	if !user.IsVerified {
		return nil, apperr.Unauthorized("Account is not verified")
	}

	match, err := service.hasher.Verify(user.PasswordHash, password)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("authenticate_verify_failed: %w", err))
	}
	if !match {
		return nil, apperr.Unauthorized("Invalid credentials")
	}

	return user, nil
}

// issueTokens mints the access/refresh/permission token set for an
// authenticated user.
func (service *Service) issueTokens(ctx context.Context, user *User) (*LoginResult, error) {
	role, err := service.roleSource.PrimaryRole(ctx, user.ID)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	accessToken, err := service.codec.SignAccess(user.ID, user.Email, role)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("issue_access_failed: %w", err))
	}

	refreshToken, err := service.sessions.CreateRefreshToken(ctx, user, role)
	if err != nil {
		return nil, err
	}

	features, err := service.aggregator.Aggregate(ctx, user.ID)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	userToken, err := service.codec.SignPermission(user.ID, user.Email, features)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("issue_permission_failed: %w", err))
	}

	fullName := ""
	if profile, err := service.users.ProfileByAccount(ctx, user.ID); err == nil {
		fullName = profile.FullName()
	} else if !apperr.IsCode(err, "NOT_FOUND") {
		return nil, err
	}

	return &LoginResult{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		UserToken:    userToken,
		User: LoginUser{
			ID:       user.ID,
			FullName: fullName,
			Email:    user.Email,
			Role:     role,
		},
	}, nil
}
