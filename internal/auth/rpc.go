// Copyright (c) 2026 Viewr. All rights reserved.
// Author: dev@viewr.app

package auth

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/MohamedSbika/Viewr-Backend-sub000/internal/platform/apperr"
)

// # RPC Patterns

// Operation patterns consumed from the gateway. The platform gateway routes
// by these strings, so they are part of the external contract.
const (
	PatternLogin        = "auth.login"
	PatternLoginOTP     = "auth.login-otp"
	PatternRegister     = "auth.register"
	PatternVerify       = "auth.verify"
	PatternRefreshToken = "auth.refresh-token"
	PatternLogout       = "auth.logout"
	PatternResetRequest = "auth.password-reset-request"
	PatternReset        = "auth.password-reset"
)

// # Request Payloads
//
// Field names are part of the gateway contract — never rename them.

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginOTPRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	OTP      string `json:"otp"`
}

type registerProfile struct {
	FirstName string `json:"FirstName"`
	LastName  string `json:"LastName"`
	Address   string `json:"address"`
	Gender    string `json:"gender"`
	CIN       string `json:"CIN"`
	DOB       string `json:"DOB"`
}

type registerRequest struct {
	Email       string          `json:"email"`
	Password    string          `json:"password"`
	PhoneNumber string          `json:"phone_number"`
	Profile     registerProfile `json:"profile"`
}

type verifyRequest struct {
	UserID string `json:"userId"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type logoutRequest struct {
	AccessToken string `json:"access_token"`
}

type resetRequestRequest struct {
	Email string `json:"email"`
}

type resetRequest struct {
	ResetToken  string `json:"resetToken"`
	NewPassword string `json:"newPassword"`
	Email       string `json:"email"`
}

// # Response Payloads

type loginUserBlock struct {
	ID       string `json:"id"`
	FullName string `json:"fullname"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

type loginResponse struct {
	AccessToken  string         `json:"access_token"`
	RefreshToken string         `json:"refresh_token"`
	UserToken    string         `json:"user_token"`
	User         loginUserBlock `json:"user"`
}

type registeredUserBlock struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type registerResponse struct {
	Success bool                `json:"success"`
	Message string              `json:"message"`
	User    registeredUserBlock `json:"user"`
}

type ackResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type refreshResponse struct {
	AccessToken string `json:"access_token"`
}

// # Dispatcher

// Orchestrator is the service surface the dispatcher routes into.
type Orchestrator interface {
	Register(ctx context.Context, email, password, phoneNumber string, profile ProfileInput) (*User, error)
	Verify(ctx context.Context, userID string) error
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	LoginWithOTP(ctx context.Context, email, password, code string) (*LoginResult, error)
	Refresh(ctx context.Context, refreshToken string) (string, error)
	Logout(ctx context.Context, accessToken string) error
	RequestPasswordReset(ctx context.Context, email string) (string, error)
	ResetPassword(ctx context.Context, email, resetToken, newPassword string) error
}

// Dispatcher decodes gateway payloads, routes them by pattern, and shapes
// the responses.
//
// # Design
//
// Payloads are strictly typed per operation and unknown fields are rejected
// at this boundary — nothing untyped leaks into the service layer.
type Dispatcher struct {
	service Orchestrator
}

// NewDispatcher wires the dispatcher to the orchestrator.
func NewDispatcher(service Orchestrator) *Dispatcher {
	return &Dispatcher{service: service}
}

/*
Dispatch routes one gateway message to its operation.

Parameters:
  - ctx: context.Context (carries the per-message deadline and logger)
  - pattern: string (one of the Pattern constants)
  - data: json.RawMessage (the operation payload)

Returns:
  - any: The operation's response payload, ready for JSON encoding
  - error: apperr taxonomy errors, apperr.NotFound for unknown patterns
*/
func (dispatcher *Dispatcher) Dispatch(ctx context.Context, pattern string, data json.RawMessage) (any, error) {
	switch pattern {
	case PatternLogin:
		return dispatcher.handleLogin(ctx, data)
	case PatternLoginOTP:
		return dispatcher.handleLoginOTP(ctx, data)
	case PatternRegister:
		return dispatcher.handleRegister(ctx, data)
	case PatternVerify:
		return dispatcher.handleVerify(ctx, data)
	case PatternRefreshToken:
		return dispatcher.handleRefresh(ctx, data)
	case PatternLogout:
		return dispatcher.handleLogout(ctx, data)
	case PatternResetRequest:
		return dispatcher.handleResetRequest(ctx, data)
	case PatternReset:
		return dispatcher.handleReset(ctx, data)
	default:
		return nil, apperr.NotFound("Operation " + pattern)
	}
}

func (dispatcher *Dispatcher) handleLogin(ctx context.Context, data json.RawMessage) (any, error) {
	var request loginRequest
	if err := decodeStrict(data, &request); err != nil {
		return nil, err
	}

	result, err := dispatcher.service.Login(ctx, request.Email, request.Password)
	if err != nil {
		return nil, err
	}

	return toLoginResponse(result), nil
}

func (dispatcher *Dispatcher) handleLoginOTP(ctx context.Context, data json.RawMessage) (any, error) {
	var request loginOTPRequest
	if err := decodeStrict(data, &request); err != nil {
		return nil, err
	}

	result, err := dispatcher.service.LoginWithOTP(ctx, request.Email, request.Password, request.OTP)
	if err != nil {
		return nil, err
	}

	return toLoginResponse(result), nil
}

func (dispatcher *Dispatcher) handleRegister(ctx context.Context, data json.RawMessage) (any, error) {
	var request registerRequest
	if err := decodeStrict(data, &request); err != nil {
		return nil, err
	}

	user, err := dispatcher.service.Register(ctx, request.Email, request.Password, request.PhoneNumber, ProfileInput{
		FirstName: request.Profile.FirstName,
		LastName:  request.Profile.LastName,
		Address:   request.Profile.Address,
		Gender:    request.Profile.Gender,
		CIN:       request.Profile.CIN,
		DOB:       request.Profile.DOB,
	})
	if err != nil {
		return nil, err
	}

	return registerResponse{
		Success: true,
		Message: "Registration successful, please verify your account",
		User: registeredUserBlock{
			ID:    user.ID,
			Email: user.Email,
		},
	}, nil
}

func (dispatcher *Dispatcher) handleVerify(ctx context.Context, data json.RawMessage) (any, error) {
	var request verifyRequest
	if err := decodeStrict(data, &request); err != nil {
		return nil, err
	}

	if err := dispatcher.service.Verify(ctx, request.UserID); err != nil {
		return nil, err
	}

	return ackResponse{Success: true, Message: "Account verified"}, nil
}

func (dispatcher *Dispatcher) handleRefresh(ctx context.Context, data json.RawMessage) (any, error) {
	var request refreshRequest
	if err := decodeStrict(data, &request); err != nil {
		return nil, err
	}

	accessToken, err := dispatcher.service.Refresh(ctx, request.RefreshToken)
	if err != nil {
		return nil, err
	}

	return refreshResponse{AccessToken: accessToken}, nil
}

func (dispatcher *Dispatcher) handleLogout(ctx context.Context, data json.RawMessage) (any, error) {
	var request logoutRequest
	if err := decodeStrict(data, &request); err != nil {
		return nil, err
	}

	if err := dispatcher.service.Logout(ctx, request.AccessToken); err != nil {
		return nil, err
	}

	return ackResponse{Success: true, Message: "Logged out"}, nil
}

func (dispatcher *Dispatcher) handleResetRequest(ctx context.Context, data json.RawMessage) (any, error) {
	var request resetRequestRequest
	if err := decodeStrict(data, &request); err != nil {
		return nil, err
	}

	message, err := dispatcher.service.RequestPasswordReset(ctx, request.Email)
	if err != nil {
		return nil, err
	}

	return ackResponse{Success: true, Message: message}, nil
}

func (dispatcher *Dispatcher) handleReset(ctx context.Context, data json.RawMessage) (any, error) {
	var request resetRequest
	if err := decodeStrict(data, &request); err != nil {
		return nil, err
	}

	if err := dispatcher.service.ResetPassword(ctx, request.Email, request.ResetToken, request.NewPassword); err != nil {
		return nil, err
	}

	return ackResponse{Success: true, Message: "Password updated"}, nil
}

// toLoginResponse shapes a [LoginResult] into the gateway contract.
func toLoginResponse(result *LoginResult) loginResponse {
	return loginResponse{
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
		UserToken:    result.UserToken,
		User: loginUserBlock{
			ID:       result.User.ID,
			FullName: result.User.FullName,
			Email:    result.User.Email,
			Role:     result.User.Role,
		},
	}
}

// decodeStrict decodes a payload, rejecting unknown fields.
func decodeStrict(data json.RawMessage, target any) error {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(target); err != nil {
		return apperr.ValidationError("Invalid JSON payload").WithCause(err)
	}
	return nil
}
