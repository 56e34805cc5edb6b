// Copyright (c) 2026 Viewr. All rights reserved.
// Author: dev@viewr.app

/*
Package constants provides centralized, immutable values for the auth service.

It defines default timeouts, token lifetimes, and cross-cutting keys that are
shared between different layers of the system.

Categories:

  - Server Timing: Read/Write/Idle timeouts for the ops HTTP server.
  - Authentication: JWT issuer and volatile-token lifetimes.
  - Redis Taxonomy: Key prefixes for every ephemeral entity.

Using this package ensures Magic Strings and Magic Numbers are eliminated
from the business logic.
*/
package constants

import "time"

// # Metadata

const (
	AppName    = "viewr-authd"
	AppVersion = "0.1.0-dev"
)

// # Server Timing

const (
	// DefaultReadTimeout is the maximum duration for reading the entire request.
	DefaultReadTimeout = 5 * time.Second

	// DefaultWriteTimeout is the maximum duration before timing out writes of the response.
	DefaultWriteTimeout = 10 * time.Second

	// DefaultIdleTimeout is the maximum amount of time to wait for the next request.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultReadHeaderTimeout is the amount of time allowed to read request headers.
	DefaultReadHeaderTimeout = 2 * time.Second

	// GlobalRequestTimeout is the deadline for a single RPC message lifecycle.
	GlobalRequestTimeout = 30 * time.Second

	// ShutdownTimeout is how long we wait for in-flight work to complete during shutdown.
	ShutdownTimeout = 30 * time.Second
)

// # Authentication

const (
	// AuthIssuer is the standard 'iss' claim in JWTs.
	AuthIssuer = "viewr.app"

	// OTPTTL is the lifetime of a one-time passcode.
	OTPTTL = 300 * time.Second

	// OTPLength is the number of digits in a one-time passcode.
	OTPLength = 6

	// ResetTokenTTL is the lifetime of a password-reset token.
	ResetTokenTTL = 3600 * time.Second

	// ResetTokenLength is the byte length of the random password reset token.
	ResetTokenLength = 32

	// DefaultRoleTitle is the role granted to every account at registration.
	DefaultRoleTitle = "User"
)

// # HTTP Headers

const (
	HeaderXRequestID    = "X-Request-ID"
	HeaderXRealIP       = "X-Real-IP"
	HeaderXForwardedFor = "X-Forwarded-For"
)

// # JSON Field Names

const (
	FieldCode  = "code"
	FieldError = "error"
)

// # Redis Prefixes (Cache Taxonomy)

const (
	// RedisPrefixRefresh + "<email>:<tokenId>" -> signed refresh token string.
	RedisPrefixRefresh = "auth:refresh:"

	// RedisPrefixOTP + "<email>" -> six-digit code.
	RedisPrefixOTP = "auth:otp:"

	// RedisPrefixReset + "<email>:<token>" -> user id.
	RedisPrefixReset = "auth:reset:"

	// RedisPrefixBlacklist + "<access token>" -> "1".
	RedisPrefixBlacklist = "auth:blacklist:"
)

// # Database Schemas

const (
	SchemaIAM = "iam"
)
