// Copyright (c) 2026 Viewr. All rights reserved.
// Author: dev@viewr.app

package sec

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/MohamedSbika/Viewr-Backend-sub000/pkg/uuid"
)

// Sentinel verification failures. Callers must distinguish the two: an expired
// token still carries a valid signature, which matters for logout cleanup.
var (
	// ErrTokenInvalid indicates a bad signature, wrong algorithm, or an
	// otherwise unparseable token.
	ErrTokenInvalid = errors.New("sec: invalid token")

	// ErrTokenExpired indicates a correctly signed token past its expiry.
	ErrTokenExpired = errors.New("sec: token expired")
)

// # Claim Shapes

// AccessClaims is the payload embedded inside an access token.
//
// # Why custom claims?
//
// By embedding the email and role directly inside the JWT, consumers can
// reconstruct the caller's identity WITHOUT querying the database on every
// single request. This provides massive read-scalability.
type AccessClaims struct {
	jwt.RegisteredClaims

	// Custom application claims are abbreviated to keep the JWT payload small.
	Email string `json:"email"`
	Role  string `json:"rol"`
}

// RefreshClaims is the payload embedded inside a refresh token.
//
// TokenID discriminates concurrent sessions of the same account in the
// key-value store, enabling per-token revocation.
type RefreshClaims struct {
	jwt.RegisteredClaims

	Email   string `json:"email"`
	Role    string `json:"rol"`
	TokenID string `json:"tid"`
}

// PermissionClaims is the payload embedded inside a permission ("user") token.
//
// Features maps an active feature name to the list of permission actions the
// account holds on it, precomputed at login time.
type PermissionClaims struct {
	jwt.RegisteredClaims

	Email    string              `json:"email"`
	Features map[string][]string `json:"features"`
}

// # Token Codec

// TokenCodec signs and verifies the three Viewr token kinds using a
// symmetric HS256 key. Tokens are signed, never encrypted.
type TokenCodec struct {
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewTokenCodec constructs a [TokenCodec].
//
// # Parameters
//   - secret: The symmetric signing key.
//   - issuer: The 'iss' claim stamped on every token.
//   - accessTTL: Lifetime of access tokens.
//   - refreshTTL: Lifetime of refresh AND permission tokens.
func NewTokenCodec(secret, issuer string, accessTTL, refreshTTL time.Duration) *TokenCodec {
	return &TokenCodec{
		secret:     []byte(secret),
		issuer:     issuer,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// AccessTTL returns the configured access token lifetime.
func (codec *TokenCodec) AccessTTL() time.Duration { return codec.accessTTL }

// RefreshTTL returns the configured refresh token lifetime.
func (codec *TokenCodec) RefreshTTL() time.Duration { return codec.refreshTTL }

// SignAccess mints a short-lived access token for the given identity.
func (codec *TokenCodec) SignAccess(userID, email, role string) (string, error) {
	now := time.Now()
	claims := AccessClaims{
		RegisteredClaims: codec.registered(userID, now, codec.accessTTL),
		Email:            email,
		Role:             role,
	}
	return codec.sign(claims)
}

// SignRefresh mints a long-lived refresh token. The generated tokenId is
// returned alongside the signed string so the caller can register the token
// in the key-value store.
func (codec *TokenCodec) SignRefresh(userID, email, role string) (token, tokenID string, err error) {
	now := time.Now()
	tokenID = uuid.New()
	claims := RefreshClaims{
		RegisteredClaims: codec.registered(userID, now, codec.refreshTTL),
		Email:            email,
		Role:             role,
		TokenID:          tokenID,
	}
	token, err = codec.sign(claims)
	return token, tokenID, err
}

// SignPermission mints a permission token carrying the aggregated
// feature -> actions map. It shares the refresh token lifetime.
func (codec *TokenCodec) SignPermission(userID, email string, features map[string][]string) (string, error) {
	now := time.Now()
	claims := PermissionClaims{
		RegisteredClaims: codec.registered(userID, now, codec.refreshTTL),
		Email:            email,
		Features:         features,
	}
	return codec.sign(claims)
}

// # Verification

// VerifyAccess checks signature and expiry of an access token.
func (codec *TokenCodec) VerifyAccess(token string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := codec.parse(token, claims, true); err != nil {
		return nil, err
	}
	return claims, nil
}

// VerifyRefresh checks signature and expiry of a refresh token.
func (codec *TokenCodec) VerifyRefresh(token string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	if err := codec.parse(token, claims, true); err != nil {
		return nil, err
	}
	return claims, nil
}

// VerifyPermission checks signature and expiry of a permission token.
func (codec *TokenCodec) VerifyPermission(token string) (*PermissionClaims, error) {
	claims := &PermissionClaims{}
	if err := codec.parse(token, claims, true); err != nil {
		return nil, err
	}
	return claims, nil
}

// ParseAccessSignatureOnly verifies the signature of an access token but
// accepts an expired one. Logout uses it: cleaning up an expired session is
// legitimate, presenting a forged token is not.
func (codec *TokenCodec) ParseAccessSignatureOnly(token string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := codec.parse(token, claims, false); err != nil {
		return nil, err
	}
	return claims, nil
}

// # Internals

// registered builds the shared [jwt.RegisteredClaims] block.
func (codec *TokenCodec) registered(subject string, now time.Time, ttl time.Duration) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		Subject:   subject,
		Issuer:    codec.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
}

// sign serializes and signs a claim set with HS256.
func (codec *TokenCodec) sign(claims jwt.Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(codec.secret)
	if err != nil {
		return "", fmt.Errorf("sec_token_sign_failed: %w", err)
	}
	return signed, nil
}

// parse verifies a token into claims. When checkExpiry is false, expiry
// validation is skipped but the signature is still enforced.
func (codec *TokenCodec) parse(token string, claims jwt.Claims, checkExpiry bool) error {

	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	}
	if !checkExpiry {
		options = append(options, jwt.WithoutClaimsValidation())
	}

	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("sec: unexpected signing method: %v", t.Header["alg"])
		}
		return codec.secret, nil
	}, options...)

	if err != nil {
		// Expiry is surfaced as a distinct condition so callers can treat
		// "stale but genuine" differently from "forged".
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ErrTokenExpired
		}
		return ErrTokenInvalid
	}

	if !parsed.Valid {
		return ErrTokenInvalid
	}

	return nil
}
