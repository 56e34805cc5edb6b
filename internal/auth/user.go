// Copyright (c) 2026 Viewr. All rights reserved.
// Author: dev@viewr.app

/*
Package auth implements the identity lifecycle for the Viewr platform.

# Scope

Everything between "someone typed a password" and "a service trusted a
token" lives here:

  - Credential verification (argon2id, server-side paraphrase).
  - Two-step login with emailed one-time codes.
  - Refresh-token sessions and the access-token blacklist in Redis.
  - Password reset with single-use, expiring tokens.

The package is consumed exclusively through the message-queue gateway; it
exposes no HTTP surface of its own.
*/
package auth

import "time"

// User is an account record in the iam.account table.
//
// EstablishmentID ties the account to a clinic/practice and is optional:
// platform-level accounts have none.
type User struct {
	ID              string    `json:"id"`
	Email           string    `json:"email"`
	PasswordHash    string    `json:"-"`
	PhoneNumber     string    `json:"phone_number"`
	IsVerified      bool      `json:"is_verified"`
	EstablishmentID *string   `json:"establishment_id,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Profile carries the personal data attached to an account, kept in a
// separate table so the hot auth path never loads it.
type Profile struct {
	ID        string    `json:"id"`
	AccountID string    `json:"account_id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Address   string    `json:"address"`
	Gender    string    `json:"gender"`
	CIN       string    `json:"cin"`
	DOB       string    `json:"dob"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FullName joins the profile name parts for display.
func (profile *Profile) FullName() string {
	if profile.FirstName == "" {
		return profile.LastName
	}
	if profile.LastName == "" {
		return profile.FirstName
	}
	return profile.FirstName + " " + profile.LastName
}
