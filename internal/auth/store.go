// Copyright (c) 2026 Viewr. All rights reserved.
// Author: dev@viewr.app

package auth

import "context"

// # Storage Contracts

// UserRepository defines the persistence operations for accounts and their
// profiles.
type UserRepository interface {

	// CreateWithProfile atomically persists an account, its profile, and
	// the default role assignment in one transaction.
	CreateWithProfile(ctx context.Context, user *User, profile *Profile, defaultRoleID string) error

	// FindByID retrieves an account by primary key.
	FindByID(ctx context.Context, id string) (*User, error)

	// FindByEmail retrieves an account by its unique email.
	FindByEmail(ctx context.Context, email string) (*User, error)

	// ProfileByAccount retrieves the profile attached to an account.
	ProfileByAccount(ctx context.Context, accountID string) (*Profile, error)

	// MarkVerified flips the account's verification flag.
	MarkVerified(ctx context.Context, id string) error

	// UpdatePassword replaces the stored credential hash.
	UpdatePassword(ctx context.Context, id, passwordHash string) error
}
