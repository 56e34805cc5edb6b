// Copyright (c) 2026 Viewr. All rights reserved.
// Author: dev@viewr.app

// PostgreSQL implementation of the auth storage contracts.
//
// # Architecture
//
// The repository implements [UserRepository] against the iam schema through
// the [DB] abstraction, which both [pgxpool.Pool] and a pgxmock pool satisfy.
//
// # Error Mapping
//
// Storage-specific errors (like pgx.ErrNoRows or SQLSTATE 23505) are mapped
// to domain-friendly [apperr.AppError] types via [dberr].

package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/MohamedSbika/Viewr-Backend-sub000/internal/platform/apperr"
	"github.com/MohamedSbika/Viewr-Backend-sub000/internal/platform/dberr"
	"github.com/MohamedSbika/Viewr-Backend-sub000/pkg/uuid"
)

// DB is the subset of [pgxpool.Pool] the auth repository needs.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// PostgresUserRepository implements the UserRepository interface using pgx.
type PostgresUserRepository struct {
	db DB
}

// NewUserRepository creates a new PostgreSQL implementation of the UserRepository.
func NewUserRepository(db DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

/*
CreateWithProfile atomically persists an account, its profile, and the
default role assignment.

Description: All three inserts run in a single transaction. If any of them
fails — including a duplicate email — nothing is persisted.

Parameters:
  - ctx: context.Context
  - user: *User (entity to persist; timestamps initialized here)
  - profile: *Profile (linked via AccountID)
  - defaultRoleID: string (role granted to every fresh account)

Returns:
  - error: apperr.Conflict on duplicate email, or database errors
*/
func (repository *PostgresUserRepository) CreateWithProfile(ctx context.Context, user *User, profile *Profile, defaultRoleID string) error {
	const insertAccount = `
		INSERT INTO iam.account (
			id, email, passwordhash, phonenumber, isverified, establishmentid, createdat, updatedat
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	const insertProfile = `
		INSERT INTO iam.profile (
			id, accountid, firstname, lastname, address, gender, cin, dob, createdat, updatedat
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	const insertAccountRole = `
		INSERT INTO iam.account_role (accountid, roleid, createdat)
		VALUES ($1, $2, $3)`

	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	profile.ID = uuid.New()
	profile.AccountID = user.ID
	profile.CreatedAt = now
	profile.UpdatedAt = now

	tx, err := repository.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("postgres_user_repo_begin_failed: %w", err)
	}
	// Rollback is a no-op after a successful commit
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, insertAccount,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.PhoneNumber,
		user.IsVerified,
		user.EstablishmentID,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if dberr.IsUniqueViolation(err) {
			return apperr.Conflict("An account already exists with this email")
		}
		return fmt.Errorf("postgres_user_repo_create_account_failed: %w", err)
	}

	_, err = tx.Exec(ctx, insertProfile,
		profile.ID,
		profile.AccountID,
		profile.FirstName,
		profile.LastName,
		profile.Address,
		profile.Gender,
		profile.CIN,
		profile.DOB,
		profile.CreatedAt,
		profile.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres_user_repo_create_profile_failed: %w", err)
	}

	_, err = tx.Exec(ctx, insertAccountRole, user.ID, defaultRoleID, now)
	if err != nil {
		return fmt.Errorf("postgres_user_repo_assign_default_role_failed: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("postgres_user_repo_commit_failed: %w", err)
	}

	return nil
}

// FindByID retrieves an account by primary key.
func (repository *PostgresUserRepository) FindByID(ctx context.Context, id string) (*User, error) {
	const query = `
		SELECT id, email, passwordhash, phonenumber, isverified, establishmentid, createdat, updatedat
		FROM iam.account
		WHERE id = $1`

	return repository.scanUser(repository.db.QueryRow(ctx, query, id))
}

/*
FindByEmail retrieves an account by its unique email address.

Parameters:
  - ctx: context.Context
  - email: string

Returns:
  - *User: Hydrated account entity
  - error: apperr.NotFound or database errors
*/
func (repository *PostgresUserRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	const query = `
		SELECT id, email, passwordhash, phonenumber, isverified, establishmentid, createdat, updatedat
		FROM iam.account
		WHERE email = $1`

	return repository.scanUser(repository.db.QueryRow(ctx, query, email))
}

// scanUser hydrates a single account row.
func (repository *PostgresUserRepository) scanUser(row pgx.Row) (*User, error) {
	user := &User{}
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.PhoneNumber,
		&user.IsVerified,
		&user.EstablishmentID,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err != nil {
		return nil, dberr.Wrap(err, "User")
	}

	return user, nil
}

// ProfileByAccount retrieves the profile attached to an account.
func (repository *PostgresUserRepository) ProfileByAccount(ctx context.Context, accountID string) (*Profile, error) {
	const query = `
		SELECT id, accountid, firstname, lastname, address, gender, cin, dob, createdat, updatedat
		FROM iam.profile
		WHERE accountid = $1`

	profile := &Profile{}
	err := repository.db.QueryRow(ctx, query, accountID).Scan(
		&profile.ID,
		&profile.AccountID,
		&profile.FirstName,
		&profile.LastName,
		&profile.Address,
		&profile.Gender,
		&profile.CIN,
		&profile.DOB,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)

	if err != nil {
		return nil, dberr.Wrap(err, "Profile")
	}

	return profile, nil
}

/*
MarkVerified flips the account's verification flag.

Parameters:
  - ctx: context.Context
  - id: string

Returns:
  - error: apperr.NotFound when the account does not exist
*/
func (repository *PostgresUserRepository) MarkVerified(ctx context.Context, id string) error {
	const query = `
		UPDATE iam.account
		SET isverified = TRUE, updatedat = $2
		WHERE id = $1`

	tag, err := repository.db.Exec(ctx, query, id, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_user_repo_mark_verified_failed: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return apperr.NotFound("User")
	}

	return nil
}

// UpdatePassword replaces the stored credential hash.
func (repository *PostgresUserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	const query = `
		UPDATE iam.account
		SET passwordhash = $2, updatedat = $3
		WHERE id = $1`

	tag, err := repository.db.Exec(ctx, query, id, passwordHash, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_user_repo_update_password_failed: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return apperr.NotFound("User")
	}

	return nil
}
