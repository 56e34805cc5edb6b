// Copyright (c) 2026 Viewr. All rights reserved.
// Author: dev@viewr.app

// PostgreSQL implementations of the rbac storage contracts.
//
// # Architecture
//
// Repositories here are strictly separated from domain logic. They implement
// the interfaces in store.go against the iam schema, using the shared [DB]
// abstraction so they run equally on a live [pgxpool.Pool] or a pgxmock pool
// in tests.
//
// # Error Mapping
//
// Storage-specific errors (like pgx.ErrNoRows) are mapped to domain-friendly
// [apperr.AppError] types via [dberr.Wrap] to avoid leaking storage details.

package rbac

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/MohamedSbika/Viewr-Backend-sub000/internal/platform/dberr"
)

// DB is the subset of [pgxpool.Pool] the rbac repositories need.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// # Role Repository

// PostgresRoleRepository implements [RoleRepository] using pgx.
type PostgresRoleRepository struct {
	db DB
}

// NewRoleRepository creates a new PostgreSQL implementation of the RoleRepository.
func NewRoleRepository(db DB) *PostgresRoleRepository {
	return &PostgresRoleRepository{db: db}
}

/*
Create persists a new role record into the iam.role table.

Parameters:
  - ctx: context.Context
  - role: *Role (entity to persist)

Returns:
  - error: apperr.Conflict on duplicate title, or database errors
*/
func (repository *PostgresRoleRepository) Create(ctx context.Context, role *Role) error {
	const query = `
		INSERT INTO iam.role (id, title, createdat, updatedat)
		VALUES ($1, $2, $3, $4)`

	now := time.Now()
	if role.CreatedAt.IsZero() {
		role.CreatedAt = now
	}
	role.UpdatedAt = now

	_, err := repository.db.Exec(ctx, query,
		role.ID,
		role.Title,
		role.CreatedAt,
		role.UpdatedAt,
	)

	if err != nil {
		if dberr.IsUniqueViolation(err) {
			return dberr.Wrap(err, "Role")
		}
		return fmt.Errorf("postgres_role_repo_create_failed: %w", err)
	}

	return nil
}

// FindByID retrieves a role by primary key.
func (repository *PostgresRoleRepository) FindByID(ctx context.Context, id string) (*Role, error) {
	const query = `
		SELECT id, title, createdat, updatedat
		FROM iam.role
		WHERE id = $1`

	role := &Role{}
	err := repository.db.QueryRow(ctx, query, id).Scan(
		&role.ID,
		&role.Title,
		&role.CreatedAt,
		&role.UpdatedAt,
	)

	if err != nil {
		return nil, dberr.Wrap(err, "Role")
	}

	return role, nil
}

// FindByTitle retrieves a role by its unique title.
func (repository *PostgresRoleRepository) FindByTitle(ctx context.Context, title string) (*Role, error) {
	const query = `
		SELECT id, title, createdat, updatedat
		FROM iam.role
		WHERE title = $1`

	role := &Role{}
	err := repository.db.QueryRow(ctx, query, title).Scan(
		&role.ID,
		&role.Title,
		&role.CreatedAt,
		&role.UpdatedAt,
	)

	if err != nil {
		return nil, dberr.Wrap(err, "Role")
	}

	return role, nil
}

/*
ListByAccount returns every role held by the given account.

Parameters:
  - ctx: context.Context
  - accountID: string

Returns:
  - []Role: Empty slice when the account holds no roles
  - error: Database errors
*/
func (repository *PostgresRoleRepository) ListByAccount(ctx context.Context, accountID string) ([]Role, error) {
	const query = `
		SELECT r.id, r.title, r.createdat, r.updatedat
		FROM iam.role r
		INNER JOIN iam.account_role ar ON ar.roleid = r.id
		WHERE ar.accountid = $1
		ORDER BY r.title`

	rows, err := repository.db.Query(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("postgres_role_repo_list_by_account_failed: %w", err)
	}
	defer rows.Close()

	roles := make([]Role, 0)
	for rows.Next() {
		var role Role
		if err := rows.Scan(&role.ID, &role.Title, &role.CreatedAt, &role.UpdatedAt); err != nil {
			return nil, fmt.Errorf("postgres_role_repo_scan_failed: %w", err)
		}
		roles = append(roles, role)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres_role_repo_rows_failed: %w", err)
	}

	return roles, nil
}

// # Feature Repository

// PostgresFeatureRepository implements [FeatureRepository] using pgx.
type PostgresFeatureRepository struct {
	db DB
}

// NewFeatureRepository creates a new PostgreSQL implementation of the FeatureRepository.
func NewFeatureRepository(db DB) *PostgresFeatureRepository {
	return &PostgresFeatureRepository{db: db}
}

// Create persists a new feature record into the iam.feature table.
func (repository *PostgresFeatureRepository) Create(ctx context.Context, feature *Feature) error {
	const query = `
		INSERT INTO iam.feature (id, name, isactive, createdat, updatedat)
		VALUES ($1, $2, $3, $4, $5)`

	now := time.Now()
	if feature.CreatedAt.IsZero() {
		feature.CreatedAt = now
	}
	feature.UpdatedAt = now

	_, err := repository.db.Exec(ctx, query,
		feature.ID,
		feature.Name,
		feature.IsActive,
		feature.CreatedAt,
		feature.UpdatedAt,
	)

	if err != nil {
		if dberr.IsUniqueViolation(err) {
			return dberr.Wrap(err, "Feature")
		}
		return fmt.Errorf("postgres_feature_repo_create_failed: %w", err)
	}

	return nil
}

// FindByID retrieves a feature by primary key.
func (repository *PostgresFeatureRepository) FindByID(ctx context.Context, id string) (*Feature, error) {
	const query = `
		SELECT id, name, isactive, createdat, updatedat
		FROM iam.feature
		WHERE id = $1`

	feature := &Feature{}
	err := repository.db.QueryRow(ctx, query, id).Scan(
		&feature.ID,
		&feature.Name,
		&feature.IsActive,
		&feature.CreatedAt,
		&feature.UpdatedAt,
	)

	if err != nil {
		return nil, dberr.Wrap(err, "Feature")
	}

	return feature, nil
}

/*
SetActive flips the activation flag of a feature.

Parameters:
  - ctx: context.Context
  - id: string
  - active: bool

Returns:
  - error: apperr.NotFound when the feature does not exist
*/
func (repository *PostgresFeatureRepository) SetActive(ctx context.Context, id string, active bool) error {
	const query = `
		UPDATE iam.feature
		SET isactive = $2, updatedat = $3
		WHERE id = $1`

	tag, err := repository.db.Exec(ctx, query, id, active, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_feature_repo_set_active_failed: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return dberr.Wrap(pgx.ErrNoRows, "Feature")
	}

	return nil
}

// # Permission Repository

// PostgresPermissionRepository implements [PermissionRepository] using pgx.
type PostgresPermissionRepository struct {
	db DB
}

// NewPermissionRepository creates a new PostgreSQL implementation of the PermissionRepository.
func NewPermissionRepository(db DB) *PostgresPermissionRepository {
	return &PostgresPermissionRepository{db: db}
}

// Create persists a new permission record into the iam.permission table.
func (repository *PostgresPermissionRepository) Create(ctx context.Context, permission *Permission) error {
	const query = `
		INSERT INTO iam.permission (id, action, createdat)
		VALUES ($1, $2, $3)`

	if permission.CreatedAt.IsZero() {
		permission.CreatedAt = time.Now()
	}

	_, err := repository.db.Exec(ctx, query,
		permission.ID,
		permission.Action,
		permission.CreatedAt,
	)

	if err != nil {
		if dberr.IsUniqueViolation(err) {
			return dberr.Wrap(err, "Permission")
		}
		return fmt.Errorf("postgres_permission_repo_create_failed: %w", err)
	}

	return nil
}

// FindByID retrieves a permission by primary key.
func (repository *PostgresPermissionRepository) FindByID(ctx context.Context, id string) (*Permission, error) {
	const query = `
		SELECT id, action, createdat
		FROM iam.permission
		WHERE id = $1`

	permission := &Permission{}
	err := repository.db.QueryRow(ctx, query, id).Scan(
		&permission.ID,
		&permission.Action,
		&permission.CreatedAt,
	)

	if err != nil {
		return nil, dberr.Wrap(err, "Permission")
	}

	return permission, nil
}

// # Grant Repository

// PostgresGrantRepository implements [GrantRepository] using pgx.
type PostgresGrantRepository struct {
	db DB
}

// NewGrantRepository creates a new PostgreSQL implementation of the GrantRepository.
func NewGrantRepository(db DB) *PostgresGrantRepository {
	return &PostgresGrantRepository{db: db}
}

/*
Assign links a permission on a feature to a role.

The upsert keeps the operation idempotent: re-assigning an existing link
touches nothing and hands back the id of the existing row.

Parameters:
  - ctx: context.Context
  - grantID: string (id to use if a new row is inserted)
  - roleID, featureID, permissionID: string

Returns:
  - string: The id of the (new or pre-existing) link row
  - error: Foreign-key violations or database errors
*/
func (repository *PostgresGrantRepository) Assign(ctx context.Context, grantID, roleID, featureID, permissionID string) (string, error) {
	const query = `
		INSERT INTO iam.role_feature_permission (id, roleid, featureid, permissionid, createdat)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (roleid, featureid, permissionid)
		DO UPDATE SET roleid = EXCLUDED.roleid
		RETURNING id`

	var id string
	err := repository.db.QueryRow(ctx, query, grantID, roleID, featureID, permissionID, time.Now()).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("postgres_grant_repo_assign_failed: %w", err)
	}

	return id, nil
}

/*
ListByRoles returns the flattened grants of the given roles.

Grants on inactive features are included — filtering is the aggregator's
responsibility, not the storage layer's.

Parameters:
  - ctx: context.Context
  - roleIDs: []string

Returns:
  - []Grant: Empty slice when roleIDs is empty or nothing is granted
  - error: Database errors
*/
func (repository *PostgresGrantRepository) ListByRoles(ctx context.Context, roleIDs []string) ([]Grant, error) {
	if len(roleIDs) == 0 {
		return []Grant{}, nil
	}

	const query = `
		SELECT f.name, f.isactive, p.action
		FROM iam.role_feature_permission rfp
		INNER JOIN iam.feature f ON f.id = rfp.featureid
		INNER JOIN iam.permission p ON p.id = rfp.permissionid
		WHERE rfp.roleid = ANY($1)
		ORDER BY f.name, p.action`

	rows, err := repository.db.Query(ctx, query, roleIDs)
	if err != nil {
		return nil, fmt.Errorf("postgres_grant_repo_list_by_roles_failed: %w", err)
	}
	defer rows.Close()

	grants := make([]Grant, 0)
	for rows.Next() {
		var grant Grant
		if err := rows.Scan(&grant.Feature, &grant.FeatureActive, &grant.Action); err != nil {
			return nil, fmt.Errorf("postgres_grant_repo_scan_failed: %w", err)
		}
		grants = append(grants, grant)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres_grant_repo_rows_failed: %w", err)
	}

	return grants, nil
}
