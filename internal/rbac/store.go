// Copyright (c) 2026 Viewr. All rights reserved.
// Author: dev@viewr.app

package rbac

import "context"

// # Storage Contracts

// RoleRepository defines persistence operations for roles.
type RoleRepository interface {

	// Create persists a new role.
	Create(ctx context.Context, role *Role) error

	// FindByID retrieves a role by primary key.
	FindByID(ctx context.Context, id string) (*Role, error)

	// FindByTitle retrieves a role by its unique title.
	FindByTitle(ctx context.Context, title string) (*Role, error)

	// ListByAccount returns every role held by the given account.
	ListByAccount(ctx context.Context, accountID string) ([]Role, error)
}

// FeatureRepository defines persistence operations for features.
type FeatureRepository interface {

	// Create persists a new feature.
	Create(ctx context.Context, feature *Feature) error

	// FindByID retrieves a feature by primary key.
	FindByID(ctx context.Context, id string) (*Feature, error)

	// SetActive flips the activation flag of a feature.
	SetActive(ctx context.Context, id string, active bool) error
}

// PermissionRepository defines persistence operations for permission verbs.
type PermissionRepository interface {

	// Create persists a new permission.
	Create(ctx context.Context, permission *Permission) error

	// FindByID retrieves a permission by primary key.
	FindByID(ctx context.Context, id string) (*Permission, error)
}

// GrantRepository defines persistence operations for (role, feature,
// permission) links.
type GrantRepository interface {

	// Assign links a permission on a feature to a role. Repeating an
	// existing assignment returns the id of the existing link.
	Assign(ctx context.Context, grantID, roleID, featureID, permissionID string) (string, error)

	// ListByRoles returns the flattened grants of the given roles,
	// including those on inactive features.
	ListByRoles(ctx context.Context, roleIDs []string) ([]Grant, error)
}
