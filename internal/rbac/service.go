// Copyright (c) 2026 Viewr. All rights reserved.
// Author: dev@viewr.app

package rbac

import (
	"context"
	"log/slog"

	"github.com/MohamedSbika/Viewr-Backend-sub000/internal/platform/apperr"
	"github.com/MohamedSbika/Viewr-Backend-sub000/internal/platform/validate"
	"github.com/MohamedSbika/Viewr-Backend-sub000/pkg/uuid"
)

// Service exposes the administrative RBAC operations: defining roles,
// features, and permissions, and linking them together.
type Service struct {
	roles       RoleRepository
	features    FeatureRepository
	permissions PermissionRepository
	grants      GrantRepository
	logger      *slog.Logger
}

// NewService wires the RBAC service to its storage contracts.
func NewService(
	roles RoleRepository,
	features FeatureRepository,
	permissions PermissionRepository,
	grants GrantRepository,
	logger *slog.Logger,
) *Service {
	return &Service{
		roles:       roles,
		features:    features,
		permissions: permissions,
		grants:      grants,
		logger:      logger,
	}
}

/*
CreateRole defines a new role.

Parameters:
  - ctx: context.Context
  - title: string (unique role title)

Returns:
  - *Role: The created role
  - error: apperr.ValidationError, apperr.Conflict on duplicate title
*/
func (service *Service) CreateRole(ctx context.Context, title string) (*Role, error) {
	v := &validate.Validator{}
	if err := v.Required("title", title).MaxLen("title", title, 64).Err(); err != nil {
		return nil, err
	}

	// Fast duplicate check for a clean error message. The unique index on
	// title still backstops concurrent creates.
	existing, err := service.roles.FindByTitle(ctx, title)
	if err != nil && !apperr.IsCode(err, "NOT_FOUND") {
		return nil, err
	}
	if existing != nil {
		return nil, apperr.Conflict("Role already exists with this title")
	}

	role := &Role{
		ID:    uuid.New(),
		Title: title,
	}

	if err := service.roles.Create(ctx, role); err != nil {
		return nil, err
	}

	service.logger.InfoContext(ctx, "rbac_role_created",
		slog.String("role_id", role.ID),
		slog.String("title", role.Title),
	)

	return role, nil
}

/*
CreateFeature defines a new feature. Features start active.

Parameters:
  - ctx: context.Context
  - name: string (unique feature name)

Returns:
  - *Feature: The created feature
  - error: apperr.ValidationError, apperr.Conflict on duplicate name
*/
func (service *Service) CreateFeature(ctx context.Context, name string) (*Feature, error) {
	v := &validate.Validator{}
	if err := v.Required("name", name).MaxLen("name", name, 64).Err(); err != nil {
		return nil, err
	}

	feature := &Feature{
		ID:       uuid.New(),
		Name:     name,
		IsActive: true,
	}

	if err := service.features.Create(ctx, feature); err != nil {
		return nil, err
	}

	service.logger.InfoContext(ctx, "rbac_feature_created",
		slog.String("feature_id", feature.ID),
		slog.String("name", feature.Name),
	)

	return feature, nil
}

/*
CreatePermission defines a new permission verb.

Parameters:
  - ctx: context.Context
  - action: string ("create", "read", ...)

Returns:
  - *Permission: The created permission
  - error: apperr.ValidationError, apperr.Conflict on duplicate action
*/
func (service *Service) CreatePermission(ctx context.Context, action string) (*Permission, error) {
	v := &validate.Validator{}
	if err := v.Required("action", action).MaxLen("action", action, 32).Err(); err != nil {
		return nil, err
	}

	permission := &Permission{
		ID:     uuid.New(),
		Action: action,
	}

	if err := service.permissions.Create(ctx, permission); err != nil {
		return nil, err
	}

	service.logger.InfoContext(ctx, "rbac_permission_created",
		slog.String("permission_id", permission.ID),
		slog.String("action", permission.Action),
	)

	return permission, nil
}

/*
AssignPermission links a permission on a feature to a role.

The operation is idempotent: repeating an existing assignment succeeds and
returns the id of the existing link.

Parameters:
  - ctx: context.Context
  - roleID, featureID, permissionID: string

Returns:
  - string: The id of the link row
  - error: apperr.ValidationError, apperr.NotFound when any referenced
    entity is missing
*/
func (service *Service) AssignPermission(ctx context.Context, roleID, featureID, permissionID string) (string, error) {
	v := &validate.Validator{}
	err := v.
		UUID("roleId", roleID).
		UUID("featureId", featureID).
		UUID("permissionId", permissionID).
		Err()
	if err != nil {
		return "", err
	}

	// Resolve all three references up front so a missing entity surfaces
	// as NotFound instead of a foreign-key failure.
	if _, err := service.roles.FindByID(ctx, roleID); err != nil {
		return "", err
	}
	if _, err := service.features.FindByID(ctx, featureID); err != nil {
		return "", err
	}
	if _, err := service.permissions.FindByID(ctx, permissionID); err != nil {
		return "", err
	}

	grantID, err := service.grants.Assign(ctx, uuid.New(), roleID, featureID, permissionID)
	if err != nil {
		return "", err
	}

	service.logger.InfoContext(ctx, "rbac_permission_assigned",
		slog.String("grant_id", grantID),
		slog.String("role_id", roleID),
		slog.String("feature_id", featureID),
		slog.String("permission_id", permissionID),
	)

	return grantID, nil
}

/*
SetFeatureActive switches a feature on or off globally.

Parameters:
  - ctx: context.Context
  - featureID: string
  - active: bool

Returns:
  - error: apperr.ValidationError, apperr.NotFound
*/
func (service *Service) SetFeatureActive(ctx context.Context, featureID string, active bool) error {
	v := &validate.Validator{}
	if err := v.UUID("featureId", featureID).Err(); err != nil {
		return err
	}

	if err := service.features.SetActive(ctx, featureID, active); err != nil {
		return err
	}

	service.logger.InfoContext(ctx, "rbac_feature_toggled",
		slog.String("feature_id", featureID),
		slog.Bool("active", active),
	)

	return nil
}
