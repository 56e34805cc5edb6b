// Copyright (c) 2026 Viewr. All rights reserved.
// Author: dev@viewr.app

package rbac_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MohamedSbika/Viewr-Backend-sub000/internal/platform/apperr"
	"github.com/MohamedSbika/Viewr-Backend-sub000/internal/rbac"
)

// # In-Memory Repositories

type memRoles struct {
	byID    map[string]*rbac.Role
	byTitle map[string]*rbac.Role
}

func newMemRoles() *memRoles {
	return &memRoles{byID: map[string]*rbac.Role{}, byTitle: map[string]*rbac.Role{}}
}

func (repo *memRoles) Create(_ context.Context, role *rbac.Role) error {
	if _, exists := repo.byTitle[role.Title]; exists {
		return apperr.Conflict("role already exists")
	}
	repo.byID[role.ID] = role
	repo.byTitle[role.Title] = role
	return nil
}

func (repo *memRoles) FindByID(_ context.Context, id string) (*rbac.Role, error) {
	role, ok := repo.byID[id]
	if !ok {
		return nil, apperr.NotFound("Role")
	}
	return role, nil
}

func (repo *memRoles) FindByTitle(_ context.Context, title string) (*rbac.Role, error) {
	role, ok := repo.byTitle[title]
	if !ok {
		return nil, apperr.NotFound("Role")
	}
	return role, nil
}

func (repo *memRoles) ListByAccount(_ context.Context, _ string) ([]rbac.Role, error) {
	return nil, nil
}

type memFeatures struct {
	byID map[string]*rbac.Feature
}

func newMemFeatures() *memFeatures {
	return &memFeatures{byID: map[string]*rbac.Feature{}}
}

func (repo *memFeatures) Create(_ context.Context, feature *rbac.Feature) error {
	repo.byID[feature.ID] = feature
	return nil
}

func (repo *memFeatures) FindByID(_ context.Context, id string) (*rbac.Feature, error) {
	feature, ok := repo.byID[id]
	if !ok {
		return nil, apperr.NotFound("Feature")
	}
	return feature, nil
}

func (repo *memFeatures) SetActive(_ context.Context, id string, active bool) error {
	feature, ok := repo.byID[id]
	if !ok {
		return apperr.NotFound("Feature")
	}
	feature.IsActive = active
	return nil
}

type memPermissions struct {
	byID map[string]*rbac.Permission
}

func newMemPermissions() *memPermissions {
	return &memPermissions{byID: map[string]*rbac.Permission{}}
}

func (repo *memPermissions) Create(_ context.Context, permission *rbac.Permission) error {
	repo.byID[permission.ID] = permission
	return nil
}

func (repo *memPermissions) FindByID(_ context.Context, id string) (*rbac.Permission, error) {
	permission, ok := repo.byID[id]
	if !ok {
		return nil, apperr.NotFound("Permission")
	}
	return permission, nil
}

type memGrants struct {
	links map[[3]string]string
}

func newMemGrants() *memGrants {
	return &memGrants{links: map[[3]string]string{}}
}

func (repo *memGrants) Assign(_ context.Context, grantID, roleID, featureID, permissionID string) (string, error) {
	key := [3]string{roleID, featureID, permissionID}
	if existing, ok := repo.links[key]; ok {
		return existing, nil
	}
	repo.links[key] = grantID
	return grantID, nil
}

func (repo *memGrants) ListByRoles(_ context.Context, _ []string) ([]rbac.Grant, error) {
	return nil, nil
}

func newTestService() (*rbac.Service, *memFeatures) {
	features := newMemFeatures()
	service := rbac.NewService(
		newMemRoles(),
		features,
		newMemPermissions(),
		newMemGrants(),
		slog.New(slog.DiscardHandler),
	)
	return service, features
}

// # Tests

func TestService_CreateRole(t *testing.T) {
	service, _ := newTestService()

	role, err := service.CreateRole(context.Background(), "Doctor")
	require.NoError(t, err)
	assert.NotEmpty(t, role.ID)
	assert.Equal(t, "Doctor", role.Title)
}

/*
TestService_CreateRole_DuplicateTitle verifies role titles are unique and a
repeat surfaces as a conflict, not a storage error.
*/
func TestService_CreateRole_DuplicateTitle(t *testing.T) {
	service, _ := newTestService()

	_, err := service.CreateRole(context.Background(), "Doctor")
	require.NoError(t, err)

	_, err = service.CreateRole(context.Background(), "Doctor")
	require.Error(t, err)
	assert.Equal(t, "CONFLICT", apperr.As(err).Code)
}

func TestService_CreateRole_EmptyTitle(t *testing.T) {
	service, _ := newTestService()

	_, err := service.CreateRole(context.Background(), "")
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
}

func TestService_CreateFeature_StartsActive(t *testing.T) {
	service, _ := newTestService()

	feature, err := service.CreateFeature(context.Background(), "patients")
	require.NoError(t, err)
	assert.True(t, feature.IsActive)
}

/*
TestService_AssignPermission verifies the full linking flow and that
repeating an assignment returns the id of the existing link.
*/
func TestService_AssignPermission(t *testing.T) {
	service, _ := newTestService()
	ctx := context.Background()

	role, err := service.CreateRole(ctx, "Doctor")
	require.NoError(t, err)
	feature, err := service.CreateFeature(ctx, "patients")
	require.NoError(t, err)
	permission, err := service.CreatePermission(ctx, "read")
	require.NoError(t, err)

	grantID, err := service.AssignPermission(ctx, role.ID, feature.ID, permission.ID)
	require.NoError(t, err)
	require.NotEmpty(t, grantID)

	repeatID, err := service.AssignPermission(ctx, role.ID, feature.ID, permission.ID)
	require.NoError(t, err)
	assert.Equal(t, grantID, repeatID)
}

/*
TestService_AssignPermission_UnknownReference verifies a missing entity
surfaces as NOT_FOUND before any link is written.
*/
func TestService_AssignPermission_UnknownReference(t *testing.T) {
	service, _ := newTestService()
	ctx := context.Background()

	role, err := service.CreateRole(ctx, "Doctor")
	require.NoError(t, err)
	permission, err := service.CreatePermission(ctx, "read")
	require.NoError(t, err)

	_, err = service.AssignPermission(ctx, role.ID, "0191d8a0-0000-7000-8000-000000000099", permission.ID)
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)
}

func TestService_AssignPermission_MalformedID(t *testing.T) {
	service, _ := newTestService()

	_, err := service.AssignPermission(context.Background(), "not-a-uuid", "also-bad", "nope")
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
}

func TestService_SetFeatureActive(t *testing.T) {
	service, features := newTestService()
	ctx := context.Background()

	feature, err := service.CreateFeature(ctx, "billing")
	require.NoError(t, err)

	require.NoError(t, service.SetFeatureActive(ctx, feature.ID, false))
	assert.False(t, features.byID[feature.ID].IsActive)

	require.NoError(t, service.SetFeatureActive(ctx, feature.ID, true))
	assert.True(t, features.byID[feature.ID].IsActive)
}

func TestService_SetFeatureActive_Unknown(t *testing.T) {
	service, _ := newTestService()

	err := service.SetFeatureActive(context.Background(), "0191d8a0-0000-7000-8000-000000000042", false)
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)
}
