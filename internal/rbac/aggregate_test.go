// Copyright (c) 2026 Viewr. All rights reserved.
// Author: dev@viewr.app

package rbac_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MohamedSbika/Viewr-Backend-sub000/internal/rbac"
)

// # Test Doubles

type fakeRoleRepo struct {
	rolesByAccount map[string][]rbac.Role
	err            error
}

func (f *fakeRoleRepo) Create(ctx context.Context, role *rbac.Role) error { return nil }
func (f *fakeRoleRepo) FindByID(ctx context.Context, id string) (*rbac.Role, error) {
	return nil, errors.New("not implemented")
}
func (f *fakeRoleRepo) FindByTitle(ctx context.Context, title string) (*rbac.Role, error) {
	return nil, errors.New("not implemented")
}
func (f *fakeRoleRepo) ListByAccount(ctx context.Context, accountID string) ([]rbac.Role, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.rolesByAccount[accountID], nil
}

type fakeGrantRepo struct {
	grantsByRole map[string][]rbac.Grant
	err          error
}

func (f *fakeGrantRepo) Assign(ctx context.Context, grantID, roleID, featureID, permissionID string) (string, error) {
	return grantID, nil
}
func (f *fakeGrantRepo) ListByRoles(ctx context.Context, roleIDs []string) ([]rbac.Grant, error) {
	if f.err != nil {
		return nil, f.err
	}
	grants := make([]rbac.Grant, 0)
	for _, id := range roleIDs {
		grants = append(grants, f.grantsByRole[id]...)
	}
	return grants, nil
}

// # Tests

/*
TestAggregator_GroupsActionsByFeature verifies the basic flattening of grants
into the feature map.
*/
func TestAggregator_GroupsActionsByFeature(t *testing.T) {
	roles := &fakeRoleRepo{rolesByAccount: map[string][]rbac.Role{
		"acc-1": {{ID: "role-doctor", Title: "Doctor"}},
	}}
	grants := &fakeGrantRepo{grantsByRole: map[string][]rbac.Grant{
		"role-doctor": {
			{Feature: "patients", FeatureActive: true, Action: "create"},
			{Feature: "patients", FeatureActive: true, Action: "read"},
			{Feature: "appointments", FeatureActive: true, Action: "read"},
		},
	}}

	aggregator := rbac.NewAggregator(roles, grants)

	features, err := aggregator.Aggregate(context.Background(), "acc-1")
	require.NoError(t, err)

	assert.Equal(t, map[string][]string{
		"patients":     {"create", "read"},
		"appointments": {"read"},
	}, features)
}

/*
TestAggregator_SkipsInactiveFeatures verifies that grants on a deactivated
feature never reach the permission map.
*/
func TestAggregator_SkipsInactiveFeatures(t *testing.T) {
	roles := &fakeRoleRepo{rolesByAccount: map[string][]rbac.Role{
		"acc-1": {{ID: "role-doctor", Title: "Doctor"}},
	}}
	grants := &fakeGrantRepo{grantsByRole: map[string][]rbac.Grant{
		"role-doctor": {
			{Feature: "patients", FeatureActive: true, Action: "read"},
			{Feature: "billing", FeatureActive: false, Action: "read"},
			{Feature: "billing", FeatureActive: false, Action: "create"},
		},
	}}

	aggregator := rbac.NewAggregator(roles, grants)

	features, err := aggregator.Aggregate(context.Background(), "acc-1")
	require.NoError(t, err)

	assert.Contains(t, features, "patients")
	assert.NotContains(t, features, "billing")
}

/*
TestAggregator_MergesMultipleRoles verifies that grants from all of an
account's roles land in one map. Action lists are treated as sets by
consumers, so overlapping grants may repeat.
*/
func TestAggregator_MergesMultipleRoles(t *testing.T) {
	roles := &fakeRoleRepo{rolesByAccount: map[string][]rbac.Role{
		"acc-1": {
			{ID: "role-doctor", Title: "Doctor"},
			{ID: "role-admin", Title: "Admin"},
		},
	}}
	grants := &fakeGrantRepo{grantsByRole: map[string][]rbac.Grant{
		"role-doctor": {{Feature: "patients", FeatureActive: true, Action: "read"}},
		"role-admin":  {{Feature: "settings", FeatureActive: true, Action: "update"}},
	}}

	aggregator := rbac.NewAggregator(roles, grants)

	features, err := aggregator.Aggregate(context.Background(), "acc-1")
	require.NoError(t, err)

	assert.Equal(t, []string{"read"}, features["patients"])
	assert.Equal(t, []string{"update"}, features["settings"])
}

/*
TestAggregator_EmptyAccount verifies a roleless account yields an empty,
non-nil map.
*/
func TestAggregator_EmptyAccount(t *testing.T) {
	aggregator := rbac.NewAggregator(
		&fakeRoleRepo{rolesByAccount: map[string][]rbac.Role{}},
		&fakeGrantRepo{grantsByRole: map[string][]rbac.Grant{}},
	)

	features, err := aggregator.Aggregate(context.Background(), "acc-unknown")
	require.NoError(t, err)
	require.NotNil(t, features)
	assert.Empty(t, features)
}

/*
TestAggregator_StorageError verifies storage failures propagate.
*/
func TestAggregator_StorageError(t *testing.T) {
	aggregator := rbac.NewAggregator(
		&fakeRoleRepo{err: errors.New("connection refused")},
		&fakeGrantRepo{},
	)

	_, err := aggregator.Aggregate(context.Background(), "acc-1")
	assert.Error(t, err)
}
