// Copyright (c) 2026 Viewr. All rights reserved.
// Author: dev@viewr.app

package rbac_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MohamedSbika/Viewr-Backend-sub000/internal/platform/apperr"
	"github.com/MohamedSbika/Viewr-Backend-sub000/internal/rbac"
)

// fakeAdministrator records the last call so tests can assert argument
// plumbing without exercising the real service.
type fakeAdministrator struct {
	lastCall string
	lastArgs []any
	err      error
}

func (fake *fakeAdministrator) CreateRole(_ context.Context, title string) (*rbac.Role, error) {
	fake.lastCall, fake.lastArgs = "CreateRole", []any{title}
	if fake.err != nil {
		return nil, fake.err
	}
	return &rbac.Role{ID: "role-1", Title: title}, nil
}

func (fake *fakeAdministrator) CreateFeature(_ context.Context, name string) (*rbac.Feature, error) {
	fake.lastCall, fake.lastArgs = "CreateFeature", []any{name}
	if fake.err != nil {
		return nil, fake.err
	}
	return &rbac.Feature{ID: "feature-1", Name: name, IsActive: true}, nil
}

func (fake *fakeAdministrator) CreatePermission(_ context.Context, action string) (*rbac.Permission, error) {
	fake.lastCall, fake.lastArgs = "CreatePermission", []any{action}
	if fake.err != nil {
		return nil, fake.err
	}
	return &rbac.Permission{ID: "permission-1", Action: action}, nil
}

func (fake *fakeAdministrator) AssignPermission(_ context.Context, roleID, featureID, permissionID string) (string, error) {
	fake.lastCall, fake.lastArgs = "AssignPermission", []any{roleID, featureID, permissionID}
	if fake.err != nil {
		return "", fake.err
	}
	return "grant-1", nil
}

func (fake *fakeAdministrator) SetFeatureActive(_ context.Context, featureID string, active bool) error {
	fake.lastCall, fake.lastArgs = "SetFeatureActive", []any{featureID, active}
	return fake.err
}

// dispatchJSON runs one pattern through the dispatcher and re-decodes the
// response into a map so field names can be asserted exactly.
func dispatchJSON(t *testing.T, dispatcher *rbac.Dispatcher, pattern, payload string) map[string]any {
	t.Helper()

	response, err := dispatcher.Dispatch(context.Background(), pattern, json.RawMessage(payload))
	require.NoError(t, err)

	raw, err := json.Marshal(response)
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(raw, &fields))
	return fields
}

func TestDispatcher_CreateRole(t *testing.T) {
	fake := &fakeAdministrator{}
	dispatcher := rbac.NewDispatcher(fake)

	fields := dispatchJSON(t, dispatcher, rbac.PatternCreateRole, `{"title":"Doctor"}`)

	assert.Equal(t, "CreateRole", fake.lastCall)
	assert.Equal(t, []any{"Doctor"}, fake.lastArgs)
	assert.Equal(t, "role-1", fields["id"])
	assert.Equal(t, "Doctor", fields["title"])
}

func TestDispatcher_CreateFeature(t *testing.T) {
	fake := &fakeAdministrator{}
	dispatcher := rbac.NewDispatcher(fake)

	fields := dispatchJSON(t, dispatcher, rbac.PatternCreateFeature, `{"name":"patients"}`)

	assert.Equal(t, "CreateFeature", fake.lastCall)
	assert.Equal(t, "patients", fields["name"])
	assert.Equal(t, true, fields["isActive"])
}

func TestDispatcher_AssignPermission(t *testing.T) {
	fake := &fakeAdministrator{}
	dispatcher := rbac.NewDispatcher(fake)

	fields := dispatchJSON(t, dispatcher, rbac.PatternAssignPermission,
		`{"roleId":"r-1","featureId":"f-1","permissionId":"p-1"}`)

	assert.Equal(t, "AssignPermission", fake.lastCall)
	assert.Equal(t, []any{"r-1", "f-1", "p-1"}, fake.lastArgs)
	assert.Equal(t, "grant-1", fields["id"])
}

func TestDispatcher_ToggleFeature(t *testing.T) {
	fake := &fakeAdministrator{}
	dispatcher := rbac.NewDispatcher(fake)

	fields := dispatchJSON(t, dispatcher, rbac.PatternToggleFeature,
		`{"featureId":"f-1","isActive":false}`)

	assert.Equal(t, "SetFeatureActive", fake.lastCall)
	assert.Equal(t, []any{"f-1", false}, fake.lastArgs)
	assert.Equal(t, true, fields["success"])
}

func TestDispatcher_RejectsUnknownFields(t *testing.T) {
	fake := &fakeAdministrator{}
	dispatcher := rbac.NewDispatcher(fake)

	_, err := dispatcher.Dispatch(context.Background(), rbac.PatternCreateRole,
		json.RawMessage(`{"title":"Doctor","color":"blue"}`))
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
	assert.Empty(t, fake.lastCall, "service must not be reached on a malformed payload")
}

func TestDispatcher_UnknownPattern(t *testing.T) {
	dispatcher := rbac.NewDispatcher(&fakeAdministrator{})

	_, err := dispatcher.Dispatch(context.Background(), "rbac.drop-everything", json.RawMessage(`{}`))
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)
}

func TestDispatcher_ServiceErrorPassthrough(t *testing.T) {
	fake := &fakeAdministrator{err: apperr.Conflict("Role already exists with this title")}
	dispatcher := rbac.NewDispatcher(fake)

	_, err := dispatcher.Dispatch(context.Background(), rbac.PatternCreateRole,
		json.RawMessage(`{"title":"Doctor"}`))
	require.Error(t, err)
	assert.Equal(t, "CONFLICT", apperr.As(err).Code)
}
