// Copyright (c) 2026 Viewr. All rights reserved.
// Author: dev@viewr.app

package rbac

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/MohamedSbika/Viewr-Backend-sub000/internal/platform/apperr"
)

// # RPC Patterns

// Administrative patterns consumed from the gateway. Only platform
// administrators can reach these; the gateway enforces that upstream.
const (
	PatternCreateRole       = "rbac.create-role"
	PatternCreateFeature    = "rbac.create-feature"
	PatternCreatePermission = "rbac.create-permission"
	PatternAssignPermission = "rbac.assign-permission"
	PatternToggleFeature    = "rbac.toggle-feature"
)

// # Request Payloads

type createRoleRequest struct {
	Title string `json:"title"`
}

type createFeatureRequest struct {
	Name string `json:"name"`
}

type createPermissionRequest struct {
	Action string `json:"action"`
}

type assignPermissionRequest struct {
	RoleID       string `json:"roleId"`
	FeatureID    string `json:"featureId"`
	PermissionID string `json:"permissionId"`
}

type toggleFeatureRequest struct {
	FeatureID string `json:"featureId"`
	IsActive  bool   `json:"isActive"`
}

// # Response Payloads

type roleResponse struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type featureResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	IsActive bool   `json:"isActive"`
}

type permissionResponse struct {
	ID     string `json:"id"`
	Action string `json:"action"`
}

type assignmentResponse struct {
	ID string `json:"id"`
}

type toggleResponse struct {
	Success bool `json:"success"`
}

// # Dispatcher

// Administrator is the service surface the dispatcher routes into.
type Administrator interface {
	CreateRole(ctx context.Context, title string) (*Role, error)
	CreateFeature(ctx context.Context, name string) (*Feature, error)
	CreatePermission(ctx context.Context, action string) (*Permission, error)
	AssignPermission(ctx context.Context, roleID, featureID, permissionID string) (string, error)
	SetFeatureActive(ctx context.Context, featureID string, active bool) error
}

// Dispatcher decodes gateway payloads for the administrative RBAC
// operations and routes them by pattern.
type Dispatcher struct {
	service Administrator
}

// NewDispatcher wires the dispatcher to the RBAC service.
func NewDispatcher(service Administrator) *Dispatcher {
	return &Dispatcher{service: service}
}

/*
Dispatch routes one gateway message to its operation.

Parameters:
  - ctx: context.Context (carries the per-message deadline and logger)
  - pattern: string (one of the Pattern constants)
  - data: json.RawMessage (the operation payload)

Returns:
  - any: The operation's response payload, ready for JSON encoding
  - error: apperr taxonomy errors, apperr.NotFound for unknown patterns
*/
func (dispatcher *Dispatcher) Dispatch(ctx context.Context, pattern string, data json.RawMessage) (any, error) {
	switch pattern {
	case PatternCreateRole:
		return dispatcher.handleCreateRole(ctx, data)
	case PatternCreateFeature:
		return dispatcher.handleCreateFeature(ctx, data)
	case PatternCreatePermission:
		return dispatcher.handleCreatePermission(ctx, data)
	case PatternAssignPermission:
		return dispatcher.handleAssignPermission(ctx, data)
	case PatternToggleFeature:
		return dispatcher.handleToggleFeature(ctx, data)
	default:
		return nil, apperr.NotFound("Operation " + pattern)
	}
}

func (dispatcher *Dispatcher) handleCreateRole(ctx context.Context, data json.RawMessage) (any, error) {
	var request createRoleRequest
	if err := decodeStrict(data, &request); err != nil {
		return nil, err
	}

	role, err := dispatcher.service.CreateRole(ctx, request.Title)
	if err != nil {
		return nil, err
	}

	return roleResponse{ID: role.ID, Title: role.Title}, nil
}

func (dispatcher *Dispatcher) handleCreateFeature(ctx context.Context, data json.RawMessage) (any, error) {
	var request createFeatureRequest
	if err := decodeStrict(data, &request); err != nil {
		return nil, err
	}

	feature, err := dispatcher.service.CreateFeature(ctx, request.Name)
	if err != nil {
		return nil, err
	}

	return featureResponse{ID: feature.ID, Name: feature.Name, IsActive: feature.IsActive}, nil
}

func (dispatcher *Dispatcher) handleCreatePermission(ctx context.Context, data json.RawMessage) (any, error) {
	var request createPermissionRequest
	if err := decodeStrict(data, &request); err != nil {
		return nil, err
	}

	permission, err := dispatcher.service.CreatePermission(ctx, request.Action)
	if err != nil {
		return nil, err
	}

	return permissionResponse{ID: permission.ID, Action: permission.Action}, nil
}

func (dispatcher *Dispatcher) handleAssignPermission(ctx context.Context, data json.RawMessage) (any, error) {
	var request assignPermissionRequest
	if err := decodeStrict(data, &request); err != nil {
		return nil, err
	}

	grantID, err := dispatcher.service.AssignPermission(ctx, request.RoleID, request.FeatureID, request.PermissionID)
	if err != nil {
		return nil, err
	}

	return assignmentResponse{ID: grantID}, nil
}

func (dispatcher *Dispatcher) handleToggleFeature(ctx context.Context, data json.RawMessage) (any, error) {
	var request toggleFeatureRequest
	if err := decodeStrict(data, &request); err != nil {
		return nil, err
	}

	if err := dispatcher.service.SetFeatureActive(ctx, request.FeatureID, request.IsActive); err != nil {
		return nil, err
	}

	return toggleResponse{Success: true}, nil
}

// decodeStrict decodes a payload, rejecting unknown fields.
func decodeStrict(data json.RawMessage, target any) error {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(target); err != nil {
		return apperr.ValidationError("Invalid JSON payload").WithCause(err)
	}
	return nil
}
