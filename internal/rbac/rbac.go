// Copyright (c) 2026 Viewr. All rights reserved.
// Author: dev@viewr.app

/*
Package rbac implements role-based access control for the Viewr platform.

# Model

Access rights are expressed as a three-level hierarchy:

  - Role: A named job function ("Admin", "Doctor", "User"). Accounts hold
    one or more roles.
  - Feature: A platform capability ("patients", "appointments"). Features
    carry an activation flag so a capability can be switched off globally
    without touching any role.
  - Permission: An action verb ("create", "read", "update", "delete").

A grant row links (role, feature, permission): "this role may perform this
action on this feature". The aggregator flattens an account's grants into the
feature -> actions map that is embedded in the permission token at login.
*/
package rbac

import "time"

// Role is a named collection of grants assignable to accounts.
type Role struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Feature is a platform capability that grants can reference.
//
// IsActive gates the whole capability: grants against an inactive feature
// are retained but excluded from aggregation.
type Feature struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Permission is an action verb, shared across features.
type Permission struct {
	ID        string    `json:"id"`
	Action    string    `json:"action"`
	CreatedAt time.Time `json:"created_at"`
}

// Grant is a flattened (role, feature, permission) link as read back from
// storage, carrying just what aggregation needs.
type Grant struct {
	Feature       string
	FeatureActive bool
	Action        string
}
