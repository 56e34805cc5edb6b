// Copyright (c) 2026 Viewr. All rights reserved.
// Author: dev@viewr.app

package rbac

import (
	"context"
	"fmt"
)

// Aggregator flattens an account's roles into the feature -> actions map
// embedded in the permission token.
type Aggregator struct {
	roles  RoleRepository
	grants GrantRepository
}

// NewAggregator wires the aggregator to its storage contracts.
func NewAggregator(roles RoleRepository, grants GrantRepository) *Aggregator {
	return &Aggregator{roles: roles, grants: grants}
}

/*
Aggregate computes the effective permission map of an account.

Description: Resolves the account's roles, collects every grant those roles
hold, drops grants on inactive features, and groups the surviving actions by
feature name. Consumers treat each action list as a set — when several roles
grant the same action on a feature, the action may appear more than once.

Parameters:
  - ctx: context.Context
  - accountID: string

Returns:
  - map[string][]string: feature name -> granted actions. Empty (non-nil)
    map for accounts with no roles or no active grants.
  - error: Database errors
*/
func (aggregator *Aggregator) Aggregate(ctx context.Context, accountID string) (map[string][]string, error) {
	roles, err := aggregator.roles.ListByAccount(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("rbac_aggregate_list_roles_failed: %w", err)
	}

	roleIDs := make([]string, 0, len(roles))
	for _, role := range roles {
		roleIDs = append(roleIDs, role.ID)
	}

	grants, err := aggregator.grants.ListByRoles(ctx, roleIDs)
	if err != nil {
		return nil, fmt.Errorf("rbac_aggregate_list_grants_failed: %w", err)
	}

	features := make(map[string][]string)
	for _, grant := range grants {
		// Inactive features are invisible to token holders
		if !grant.FeatureActive {
			continue
		}
		features[grant.Feature] = append(features[grant.Feature], grant.Action)
	}

	return features, nil
}
