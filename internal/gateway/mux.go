// Copyright (c) 2026 Viewr. All rights reserved.
// Author: dev@viewr.app

package gateway

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/MohamedSbika/Viewr-Backend-sub000/internal/platform/apperr"
)

// Mux routes patterns to dispatchers by namespace: the segment before the
// first dot selects the dispatcher ("auth.login" -> mux["auth"]).
//
// The zero value is unusable; construct with a literal:
//
//	gateway.Mux{"auth": authDispatcher, "rbac": rbacDispatcher}
type Mux map[string]Dispatcher

// Dispatch implements [Dispatcher].
func (mux Mux) Dispatch(ctx context.Context, pattern string, data json.RawMessage) (any, error) {
	namespace, _, found := strings.Cut(pattern, ".")
	if !found {
		return nil, apperr.NotFound("Operation " + pattern)
	}

	dispatcher, ok := mux[namespace]
	if !ok {
		return nil, apperr.NotFound("Operation " + pattern)
	}

	return dispatcher.Dispatch(ctx, pattern, data)
}
