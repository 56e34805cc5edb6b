// Copyright (c) 2026 Viewr. All rights reserved.
// Author: dev@viewr.app

package gateway_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MohamedSbika/Viewr-Backend-sub000/internal/gateway"
	"github.com/MohamedSbika/Viewr-Backend-sub000/internal/platform/apperr"
)

type recordingDispatcher struct {
	lastPattern string
	lastData    json.RawMessage
	result      any
}

func (dispatcher *recordingDispatcher) Dispatch(_ context.Context, pattern string, data json.RawMessage) (any, error) {
	dispatcher.lastPattern = pattern
	dispatcher.lastData = data
	return dispatcher.result, nil
}

func TestMux_RoutesByNamespace(t *testing.T) {
	authDispatcher := &recordingDispatcher{result: "auth-result"}
	rbacDispatcher := &recordingDispatcher{result: "rbac-result"}

	mux := gateway.Mux{
		"auth": authDispatcher,
		"rbac": rbacDispatcher,
	}

	result, err := mux.Dispatch(context.Background(), "rbac.create-role", json.RawMessage(`{"title":"Doctor"}`))
	require.NoError(t, err)
	assert.Equal(t, "rbac-result", result)
	assert.Equal(t, "rbac.create-role", rbacDispatcher.lastPattern)
	assert.JSONEq(t, `{"title":"Doctor"}`, string(rbacDispatcher.lastData))
	assert.Empty(t, authDispatcher.lastPattern)

	result, err = mux.Dispatch(context.Background(), "auth.login", json.RawMessage(`{}`))
	require.NoError(t, err)
	assert.Equal(t, "auth-result", result)
	assert.Equal(t, "auth.login", authDispatcher.lastPattern)
}

func TestMux_UnknownNamespace(t *testing.T) {
	mux := gateway.Mux{"auth": &recordingDispatcher{}}

	_, err := mux.Dispatch(context.Background(), "billing.create-invoice", json.RawMessage(`{}`))
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)
}

func TestMux_PatternWithoutNamespace(t *testing.T) {
	mux := gateway.Mux{"auth": &recordingDispatcher{}}

	_, err := mux.Dispatch(context.Background(), "ping", json.RawMessage(`{}`))
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)
}
