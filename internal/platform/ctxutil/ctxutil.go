// Copyright (c) 2026 Viewr. All rights reserved.
// Author: dev@viewr.app

// Package ctxutil provides helpers for interacting with values stored in [context.Context].
package ctxutil

import (
	"context"
	"log/slog"

	"github.com/MohamedSbika/Viewr-Backend-sub000/internal/platform/ctxkey"
	"github.com/MohamedSbika/Viewr-Backend-sub000/internal/platform/sec"
)

// # Request Tracing

// WithRequestID returns a new context with the provided request ID attached.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxkey.KeyRequestID, id)
}

// GetRequestID retrieves the request ID from the context.
// Returns an empty string if not found.
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxkey.KeyRequestID).(string)
	return id
}

// # Structured Logging

// WithLogger returns a new context with the provided logger attached.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxkey.KeyLogger, logger)
}

// GetLogger retrieves the logger from the context.
// If no logger is found, it returns the global default logger.
func GetLogger(ctx context.Context) *slog.Logger {
	logger, ok := ctx.Value(ctxkey.KeyLogger).(*slog.Logger)
	if !ok {
		return slog.Default()
	}
	return logger
}

// # Identity & Access

// WithCaller returns a new context with the provided access claims attached.
func WithCaller(ctx context.Context, claims *sec.AccessClaims) context.Context {
	return context.WithValue(ctx, ctxkey.KeyCaller, claims)
}

// GetCaller retrieves the [*sec.AccessClaims] from the [context.Context].
func GetCaller(ctx context.Context) *sec.AccessClaims {
	claims, ok := ctx.Value(ctxkey.KeyCaller).(*sec.AccessClaims)
	if !ok {
		return nil
	}
	return claims
}
