// Package net provides utilities for working with request contexts
package net

import (
	"context"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// ctxKey is an unexported key type for context values
type ctxKey string

const (
	keySessionToken ctxKey = "session_token"
	keyClientID     ctxKey = "client_id"
)

// WithRequest annotates context with common request scoped ids
func WithRequest(ctx context.Context, reqID, sessionToken string) context.Context {
	if reqID != "" {
		// set chi RequestID so chimw.GetReqID can retrieve it
		ctx = context.WithValue(ctx, chimw.RequestIDKey, reqID)
	}
	if sessionToken != "" {
		ctx = context.WithValue(ctx, keySessionToken, sessionToken)
	}
	return ctx
}

// WithClient annotates context with the resolved client identity
func WithClient(ctx context.Context, clientID string) context.Context {
	if clientID != "" {
		ctx = context.WithValue(ctx, keyClientID, clientID)
	}
	return ctx
}

// RequestID returns the request id on the context if present
func RequestID(ctx context.Context) string {
	if v := chimw.GetReqID(ctx); v != "" {
		return v
	}
	return ""
}

// SessionToken returns the opaque session token on the context if present
func SessionToken(ctx context.Context) string {
	if v, ok := ctx.Value(keySessionToken).(string); ok {
		return v
	}
	return ""
}

// ClientID returns the resolved client identity on the context if present
func ClientID(ctx context.Context) string {
	if v, ok := ctx.Value(keyClientID).(string); ok {
		return v
	}
	return ""
}
