// Package contextkeys provides centralized context key definitions
//
// IMPORTANT: All context keys used across the application must be defined here.
// This prevents typos, documents dependencies, and makes key usage discoverable.
//
// Values are stored as interface{} so this package stays import-cycle
// free; the middleware and handler layers assert the concrete types.
package contextkeys

import "context"

// Key is the type for context keys to prevent collisions
type Key string

const (
	// UserKey contains the acting user (*users.User)
	// Set by: middleware.IdentityMiddleware
	// Required by: authority gates, all mutation handlers
	UserKey Key = "acting_user"

	// TenantKey contains the acting tenant ID (int64)
	// Set by: middleware.TenantMiddleware from the X-TenantID header
	// Required by: tenant-scoped handlers and authority gates
	TenantKey Key = "acting_tenant"

	// RequestIDKey contains the request ID string (UUID)
	// Set by: middleware.RequestIDMiddleware
	// Used by: logger, audit trail
	RequestIDKey Key = "request_id"
)

// WithActingUser adds the acting user to the context.
func WithActingUser(ctx context.Context, user interface{}) context.Context {
	return context.WithValue(ctx, UserKey, user)
}

// ActingUser retrieves the acting user from the context, or nil.
func ActingUser(ctx context.Context) interface{} {
	return ctx.Value(UserKey)
}

// WithTenant adds the acting tenant ID to the context.
func WithTenant(ctx context.Context, tenantID int64) context.Context {
	return context.WithValue(ctx, TenantKey, tenantID)
}

// ActingTenant retrieves the acting tenant ID from the context. The
// second return is false when no tenant header was supplied.
func ActingTenant(ctx context.Context) (int64, bool) {
	tenantID, ok := ctx.Value(TenantKey).(int64)
	return tenantID, ok
}

// WithRequestID adds the request ID to the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// GetRequestID retrieves the request ID from the context, or empty string.
func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
		return requestID
	}
	return ""
}
