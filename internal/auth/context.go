package auth

import (
	"context"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// adminContextKey is the context key for storing verified admin claims.
	adminContextKey contextKey = "admin_claims"
)

// ContextWithAdmin adds verified admin claims to the context.
func ContextWithAdmin(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, adminContextKey, claims)
}

// AdminFromContext retrieves admin claims from the context.
// Returns nil if not present.
func AdminFromContext(ctx context.Context) *Claims {
	claims, ok := ctx.Value(adminContextKey).(*Claims)
	if !ok {
		return nil
	}
	return claims
}
