// Package identity carries the authenticated caller's identity through
// the request context. Authentication itself happens upstream at the
// front door; this service trusts the claims it is handed.
package identity

import "context"

// Identity is the verified caller identity supplied per request.
type Identity struct {
	UserID string
	Email  string
	Name   string
}

// IsAuthenticated reports whether the identity carries a stable user ID.
func (id *Identity) IsAuthenticated() bool {
	return id != nil && id.UserID != ""
}

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const identityContextKey contextKey = "identity"

// WithIdentity adds the identity to the context.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, id)
}

// FromContext retrieves the identity from the context.
// Returns nil if not present.
func FromContext(ctx context.Context) *Identity {
	id, ok := ctx.Value(identityContextKey).(*Identity)
	if !ok {
		return nil
	}
	return id
}

// UserIDFromContext is a convenience function to get the user ID.
// Returns empty string if unauthenticated.
func UserIDFromContext(ctx context.Context) string {
	id := FromContext(ctx)
	if id == nil {
		return ""
	}
	return id.UserID
}
