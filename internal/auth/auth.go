// Package auth verifies bearer credentials against an OIDC identity provider
// and attaches the verified identity to the request context. The verified
// subject is the only source of the userId used to scope note access.
package auth

import (
	"context"

	"github.com/marginalia-app/marginalia/internal/errs"
)

// Identity is a verified caller identity.
type Identity struct {
	// UserID is the stable subject identifier from the identity provider.
	UserID string
	Email  string
	Name   string
}

// Verifier validates a raw bearer token and produces a verified identity.
// Implementations must check signature, expiry, and audience.
type Verifier interface {
	Verify(ctx context.Context, rawToken string) (*Identity, error)
}

// ErrInvalidToken is the coded error for tokens that fail verification.
// A present-but-invalid credential maps to 403, not 401.
func ErrInvalidToken(cause error) error {
	return errs.Wrap(errs.PermissionDenied, "invalid credentials", cause)
}

type contextKey string

const identityKey contextKey = "identity"

// WithIdentity stores the verified identity in the request context.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFromContext retrieves the verified identity from the request context.
// Returns nil if the request did not pass through RequireAuth.
func IdentityFromContext(ctx context.Context) *Identity {
	id, _ := ctx.Value(identityKey).(*Identity)
	return id
}

// UserIDFromContext returns the verified user ID, or empty string.
func UserIDFromContext(ctx context.Context) string {
	if id := IdentityFromContext(ctx); id != nil {
		return id.UserID
	}
	return ""
}
