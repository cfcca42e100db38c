package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"
)

// OIDCVerifier validates bearer ID tokens against an OIDC identity provider.
// Discovery runs once at construction; per-request verification checks the
// token signature (via the provider's JWKS), expiry, and audience.
type OIDCVerifier struct {
	provider *oidc.Provider
	verifier *oidc.IDTokenVerifier
}

// NewOIDCVerifier discovers the issuer's endpoints and builds a token
// verifier bound to the application's client ID (the expected audience).
func NewOIDCVerifier(ctx context.Context, issuer, clientID string) (*OIDCVerifier, error) {
	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("failed to create OIDC provider: %w", err)
	}

	verifier := provider.Verifier(&oidc.Config{
		ClientID: clientID,
	})

	return &OIDCVerifier{
		provider: provider,
		verifier: verifier,
	}, nil
}

// Verify validates the raw token and extracts the identity claims.
func (v *OIDCVerifier) Verify(ctx context.Context, rawToken string) (*Identity, error) {
	idToken, err := v.verifier.Verify(ctx, rawToken)
	if err != nil {
		return nil, ErrInvalidToken(err)
	}

	var claims struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return nil, ErrInvalidToken(fmt.Errorf("failed to parse claims: %w", err))
	}

	sub := strings.TrimSpace(idToken.Subject)
	if sub == "" {
		return nil, ErrInvalidToken(fmt.Errorf("token has empty subject"))
	}

	return &Identity{
		UserID: sub,
		Email:  claims.Email,
		Name:   claims.Name,
	}, nil
}
