package auth

import (
	"context"
	"fmt"
	"strings"
)

// StaticTokenPrefix is the bearer prefix accepted by the mock verifier.
const StaticTokenPrefix = "test-token-"

// StaticVerifier is a self-contained verifier for local development and
// tests (--no-oidc). It accepts tokens of the form "test-token-<id>" and
// derives a deterministic identity from the suffix, so two different tokens
// always map to two different users.
type StaticVerifier struct{}

// NewStaticVerifier creates the mock verifier.
func NewStaticVerifier() *StaticVerifier {
	return &StaticVerifier{}
}

// Verify accepts "test-token-<id>" and rejects everything else.
func (v *StaticVerifier) Verify(_ context.Context, rawToken string) (*Identity, error) {
	suffix, ok := strings.CutPrefix(rawToken, StaticTokenPrefix)
	if !ok || suffix == "" {
		return nil, ErrInvalidToken(fmt.Errorf("token %q does not match mock format", StaticTokenPrefix+"<id>"))
	}

	return &Identity{
		UserID: "mock-user-" + suffix,
		Email:  suffix + "@example.com",
		Name:   "Test User " + suffix,
	}, nil
}
