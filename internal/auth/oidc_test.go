package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oauth2-proxy/mockoidc"
	"github.com/stretchr/testify/require"

	"github.com/marginalia-app/marginalia/internal/errs"
)

// startMockIssuer runs a real OIDC server (discovery + JWKS) so the verifier
// is exercised against actual signed tokens, not stubs.
func startMockIssuer(t *testing.T) *mockoidc.MockOIDC {
	t.Helper()

	m, err := mockoidc.Run()
	require.NoError(t, err, "failed to start mockoidc")
	t.Cleanup(func() {
		_ = m.Shutdown()
	})
	return m
}

func signToken(t *testing.T, m *mockoidc.MockOIDC, claims jwt.MapClaims) string {
	t.Helper()

	token, err := m.Keypair.SignJWT(claims)
	require.NoError(t, err)
	return token
}

func baseClaims(m *mockoidc.MockOIDC) jwt.MapClaims {
	now := time.Now()
	return jwt.MapClaims{
		"iss":   m.Issuer(),
		"aud":   m.ClientID,
		"sub":   "subject-1234567890",
		"email": "carol@example.com",
		"name":  "Carol Example",
		"iat":   now.Unix(),
		"exp":   now.Add(time.Hour).Unix(),
	}
}

func TestOIDCVerifier_AcceptsSignedToken(t *testing.T) {
	m := startMockIssuer(t)

	verifier, err := NewOIDCVerifier(t.Context(), m.Issuer(), m.ClientID)
	require.NoError(t, err)

	identity, err := verifier.Verify(t.Context(), signToken(t, m, baseClaims(m)))
	require.NoError(t, err)
	require.Equal(t, "subject-1234567890", identity.UserID)
	require.Equal(t, "carol@example.com", identity.Email)
	require.Equal(t, "Carol Example", identity.Name)
}

func TestOIDCVerifier_RejectsExpiredToken(t *testing.T) {
	m := startMockIssuer(t)

	verifier, err := NewOIDCVerifier(t.Context(), m.Issuer(), m.ClientID)
	require.NoError(t, err)

	claims := baseClaims(m)
	claims["iat"] = time.Now().Add(-2 * time.Hour).Unix()
	claims["exp"] = time.Now().Add(-time.Hour).Unix()

	_, err = verifier.Verify(t.Context(), signToken(t, m, claims))
	require.Error(t, err)
	require.Equal(t, errs.PermissionDenied, errs.CodeOf(err))
}

func TestOIDCVerifier_RejectsWrongAudience(t *testing.T) {
	m := startMockIssuer(t)

	verifier, err := NewOIDCVerifier(t.Context(), m.Issuer(), m.ClientID)
	require.NoError(t, err)

	claims := baseClaims(m)
	claims["aud"] = "some-other-application"

	_, err = verifier.Verify(t.Context(), signToken(t, m, claims))
	require.Error(t, err)
	require.Equal(t, errs.PermissionDenied, errs.CodeOf(err))
}

func TestOIDCVerifier_RejectsMalformedToken(t *testing.T) {
	m := startMockIssuer(t)

	verifier, err := NewOIDCVerifier(t.Context(), m.Issuer(), m.ClientID)
	require.NoError(t, err)

	_, err = verifier.Verify(t.Context(), "not.a.jwt")
	require.Error(t, err)
	require.Equal(t, errs.PermissionDenied, errs.CodeOf(err))
}

func TestOIDCVerifier_RejectsEmptySubject(t *testing.T) {
	m := startMockIssuer(t)

	verifier, err := NewOIDCVerifier(t.Context(), m.Issuer(), m.ClientID)
	require.NoError(t, err)

	claims := baseClaims(m)
	claims["sub"] = ""

	_, err = verifier.Verify(t.Context(), signToken(t, m, claims))
	require.Error(t, err)
	require.Equal(t, errs.PermissionDenied, errs.CodeOf(err))
}
