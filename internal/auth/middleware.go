package auth

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/marginalia-app/marginalia/internal/errs"
	"github.com/marginalia-app/marginalia/internal/obs"
)

// Middleware provides bearer-token authentication for HTTP handlers.
type Middleware struct {
	verifier Verifier
}

// NewMiddleware creates auth middleware backed by the given verifier.
func NewMiddleware(verifier Verifier) *Middleware {
	return &Middleware{verifier: verifier}
}

// RequireAuth rejects requests without a verified identity.
// Missing/blank Authorization header yields 401; a present but invalid
// token yields 403. On success the identity is attached to the request
// context and to log correlation.
func (m *Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rawToken, err := BearerToken(r)
		if err != nil {
			writeAuthError(w, err)
			return
		}

		identity, err := m.verifier.Verify(r.Context(), rawToken)
		if err != nil {
			obs.From(r.Context()).With("pkg", "auth").Debug("token_rejected", "error", err.Error())
			writeAuthError(w, err)
			return
		}

		ctx := WithIdentity(r.Context(), identity)
		ctx = obs.WithUserID(ctx, identity.UserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// BearerToken extracts the bearer token from the Authorization header.
// Returns an unauthenticated coded error when the header or token is absent.
func BearerToken(r *http.Request) (string, error) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return "", errs.New(errs.Unauthenticated, "missing authorization header")
	}

	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", errs.New(errs.Unauthenticated, "authorization header must use the Bearer scheme")
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return "", errs.New(errs.Unauthenticated, "missing bearer token")
	}
	return token, nil
}

func writeAuthError(w http.ResponseWriter, err error) {
	code := errs.CodeOf(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(errs.HTTPStatus(code))
	json.NewEncoder(w).Encode(map[string]string{"error": errs.MessageOf(err)})
}
