package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/sakif/promptmaster/internal/model"
)

var errNoToken = errors.New("auth: missing bearer token")

// contextKey is an unexported type used for context keys in this package.
//
// WHY A CUSTOM TYPE FOR CONTEXT KEYS?
// context.WithValue uses any as the key type. If you use a plain string,
// ANY package that knows the string can read or shadow your value. A
// package-private type prevents collisions: only this package can create a
// key of type contextKey, so only this package can write principals into
// the context.
type contextKey string

const principalKey contextKey = "principal"

const unauthorizedBody = `{"error":"unauthorized","message":"valid authentication required"}`

// deny writes a JSON rejection. http.Error is no good here — it forces
// Content-Type to text/plain.
func deny(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(body))
}

// RequireAuth is a middleware that enforces authentication on protected routes.
//
// It reads the JWT from the Authorization header ("Bearer <token>"),
// validates it, and stores the principal in the request context. If the
// header is missing or the token invalid, it returns 401 Unauthorized and
// stops the request chain.
//
// Note that a valid guest-role token would pass through here — gating out
// guests is a policy decision made per-capability, not a transport concern.
func RequireAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, err := extractPrincipal(r, tokens)
			if err != nil {
				deny(w, http.StatusUnauthorized, unauthorizedBody)
				return
			}

			ctx := context.WithValue(r.Context(), principalKey, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin enforces the admin role on top of RequireAuth. Mount it
// AFTER RequireAuth — it assumes the principal is already in the context.
//
// An authenticated non-admin gets 403 (we know who they are, they just
// can't do this), not 401.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, ok := PrincipalFromContext(r.Context())
		if !ok {
			deny(w, http.StatusUnauthorized, unauthorizedBody)
			return
		}
		if !principal.IsAdmin() {
			deny(w, http.StatusForbidden, `{"error":"forbidden","message":"admin role required"}`)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// PrincipalFromContext retrieves the authenticated principal from the
// request context.
//
// Returns (zero, false) if the request is anonymous (no valid token).
func PrincipalFromContext(ctx context.Context) (model.Principal, bool) {
	p, ok := ctx.Value(principalKey).(model.Principal)
	return p, ok && p.ID != ""
}

// ContextWithPrincipal returns a context carrying the principal.
// Exported for handler tests, which have no middleware chain.
func ContextWithPrincipal(ctx context.Context, p model.Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// extractPrincipal reads and validates the bearer token.
// Shared by RequireAuth and any future optional-auth middleware.
func extractPrincipal(r *http.Request, tokens *TokenService) (model.Principal, error) {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return model.Principal{}, errNoToken
	}
	return tokens.Validate(strings.TrimPrefix(header, prefix))
}
