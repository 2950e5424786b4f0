package auth

import (
	"context"
	"net/http"
)

type contextKey string

const usernameKey contextKey = "username"

// Middleware guards the admin routes: it verifies the bearer token and
// stores the caller's username in the request context.
func Middleware(issuer *TokenIssuer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := ExtractTokenFromRequest(r)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "No token")
				return
			}

			username, err := issuer.Verify(token)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "Invalid token")
				return
			}

			ctx := context.WithValue(r.Context(), usernameKey, username)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Username returns the authenticated admin's name from the context.
func Username(ctx context.Context) string {
	if name, ok := ctx.Value(usernameKey).(string); ok {
		return name
	}
	return ""
}
