// Package middleware provides HTTP middleware for the API routes.
package middleware

import (
	"context"
	"log"
	"net/http"
	"strings"

	"github.com/wanderdate/wanderdate/internal/auth/session"
	"github.com/wanderdate/wanderdate/internal/config"
	"github.com/wanderdate/wanderdate/internal/users"
)

type contextKey string

const claimsKey contextKey = "sessionClaims"

// ClaimsFromContext returns the session claims attached by RequireAuth.
func ClaimsFromContext(ctx context.Context) (*session.Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(*session.Claims)
	return claims, ok
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error": "` + message + `"}`))
}

// RequireAuth validates the bearer session token and attaches its claims to
// the request context.
func RequireAuth(signer *session.Signer) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				unauthorized(w, "Access denied. No token provided.")
				return
			}
			claims, err := signer.Parse(strings.TrimPrefix(authHeader, "Bearer "))
			if err != nil {
				log.Printf("❌ auth middleware: %v", err)
				unauthorized(w, "Invalid token.")
				return
			}
			ctx := context.WithValue(r.Context(), claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin allows only users whose stored email is on the admin
// allowlist. The email is re-read from the user store rather than trusted
// from the token.
func RequireAdmin(cfg *config.Config, store *users.Store) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				unauthorized(w, "Authentication required")
				return
			}
			user, err := store.Get(r.Context(), claims.UserID)
			if err != nil {
				http.Error(w, `{"error": "Internal server error"}`, http.StatusInternalServerError)
				return
			}
			if user == nil {
				http.Error(w, `{"error": "User not found"}`, http.StatusNotFound)
				return
			}
			if !cfg.IsAdmin(user.Email) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				w.Write([]byte(`{"error": "Admin access required"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
