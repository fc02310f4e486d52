package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/crucial707/screentime/internal/auth"
	"github.com/crucial707/screentime/internal/models"
	"github.com/crucial707/screentime/internal/repo"
)

type key string

const claimsKey key = "claims"

// SessionCookie holds the signed session token for browser clients.
const SessionCookie = "screentime_session"

// Authenticate reads a session token from the Authorization header or the
// session cookie and, when valid, stores its claims in the request context.
// Requests without a valid token pass through unauthenticated.
func Authenticate(issuer *auth.Issuer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := bearerToken(r)
			if tokenStr == "" {
				if c, err := r.Cookie(SessionCookie); err == nil {
					tokenStr = c.Value
				}
			}
			if tokenStr != "" {
				if claims, err := issuer.Parse(tokenStr); err == nil {
					r = r.WithContext(WithClaims(r.Context(), claims))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if !strings.HasPrefix(h, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
}

// WithClaims returns ctx carrying claims.
func WithClaims(ctx context.Context, claims *auth.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// GetClaims returns the authenticated claims, if any.
func GetClaims(ctx context.Context) (*auth.Claims, bool) {
	c, ok := ctx.Value(claimsKey).(*auth.Claims)
	return c, ok && c != nil
}

// GetUserID returns the authenticated user ID, if any.
func GetUserID(ctx context.Context) (int, bool) {
	c, ok := GetClaims(ctx)
	if !ok {
		return 0, false
	}
	return c.UserID, true
}

// RequireUser rejects API requests without valid claims with 401.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetClaims(r.Context()); !ok {
			writeJSONError(w, "authentication required", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RoleSource looks up a user's stored role.
type RoleSource interface {
	Role(ctx context.Context, userID int) (string, error)
}

// RequireAdmin rejects API requests from non-admin users with 403 (401 when
// unauthenticated). The role comes from roles, not the token, so a demotion
// takes effect before the session expires.
func RequireAdmin(roles RoleSource) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := GetClaims(r.Context())
			if !ok {
				writeJSONError(w, "authentication required", http.StatusUnauthorized)
				return
			}
			role, err := roles.Role(r.Context(), claims.UserID)
			switch {
			case errors.Is(err, repo.ErrNotFound):
				writeJSONError(w, "authentication required", http.StatusUnauthorized)
				return
			case errors.Is(err, repo.ErrUnavailable):
				writeJSONError(w, "service unavailable", http.StatusServiceUnavailable)
				return
			case err != nil:
				writeJSONError(w, "internal error", http.StatusInternalServerError)
				return
			}
			if role != models.RoleAdmin {
				writeJSONError(w, "admin role required", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeJSONError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
