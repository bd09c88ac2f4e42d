package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-accounts-api/internal/domain"
	jwtinfra "github.com/go-accounts-api/internal/infrastructure/jwt"
)

type contextKey string

const UserKey contextKey = "user"

// UserLoader resolves a user id to the stored user record.
type UserLoader interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
}

// Auth returns middleware that validates the Bearer session token and
// injects the resolved user into the request context. The presented token
// must also equal the token stored on the user record: a login overwrites
// it and a logout clears it, which cuts off older bearer tokens here even
// though they remain cryptographically valid until expiry.
func Auth(provider *jwtinfra.Provider, users UserLoader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				writeJSONError(w, http.StatusUnauthorized, "missing or invalid authorization header")
				return
			}
			tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
			claims, err := provider.VerifySession(tokenStr)
			if err != nil {
				writeJSONError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}
			u, err := users.Get(r.Context(), claims.UserID)
			if err != nil || u.SessionToken != tokenStr {
				writeJSONError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}
			ctx := context.WithValue(r.Context(), UserKey, u)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFromContext extracts the authenticated user from the request context.
func UserFromContext(ctx context.Context) (*domain.User, bool) {
	u, ok := ctx.Value(UserKey).(*domain.User)
	return u, ok
}
