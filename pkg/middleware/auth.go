package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/yhamdan/socialite/pkg/response"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// UserIDKey is the context key for the authenticated user ID
	UserIDKey ContextKey = "user_id"
)

// TokenResolver resolves an opaque bearer token to the owning user ID.
// It returns an error when the token is unknown.
type TokenResolver interface {
	Resolve(ctx context.Context, token string) (int64, error)
}

// Auth returns middleware that authenticates requests via the
// "Authorization: Token <value>" header and stores the resolved user ID
// in the request context. Requests without a valid token get a 401.
func Auth(resolver TokenResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				response.Unauthorized(w, "Authorization header required")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Token") {
				response.Unauthorized(w, "Invalid authorization header format")
				return
			}

			userID, err := resolver.Resolve(r.Context(), parts[1])
			if err != nil {
				response.Unauthorized(w, "Invalid token")
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUserID extracts the user ID from the request context
func GetUserID(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(UserIDKey).(int64)
	return userID, ok
}
