package middleware

import (
	"net/http"
	"strings"

	"github.com/fkhayef/groupapply/internal/identity"
	"github.com/fkhayef/groupapply/pkg/response"
)

// TokenVerifier resolves a bearer token to an actor
type TokenVerifier interface {
	Verify(token string) (identity.Actor, error)
}

// AuthMiddleware resolves the caller through the identity gateway's bearer
// token and stores the actor in the request context.
func AuthMiddleware(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				response.Unauthorized(w, "Authorization header required")
				return
			}

			// Extract token from "Bearer <token>"
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				response.Unauthorized(w, "Invalid authorization header format")
				return
			}

			actor, err := verifier.Verify(parts[1])
			if err != nil {
				response.Unauthorized(w, "Invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(identity.WithActor(r.Context(), actor)))
		})
	}
}

// DevIdentityMiddleware takes the caller from X-User-ID / X-User-Name headers (DEV ONLY)
// This makes it easy to test as different users without a real gateway
func DevIdentityMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := strings.TrimSpace(r.Header.Get("X-User-ID"))
		if userID == "" {
			response.Unauthorized(w, "X-User-ID header required")
			return
		}
		name := strings.TrimSpace(r.Header.Get("X-User-Name"))
		if name == "" {
			name = userID
		}
		actor := identity.Actor{ID: userID, Name: name}
		next.ServeHTTP(w, r.WithContext(identity.WithActor(r.Context(), actor)))
	})
}

// GetActor extracts the caller from the request context
func GetActor(r *http.Request) (identity.Actor, bool) {
	return identity.FromContext(r.Context())
}
