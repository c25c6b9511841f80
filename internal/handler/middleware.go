package handler

import (
	"context"
	"net/http"
	"strings"

	"digital-garden/internal/domain"
)

// AuthMiddleware resolves the bearer token into an identity and stores both
// in the request context. A request without an Authorization header passes
// through in guest mode; a present but invalid token is rejected.
func AuthMiddleware(authService domain.AuthService, logger domain.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				next.ServeHTTP(w, r)
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
				writeError(w, http.StatusUnauthorized, "Invalid authorization header format")
				return
			}
			token := parts[1]

			identity, err := authService.ValidateToken(token)
			if err != nil {
				logger.Error("Token validation failed", err)
				writeError(w, http.StatusUnauthorized, "Invalid token")
				return
			}

			ctx := context.WithValue(r.Context(), identityContextKey, identity)
			ctx = context.WithValue(ctx, tokenContextKey, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
