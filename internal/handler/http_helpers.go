// Package handler provides HTTP handlers for the API.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"digital-garden/internal/domain"
	apperrors "digital-garden/pkg/errors"
)

type contextKey string

const (
	identityContextKey contextKey = "identity"
	tokenContextKey    contextKey = "token"
)

// GetIdentityFromContext extracts the authenticated identity from request
// context. Absent means the request runs in guest mode.
func GetIdentityFromContext(r *http.Request) (*domain.Identity, bool) {
	identity, ok := r.Context().Value(identityContextKey).(*domain.Identity)
	return identity, ok
}

// GetTokenFromContext extracts the authentication token from request context
func GetTokenFromContext(r *http.Request) (string, bool) {
	token, ok := r.Context().Value(tokenContextKey).(string)
	return token, ok
}

// writeError writes an error response (helper function)
func writeError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// writeJSON writes a JSON response (helper function)
func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// statusForError maps domain errors onto HTTP status codes.
func statusForError(err error) int {
	var vErr *domain.ValidationError
	switch {
	case errors.As(err, &vErr):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrBookNotFound), errors.Is(err, domain.ErrNoteNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidToken):
		return http.StatusUnauthorized
	default:
		return apperrors.GetStatusCode(err)
	}
}
