package domain

import "errors"

// Domain errors
var (
	ErrBookNotFound = errors.New("book not found")
	ErrNoteNotFound = errors.New("note not found")
	ErrInvalidToken = errors.New("invalid token")
	ErrNoIdentity   = errors.New("no identity resolved")
)

// ValidationError represents a validation error with field and message information.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return e.Field + ": " + e.Message
	}
	return e.Message
}
