package domain

import (
	"context"
	"time"
)

// NoteType discriminates between verbatim quotes and the reader's own thoughts.
type NoteType string

const (
	NoteQuote   NoteType = "quote"
	NoteThought NoteType = "thought"
)

// Note is a timestamped annotation tied to one book. Notes are immutable
// after creation; they are only ever created and deleted.
type Note struct {
	ID     string `json:"id"`
	BookID string `json:"bookId"`

	Content       string   `json:"content"` // markdown supported
	Type          NoteType `json:"type"`
	PageReference string   `json:"pageReference,omitempty"` // e.g. "p. 102"

	CreatedAt time.Time `json:"createdAt"`
}

// NoteRepository defines persistence operations for notes.
type NoteRepository interface {
	ListByUser(ctx context.Context, userID string, token string) ([]Note, error)
	Insert(ctx context.Context, userID string, note Note, token string) error
	BulkInsert(ctx context.Context, userID string, notes []Note, token string) error
	Delete(ctx context.Context, userID string, noteID string, token string) error
}
