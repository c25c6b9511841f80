package domain

import (
	"context"
	"time"
)

// BookStatus is the reading lifecycle state of a book.
type BookStatus string

const (
	StatusTBR       BookStatus = "tbr"
	StatusReading   BookStatus = "reading"
	StatusFinished  BookStatus = "finished"
	StatusAbandoned BookStatus = "abandoned"
)

// ValidStatus reports whether s is one of the known book statuses.
func ValidStatus(s BookStatus) bool {
	switch s {
	case StatusTBR, StatusReading, StatusFinished, StatusAbandoned:
		return true
	}
	return false
}

// Book represents a catalogued work in the user's library.
type Book struct {
	ID       string `json:"id"`
	GoogleID string `json:"googleId,omitempty"`
	ISBN     string `json:"isbn,omitempty"`

	Title    string `json:"title"`
	Author   string `json:"author"`
	CoverURL string `json:"coverUrl"`

	PageCount int        `json:"pageCount"`
	Status    BookStatus `json:"status"`
	Progress  int        `json:"progress"` // current page number

	Rating       int        `json:"rating,omitempty"` // 1-5, 0 means unrated
	DateStarted  *time.Time `json:"dateStarted,omitempty"`
	DateFinished *time.Time `json:"dateFinished,omitempty"`

	Tags        []string `json:"tags"`
	Review      string   `json:"review,omitempty"`
	Vibes       []string `json:"vibes,omitempty"`
	Description string   `json:"description,omitempty"`
}

// BookUpdate is a partial patch of a Book. Nil fields are left untouched,
// both locally and in the persisted row.
type BookUpdate struct {
	Title        *string     `json:"title,omitempty"`
	Author       *string     `json:"author,omitempty"`
	CoverURL     *string     `json:"coverUrl,omitempty"`
	PageCount    *int        `json:"pageCount,omitempty"`
	Status       *BookStatus `json:"status,omitempty"`
	Progress     *int        `json:"progress,omitempty"`
	Rating       *int        `json:"rating,omitempty"`
	DateStarted  *time.Time  `json:"dateStarted,omitempty"`
	DateFinished *time.Time  `json:"dateFinished,omitempty"`
	Tags         *[]string   `json:"tags,omitempty"`
	Review       *string     `json:"review,omitempty"`
	Vibes        *[]string   `json:"vibes,omitempty"`
	Description  *string     `json:"description,omitempty"`
}

// Apply returns a copy of b with all non-nil fields of the patch applied.
func (u BookUpdate) Apply(b Book) Book {
	if u.Title != nil {
		b.Title = *u.Title
	}
	if u.Author != nil {
		b.Author = *u.Author
	}
	if u.CoverURL != nil {
		b.CoverURL = *u.CoverURL
	}
	if u.PageCount != nil {
		b.PageCount = *u.PageCount
	}
	if u.Status != nil {
		b.Status = *u.Status
	}
	if u.Progress != nil {
		b.Progress = *u.Progress
	}
	if u.Rating != nil {
		b.Rating = *u.Rating
	}
	if u.DateStarted != nil {
		t := *u.DateStarted
		b.DateStarted = &t
	}
	if u.DateFinished != nil {
		t := *u.DateFinished
		b.DateFinished = &t
	}
	if u.Tags != nil {
		b.Tags = *u.Tags
	}
	if u.Review != nil {
		b.Review = *u.Review
	}
	if u.Vibes != nil {
		b.Vibes = *u.Vibes
	}
	if u.Description != nil {
		b.Description = *u.Description
	}
	return b
}

// BookRepository defines persistence operations for books.
type BookRepository interface {
	ListByUser(ctx context.Context, userID string, token string) ([]Book, error)
	Insert(ctx context.Context, userID string, book Book, token string) error
	BulkInsert(ctx context.Context, userID string, books []Book, token string) error
	Update(ctx context.Context, userID string, bookID string, updates BookUpdate, token string) error
	Delete(ctx context.Context, userID string, bookID string, token string) error
}
