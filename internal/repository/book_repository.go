package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"digital-garden/internal/domain"
)

// BookRepository implements domain.BookRepository against the Supabase
// `books` table. Columns use snake_case; mapping to the in-memory shape is
// mechanical field renaming only.
type BookRepository struct {
	supabaseClient domain.SupabaseClient
	logger         domain.Logger
}

func NewBookRepository(supabaseClient domain.SupabaseClient, logger domain.Logger) domain.BookRepository {
	return &BookRepository{
		supabaseClient: supabaseClient,
		logger:         logger,
	}
}

func (r *BookRepository) ListByUser(ctx context.Context, userID string, token string) ([]domain.Book, error) {
	client, err := r.supabaseClient.GetClientWithToken(token)
	if err != nil {
		return nil, fmt.Errorf("failed to get client with token: %w", err)
	}

	data, _, err := client.From("books").
		Select("*", "", false).
		Eq("user_id", userID).
		ExecuteWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}

	var rows []map[string]interface{}
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	books := make([]domain.Book, 0, len(rows))
	for _, row := range rows {
		books = append(books, mapToBook(row))
	}
	return books, nil
}

func (r *BookRepository) Insert(ctx context.Context, userID string, book domain.Book, token string) error {
	client, err := r.supabaseClient.GetClientWithToken(token)
	if err != nil {
		return fmt.Errorf("failed to get client with token: %w", err)
	}

	_, _, err = client.From("books").
		Insert(buildBookRow(userID, book), false, "", "", "").
		ExecuteWithContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to insert book: %w", err)
	}

	r.logger.Debug("Book inserted", "user_id", userID, "book_id", book.ID, "title", book.Title)
	return nil
}

func (r *BookRepository) BulkInsert(ctx context.Context, userID string, books []domain.Book, token string) error {
	if len(books) == 0 {
		return nil
	}
	client, err := r.supabaseClient.GetClientWithToken(token)
	if err != nil {
		return fmt.Errorf("failed to get client with token: %w", err)
	}

	rows := make([]map[string]interface{}, 0, len(books))
	for _, b := range books {
		rows = append(rows, buildBookRow(userID, b))
	}

	_, _, err = client.From("books").
		Insert(rows, false, "", "", "").
		ExecuteWithContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to bulk insert books: %w", err)
	}

	r.logger.Info("Books bulk inserted", "user_id", userID, "count", len(books))
	return nil
}

func (r *BookRepository) Update(ctx context.Context, userID string, bookID string, updates domain.BookUpdate, token string) error {
	client, err := r.supabaseClient.GetClientWithToken(token)
	if err != nil {
		return fmt.Errorf("failed to get client with token: %w", err)
	}

	row := buildBookUpdateRow(updates)
	if len(row) == 0 {
		return nil
	}

	_, _, err = client.From("books").
		Update(row, "", "").
		Eq("id", bookID).
		Eq("user_id", userID).
		ExecuteWithContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to update book: %w", err)
	}
	return nil
}

func (r *BookRepository) Delete(ctx context.Context, userID string, bookID string, token string) error {
	client, err := r.supabaseClient.GetClientWithToken(token)
	if err != nil {
		return fmt.Errorf("failed to get client with token: %w", err)
	}

	_, _, err = client.From("books").
		Delete("", "").
		Eq("id", bookID).
		Eq("user_id", userID).
		ExecuteWithContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete book: %w", err)
	}
	return nil
}

// buildBookRow converts a book to its full snake_case row shape.
func buildBookRow(userID string, b domain.Book) map[string]interface{} {
	row := map[string]interface{}{
		"id":         b.ID,
		"user_id":    userID,
		"title":      b.Title,
		"author":     b.Author,
		"cover_url":  b.CoverURL,
		"page_count": b.PageCount,
		"progress":   b.Progress,
		"status":     string(b.Status),
		"tags":       b.Tags,
	}
	if b.Rating > 0 {
		row["rating"] = b.Rating
	}
	if b.DateStarted != nil {
		row["date_started"] = b.DateStarted.Format(time.RFC3339)
	}
	if b.DateFinished != nil {
		row["date_finished"] = b.DateFinished.Format(time.RFC3339)
	}
	if b.Review != "" {
		row["review"] = b.Review
	}
	if len(b.Vibes) > 0 {
		row["vibes"] = b.Vibes
	}
	if b.Description != "" {
		row["description"] = b.Description
	}
	if b.ISBN != "" {
		row["isbn"] = b.ISBN
	}
	return row
}

// buildBookUpdateRow converts a partial patch to a row containing only the
// changed, known fields.
func buildBookUpdateRow(u domain.BookUpdate) map[string]interface{} {
	row := map[string]interface{}{}
	if u.Title != nil {
		row["title"] = *u.Title
	}
	if u.Author != nil {
		row["author"] = *u.Author
	}
	if u.CoverURL != nil {
		row["cover_url"] = *u.CoverURL
	}
	if u.PageCount != nil {
		row["page_count"] = *u.PageCount
	}
	if u.Status != nil {
		row["status"] = string(*u.Status)
	}
	if u.Progress != nil {
		row["progress"] = *u.Progress
	}
	if u.Rating != nil {
		row["rating"] = *u.Rating
	}
	if u.DateStarted != nil {
		row["date_started"] = u.DateStarted.Format(time.RFC3339)
	}
	if u.DateFinished != nil {
		row["date_finished"] = u.DateFinished.Format(time.RFC3339)
	}
	if u.Tags != nil {
		row["tags"] = *u.Tags
	}
	if u.Review != nil {
		row["review"] = *u.Review
	}
	if u.Vibes != nil {
		row["vibes"] = *u.Vibes
	}
	if u.Description != nil {
		row["description"] = *u.Description
	}
	return row
}

// mapToBook converts a snake_case row to a Book.
func mapToBook(row map[string]interface{}) domain.Book {
	return domain.Book{
		ID:           getString(row, "id"),
		ISBN:         getString(row, "isbn"),
		Title:        getString(row, "title"),
		Author:       getString(row, "author"),
		CoverURL:     getString(row, "cover_url"),
		PageCount:    getInt(row, "page_count"),
		Status:       domain.BookStatus(getString(row, "status")),
		Progress:     getInt(row, "progress"),
		Rating:       getInt(row, "rating"),
		DateStarted:  getTime(row, "date_started"),
		DateFinished: getTime(row, "date_finished"),
		Tags:         getStringSlice(row, "tags"),
		Review:       getString(row, "review"),
		Vibes:        getStringSlice(row, "vibes"),
		Description:  getString(row, "description"),
	}
}

// Helper functions for type conversion
func getString(row map[string]interface{}, key string) string {
	if val, ok := row[key]; ok && val != nil {
		if s, ok := val.(string); ok {
			return s
		}
	}
	return ""
}

func getInt(row map[string]interface{}, key string) int {
	if val, ok := row[key]; ok && val != nil {
		switch v := val.(type) {
		case int:
			return v
		case int64:
			return int(v)
		case float64:
			return int(v)
		}
	}
	return 0
}

func getStringSlice(row map[string]interface{}, key string) []string {
	val, ok := row[key]
	if !ok || val == nil {
		return nil
	}
	items, ok := val.([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func getTime(row map[string]interface{}, key string) *time.Time {
	s := getString(row, key)
	if s == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}
