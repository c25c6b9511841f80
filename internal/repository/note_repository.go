package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"digital-garden/internal/domain"

	"github.com/supabase-community/postgrest-go"
)

// NoteRepository implements domain.NoteRepository against the Supabase
// `notes` table.
type NoteRepository struct {
	supabaseClient domain.SupabaseClient
	logger         domain.Logger
}

func NewNoteRepository(supabaseClient domain.SupabaseClient, logger domain.Logger) domain.NoteRepository {
	return &NoteRepository{
		supabaseClient: supabaseClient,
		logger:         logger,
	}
}

func (r *NoteRepository) ListByUser(ctx context.Context, userID string, token string) ([]domain.Note, error) {
	client, err := r.supabaseClient.GetClientWithToken(token)
	if err != nil {
		return nil, fmt.Errorf("failed to get client with token: %w", err)
	}

	data, _, err := client.From("notes").
		Select("*", "", false).
		Eq("user_id", userID).
		Order("created_at", &postgrest.OrderOpts{Ascending: false}).
		ExecuteWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}

	var rows []map[string]interface{}
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	notes := make([]domain.Note, 0, len(rows))
	for _, row := range rows {
		notes = append(notes, mapToNote(row))
	}
	return notes, nil
}

func (r *NoteRepository) Insert(ctx context.Context, userID string, note domain.Note, token string) error {
	client, err := r.supabaseClient.GetClientWithToken(token)
	if err != nil {
		return fmt.Errorf("failed to get client with token: %w", err)
	}

	_, _, err = client.From("notes").
		Insert(buildNoteRow(userID, note), false, "", "", "").
		ExecuteWithContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to insert note: %w", err)
	}

	r.logger.Debug("Note inserted", "user_id", userID, "note_id", note.ID, "book_id", note.BookID)
	return nil
}

func (r *NoteRepository) BulkInsert(ctx context.Context, userID string, notes []domain.Note, token string) error {
	if len(notes) == 0 {
		return nil
	}
	client, err := r.supabaseClient.GetClientWithToken(token)
	if err != nil {
		return fmt.Errorf("failed to get client with token: %w", err)
	}

	rows := make([]map[string]interface{}, 0, len(notes))
	for _, n := range notes {
		rows = append(rows, buildNoteRow(userID, n))
	}

	_, _, err = client.From("notes").
		Insert(rows, false, "", "", "").
		ExecuteWithContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to bulk insert notes: %w", err)
	}

	r.logger.Info("Notes bulk inserted", "user_id", userID, "count", len(notes))
	return nil
}

func (r *NoteRepository) Delete(ctx context.Context, userID string, noteID string, token string) error {
	client, err := r.supabaseClient.GetClientWithToken(token)
	if err != nil {
		return fmt.Errorf("failed to get client with token: %w", err)
	}

	_, _, err = client.From("notes").
		Delete("", "").
		Eq("id", noteID).
		Eq("user_id", userID).
		ExecuteWithContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}
	return nil
}

func buildNoteRow(userID string, n domain.Note) map[string]interface{} {
	row := map[string]interface{}{
		"id":         n.ID,
		"user_id":    userID,
		"book_id":    n.BookID,
		"content":    n.Content,
		"type":       string(n.Type),
		"created_at": n.CreatedAt.Format(time.RFC3339),
	}
	if n.PageReference != "" {
		row["page_reference"] = n.PageReference
	}
	return row
}

func mapToNote(row map[string]interface{}) domain.Note {
	note := domain.Note{
		ID:            getString(row, "id"),
		BookID:        getString(row, "book_id"),
		Content:       getString(row, "content"),
		Type:          domain.NoteType(getString(row, "type")),
		PageReference: getString(row, "page_reference"),
	}
	if t := getTime(row, "created_at"); t != nil {
		note.CreatedAt = *t
	}
	return note
}
