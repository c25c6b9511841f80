package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"digital-garden/internal/domain"
)

// ProfileRepository implements domain.ProfileRepository against the Supabase
// `profiles` table (one row per user, keyed by the auth user id).
type ProfileRepository struct {
	supabaseClient domain.SupabaseClient
	logger         domain.Logger
}

func NewProfileRepository(supabaseClient domain.SupabaseClient, logger domain.Logger) domain.ProfileRepository {
	return &ProfileRepository{
		supabaseClient: supabaseClient,
		logger:         logger,
	}
}

// GetByUser returns the stored profile fields as a partial patch, or
// (nil, nil) when no row exists yet. Fresh accounts have no profile row, so
// absence is an expected state rather than an error.
func (r *ProfileRepository) GetByUser(ctx context.Context, userID string, token string) (*domain.UserUpdate, error) {
	client, err := r.supabaseClient.GetClientWithToken(token)
	if err != nil {
		return nil, fmt.Errorf("failed to get client with token: %w", err)
	}

	data, _, err := client.From("profiles").
		Select("*", "", false).
		Eq("id", userID).
		ExecuteWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	var rows []map[string]interface{}
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	return mapToProfilePatch(rows[0]), nil
}

// Upsert writes only the fields present in the patch, creating the row on
// first write.
func (r *ProfileRepository) Upsert(ctx context.Context, userID string, updates domain.UserUpdate, token string) error {
	client, err := r.supabaseClient.GetClientWithToken(token)
	if err != nil {
		return fmt.Errorf("failed to get client with token: %w", err)
	}

	row := buildProfileRow(userID, updates)
	if len(row) <= 1 { // only the id
		return nil
	}

	_, _, err = client.From("profiles").
		Upsert(row, "", "", "").
		ExecuteWithContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to upsert profile: %w", err)
	}

	r.logger.Info("Profile updated successfully", "user_id", userID)
	return nil
}

func buildProfileRow(userID string, u domain.UserUpdate) map[string]interface{} {
	row := map[string]interface{}{
		"id": userID,
	}
	if u.Name != nil {
		row["full_name"] = *u.Name
	}
	if u.Bio != nil {
		row["bio"] = *u.Bio
	}
	if u.Location != nil {
		row["location"] = *u.Location
	}
	if u.AvatarURL != nil {
		row["avatar_url"] = *u.AvatarURL
	}
	if u.ThemePreference != nil {
		row["theme_preference"] = *u.ThemePreference
	}
	if u.ReadingGoal != nil {
		row["reading_goal"] = *u.ReadingGoal
	}
	if u.IsPro != nil {
		row["is_pro"] = *u.IsPro
	}
	if u.LanguagePreference != nil {
		row["language_preference"] = *u.LanguagePreference
	}
	return row
}

// mapToProfilePatch converts a profile row to a partial patch containing only
// the columns present and non-null, so merging it onto the in-memory user
// never clobbers fields the row does not carry.
func mapToProfilePatch(row map[string]interface{}) *domain.UserUpdate {
	patch := &domain.UserUpdate{}
	if v, ok := row["full_name"].(string); ok {
		patch.Name = &v
	}
	if v, ok := row["bio"].(string); ok {
		patch.Bio = &v
	}
	if v, ok := row["location"].(string); ok {
		patch.Location = &v
	}
	if v, ok := row["avatar_url"].(string); ok {
		patch.AvatarURL = &v
	}
	if v, ok := row["theme_preference"].(string); ok {
		patch.ThemePreference = &v
	}
	if v, ok := row["reading_goal"].(float64); ok {
		goal := int(v)
		patch.ReadingGoal = &goal
	}
	if v, ok := row["is_pro"].(bool); ok {
		patch.IsPro = &v
	}
	if v, ok := row["language_preference"].(string); ok {
		patch.LanguagePreference = &v
	}
	return patch
}
