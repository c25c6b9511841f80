package domain

import (
	"context"
	"time"
)

// User is the profile of the single identity driving the session. When no
// authenticated session exists the store runs with the guest default.
type User struct {
	Name               string `json:"name"`
	Email              string `json:"email"`
	Bio                string `json:"bio"`
	AvatarURL          string `json:"avatarUrl"`
	ThemePreference    string `json:"themePreference"`
	JoinedDate         string `json:"joinedDate"`
	Location           string `json:"location"`
	IsPro              bool   `json:"isPro"`
	ReadingGoal        int    `json:"readingGoal"` // books per year
	LanguagePreference string `json:"languagePreference"`
}

const guestAvatarURL = "https://upload.wikimedia.org/wikipedia/commons/7/7c/Profile_avatar_placeholder_large.png"

// GuestUser returns the well-known default profile used when nobody is
// signed in.
func GuestUser() User {
	return User{
		Name:               "Guest",
		Email:              "",
		Bio:                "Welcome to your digital garden.",
		AvatarURL:          guestAvatarURL,
		ThemePreference:    "light",
		JoinedDate:         time.Now().Format("1/2/2006"),
		Location:           "Earth",
		IsPro:              false,
		ReadingGoal:        10,
		LanguagePreference: "en",
	}
}

// UserUpdate is a partial patch of a User profile. Nil fields are left
// untouched locally and omitted from the persisted row.
type UserUpdate struct {
	Name               *string `json:"name,omitempty"`
	Email              *string `json:"email,omitempty"`
	Bio                *string `json:"bio,omitempty"`
	AvatarURL          *string `json:"avatarUrl,omitempty"`
	ThemePreference    *string `json:"themePreference,omitempty"`
	Location           *string `json:"location,omitempty"`
	IsPro              *bool   `json:"isPro,omitempty"`
	ReadingGoal        *int    `json:"readingGoal,omitempty"`
	LanguagePreference *string `json:"languagePreference,omitempty"`
}

// Apply returns a copy of u with all non-nil fields of the patch applied.
func (p UserUpdate) Apply(u User) User {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Bio != nil {
		u.Bio = *p.Bio
	}
	if p.AvatarURL != nil {
		u.AvatarURL = *p.AvatarURL
	}
	if p.ThemePreference != nil {
		u.ThemePreference = *p.ThemePreference
	}
	if p.Location != nil {
		u.Location = *p.Location
	}
	if p.IsPro != nil {
		u.IsPro = *p.IsPro
	}
	if p.ReadingGoal != nil {
		u.ReadingGoal = *p.ReadingGoal
	}
	if p.LanguagePreference != nil {
		u.LanguagePreference = *p.LanguagePreference
	}
	return u
}

// ProfileRepository defines persistence operations for the profiles table.
// A missing profile row is an expected state (fresh accounts have none), so
// GetByUser returns (nil, nil) when absent rather than an error.
type ProfileRepository interface {
	GetByUser(ctx context.Context, userID string, token string) (*UserUpdate, error)
	Upsert(ctx context.Context, userID string, updates UserUpdate, token string) error
}
