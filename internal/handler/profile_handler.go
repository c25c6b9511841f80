package handler

import (
	"encoding/json"
	"net/http"

	"digital-garden/internal/domain"
	"digital-garden/internal/store"
)

// ProfileHandler handles profile-related HTTP requests
type ProfileHandler struct {
	library *store.Library
	logger  domain.Logger
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(library *store.Library, logger domain.Logger) *ProfileHandler {
	return &ProfileHandler{library: library, logger: logger}
}

// GetProfile returns the current profile, guest or signed in.
func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.library.Snapshot().User)
}

// UpdateProfile merges a partial profile edit. Edits always land locally;
// cloud persistence is best effort.
func (h *ProfileHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var updates domain.UserUpdate
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	h.library.UpdateUser(r.Context(), updates)
	writeJSON(w, http.StatusOK, h.library.Snapshot().User)
}
