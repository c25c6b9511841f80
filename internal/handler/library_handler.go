package handler

import (
	"net/http"
	"time"

	"digital-garden/internal/domain"
	"digital-garden/internal/store"
)

// LibraryHandler serves whole-library views: snapshot, stats, the monthly
// rewind, and the JSON backup export.
type LibraryHandler struct {
	library *store.Library
	logger  domain.Logger
}

// NewLibraryHandler creates a new library handler
func NewLibraryHandler(library *store.Library, logger domain.Logger) *LibraryHandler {
	return &LibraryHandler{library: library, logger: logger}
}

// GetLibrary returns the full state snapshot.
func (h *LibraryHandler) GetLibrary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.library.Snapshot())
}

// GetStats returns the dashboard headline numbers.
func (h *LibraryHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.library.Stats())
}

// GetRewind returns the monthly reading digest.
func (h *LibraryHandler) GetRewind(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.library.RewindAt(time.Now()))
}

type exportPayload struct {
	User       domain.User   `json:"user"`
	Books      []domain.Book `json:"books"`
	Notes      []domain.Note `json:"notes"`
	ExportedAt string        `json:"exportedAt"`
	Version    string        `json:"version"`
}

// Export produces a downloadable JSON backup of the library.
func (h *LibraryHandler) Export(w http.ResponseWriter, r *http.Request) {
	snap := h.library.Snapshot()
	now := time.Now().UTC()

	w.Header().Set("Content-Disposition",
		`attachment; filename="digital-garden-backup-`+now.Format("2006-01-02")+`.json"`)
	writeJSON(w, http.StatusOK, exportPayload{
		User:       snap.User,
		Books:      snap.Books,
		Notes:      snap.Notes,
		ExportedAt: now.Format(time.RFC3339),
		Version:    "1.0.0",
	})
}
