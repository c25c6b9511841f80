package handler

import (
	"encoding/json"
	"net/http"

	"digital-garden/internal/domain"
	"digital-garden/internal/store"

	"github.com/gorilla/mux"
)

// NoteHandler handles note-related HTTP requests
type NoteHandler struct {
	library *store.Library
	logger  domain.Logger
}

// NewNoteHandler creates a new note handler
func NewNoteHandler(library *store.Library, logger domain.Logger) *NoteHandler {
	return &NoteHandler{library: library, logger: logger}
}

// GetNotes lists notes, optionally filtered to one book via ?bookId=.
func (h *NoteHandler) GetNotes(w http.ResponseWriter, r *http.Request) {
	notes := h.library.Snapshot().Notes

	if bookID := r.URL.Query().Get("bookId"); bookID != "" {
		filtered := make([]domain.Note, 0, len(notes))
		for _, n := range notes {
			if n.BookID == bookID {
				filtered = append(filtered, n)
			}
		}
		notes = filtered
	}

	writeJSON(w, http.StatusOK, notes)
}

// CreateNote attaches a quote or thought to an existing book.
func (h *NoteHandler) CreateNote(w http.ResponseWriter, r *http.Request) {
	var body struct {
		BookID        string          `json:"bookId"`
		Type          domain.NoteType `json:"type"`
		Content       string          `json:"content"`
		PageReference string          `json:"pageReference"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	note, err := h.library.AddNote(r.Context(), body.BookID, body.Type, body.Content, body.PageReference)
	if err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, note)
}

// DeleteNote removes one note.
func (h *NoteHandler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := h.library.RemoveNote(r.Context(), id); err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
