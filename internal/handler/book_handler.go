package handler

import (
	"encoding/json"
	"net/http"

	"digital-garden/internal/domain"
	"digital-garden/internal/store"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// BookHandler handles book-related HTTP requests
type BookHandler struct {
	library *store.Library
	logger  domain.Logger
}

// NewBookHandler creates a new book handler
func NewBookHandler(library *store.Library, logger domain.Logger) *BookHandler {
	return &BookHandler{library: library, logger: logger}
}

// GetBooks returns the whole bookshelf.
func (h *BookHandler) GetBooks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.library.Snapshot().Books)
}

// CreateBook adds a book to the library.
func (h *BookHandler) CreateBook(w http.ResponseWriter, r *http.Request) {
	var book domain.Book
	if err := json.NewDecoder(r.Body).Decode(&book); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if book.ID == "" {
		book.ID = uuid.NewString()
	}

	if err := h.library.AddBook(r.Context(), book); err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}

	for _, b := range h.library.Snapshot().Books {
		if b.ID == book.ID {
			writeJSON(w, http.StatusCreated, b)
			return
		}
	}
	writeJSON(w, http.StatusCreated, book)
}

// UpdateBook applies a partial edit to one book.
func (h *BookHandler) UpdateBook(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var updates domain.BookUpdate
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.library.UpdateBook(r.Context(), id, updates); err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}
	h.writeBook(w, id)
}

// DeleteBook removes a book and every note attached to it.
func (h *BookHandler) DeleteBook(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := h.library.RemoveBook(r.Context(), id); err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// UpdateProgress records the current page of a book.
func (h *BookHandler) UpdateProgress(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var body struct {
		Page int `json:"page"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.library.UpdateProgress(r.Context(), id, body.Page); err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}
	h.writeBook(w, id)
}

// UpdateStatus transitions a book between lifecycle states.
func (h *BookHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var body struct {
		Status domain.BookStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.library.SetBookStatus(r.Context(), id, body.Status); err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}
	h.writeBook(w, id)
}

// DislikeBook records a book in the not-for-me graveyard. The book does not
// have to be in the library.
func (h *BookHandler) DislikeBook(w http.ResponseWriter, r *http.Request) {
	var book domain.Book
	if err := json.NewDecoder(r.Body).Decode(&book); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if book.Title == "" {
		writeError(w, http.StatusBadRequest, "title: is required")
		return
	}

	h.library.MarkAsDisliked(r.Context(), book)
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "recorded"})
}

// SetActiveBook records which book detail view is open; an empty id clears it.
func (h *BookHandler) SetActiveBook(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	h.library.SetActiveBook(body.ID)
	writeJSON(w, http.StatusOK, map[string]string{"activeBookId": body.ID})
}

func (h *BookHandler) writeBook(w http.ResponseWriter, id string) {
	for _, b := range h.library.Snapshot().Books {
		if b.ID == id {
			writeJSON(w, http.StatusOK, b)
			return
		}
	}
	writeError(w, http.StatusNotFound, domain.ErrBookNotFound.Error())
}
