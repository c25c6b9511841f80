package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"digital-garden/internal/domain"

	"github.com/gorilla/mux"
)

func TestNoteHandler_CreateNote_OK(t *testing.T) {
	library := newGuestLibrary()
	addTestBook(t, library, "b1", "Dune", 412)
	handler := NewNoteHandler(library, NewMockHandlerLogger())

	body := strings.NewReader(`{"bookId":"b1","type":"quote","content":"Fear is the mind-killer.","pageReference":"p. 12"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/notes", body)
	rr := httptest.NewRecorder()
	handler.CreateNote(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, rr.Code, rr.Body.String())
	}
	var note domain.Note
	if err := json.Unmarshal(rr.Body.Bytes(), &note); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if note.ID == "" || note.CreatedAt.IsZero() {
		t.Fatalf("expected a generated id and timestamp, got %+v", note)
	}
	if note.Type != domain.NoteQuote || note.PageReference != "p. 12" {
		t.Fatalf("unexpected note: %+v", note)
	}
}

func TestNoteHandler_CreateNote_UnknownBook(t *testing.T) {
	handler := NewNoteHandler(newGuestLibrary(), NewMockHandlerLogger())

	body := strings.NewReader(`{"bookId":"ghost","type":"thought","content":"orphan"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/notes", body)
	rr := httptest.NewRecorder()
	handler.CreateNote(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, rr.Code)
	}
}

func TestNoteHandler_CreateNote_BadType(t *testing.T) {
	library := newGuestLibrary()
	addTestBook(t, library, "b1", "Dune", 412)
	handler := NewNoteHandler(library, NewMockHandlerLogger())

	body := strings.NewReader(`{"bookId":"b1","type":"haiku","content":"x"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/notes", body)
	rr := httptest.NewRecorder()
	handler.CreateNote(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rr.Code)
	}
}

func TestNoteHandler_GetNotes_FilterByBook(t *testing.T) {
	library := newGuestLibrary()
	addTestBook(t, library, "b1", "Dune", 412)
	addTestBook(t, library, "b2", "Piranesi", 272)
	ctx := context.Background()
	if _, err := library.AddNote(ctx, "b1", domain.NoteQuote, "one", ""); err != nil {
		t.Fatal(err)
	}
	if _, err := library.AddNote(ctx, "b2", domain.NoteThought, "two", ""); err != nil {
		t.Fatal(err)
	}
	handler := NewNoteHandler(library, NewMockHandlerLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/notes?bookId=b2", nil)
	rr := httptest.NewRecorder()
	handler.GetNotes(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	var notes []domain.Note
	if err := json.Unmarshal(rr.Body.Bytes(), &notes); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(notes) != 1 || notes[0].BookID != "b2" {
		t.Fatalf("expected only b2 notes, got %+v", notes)
	}
}

func TestNoteHandler_DeleteNote(t *testing.T) {
	library := newGuestLibrary()
	addTestBook(t, library, "b1", "Dune", 412)
	note, err := library.AddNote(context.Background(), "b1", domain.NoteQuote, "x", "")
	if err != nil {
		t.Fatal(err)
	}
	handler := NewNoteHandler(library, NewMockHandlerLogger())

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/notes/"+note.ID, nil)
	req = mux.SetURLVars(req, map[string]string{"id": note.ID})
	rr := httptest.NewRecorder()
	handler.DeleteNote(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	if len(library.Snapshot().Notes) != 0 {
		t.Fatal("expected the note removed")
	}
}
