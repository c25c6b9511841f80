package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"digital-garden/internal/domain"
)

const goodreadsFixture = `Title,Author,ISBN,ISBN13,My Rating,Number of Pages,Exclusive Shelf,Bookshelves,Date Read,Date Added
"Dune","Frank Herbert","=""0441013597""","=""9780441013593""",5,412,read,"sci-fi, favorites, owned",2024/03/15,2024/01/02
"Piranesi","Susanna Clarke",,,0,272,currently-reading,"fantasy",,2024/02/10
"Middlemarch","George Eliot",,,0,880,to-read,,,2024/03/01
broken row
,"No Title",,,0,100,read,,,
`

func newImportService(library *mockLibrary, search domain.BookSearchService) *ImportService {
	s := NewImportService(library, search, &mockLogger{})
	s.throttle = 0
	return s
}

func TestParseGoodreadsCSV(t *testing.T) {
	books, err := ParseGoodreadsCSV(strings.NewReader(goodreadsFixture))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	// Malformed and untitled rows are dropped; order is reversed.
	if len(books) != 3 {
		t.Fatalf("Expected 3 books, got %d", len(books))
	}
	if books[0].Title != "Middlemarch" || books[2].Title != "Dune" {
		t.Fatalf("Expected reversed order, got %q first and %q last", books[0].Title, books[2].Title)
	}

	dune := books[2]
	if dune.Author != "Frank Herbert" || dune.Rating != 5 || dune.PageCount != 412 {
		t.Errorf("Unexpected Dune fields: %+v", dune)
	}
	if dune.Status != domain.StatusFinished {
		t.Errorf("Expected the read shelf to map to finished, got %s", dune.Status)
	}
	if dune.Progress != 412 {
		t.Errorf("A finished import carries full progress, got %d", dune.Progress)
	}
	if dune.ISBN != "9780441013593" {
		t.Errorf("Expected the ISBN13 with Excel artifacts stripped, got %q", dune.ISBN)
	}
	if len(dune.Tags) != 1 || dune.Tags[0] != "sci-fi" {
		t.Errorf("Internal shelves must not become tags, got %v", dune.Tags)
	}
	if dune.DateFinished == nil || dune.DateFinished.Year() != 2024 {
		t.Errorf("Expected the read date parsed, got %v", dune.DateFinished)
	}

	piranesi := books[1]
	if piranesi.Status != domain.StatusReading {
		t.Errorf("Expected currently-reading to map to reading, got %s", piranesi.Status)
	}
	if piranesi.ISBN != "" || piranesi.DateFinished != nil {
		t.Errorf("Missing fields must stay empty: %+v", piranesi)
	}
}

func TestParseGoodreadsCSV_Empty(t *testing.T) {
	books, err := ParseGoodreadsCSV(strings.NewReader("Title,Author\n"))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(books) != 0 {
		t.Errorf("Expected no books from a header-only file, got %d", len(books))
	}
}

func TestImport_SkipsExactDuplicates(t *testing.T) {
	library := &mockLibrary{
		books: []domain.Book{{ID: "b1", Title: "Dune", Author: "Frank Herbert"}},
	}
	service := newImportService(library, nil)

	report, err := service.Import(context.Background(), strings.NewReader(goodreadsFixture), nil)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if report.Parsed != 3 || report.Skipped != 1 || report.Imported != 2 {
		t.Fatalf("Unexpected report: %+v", report)
	}
	for _, b := range library.added {
		if b.Title == "Dune" {
			t.Error("The duplicate must not be re-added")
		}
	}
}

func TestImport_ContinuesPastFailures(t *testing.T) {
	library := &mockLibrary{
		addErrs: map[string]error{"Piranesi": errors.New("remote down")},
	}
	service := newImportService(library, nil)

	report, err := service.Import(context.Background(), strings.NewReader(goodreadsFixture), nil)
	if err != nil {
		t.Fatalf("A per-item failure must not abort the run, got %v", err)
	}
	if report.Failed != 1 || report.Imported != 2 {
		t.Fatalf("Unexpected report: %+v", report)
	}
}

func TestImport_EnrichesFromSearch(t *testing.T) {
	library := &mockLibrary{}
	search := &mockSearchService{
		results: map[string]*domain.BookSearchResult{
			"9780441013593": {
				GoogleID:    "abc123",
				Title:       "Dune",
				Author:      "Frank Herbert",
				CoverURL:    "https://books.google.com/cover",
				Description: "A desert planet.",
				Categories:  []string{"Fiction / Science Fiction"},
			},
		},
	}
	service := newImportService(library, search)

	if _, err := service.Import(context.Background(), strings.NewReader(goodreadsFixture), nil); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	var dune *domain.Book
	for i := range library.added {
		if library.added[i].Title == "Dune" {
			dune = &library.added[i]
		}
	}
	if dune == nil {
		t.Fatal("Expected Dune to be imported")
	}
	if dune.CoverURL != "https://books.google.com/cover" || dune.GoogleID != "abc123" {
		t.Errorf("Expected enrichment applied: %+v", dune)
	}
	if dune.Description != "A desert planet." {
		t.Errorf("Expected description from the lookup, got %q", dune.Description)
	}
	// CSV tags win over fetched categories.
	if len(dune.Tags) != 1 || dune.Tags[0] != "sci-fi" {
		t.Errorf("CSV tags must take precedence, got %v", dune.Tags)
	}
	if dune.ID == "" {
		t.Error("Expected a generated id")
	}
}

func TestImport_EnrichmentFailureKeepsCSVData(t *testing.T) {
	library := &mockLibrary{}
	search := &mockSearchService{lookupErr: errors.New("quota exceeded")}
	service := newImportService(library, search)

	report, err := service.Import(context.Background(), strings.NewReader(goodreadsFixture), nil)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if report.Imported != 3 {
		t.Fatalf("A failed lookup must not block the import: %+v", report)
	}
}

func TestImport_ProgressCallback(t *testing.T) {
	library := &mockLibrary{}
	service := newImportService(library, nil)

	var calls int
	var lastDone, lastTotal int
	progress := func(title string, done, total int) {
		calls++
		lastDone, lastTotal = done, total
	}

	if _, err := service.Import(context.Background(), strings.NewReader(goodreadsFixture), progress); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if calls != 4 { // one per item plus the final settle
		t.Errorf("Expected 4 progress calls, got %d", calls)
	}
	if lastDone != 3 || lastTotal != 3 {
		t.Errorf("Expected a final 3/3 report, got %d/%d", lastDone, lastTotal)
	}
}

func TestRefineGenres(t *testing.T) {
	got := refineGenres([]string{"Fiction / Fantasy / Epic", "Fiction / General"})
	if len(got) != 2 || got[0] != "Fantasy" || got[1] != "Epic" {
		t.Errorf("Expected the generic words filtered, got %v", got)
	}

	got = refineGenres([]string{"Fiction / General"})
	if len(got) != 1 || got[0] != "Fiction" {
		t.Errorf("Expected the Fiction fallback when everything is generic, got %v", got)
	}

	if got = refineGenres(nil); got != nil {
		t.Errorf("Expected nil for no categories, got %v", got)
	}
}
