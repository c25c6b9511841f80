package service

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"
	"strings"
	"time"

	"digital-garden/internal/domain"
	"digital-garden/internal/store"
	apperrors "digital-garden/pkg/errors"

	"github.com/google/uuid"
)

// goodreadsInternalShelves are state shelves, not genres; they never become tags.
var goodreadsInternalShelves = map[string]bool{
	"to-read":           true,
	"currently-reading": true,
	"read":              true,
	"favorites":         true,
	"owned":             true,
}

// genreBlocklist filters out category words too generic to be useful tags.
var genreBlocklist = map[string]bool{
	"fiction":    true,
	"general":    true,
	"books":      true,
	"literature": true,
	"novels":     true,
	"stories":    true,
	"literary":   true,
}

// libraryStore is the slice of the store the importer needs.
type libraryStore interface {
	Snapshot() store.Snapshot
	AddBook(ctx context.Context, book domain.Book) error
}

// ImportProgress reports one processed item to the caller.
type ImportProgress func(title string, done, total int)

// ImportReport summarizes one import run.
type ImportReport struct {
	Parsed   int `json:"parsed"`
	Skipped  int `json:"skipped"` // duplicates already in the library
	Imported int `json:"imported"`
	Failed   int `json:"failed"`
}

// ImportService turns a Goodreads CSV export into library books, enriching
// each one through the book search provider when available.
type ImportService struct {
	library  libraryStore
	search   domain.BookSearchService
	logger   domain.Logger
	throttle time.Duration
}

func NewImportService(
	library libraryStore,
	search domain.BookSearchService,
	logger domain.Logger,
) *ImportService {
	return &ImportService{
		library: library,
		search:  search,
		logger:  logger,
		// Spaces out enrichment lookups so a large export does not get
		// rate limited by the search provider.
		throttle: 250 * time.Millisecond,
	}
}

// Import parses the export and adds every book not already in the library,
// one at a time. A failed item is logged and skipped; the rest of the queue
// keeps going.
func (s *ImportService) Import(ctx context.Context, r io.Reader, progress ImportProgress) (*ImportReport, error) {
	parsed, err := ParseGoodreadsCSV(r)
	if err != nil {
		return nil, err
	}

	report := &ImportReport{Parsed: len(parsed)}

	existing := s.library.Snapshot().Books
	toAdd := make([]domain.Book, 0, len(parsed))
	for _, b := range parsed {
		if hasExactCopy(existing, b.Title, b.Author) {
			report.Skipped++
			continue
		}
		toAdd = append(toAdd, b)
	}

	s.logger.Info("Starting CSV import", "parsed", report.Parsed, "new", len(toAdd))

	for i, b := range toAdd {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if progress != nil {
			progress(b.Title, i, len(toAdd))
		}

		book := s.enrich(ctx, b)
		book.ID = uuid.NewString()

		if err := s.library.AddBook(ctx, book); err != nil {
			s.logger.Error("Failed to import book, continuing", err, "title", b.Title)
			report.Failed++
		} else {
			report.Imported++
		}

		if s.throttle > 0 && i < len(toAdd)-1 {
			select {
			case <-time.After(s.throttle):
			case <-ctx.Done():
				return report, ctx.Err()
			}
		}
	}

	if progress != nil {
		progress("", len(toAdd), len(toAdd))
	}
	return report, nil
}

// enrich fills in cover, description, and missing metadata from the search
// provider. Any lookup failure leaves the CSV data as-is.
func (s *ImportService) enrich(ctx context.Context, book domain.Book) domain.Book {
	if s.search == nil {
		return book
	}

	found, err := s.search.Lookup(ctx, book.Title, book.Author, book.ISBN)
	if err != nil {
		s.logger.Warn("Enrichment lookup failed", "title", book.Title, "error", err)
		return book
	}
	if found == nil {
		return book
	}

	if found.Title != "" {
		book.Title = found.Title
	}
	if found.Author != "" {
		book.Author = found.Author
	}
	book.CoverURL = found.CoverURL
	book.Description = found.Description
	book.GoogleID = found.GoogleID
	if book.PageCount == 0 {
		book.PageCount = found.PageCount
	}
	if len(book.Tags) == 0 {
		book.Tags = refineGenres(found.Categories)
	}
	return book
}

func hasExactCopy(books []domain.Book, title, author string) bool {
	for _, b := range books {
		if b.Title == title && b.Author == author {
			return true
		}
	}
	return false
}

// ParseGoodreadsCSV reads a Goodreads library export. Rows come back in
// reverse file order so the oldest entries are added first.
func ParseGoodreadsCSV(r io.Reader) ([]domain.Book, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, apperrors.NewValidationError("failed to parse csv", err.Error())
	}
	if len(records) < 2 {
		return []domain.Book{}, nil
	}

	headerIdx := map[string]int{}
	for i, h := range records[0] {
		headerIdx[strings.TrimSpace(cleanField(h))] = i
	}

	getVal := func(row []string, col string) string {
		i, ok := headerIdx[col]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(cleanField(row[i]))
	}

	var books []domain.Book
	for _, row := range records[1:] {
		if len(row) < len(records[0]) {
			continue // malformed line
		}

		title := getVal(row, "Title")
		if title == "" {
			continue
		}
		author := getVal(row, "Author")

		status := domain.StatusTBR
		switch getVal(row, "Exclusive Shelf") {
		case "read":
			status = domain.StatusFinished
		case "currently-reading":
			status = domain.StatusReading
		}

		rating, _ := strconv.Atoi(getVal(row, "My Rating"))
		pageCount, _ := strconv.Atoi(getVal(row, "Number of Pages"))

		// Goodreads wraps ISBNs in Excel artifacts like ="978...".
		isbn := stripISBNArtifacts(getVal(row, "ISBN13"))
		if isbn == "" {
			isbn = stripISBNArtifacts(getVal(row, "ISBN"))
		}

		var tags []string
		if raw := getVal(row, "Bookshelves"); raw != "" {
			for _, shelf := range strings.Split(raw, ",") {
				shelf = strings.TrimSpace(shelf)
				if shelf != "" && !goodreadsInternalShelves[strings.ToLower(shelf)] {
					tags = append(tags, shelf)
				}
			}
		}

		progress := 0
		if status == domain.StatusFinished {
			progress = pageCount
		}

		book := domain.Book{
			Title:     title,
			Author:    author,
			ISBN:      isbn,
			PageCount: pageCount,
			Status:    status,
			Progress:  progress,
			Rating:    rating,
			Tags:      tags,
		}
		book.DateFinished = parseGoodreadsDate(getVal(row, "Date Read"))
		// Goodreads has no start date; the added date is the closest signal.
		book.DateStarted = parseGoodreadsDate(getVal(row, "Date Added"))

		books = append(books, book)
	}

	// Goodreads exports newest first.
	for i, j := 0, len(books)-1; i < j; i, j = i+1, j-1 {
		books[i], books[j] = books[j], books[i]
	}
	return books, nil
}

// refineGenres flattens "Fiction / Fantasy / Epic" style categories and drops
// words too generic to tell books apart.
func refineGenres(categories []string) []string {
	if len(categories) == 0 {
		return nil
	}

	seen := map[string]bool{}
	var refined []string
	for _, cat := range categories {
		for _, part := range strings.Split(cat, "/") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			lower := strings.ToLower(part)
			if genreBlocklist[lower] || seen[lower] {
				continue
			}
			seen[lower] = true
			refined = append(refined, strings.ToUpper(part[:1])+part[1:])
		}
	}

	// Everything was generic: keep a bare "Fiction" rather than nothing.
	if len(refined) == 0 {
		for _, cat := range categories {
			if strings.Contains(strings.ToLower(cat), "fiction") {
				return []string{"Fiction"}
			}
		}
	}
	return refined
}

func cleanField(field string) string {
	if strings.HasPrefix(field, `="`) && strings.HasSuffix(field, `"`) {
		return field[2 : len(field)-1]
	}
	return field
}

func stripISBNArtifacts(raw string) string {
	return strings.NewReplacer("=", "", `"`, "").Replace(raw)
}

func parseGoodreadsDate(raw string) *time.Time {
	if raw == "" {
		return nil
	}
	for _, layout := range []string{"2006/01/02", "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t
		}
	}
	return nil
}
