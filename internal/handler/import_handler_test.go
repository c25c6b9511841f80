package handler

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"digital-garden/internal/service"
)

const importFixture = `Title,Author,ISBN,ISBN13,My Rating,Number of Pages,Exclusive Shelf,Bookshelves,Date Read,Date Added
"Dune","Frank Herbert",,,5,412,read,"sci-fi",2024/03/15,2024/01/02
"Piranesi","Susanna Clarke",,,0,272,to-read,,,2024/02/10
`

func TestImportHandler_RawCSVBody(t *testing.T) {
	library := newGuestLibrary()
	importService := service.NewImportService(library, nil, NewMockHandlerLogger())
	handler := NewImportHandler(importService, NewMockHandlerLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/import", strings.NewReader(importFixture))
	req.Header.Set("Content-Type", "text/csv")
	rr := httptest.NewRecorder()
	handler.ImportCSV(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rr.Code, rr.Body.String())
	}
	var report service.ImportReport
	if err := json.Unmarshal(rr.Body.Bytes(), &report); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if report.Parsed != 2 || report.Imported != 2 {
		t.Fatalf("unexpected report: %+v", report)
	}
	if len(library.Snapshot().Books) != 2 {
		t.Fatalf("expected 2 books imported, got %d", len(library.Snapshot().Books))
	}
}

func TestImportHandler_MultipartUpload(t *testing.T) {
	library := newGuestLibrary()
	importService := service.NewImportService(library, nil, NewMockHandlerLogger())
	handler := NewImportHandler(importService, NewMockHandlerLogger())

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", "goodreads_library_export.csv")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := part.Write([]byte(importFixture)); err != nil {
		t.Fatal(err)
	}
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/import", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rr := httptest.NewRecorder()
	handler.ImportCSV(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rr.Code, rr.Body.String())
	}
	if len(library.Snapshot().Books) != 2 {
		t.Fatalf("expected 2 books imported, got %d", len(library.Snapshot().Books))
	}
}

func TestImportHandler_MultipartMissingFile(t *testing.T) {
	importService := service.NewImportService(newGuestLibrary(), nil, NewMockHandlerLogger())
	handler := NewImportHandler(importService, NewMockHandlerLogger())

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	writer.WriteField("other", "value")
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/import", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rr := httptest.NewRecorder()
	handler.ImportCSV(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rr.Code)
	}
}
