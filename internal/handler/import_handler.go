package handler

import (
	"io"
	"net/http"
	"strings"

	"digital-garden/internal/domain"
	"digital-garden/internal/service"
)

const maxImportSize = 20 << 20 // 20MB, Goodreads exports are far smaller

// ImportHandler accepts Goodreads CSV exports.
type ImportHandler struct {
	importService *service.ImportService
	logger        domain.Logger
}

// NewImportHandler creates a new import handler
func NewImportHandler(importService *service.ImportService, logger domain.Logger) *ImportHandler {
	return &ImportHandler{importService: importService, logger: logger}
}

// ImportCSV runs an import from either a multipart "file" field or a raw
// CSV request body.
func (h *ImportHandler) ImportCSV(w http.ResponseWriter, r *http.Request) {
	reader, cleanup, err := h.csvReader(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	defer cleanup()

	report, err := h.importService.Import(r.Context(), reader, func(title string, done, total int) {
		if title != "" {
			h.logger.Debug("Importing book", "title", title, "done", done, "total", total)
		}
	})
	if err != nil {
		if report != nil {
			// The run was cut short; report what did land.
			writeJSON(w, http.StatusOK, report)
			return
		}
		writeError(w, statusForError(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, report)
}

func (h *ImportHandler) csvReader(r *http.Request) (io.Reader, func(), error) {
	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		if err := r.ParseMultipartForm(maxImportSize); err != nil {
			return nil, func() {}, err
		}
		file, _, err := r.FormFile("file")
		if err != nil {
			return nil, func() {}, err
		}
		return file, func() { file.Close() }, nil
	}
	return http.MaxBytesReader(nil, r.Body, maxImportSize), func() {}, nil
}
