package handler

import (
	"net/http"
	"strconv"

	"digital-garden/internal/domain"
)

// SearchHandler exposes the external book catalog search.
type SearchHandler struct {
	searchService domain.BookSearchService
	logger        domain.Logger
}

// NewSearchHandler creates a new search handler
func NewSearchHandler(searchService domain.BookSearchService, logger domain.Logger) *SearchHandler {
	return &SearchHandler{searchService: searchService, logger: logger}
}

// Search runs a free-text catalog query: GET /search?q=...&limit=...
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		writeError(w, http.StatusBadRequest, "Query parameter 'q' is required")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, _ = strconv.Atoi(raw)
	}

	results, err := h.searchService.Search(r.Context(), query, limit)
	if err != nil {
		h.logger.Error("Book search failed", err, "query", query)
		writeError(w, statusForError(err), "Book search failed")
		return
	}
	if results == nil {
		results = []domain.BookSearchResult{}
	}
	writeJSON(w, http.StatusOK, results)
}
