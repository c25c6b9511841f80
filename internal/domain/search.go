package domain

import "context"

// BookSearchResult is one candidate returned by the book search/enrichment
// provider for a catalog query.
type BookSearchResult struct {
	GoogleID      string   `json:"googleId"`
	Title         string   `json:"title"`
	Author        string   `json:"author"`
	CoverURL      string   `json:"coverUrl"`
	PageCount     int      `json:"pageCount"`
	Description   string   `json:"description,omitempty"`
	Categories    []string `json:"categories,omitempty"`
	PublishedYear string   `json:"publishedYear,omitempty"`
	ISBN          string   `json:"isbn,omitempty"`
}

// BookSearchService is the external search/enrichment capability consumed by
// the import and search surfaces. The core store never calls it.
type BookSearchService interface {
	Search(ctx context.Context, query string, limit int) ([]BookSearchResult, error)
	// Lookup finds the best candidate for a known work, preferring the ISBN
	// when present and falling back to a title/author query.
	Lookup(ctx context.Context, title, author, isbn string) (*BookSearchResult, error)
}
