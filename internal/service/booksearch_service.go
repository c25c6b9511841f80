package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"digital-garden/internal/domain"
	apperrors "digital-garden/pkg/errors"
)

const googleBooksBaseURL = "https://www.googleapis.com/books/v1/volumes"

// GoogleBooksService queries the Google Books volumes API for catalog search
// and import enrichment.
type GoogleBooksService struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     domain.Logger
}

func NewGoogleBooksService(apiKey string, logger domain.Logger) *GoogleBooksService {
	return &GoogleBooksService{
		baseURL:    googleBooksBaseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     logger,
	}
}

// NewGoogleBooksServiceWithBaseURL exists for tests that point the client at
// a local server.
func NewGoogleBooksServiceWithBaseURL(baseURL, apiKey string, logger domain.Logger) *GoogleBooksService {
	s := NewGoogleBooksService(apiKey, logger)
	s.baseURL = baseURL
	return s
}

type googleVolumesResponse struct {
	Items []googleVolume `json:"items"`
}

type googleVolume struct {
	ID         string `json:"id"`
	VolumeInfo struct {
		Title               string   `json:"title"`
		Authors             []string `json:"authors"`
		Description         string   `json:"description"`
		PageCount           int      `json:"pageCount"`
		Categories          []string `json:"categories"`
		PublishedDate       string   `json:"publishedDate"`
		ImageLinks          struct {
			Thumbnail string `json:"thumbnail"`
		} `json:"imageLinks"`
		IndustryIdentifiers []struct {
			Type       string `json:"type"`
			Identifier string `json:"identifier"`
		} `json:"industryIdentifiers"`
	} `json:"volumeInfo"`
}

// Search runs a free-text query against the volumes endpoint.
func (s *GoogleBooksService) Search(ctx context.Context, query string, limit int) ([]domain.BookSearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []domain.BookSearchResult{}, nil
	}
	if limit <= 0 || limit > 40 {
		limit = 20
	}

	volumes, err := s.fetchVolumes(ctx, query, limit)
	if err != nil {
		return nil, err
	}

	results := make([]domain.BookSearchResult, 0, len(volumes))
	for _, v := range volumes {
		results = append(results, volumeToResult(v))
	}
	return results, nil
}

// Lookup finds the best candidate for a known work. An ISBN is the strongest
// signal, so it is tried first; a miss falls back to a title/author query.
func (s *GoogleBooksService) Lookup(ctx context.Context, title, author, isbn string) (*domain.BookSearchResult, error) {
	if isbn != "" {
		volumes, err := s.fetchVolumes(ctx, "isbn:"+isbn, 1)
		if err != nil {
			return nil, err
		}
		if len(volumes) > 0 {
			result := volumeToResult(volumes[0])
			return &result, nil
		}
	}

	if title == "" {
		return nil, nil
	}
	query := "intitle:" + title
	if author != "" {
		query += " inauthor:" + author
	}
	volumes, err := s.fetchVolumes(ctx, query, 1)
	if err != nil {
		return nil, err
	}
	if len(volumes) == 0 {
		return nil, nil
	}
	result := volumeToResult(volumes[0])
	return &result, nil
}

func (s *GoogleBooksService) fetchVolumes(ctx context.Context, query string, limit int) ([]googleVolume, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("maxResults", strconv.Itoa(limit))
	if s.apiKey != "" {
		params.Set("key", s.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build search request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.NewNetworkError("book search request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.NewNetworkError(fmt.Sprintf("book search returned status %d", resp.StatusCode), nil)
	}

	var parsed googleVolumesResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}
	return parsed.Items, nil
}

func volumeToResult(v googleVolume) domain.BookSearchResult {
	info := v.VolumeInfo

	author := ""
	if len(info.Authors) > 0 {
		author = strings.Join(info.Authors, ", ")
	}

	isbn := ""
	for _, id := range info.IndustryIdentifiers {
		if id.Type == "ISBN_13" {
			isbn = id.Identifier
			break
		}
		if id.Type == "ISBN_10" && isbn == "" {
			isbn = id.Identifier
		}
	}

	year := info.PublishedDate
	if len(year) > 4 {
		year = year[:4]
	}

	return domain.BookSearchResult{
		GoogleID:      v.ID,
		Title:         info.Title,
		Author:        author,
		CoverURL:      cleanCoverURL(info.ImageLinks.Thumbnail),
		PageCount:     info.PageCount,
		Description:   info.Description,
		Categories:    info.Categories,
		PublishedYear: year,
		ISBN:          isbn,
	}
}

// cleanCoverURL upgrades the thumbnail link to https and strips the zoom and
// page-curl artifacts Google embeds in it.
func cleanCoverURL(raw string) string {
	if raw == "" {
		return ""
	}
	cleaned := strings.Replace(raw, "http://", "https://", 1)
	cleaned = strings.ReplaceAll(cleaned, "&zoom=1", "")
	cleaned = strings.ReplaceAll(cleaned, "&edge=curl", "")
	return cleaned
}
