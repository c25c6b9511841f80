package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"digital-garden/internal/domain"
	"digital-garden/internal/store"
	"digital-garden/pkg/retry"
)

// newGuestLibrary builds a store with no session; local mutations never
// touch the remote repositories.
func newGuestLibrary() *store.Library {
	return store.New(store.Deps{
		Logger: NewMockHandlerLogger(),
		Retry:  retry.Policy{MaxAttempts: 3, InitialInterval: time.Millisecond},
	})
}

type mockAuthService struct {
	identity *domain.Identity
}

func (m *mockAuthService) ValidateToken(token string) (*domain.Identity, error) {
	if token == "valid-token" && m.identity != nil {
		return m.identity, nil
	}
	return nil, errors.New("invalid token")
}

type mockSearchService struct {
	results   []domain.BookSearchResult
	searchErr error
	lastQuery string
	lastLimit int
}

func (m *mockSearchService) Search(ctx context.Context, query string, limit int) ([]domain.BookSearchResult, error) {
	m.lastQuery = query
	m.lastLimit = limit
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	return m.results, nil
}

func (m *mockSearchService) Lookup(ctx context.Context, title, author, isbn string) (*domain.BookSearchResult, error) {
	return nil, nil
}

func createContextWithIdentity(r *http.Request, identity *domain.Identity) *http.Request {
	ctx := context.WithValue(r.Context(), identityContextKey, identity)
	return r.WithContext(ctx)
}

func createContextWithToken(r *http.Request, token string) *http.Request {
	ctx := context.WithValue(r.Context(), tokenContextKey, token)
	return r.WithContext(ctx)
}
