package service

import (
	"context"
	"errors"
	"sync"

	"digital-garden/internal/domain"
	"digital-garden/internal/store"

	"github.com/supabase-community/supabase-go"
)

type mockLogger struct{}

func (l *mockLogger) Info(msg string, fields ...interface{})             {}
func (l *mockLogger) Error(msg string, err error, fields ...interface{}) {}
func (l *mockLogger) Debug(msg string, fields ...interface{})            {}
func (l *mockLogger) Warn(msg string, fields ...interface{})             {}

type mockSupabaseClient struct {
	mu            sync.Mutex
	validateCalls int
}

func (m *mockSupabaseClient) Initialize() error {
	return nil
}

func (m *mockSupabaseClient) ValidateToken(token string) (*domain.Identity, error) {
	m.mu.Lock()
	m.validateCalls++
	m.mu.Unlock()

	if token == "valid-token" {
		return &domain.Identity{ID: "user-123", Email: "test@example.com"}, nil
	}
	return nil, errors.New("invalid token")
}

func (m *mockSupabaseClient) DB() *supabase.Client {
	return nil
}

func (m *mockSupabaseClient) GetClientWithToken(token string) (*supabase.Client, error) {
	return nil, nil
}

type mockSearchService struct {
	results    map[string]*domain.BookSearchResult // keyed by isbn or title
	lookupErr  error
	lookupCall int
}

func (m *mockSearchService) Search(ctx context.Context, query string, limit int) ([]domain.BookSearchResult, error) {
	return nil, nil
}

func (m *mockSearchService) Lookup(ctx context.Context, title, author, isbn string) (*domain.BookSearchResult, error) {
	m.lookupCall++
	if m.lookupErr != nil {
		return nil, m.lookupErr
	}
	if r, ok := m.results[isbn]; ok {
		return r, nil
	}
	if r, ok := m.results[title]; ok {
		return r, nil
	}
	return nil, nil
}

type mockLibrary struct {
	mu      sync.Mutex
	books   []domain.Book
	addErrs map[string]error // by title
	added   []domain.Book
}

func (m *mockLibrary) Snapshot() store.Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return store.Snapshot{Books: append([]domain.Book{}, m.books...)}
}

func (m *mockLibrary) AddBook(ctx context.Context, book domain.Book) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.addErrs[book.Title]; ok {
		return err
	}
	m.added = append(m.added, book)
	m.books = append(m.books, book)
	return nil
}
