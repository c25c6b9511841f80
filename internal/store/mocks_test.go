package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"digital-garden/internal/domain"
	"digital-garden/pkg/retry"
)

var errRemoteDown = errors.New("remote down")

type mockLogger struct{}

func (l *mockLogger) Info(msg string, fields ...interface{})             {}
func (l *mockLogger) Error(msg string, err error, fields ...interface{}) {}
func (l *mockLogger) Debug(msg string, fields ...interface{})            {}
func (l *mockLogger) Warn(msg string, fields ...interface{})             {}

type mockBookRepo struct {
	mu sync.Mutex

	books []domain.Book

	listErr   error
	insertErr error
	// insertFailures fails this many inserts before succeeding.
	insertFailures int
	updateErr      error
	deleteErr      error

	listCalls       int
	insertCalls     int
	bulkInsertCalls int
	updateCalls     int
	deleteCalls     int

	lastInserted domain.Book
	lastUpdates  domain.BookUpdate
}

func (m *mockBookRepo) ListByUser(ctx context.Context, userID string, token string) ([]domain.Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listCalls++
	if m.listErr != nil {
		return nil, m.listErr
	}
	return append([]domain.Book{}, m.books...), nil
}

func (m *mockBookRepo) Insert(ctx context.Context, userID string, book domain.Book, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.insertCalls++
	if m.insertFailures > 0 {
		m.insertFailures--
		return errRemoteDown
	}
	if m.insertErr != nil {
		return m.insertErr
	}
	m.lastInserted = book
	m.books = append(m.books, book)
	return nil
}

func (m *mockBookRepo) BulkInsert(ctx context.Context, userID string, books []domain.Book, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bulkInsertCalls++
	m.books = append(m.books, books...)
	return nil
}

func (m *mockBookRepo) Update(ctx context.Context, userID string, bookID string, updates domain.BookUpdate, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updateCalls++
	if m.updateErr != nil {
		return m.updateErr
	}
	m.lastUpdates = updates
	for i, b := range m.books {
		if b.ID == bookID {
			m.books[i] = updates.Apply(b)
		}
	}
	return nil
}

func (m *mockBookRepo) Delete(ctx context.Context, userID string, bookID string, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleteCalls++
	if m.deleteErr != nil {
		return m.deleteErr
	}
	kept := m.books[:0]
	for _, b := range m.books {
		if b.ID != bookID {
			kept = append(kept, b)
		}
	}
	m.books = kept
	return nil
}

func (m *mockBookRepo) counts() (inserts, updates, deletes int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.insertCalls, m.updateCalls, m.deleteCalls
}

type mockNoteRepo struct {
	mu sync.Mutex

	notes []domain.Note

	listErr   error
	insertErr error
	deleteErr error

	insertCalls     int
	bulkInsertCalls int
	deleteCalls     int
}

func (m *mockNoteRepo) ListByUser(ctx context.Context, userID string, token string) ([]domain.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	return append([]domain.Note{}, m.notes...), nil
}

func (m *mockNoteRepo) Insert(ctx context.Context, userID string, note domain.Note, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.insertCalls++
	if m.insertErr != nil {
		return m.insertErr
	}
	m.notes = append(m.notes, note)
	return nil
}

func (m *mockNoteRepo) BulkInsert(ctx context.Context, userID string, notes []domain.Note, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bulkInsertCalls++
	m.notes = append(m.notes, notes...)
	return nil
}

func (m *mockNoteRepo) Delete(ctx context.Context, userID string, noteID string, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleteCalls++
	if m.deleteErr != nil {
		return m.deleteErr
	}
	kept := m.notes[:0]
	for _, n := range m.notes {
		if n.ID != noteID {
			kept = append(kept, n)
		}
	}
	m.notes = kept
	return nil
}

type mockProfileRepo struct {
	mu sync.Mutex

	profile *domain.UserUpdate
	getErr  error
	upsErr  error

	upsertCalls int
	lastUpsert  domain.UserUpdate
}

func (m *mockProfileRepo) GetByUser(ctx context.Context, userID string, token string) (*domain.UserUpdate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.profile, nil
}

func (m *mockProfileRepo) Upsert(ctx context.Context, userID string, updates domain.UserUpdate, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.upsertCalls++
	if m.upsErr != nil {
		return m.upsErr
	}
	m.lastUpsert = updates
	return nil
}

type mockSnapshotStore struct {
	mu sync.Mutex

	snapshot *domain.LegacySnapshot
	loadErr  error

	loadCalls   int
	deleteCalls int
}

func (m *mockSnapshotStore) Load() (*domain.LegacySnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loadCalls++
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return m.snapshot, nil
}

func (m *mockSnapshotStore) Delete() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleteCalls++
	m.snapshot = nil
	return nil
}

type testEnv struct {
	library   *Library
	books     *mockBookRepo
	notes     *mockNoteRepo
	profiles  *mockProfileRepo
	snapshots *mockSnapshotStore
}

func newTestEnv() *testEnv {
	books := &mockBookRepo{}
	notes := &mockNoteRepo{}
	profiles := &mockProfileRepo{}
	snapshots := &mockSnapshotStore{}

	library := New(Deps{
		Books:           books,
		Notes:           notes,
		Profiles:        profiles,
		LegacySnapshots: snapshots,
		Logger:          &mockLogger{},
		Retry:           retry.Policy{MaxAttempts: 3, InitialInterval: time.Millisecond},
	})

	return &testEnv{
		library:   library,
		books:     books,
		notes:     notes,
		profiles:  profiles,
		snapshots: snapshots,
	}
}

func (e *testEnv) signIn(id, email string) {
	e.library.mu.Lock()
	e.library.session = &session{identity: domain.Identity{ID: id, Email: email}, token: "token-" + id}
	e.library.mu.Unlock()
}

func (e *testEnv) seedBooks(books ...domain.Book) {
	e.library.mu.Lock()
	e.library.books = append([]domain.Book{}, books...)
	e.library.mu.Unlock()
}

func (e *testEnv) seedNotes(notes ...domain.Note) {
	e.library.mu.Lock()
	e.library.notes = append([]domain.Note{}, notes...)
	e.library.mu.Unlock()
}
