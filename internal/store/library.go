// Package store holds the canonical in-memory library state and the mutation
// pipeline that keeps it in agreement with the cloud. Every mutation follows
// the same template: remote write (retried) first, local replace second.
// Guest sessions skip the remote step entirely.
package store

import (
	"context"
	"sync"
	"time"

	"digital-garden/internal/domain"
	"digital-garden/pkg/retry"

	"github.com/google/uuid"
)

// dislikedReviewMarker tags graveyard rows in the cloud so they can be told
// apart from genuinely abandoned books.
const dislikedReviewMarker = "__disliked__"

// Operation names a mutation of the library.
type Operation string

const (
	OpAddBook        Operation = "addBook"
	OpUpdateBook     Operation = "updateBook"
	OpRemoveBook     Operation = "removeBook"
	OpUpdateProgress Operation = "updateProgress"
	OpSetBookStatus  Operation = "setBookStatus"
	OpAddNote        Operation = "addNote"
	OpRemoveNote     Operation = "removeNote"
	OpUpdateUser     Operation = "updateUser"
	OpMarkAsDisliked Operation = "markAsDisliked"
)

// WritePolicy is the explicit remote/local ordering contract of an operation.
type WritePolicy int

const (
	// WriteRemoteFirst applies the local update only after the remote write
	// succeeded; a remote failure leaves local state untouched.
	WriteRemoteFirst WritePolicy = iota
	// WriteLocalAlways applies the local update regardless of the remote
	// outcome; remote failures are logged, never surfaced.
	WriteLocalAlways
	// WriteFireAndForget applies the local update immediately and issues the
	// remote write in the background without awaiting it.
	WriteFireAndForget
)

var writePolicies = map[Operation]WritePolicy{
	OpAddBook:        WriteRemoteFirst,
	OpUpdateBook:     WriteRemoteFirst,
	OpRemoveBook:     WriteRemoteFirst,
	OpUpdateProgress: WriteRemoteFirst,
	OpSetBookStatus:  WriteRemoteFirst,
	OpAddNote:        WriteRemoteFirst,
	OpRemoveNote:     WriteRemoteFirst,
	OpUpdateUser:     WriteLocalAlways,
	OpMarkAsDisliked: WriteFireAndForget,
}

// PolicyFor returns the write policy of an operation.
func PolicyFor(op Operation) WritePolicy {
	return writePolicies[op]
}

// Snapshot is a full, consistent copy of the library state. Readers never
// observe a half-applied mutation.
type Snapshot struct {
	Books         []domain.Book `json:"books"`
	Notes         []domain.Note `json:"notes"`
	DislikedBooks []domain.Book `json:"dislikedBooks"`
	User          domain.User   `json:"user"`
	ActiveBookID  string        `json:"activeBookId,omitempty"`
	IsLoading     bool          `json:"isLoading"`
}

type session struct {
	identity domain.Identity
	token    string
}

// IdentityResolver turns an access token into an identity; the reconciler
// uses it when the caller did not already resolve one.
type IdentityResolver func(token string) (*domain.Identity, error)

// Deps carries everything a Library needs. The store owns no globals; tests
// construct isolated instances.
type Deps struct {
	Books           domain.BookRepository
	Notes           domain.NoteRepository
	Profiles        domain.ProfileRepository
	LegacySnapshots domain.LegacySnapshotStore
	ResolveIdentity IdentityResolver
	Logger          domain.Logger
	Retry           retry.Policy
}

// Library is the single source of truth for the session's reading data.
type Library struct {
	mu            sync.RWMutex
	books         []domain.Book
	notes         []domain.Note
	dislikedBooks []domain.Book
	user          domain.User
	activeBookID  string
	isLoading     bool
	session       *session

	bookRepo        domain.BookRepository
	noteRepo        domain.NoteRepository
	profileRepo     domain.ProfileRepository
	legacySnapshots domain.LegacySnapshotStore
	resolveIdentity IdentityResolver
	logger          domain.Logger
	retry           retry.Policy

	subMu     sync.Mutex
	subs      map[int]func(Snapshot)
	nextSubID int

	locks      keyedMutex
	rescueMu   sync.Mutex
	background sync.WaitGroup
}

func New(deps Deps) *Library {
	return &Library{
		books:           []domain.Book{},
		notes:           []domain.Note{},
		dislikedBooks:   []domain.Book{},
		user:            domain.GuestUser(),
		bookRepo:        deps.Books,
		noteRepo:        deps.Notes,
		profileRepo:     deps.Profiles,
		legacySnapshots: deps.LegacySnapshots,
		resolveIdentity: deps.ResolveIdentity,
		logger:          deps.Logger,
		retry:           deps.Retry,
		subs:            map[int]func(Snapshot){},
	}
}

// Snapshot returns a consistent copy of the whole state.
func (l *Library) Snapshot() Snapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.snapshotLocked()
}

func (l *Library) snapshotLocked() Snapshot {
	return Snapshot{
		Books:         append([]domain.Book{}, l.books...),
		Notes:         append([]domain.Note{}, l.notes...),
		DislikedBooks: append([]domain.Book{}, l.dislikedBooks...),
		User:          l.user,
		ActiveBookID:  l.activeBookID,
		IsLoading:     l.isLoading,
	}
}

// Subscribe registers a synchronous listener for state changes. The returned
// function removes the subscription.
func (l *Library) Subscribe(fn func(Snapshot)) func() {
	l.subMu.Lock()
	id := l.nextSubID
	l.nextSubID++
	l.subs[id] = fn
	l.subMu.Unlock()

	return func() {
		l.subMu.Lock()
		delete(l.subs, id)
		l.subMu.Unlock()
	}
}

func (l *Library) notify(snap Snapshot) {
	l.subMu.Lock()
	fns := make([]func(Snapshot), 0, len(l.subs))
	for _, fn := range l.subs {
		fns = append(fns, fn)
	}
	l.subMu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}

// Reset restores the guest default state and forgets the session. Used on
// sign-out and for test isolation.
func (l *Library) Reset() {
	l.mu.Lock()
	l.books = []domain.Book{}
	l.notes = []domain.Note{}
	l.dislikedBooks = []domain.Book{}
	l.user = domain.GuestUser()
	l.activeBookID = ""
	l.isLoading = false
	l.session = nil
	snap := l.snapshotLocked()
	l.mu.Unlock()
	l.notify(snap)
}

func (l *Library) currentSession() *session {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.session
}

// Identity returns the signed-in identity, or nil in guest mode.
func (l *Library) Identity() *domain.Identity {
	sess := l.currentSession()
	if sess == nil {
		return nil
	}
	ident := sess.identity
	return &ident
}

// AddBook inserts a book at the front of the library. The caller assigns the
// id; an empty id gets a generated one. With a signed-in session the cloud
// insert must succeed (after retries) before local state changes, so a failed
// add never leaves a phantom book.
func (l *Library) AddBook(ctx context.Context, book domain.Book) error {
	if book.Title == "" {
		return &domain.ValidationError{Field: "title", Message: "is required"}
	}
	if book.ID == "" {
		book.ID = uuid.NewString()
	}
	if book.Status == "" {
		book.Status = domain.StatusTBR
	}
	if book.Tags == nil {
		book.Tags = []string{}
	}

	unlock := l.locks.lock("book:" + book.ID)
	defer unlock()

	if sess := l.currentSession(); sess != nil {
		err := l.retry.Do(ctx, func() error {
			return l.bookRepo.Insert(ctx, sess.identity.ID, book, sess.token)
		})
		if err != nil {
			l.logger.Error("Failed to save book to cloud", err, "book_id", book.ID, "title", book.Title)
			return err
		}
	}

	l.mu.Lock()
	l.books = append([]domain.Book{book}, l.books...)
	snap := l.snapshotLocked()
	l.mu.Unlock()
	l.notify(snap)

	l.logger.Info("Book added", "book_id", book.ID, "title", book.Title)
	return nil
}

// UpdateBook patches the book with the given id. Only the non-nil fields of
// the patch reach the cloud row and the local copy.
func (l *Library) UpdateBook(ctx context.Context, id string, updates domain.BookUpdate) error {
	return l.patchBook(ctx, id, func(domain.Book) domain.BookUpdate {
		return updates
	})
}

// UpdateProgress records the current page, transitioning a to-be-read book
// into reading (with a start date) the first time any progress appears.
func (l *Library) UpdateProgress(ctx context.Context, id string, page int) error {
	return l.patchBook(ctx, id, func(book domain.Book) domain.BookUpdate {
		updates := domain.BookUpdate{Progress: &page}
		if page > 0 && book.Status == domain.StatusTBR {
			status := domain.StatusReading
			now := time.Now().UTC()
			updates.Status = &status
			updates.DateStarted = &now
		}
		return updates
	})
}

// SetBookStatus transitions the book's lifecycle state. Entering reading
// stamps the start date if unset; entering finished stamps the finish date if
// unset and forces progress to the full page count.
func (l *Library) SetBookStatus(ctx context.Context, id string, status domain.BookStatus) error {
	if !domain.ValidStatus(status) {
		return &domain.ValidationError{Field: "status", Message: "unknown status"}
	}
	return l.patchBook(ctx, id, func(book domain.Book) domain.BookUpdate {
		updates := domain.BookUpdate{Status: &status}
		now := time.Now().UTC()
		if status == domain.StatusReading && book.DateStarted == nil {
			updates.DateStarted = &now
		}
		if status == domain.StatusFinished && book.DateFinished == nil {
			updates.DateFinished = &now
			progress := book.PageCount
			updates.Progress = &progress
		}
		return updates
	})
}

// patchBook serializes all mutations to one book id: the entity lock is held
// from the read that computes the patch until the local apply, so two
// concurrent updates to the same book cannot lose each other's write.
func (l *Library) patchBook(ctx context.Context, id string, compute func(domain.Book) domain.BookUpdate) error {
	unlock := l.locks.lock("book:" + id)
	defer unlock()

	l.mu.RLock()
	book, ok := findBook(l.books, id)
	l.mu.RUnlock()
	if !ok {
		return domain.ErrBookNotFound
	}

	updates := compute(book)

	if sess := l.currentSession(); sess != nil {
		err := l.retry.Do(ctx, func() error {
			return l.bookRepo.Update(ctx, sess.identity.ID, id, updates, sess.token)
		})
		if err != nil {
			l.logger.Error("Failed to update book in cloud", err, "book_id", id)
			return err
		}
	}

	l.mu.Lock()
	next := make([]domain.Book, len(l.books))
	for i, b := range l.books {
		if b.ID == id {
			next[i] = updates.Apply(b)
		} else {
			next[i] = b
		}
	}
	l.books = next
	snap := l.snapshotLocked()
	l.mu.Unlock()
	l.notify(snap)
	return nil
}

// RemoveBook deletes the book and cascades to every note referencing it.
func (l *Library) RemoveBook(ctx context.Context, id string) error {
	unlock := l.locks.lock("book:" + id)
	defer unlock()

	l.mu.RLock()
	_, ok := findBook(l.books, id)
	l.mu.RUnlock()
	if !ok {
		return domain.ErrBookNotFound
	}

	if sess := l.currentSession(); sess != nil {
		err := l.retry.Do(ctx, func() error {
			return l.bookRepo.Delete(ctx, sess.identity.ID, id, sess.token)
		})
		if err != nil {
			l.logger.Error("Failed to delete book from cloud", err, "book_id", id)
			return err
		}
	}

	l.mu.Lock()
	books := make([]domain.Book, 0, len(l.books))
	for _, b := range l.books {
		if b.ID != id {
			books = append(books, b)
		}
	}
	notes := make([]domain.Note, 0, len(l.notes))
	for _, n := range l.notes {
		if n.BookID != id {
			notes = append(notes, n)
		}
	}
	l.books = books
	l.notes = notes
	if l.activeBookID == id {
		l.activeBookID = ""
	}
	snap := l.snapshotLocked()
	l.mu.Unlock()
	l.notify(snap)

	l.logger.Info("Book removed", "book_id", id)
	return nil
}

// AddNote creates an immutable note attached to an existing book. The id and
// creation timestamp are assigned here, never by the caller.
func (l *Library) AddNote(ctx context.Context, bookID string, noteType domain.NoteType, content, pageReference string) (*domain.Note, error) {
	if content == "" {
		return nil, &domain.ValidationError{Field: "content", Message: "is required"}
	}
	if noteType != domain.NoteQuote && noteType != domain.NoteThought {
		return nil, &domain.ValidationError{Field: "type", Message: "must be quote or thought"}
	}

	l.mu.RLock()
	_, ok := findBook(l.books, bookID)
	l.mu.RUnlock()
	if !ok {
		return nil, domain.ErrBookNotFound
	}

	note := domain.Note{
		ID:            uuid.NewString(),
		BookID:        bookID,
		Content:       content,
		Type:          noteType,
		PageReference: pageReference,
		CreatedAt:     time.Now().UTC(),
	}

	if sess := l.currentSession(); sess != nil {
		err := l.retry.Do(ctx, func() error {
			return l.noteRepo.Insert(ctx, sess.identity.ID, note, sess.token)
		})
		if err != nil {
			l.logger.Error("Failed to save note to cloud", err, "book_id", bookID)
			return nil, err
		}
	}

	l.mu.Lock()
	l.notes = append([]domain.Note{note}, l.notes...)
	snap := l.snapshotLocked()
	l.mu.Unlock()
	l.notify(snap)
	return &note, nil
}

// RemoveNote deletes a single note.
func (l *Library) RemoveNote(ctx context.Context, id string) error {
	unlock := l.locks.lock("note:" + id)
	defer unlock()

	l.mu.RLock()
	found := false
	for _, n := range l.notes {
		if n.ID == id {
			found = true
			break
		}
	}
	l.mu.RUnlock()
	if !found {
		return domain.ErrNoteNotFound
	}

	if sess := l.currentSession(); sess != nil {
		err := l.retry.Do(ctx, func() error {
			return l.noteRepo.Delete(ctx, sess.identity.ID, id, sess.token)
		})
		if err != nil {
			l.logger.Error("Failed to delete note from cloud", err, "note_id", id)
			return err
		}
	}

	l.mu.Lock()
	notes := make([]domain.Note, 0, len(l.notes))
	for _, n := range l.notes {
		if n.ID != id {
			notes = append(notes, n)
		}
	}
	l.notes = notes
	snap := l.snapshotLocked()
	l.mu.Unlock()
	l.notify(snap)
	return nil
}

// UpdateUser merges a partial profile edit into the in-memory user. Profile
// edits are the one operation family that always lands locally: the cloud
// upsert is attempted first (and retried), but its failure is only logged.
func (l *Library) UpdateUser(ctx context.Context, updates domain.UserUpdate) {
	if sess := l.currentSession(); sess != nil {
		err := l.retry.Do(ctx, func() error {
			return l.profileRepo.Upsert(ctx, sess.identity.ID, updates, sess.token)
		})
		if err != nil {
			l.logger.Error("Failed to persist profile to cloud", err, "user_id", sess.identity.ID)
		}
	}

	l.mu.Lock()
	l.user = updates.Apply(l.user)
	snap := l.snapshotLocked()
	l.mu.Unlock()
	l.notify(snap)
}

// MarkAsDisliked appends the book to the graveyard kept for recommendation
// tuning. The cloud write is best-effort and happens in the background; the
// graveyard is append-only and never deduplicated.
func (l *Library) MarkAsDisliked(ctx context.Context, book domain.Book) {
	l.mu.Lock()
	l.dislikedBooks = append(l.dislikedBooks, book)
	snap := l.snapshotLocked()
	l.mu.Unlock()
	l.notify(snap)

	sess := l.currentSession()
	if sess == nil {
		return
	}

	graveyard := book
	graveyard.Status = domain.StatusAbandoned
	graveyard.Rating = 1
	graveyard.Review = dislikedReviewMarker
	if graveyard.ID == "" {
		graveyard.ID = uuid.NewString()
	}

	l.background.Add(1)
	go func() {
		defer l.background.Done()
		// Detached from the request context on purpose.
		if err := l.bookRepo.Insert(context.Background(), sess.identity.ID, graveyard, sess.token); err != nil {
			l.logger.Warn("Failed to record disliked book in cloud", "book_id", graveyard.ID, "error", err)
		}
	}()
}

// SetActiveBook records which book detail view is open. Local only.
func (l *Library) SetActiveBook(id string) {
	l.mu.Lock()
	l.activeBookID = id
	snap := l.snapshotLocked()
	l.mu.Unlock()
	l.notify(snap)
}

// waitBackground blocks until all fire-and-forget writes have settled.
func (l *Library) waitBackground() {
	l.background.Wait()
}

func findBook(books []domain.Book, id string) (domain.Book, bool) {
	for _, b := range books {
		if b.ID == id {
			return b, true
		}
	}
	return domain.Book{}, false
}

// keyedMutex serializes work per entity id so two concurrent mutations to the
// same book or note cannot interleave between read and apply.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (k *keyedMutex) lock(key string) func() {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = map[string]*sync.Mutex{}
	}
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	k.mu.Unlock()

	m.Lock()
	return m.Unlock
}
