package store

import (
	"context"

	"digital-garden/internal/domain"

	"golang.org/x/sync/errgroup"
)

// Reconcile replaces the local state with the cloud state for the given
// identity. A nil identity (signed out, or a token that resolves to nobody)
// resets to the guest default, discarding any unsynced local edits.
//
// Reconcile never returns an error: a partial fetch failure degrades to an
// empty subset, because failing to land in *some* valid state is worse than
// showing incomplete data. Callers that cannot wait forever pass a context
// with a deadline; the login flow uses the configured sync timeout.
func (l *Library) Reconcile(ctx context.Context, identity *domain.Identity, token string) {
	l.reconcile(ctx, identity, token, true)
}

// HandleAuthEvent maps a session-provider event onto the reconciler.
func (l *Library) HandleAuthEvent(ctx context.Context, event domain.AuthEvent, identity *domain.Identity, token string) {
	switch event {
	case domain.EventSignedOut:
		l.logger.Info("Signed out, clearing library")
		l.Reconcile(ctx, nil, "")
	case domain.EventSignedIn, domain.EventTokenRefreshed, domain.EventInitialSession:
		l.Reconcile(ctx, identity, token)
	default:
		l.logger.Warn("Ignoring unknown auth event", "event", event)
	}
}

func (l *Library) reconcile(ctx context.Context, identity *domain.Identity, token string, allowRescue bool) {
	if identity == nil && token != "" && l.resolveIdentity != nil {
		resolved, err := l.resolveIdentity(token)
		if err != nil {
			l.logger.Warn("Identity lookup failed, treating session as guest", "error", err)
		}
		identity = resolved
	}

	if identity == nil {
		l.Reset()
		return
	}

	l.mu.Lock()
	l.isLoading = true
	loadingSnap := l.snapshotLocked()
	l.mu.Unlock()
	l.notify(loadingSnap)

	books, notes, profile := l.fetchAll(ctx, identity, token)

	l.mu.Lock()
	l.books = books
	l.notes = notes
	if profile != nil {
		// Merge onto the current user so guest defaults survive for fields
		// the profile row does not carry.
		l.user = profile.Apply(l.user)
	}
	l.user.Email = identity.Email
	l.session = &session{identity: *identity, token: token}
	l.isLoading = false
	snap := l.snapshotLocked()
	l.mu.Unlock()
	l.notify(snap)

	l.logger.Info("Library reconciled",
		"user_id", identity.ID,
		"books", len(books),
		"notes", len(notes),
		"profile_row", profile != nil)

	if allowRescue && len(books) == 0 {
		l.rescueLegacyData(ctx, identity, token)
	}
}

// fetchAll loads the three slices of cloud state in parallel. Each fetch
// failure is logged and yields an empty subset instead of aborting.
func (l *Library) fetchAll(ctx context.Context, identity *domain.Identity, token string) ([]domain.Book, []domain.Note, *domain.UserUpdate) {
	var (
		books   []domain.Book
		notes   []domain.Note
		profile *domain.UserUpdate
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		fetched, err := l.bookRepo.ListByUser(gctx, identity.ID, token)
		if err != nil {
			l.logger.Error("Failed to fetch books, proceeding without them", err, "user_id", identity.ID)
			return nil
		}
		books = fetched
		return nil
	})
	g.Go(func() error {
		fetched, err := l.noteRepo.ListByUser(gctx, identity.ID, token)
		if err != nil {
			l.logger.Error("Failed to fetch notes, proceeding without them", err, "user_id", identity.ID)
			return nil
		}
		notes = fetched
		return nil
	})
	g.Go(func() error {
		fetched, err := l.profileRepo.GetByUser(gctx, identity.ID, token)
		if err != nil {
			l.logger.Error("Failed to fetch profile, proceeding without it", err, "user_id", identity.ID)
			return nil
		}
		profile = fetched
		return nil
	})
	_ = g.Wait()

	if books == nil {
		books = []domain.Book{}
	}
	if notes == nil {
		notes = []domain.Note{}
	}
	return books, notes, profile
}

// rescueLegacyData moves a pre-authentication guest snapshot into the cloud.
// It runs when reconciliation produced an empty library, and at most once per
// snapshot: the mutex serializes concurrent triggers, and the snapshot file
// is deleted immediately after the upload attempt regardless of per-row
// outcome.
func (l *Library) rescueLegacyData(ctx context.Context, identity *domain.Identity, token string) {
	if l.legacySnapshots == nil {
		return
	}

	l.rescueMu.Lock()
	defer l.rescueMu.Unlock()

	// A concurrent trigger may have already migrated and reloaded.
	l.mu.RLock()
	booksPresent := len(l.books) > 0
	l.mu.RUnlock()
	if booksPresent {
		return
	}

	snapshot, err := l.legacySnapshots.Load()
	if err != nil {
		l.logger.Error("Failed to read legacy snapshot, skipping rescue", err)
		return
	}
	if snapshot == nil || len(snapshot.State.Books) == 0 {
		return
	}

	l.logger.Info("Found disconnected local data, migrating to cloud",
		"books", len(snapshot.State.Books),
		"notes", len(snapshot.State.Notes))

	if err := l.bookRepo.BulkInsert(ctx, identity.ID, snapshot.State.Books, token); err != nil {
		l.logger.Error("Book migration failed", err, "user_id", identity.ID)
	}
	if len(snapshot.State.Notes) > 0 {
		if err := l.noteRepo.BulkInsert(ctx, identity.ID, snapshot.State.Notes, token); err != nil {
			l.logger.Error("Note migration failed", err, "user_id", identity.ID)
		}
	}

	if err := l.legacySnapshots.Delete(); err != nil {
		l.logger.Error("Failed to delete legacy snapshot after migration", err)
	}

	l.reconcile(ctx, identity, token, false)
}
