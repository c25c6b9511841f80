package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"digital-garden/internal/domain"
	"digital-garden/internal/store"
)

// SyncHandler drives the cloud reconciler from the HTTP surface.
type SyncHandler struct {
	library *store.Library
	logger  domain.Logger

	syncTimeout time.Duration
}

// NewSyncHandler creates a new sync handler
func NewSyncHandler(library *store.Library, logger domain.Logger, syncTimeout time.Duration) *SyncHandler {
	return &SyncHandler{library: library, logger: logger, syncTimeout: syncTimeout}
}

type syncResponse struct {
	Books  int         `json:"books"`
	Notes  int         `json:"notes"`
	User   domain.User `json:"user"`
	Signed bool        `json:"signedIn"`
}

// TriggerSync replaces the local state with the cloud state of the bearer
// identity. Without a token it resets to guest. The reconcile runs under the
// configured deadline; on expiry the state still settles on whatever subset
// was fetched in time.
func (h *SyncHandler) TriggerSync(w http.ResponseWriter, r *http.Request) {
	identity, _ := GetIdentityFromContext(r)
	token, _ := GetTokenFromContext(r)

	ctx, cancel := context.WithTimeout(r.Context(), h.syncTimeout)
	defer cancel()

	h.library.Reconcile(ctx, identity, token)
	h.writeResult(w)
}

// HandleAuthEvent maps a session-provider event (signed_in, signed_out,
// token_refreshed, initial_session) onto the reconciler.
func (h *SyncHandler) HandleAuthEvent(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Event domain.AuthEvent `json:"event"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if body.Event == "" {
		writeError(w, http.StatusBadRequest, "Event is required")
		return
	}

	identity, _ := GetIdentityFromContext(r)
	token, _ := GetTokenFromContext(r)

	ctx, cancel := context.WithTimeout(r.Context(), h.syncTimeout)
	defer cancel()

	h.library.HandleAuthEvent(ctx, body.Event, identity, token)
	h.writeResult(w)
}

func (h *SyncHandler) writeResult(w http.ResponseWriter) {
	snap := h.library.Snapshot()
	writeJSON(w, http.StatusOK, syncResponse{
		Books:  len(snap.Books),
		Notes:  len(snap.Notes),
		User:   snap.User,
		Signed: h.library.Identity() != nil,
	})
}
