package domain

// LegacySnapshot is the pre-authentication guest-mode persistence format:
// a JSON object with the library state nested under "state".
type LegacySnapshot struct {
	State LegacySnapshotState `json:"state"`
}

type LegacySnapshotState struct {
	Books []Book `json:"books"`
	Notes []Note `json:"notes"`
}

// LegacySnapshotStore reads and destroys the legacy guest-mode snapshot.
// The snapshot is consumed at most once: Delete is called immediately after
// a successful bulk upload so the rescue migration cannot run twice.
type LegacySnapshotStore interface {
	// Load returns (nil, nil) when no snapshot exists.
	Load() (*LegacySnapshot, error)
	Delete() error
}
