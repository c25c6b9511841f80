package repository

import (
	"encoding/json"
	"fmt"
	"os"

	"digital-garden/internal/domain"
)

// LegacySnapshotStore reads the guest-mode persistence file written before
// cloud sync existed (shape: {"state":{"books":[...],"notes":[...]}}).
// It exists only to feed the one-time rescue migration.
type LegacySnapshotStore struct {
	path   string
	logger domain.Logger
}

func NewLegacySnapshotStore(path string, logger domain.Logger) domain.LegacySnapshotStore {
	return &LegacySnapshotStore{path: path, logger: logger}
}

// Load returns (nil, nil) when the snapshot file does not exist. A file that
// exists but cannot be parsed is reported as an error so the caller can
// decide to skip migration without destroying the file.
func (s *LegacySnapshotStore) Load() (*domain.LegacySnapshot, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read legacy snapshot: %w", err)
	}

	var snapshot domain.LegacySnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("failed to parse legacy snapshot: %w", err)
	}
	return &snapshot, nil
}

// Delete removes the snapshot file. Deleting a file that is already gone is
// not an error, so two near-simultaneous rescue attempts cannot fail here.
func (s *LegacySnapshotStore) Delete() error {
	err := os.Remove(s.path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete legacy snapshot: %w", err)
	}
	s.logger.Info("Legacy snapshot removed", "path", s.path)
	return nil
}
