package snapshotstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"wishlist_tracker/internal/app/port"
	"wishlist_tracker/internal/domain/entity"
)

// markerTTL is the seed marker's validity. An expired marker reads as
// absent, so defaults may seed again after years of inactivity.
const markerTTL = 5 * 365 * 24 * time.Hour

// seedMarker is the durable "defaults were seeded at least once" flag. It
// lives in its own file, independent of the state blob: deleting the blob
// alone must not resurrect the defaults.
type seedMarker struct {
	SeededAt  time.Time `json:"seededAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// FileStore persists the wishlist state blob and the seed marker as two
// independent JSON files. Writes are synchronous and whole-file.
type FileStore struct {
	statePath  string
	markerPath string
	logger     port.Logger
	mu         sync.Mutex
}

// NewFileStore creates a FileStore over the given paths.
func NewFileStore(statePath, markerPath string, logger port.Logger) *FileStore {
	return &FileStore{
		statePath:  statePath,
		markerPath: markerPath,
		logger:     logger,
	}
}

// LoadState implements port.SnapshotStore.
func (f *FileStore) LoadState() (entity.WishlistState, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.statePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return entity.NewWishlistState(), false, nil
		}
		return entity.NewWishlistState(), false, &entity.PersistenceError{Op: "read state", Err: err}
	}

	var state entity.WishlistState
	if err := json.Unmarshal(data, &state); err != nil {
		return entity.NewWishlistState(), false, &entity.PersistenceError{Op: "decode state", Err: err}
	}
	if state.Entities == nil {
		state.Entities = make(map[string]*entity.StoredCoin)
	}
	if state.IDs == nil {
		state.IDs = []string{}
	}
	return state, true, nil
}

// SaveState implements port.SnapshotStore. The whole state is written in
// one shot via a temp file rename, never a partial update.
func (f *FileStore) SaveState(state entity.WishlistState) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return &entity.PersistenceError{Op: "encode state", Err: err}
	}
	if err := f.writeFile(f.statePath, data); err != nil {
		return &entity.PersistenceError{Op: "write state", Err: err}
	}
	return nil
}

// HasSeedMarker implements port.SnapshotStore.
func (f *FileStore) HasSeedMarker() (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.markerPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, &entity.PersistenceError{Op: "read seed marker", Err: err}
	}

	var marker seedMarker
	if err := json.Unmarshal(data, &marker); err != nil {
		return false, &entity.PersistenceError{Op: "decode seed marker", Err: err}
	}
	if !marker.ExpiresAt.IsZero() && time.Now().After(marker.ExpiresAt) {
		return false, nil
	}
	return true, nil
}

// SetSeedMarker implements port.SnapshotStore.
func (f *FileStore) SetSeedMarker() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	now := time.Now().UTC()
	data, err := json.Marshal(seedMarker{SeededAt: now, ExpiresAt: now.Add(markerTTL)})
	if err != nil {
		return &entity.PersistenceError{Op: "encode seed marker", Err: err}
	}
	if err := f.writeFile(f.markerPath, data); err != nil {
		return &entity.PersistenceError{Op: "write seed marker", Err: err}
	}
	return nil
}

func (f *FileStore) writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create dir %s: %w", dir, err)
		}
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
