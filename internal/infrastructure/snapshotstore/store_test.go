package snapshotstore

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"wishlist_tracker/internal/app/provider"
	"wishlist_tracker/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

func newTempStore(t *testing.T) *FileStore {
	t.Helper()
	dir := t.TempDir()
	return NewFileStore(
		filepath.Join(dir, "wishlist.json"),
		filepath.Join(dir, "wishlist.seeded.json"),
		nopLogger{},
	)
}

func sampleState() entity.WishlistState {
	price := 100.0
	value := 50.0
	state := entity.NewWishlistState()
	state.IDs = []string{"bitcoin", "ethereum"}
	state.Entities["bitcoin"] = &entity.StoredCoin{
		MarketCoin: entity.MarketCoin{ID: "bitcoin", Name: "Bitcoin", CurrentPrice: &price},
		Holdings:   "0.5",
		Value:      &value,
		Resolved:   true,
	}
	state.Entities["ethereum"] = nil
	return state
}

func TestStateRoundTrip(t *testing.T) {
	store := newTempStore(t)

	require.NoError(t, store.SaveState(sampleState()))

	loaded, found, err := store.LoadState()
	require.NoError(t, err)
	require.True(t, found)
	require.NoError(t, loaded.Validate())
	assert.Equal(t, []string{"bitcoin", "ethereum"}, loaded.IDs)
	require.NotNil(t, loaded.Entities["bitcoin"])
	assert.Equal(t, "0.5", loaded.Entities["bitcoin"].Holdings)
	require.NotNil(t, loaded.Entities["bitcoin"].Value)
	assert.Equal(t, 50.0, *loaded.Entities["bitcoin"].Value)
	assert.Nil(t, loaded.Entities["ethereum"], "unresolved entries survive the round trip")
}

func TestLoadStateAbsent(t *testing.T) {
	store := newTempStore(t)

	state, found, err := store.LoadState()
	require.NoError(t, err)
	assert.False(t, found)
	assert.NotNil(t, state.Entities)
	assert.Empty(t, state.IDs)
}

func TestLoadStateCorrupt(t *testing.T) {
	store := newTempStore(t)
	require.NoError(t, os.WriteFile(store.statePath, []byte("{not json"), 0o644))

	_, found, err := store.LoadState()
	assert.False(t, found)
	var persErr *entity.PersistenceError
	require.ErrorAs(t, err, &persErr)
}

func TestSeedMarker(t *testing.T) {
	store := newTempStore(t)

	seeded, err := store.HasSeedMarker()
	require.NoError(t, err)
	assert.False(t, seeded)

	require.NoError(t, store.SetSeedMarker())

	seeded, err = store.HasSeedMarker()
	require.NoError(t, err)
	assert.True(t, seeded)
}

func TestSeedMarkerExpiry(t *testing.T) {
	store := newTempStore(t)

	expired, err := json.Marshal(seedMarker{
		SeededAt:  time.Now().Add(-6 * 365 * 24 * time.Hour),
		ExpiresAt: time.Now().Add(-365 * 24 * time.Hour),
	})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(store.markerPath, expired, 0o644))

	seeded, err := store.HasSeedMarker()
	require.NoError(t, err)
	assert.False(t, seeded, "expired marker reads as absent")
}

func TestBootstrap(t *testing.T) {
	defaults := provider.NewDefaultCoinProvider(nil, nil, nopLogger{})

	t.Run("first run seeds defaults and sets the marker", func(t *testing.T) {
		store := newTempStore(t)

		state := Bootstrap(store, defaults, nopLogger{})

		assert.NotEmpty(t, state.IDs)
		seeded, err := store.HasSeedMarker()
		require.NoError(t, err)
		assert.True(t, seeded)

		persisted, found, err := store.LoadState()
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, state.IDs, persisted.IDs)
	})

	t.Run("persisted blob wins over defaults", func(t *testing.T) {
		store := newTempStore(t)
		require.NoError(t, store.SaveState(sampleState()))

		state := Bootstrap(store, defaults, nopLogger{})

		assert.Equal(t, []string{"bitcoin", "ethereum"}, state.IDs, "defaults never merge into an existing blob")
	})

	t.Run("marker without blob starts empty", func(t *testing.T) {
		store := newTempStore(t)
		require.NoError(t, store.SetSeedMarker())

		state := Bootstrap(store, defaults, nopLogger{})

		assert.Empty(t, state.IDs, "a cleared wishlist stays cleared")
	})

	t.Run("deleting only the blob does not resurrect defaults", func(t *testing.T) {
		store := newTempStore(t)
		Bootstrap(store, defaults, nopLogger{})
		require.NoError(t, os.Remove(store.statePath))

		state := Bootstrap(store, defaults, nopLogger{})

		assert.Empty(t, state.IDs)
	})
}
