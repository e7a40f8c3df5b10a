package snapshotstore

import (
	"wishlist_tracker/internal/app/port"
	"wishlist_tracker/internal/domain/entity"
)

// Bootstrap applies the seed-once policy on cold start:
//
//   - a persisted blob is used verbatim, the defaults are never merged in;
//   - no blob and no seed marker means first run: the default state is
//     built, persisted, and the marker is set;
//   - no blob but a marker means the user cleared their data on purpose:
//     start empty, never resurrect the defaults.
//
// Storage failures are logged and treated as "value absent"; boot always
// yields a usable state.
func Bootstrap(store port.SnapshotStore, defaults port.DefaultCoinProvider, logger port.Logger) entity.WishlistState {
	state, found, err := store.LoadState()
	if err != nil {
		logger.Error("Failed to load persisted wishlist state", "error", err)
	}
	if found {
		logger.Info("Loaded persisted wishlist state", "ids", len(state.IDs))
		return state
	}

	seeded, err := store.HasSeedMarker()
	if err != nil {
		logger.Error("Failed to read seed marker", "error", err)
	}
	if seeded {
		logger.Info("Seed marker present with no state blob, starting empty")
		return entity.NewWishlistState()
	}

	state = defaults.DefaultState()
	logger.Info("First run, seeding default wishlist", "ids", len(state.IDs))
	if err := store.SaveState(state); err != nil {
		logger.Error("Failed to persist seeded defaults", "error", err)
	}
	if err := store.SetSeedMarker(); err != nil {
		logger.Error("Failed to set seed marker", "error", err)
	}
	return state
}
