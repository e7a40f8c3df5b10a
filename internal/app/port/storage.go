package port

import "wishlist_tracker/internal/domain/entity"

// SnapshotStore persists the whole wishlist state as one blob plus an
// independent seed marker. The two values are stored separately on purpose:
// clearing the data blob alone must not re-trigger default seeding.
type SnapshotStore interface {
	// LoadState returns the persisted state and whether a blob existed.
	LoadState() (entity.WishlistState, bool, error)

	// SaveState writes the full state synchronously.
	SaveState(state entity.WishlistState) error

	// HasSeedMarker reports whether defaults were ever seeded. An expired
	// marker reads as absent.
	HasSeedMarker() (bool, error)

	// SetSeedMarker records that defaults have been seeded.
	SetSeedMarker() error
}

// DefaultCoinProvider supplies the first-run default wishlist.
type DefaultCoinProvider interface {
	// DefaultState builds the seeded state from the default coin list and
	// default holdings.
	DefaultState() entity.WishlistState
}
