package port

import (
	"context"

	"wishlist_tracker/internal/domain/entity"
)

// WishlistStore is the mutation and read interface of the wishlist state.
// The store is the exclusive owner of the state; callers only receive
// snapshots and dispatch mutations through it.
type WishlistStore interface {
	// Add appends id to the watch order with an unresolved entity.
	// Adding a watched id is a no-op.
	Add(id string)

	// Remove deletes id from the order and the entity map atomically.
	// Removing an unknown id is a no-op.
	Remove(id string)

	// SetCoinsData merges resolved market records into the state. Holdings
	// carry forward, values recompute from the new prices, last-updated is
	// stamped to the merge time. Records for unwatched ids are appended.
	SetCoinsData(records []*entity.MarketCoin)

	// UpdateHoldings replaces the holdings text for id and recomputes the
	// derived value from the entity's existing price without any network
	// round-trip. Last-updated is left untouched.
	UpdateHoldings(id, holdings string)

	// RefreshPrices applies the same merge as SetCoinsData for an explicit
	// user refresh.
	RefreshPrices(records []*entity.MarketCoin)

	// EnsureResolved fetches market data for any watched ids that are
	// still unresolved and merges it in.
	EnsureResolved(ctx context.Context) error

	// Refresh re-fetches market data for every watched id and merges it.
	Refresh(ctx context.Context) error

	// Snapshot returns a deep copy of the current state.
	Snapshot() entity.WishlistState

	// Subscribe registers a callback invoked after every committed
	// mutation and returns the matching unsubscribe function.
	Subscribe(fn func()) (unsubscribe func())
}
