package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"wishlist_tracker/internal/app/port"
	"wishlist_tracker/internal/domain/entity"
	"wishlist_tracker/internal/pkg/metrics"

	"github.com/shopspring/decimal"
)

// WishlistServiceImpl implements port.WishlistStore. It is the single owner
// of the wishlist state; every mutation commits atomically under one lock,
// snapshots to durable storage best-effort, and notifies subscribers.
type WishlistServiceImpl struct {
	cache     *QueryCache
	snapshots port.SnapshotStore
	logger    port.Logger

	mu    sync.Mutex
	state entity.WishlistState

	subsMu  sync.Mutex
	subs    map[int]func()
	nextSub int
}

// NewWishlistService creates the store around an initial (bootstrapped)
// state. snapshots may be nil in tests.
func NewWishlistService(initial entity.WishlistState, cache *QueryCache, snapshots port.SnapshotStore, logger port.Logger) port.WishlistStore {
	if initial.Entities == nil {
		initial = entity.NewWishlistState()
	}
	s := &WishlistServiceImpl{
		cache:     cache,
		snapshots: snapshots,
		logger:    logger,
		state:     initial,
		subs:      make(map[int]func()),
	}
	metrics.WishlistSize.Set(float64(len(initial.IDs)))
	return s
}

// Add implements port.WishlistStore.
func (s *WishlistServiceImpl) Add(id string) {
	s.mu.Lock()
	if _, watched := s.state.Entities[id]; watched {
		s.mu.Unlock()
		return
	}
	s.state.IDs = append(s.state.IDs, id)
	s.state.Entities[id] = nil
	s.commitLocked("add")
	s.mu.Unlock()

	s.afterCommit()
}

// Remove implements port.WishlistStore.
func (s *WishlistServiceImpl) Remove(id string) {
	s.mu.Lock()
	if _, watched := s.state.Entities[id]; !watched {
		s.mu.Unlock()
		return
	}
	for i, existing := range s.state.IDs {
		if existing == id {
			s.state.IDs = append(s.state.IDs[:i], s.state.IDs[i+1:]...)
			break
		}
	}
	delete(s.state.Entities, id)
	s.commitLocked("remove")
	s.mu.Unlock()

	s.afterCommit()
}

// SetCoinsData implements port.WishlistStore.
func (s *WishlistServiceImpl) SetCoinsData(records []*entity.MarketCoin) {
	s.mu.Lock()
	s.mergeLocked(records)
	s.commitLocked("set_coins_data")
	s.mu.Unlock()

	s.afterCommit()
}

// RefreshPrices implements port.WishlistStore. Merge semantics are the
// same as SetCoinsData; last-updated is stamped to the merge time either
// way, so the operations stay idempotent per id.
func (s *WishlistServiceImpl) RefreshPrices(records []*entity.MarketCoin) {
	s.mu.Lock()
	s.mergeLocked(records)
	s.commitLocked("refresh_prices")
	s.mu.Unlock()

	s.afterCommit()
}

// mergeLocked merges resolved market records into the state: identity and
// market fields are replaced, holdings carry forward, the value recomputes
// from the new price, and last-updated is stamped to local now. Records for
// ids missing from the order are appended defensively.
func (s *WishlistServiceImpl) mergeLocked(records []*entity.MarketCoin) {
	now := time.Now().UTC().Format(time.RFC3339)
	for _, rec := range records {
		if rec == nil || rec.ID == "" {
			continue
		}
		holdings := "0"
		prev, watched := s.state.Entities[rec.ID]
		if prev != nil {
			holdings = prev.Holdings
		}
		coin := &entity.StoredCoin{
			MarketCoin: *rec,
			Holdings:   holdings,
			Resolved:   true,
		}
		coin.LastUpdated = now
		coin.Value = computeValue(coin.CurrentPrice, holdings)

		if !watched {
			s.state.IDs = append(s.state.IDs, rec.ID)
		}
		s.state.Entities[rec.ID] = coin
	}
}

// UpdateHoldings implements port.WishlistStore. The raw holdings text is
// preserved verbatim for display round-trips; the derived value recomputes
// immediately from the entity's existing price. Last-updated is never
// touched here.
func (s *WishlistServiceImpl) UpdateHoldings(id, holdings string) {
	s.mu.Lock()
	prev, watched := s.state.Entities[id]
	if !watched {
		s.logger.Warn("UpdateHoldings for unwatched id ignored", "id", id)
		s.mu.Unlock()
		return
	}
	if prev == nil {
		// Market data has not arrived yet; keep the holdings on a
		// placeholder until the merge resolves it.
		s.state.Entities[id] = &entity.StoredCoin{
			MarketCoin: entity.MarketCoin{ID: id},
			Holdings:   holdings,
		}
	} else {
		next := *prev
		next.Holdings = holdings
		next.Value = computeValue(next.CurrentPrice, holdings)
		s.state.Entities[id] = &next
	}
	s.commitLocked("update_holdings")
	s.mu.Unlock()

	s.afterCommit()
}

// EnsureResolved implements port.WishlistStore.
func (s *WishlistServiceImpl) EnsureResolved(ctx context.Context) error {
	s.mu.Lock()
	var pending []string
	for _, id := range s.state.IDs {
		coin := s.state.Entities[id]
		if coin == nil || !coin.Resolved {
			pending = append(pending, id)
		}
	}
	s.mu.Unlock()

	if len(pending) == 0 {
		return nil
	}
	records, err := s.cache.CoinsByIDs(ctx, pending)
	if err != nil {
		s.logger.Error("Failed to resolve pending wishlist ids", "count", len(pending), "error", err)
		return err
	}
	s.SetCoinsData(records)
	return nil
}

// Refresh implements port.WishlistStore. Prices are force-fetched past the
// cache staleness window; holdings edited while the fetch was in flight
// survive the merge.
func (s *WishlistServiceImpl) Refresh(ctx context.Context) error {
	s.mu.Lock()
	ids := make([]string, len(s.state.IDs))
	copy(ids, s.state.IDs)
	s.mu.Unlock()

	if len(ids) == 0 {
		return nil
	}
	records, err := s.cache.RefreshCoinsByIDs(ctx, ids)
	if err != nil {
		s.logger.Error("Wishlist refresh failed", "count", len(ids), "error", err)
		return err
	}
	s.RefreshPrices(records)
	return nil
}

// Snapshot implements port.WishlistStore.
func (s *WishlistServiceImpl) Snapshot() entity.WishlistState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Subscribe implements port.WishlistStore.
func (s *WishlistServiceImpl) Subscribe(fn func()) func() {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	return func() {
		s.subsMu.Lock()
		defer s.subsMu.Unlock()
		delete(s.subs, id)
	}
}

// commitLocked validates invariants and snapshots the committed state for
// the save that happens outside the lock.
func (s *WishlistServiceImpl) commitLocked(op string) {
	if err := s.state.Validate(); err != nil {
		// Invariant breakage is a programming error; log loudly but keep
		// serving the state we have.
		s.logger.Error("Wishlist invariant violated after mutation", "operation", op, "error", err)
	}
	metrics.WishlistSize.Set(float64(len(s.state.IDs)))
}

// afterCommit persists best-effort and notifies subscribers. Persistence
// failures are logged and swallowed; they never reach the caller.
//
// Runs outside the state mutex, so saves from concurrent mutations may
// interleave. Each save snapshots the state at save time and SaveState
// writes whole files, so the last write always holds a complete, current
// state; no ordering between intermediate saves is required.
func (s *WishlistServiceImpl) afterCommit() {
	if s.snapshots != nil {
		if err := s.snapshots.SaveState(s.Snapshot()); err != nil {
			s.logger.Error("Failed to persist wishlist state", "error", err)
		}
	}

	s.subsMu.Lock()
	subs := make([]func(), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.subsMu.Unlock()
	for _, fn := range subs {
		fn()
	}
}

// computeValue derives holdings × price. Blank holdings count as zero;
// non-numeric text yields no value; an unknown price yields no value. The
// decimal round-trip keeps user-entered precision intact.
func computeValue(price *float64, holdings string) *float64 {
	if price == nil {
		return nil
	}
	text := strings.TrimSpace(holdings)
	if text == "" {
		text = "0"
	}
	qty, err := decimal.NewFromString(text)
	if err != nil {
		return nil
	}
	value, _ := qty.Mul(decimal.NewFromFloat(*price)).Float64()
	return &value
}
