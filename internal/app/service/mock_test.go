package service

import (
	"context"
	"sync"
	"sync/atomic"

	"wishlist_tracker/internal/domain/entity"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

// fakeMarketClient is a configurable in-memory port.MarketDataClient that
// counts calls per operation.
type fakeMarketClient struct {
	mu sync.Mutex

	listCalls   atomic.Int64
	byIDsCalls  atomic.Int64
	searchCalls atomic.Int64

	prices map[string]float64

	listFn   func(ctx context.Context, page, perPage int) (entity.MarketPage, error)
	byIDsFn  func(ctx context.Context, ids []string) ([]*entity.MarketCoin, error)
	searchFn func(ctx context.Context, query string) (entity.SearchResult, error)

	// gate, when set, blocks fetches until released; used to hold a
	// request in flight.
	gate chan struct{}
}

func newFakeMarketClient() *fakeMarketClient {
	return &fakeMarketClient{prices: map[string]float64{}}
}

func (f *fakeMarketClient) setPrice(id string, price float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prices[id] = price
}

func (f *fakeMarketClient) ListMarkets(ctx context.Context, page, perPage int) (entity.MarketPage, error) {
	f.listCalls.Add(1)
	if f.gate != nil {
		<-f.gate
	}
	if f.listFn != nil {
		return f.listFn(ctx, page, perPage)
	}
	coins := make([]entity.MarketCoin, perPage)
	for i := range coins {
		coins[i] = entity.MarketCoin{ID: coinID(page, i)}
	}
	return entity.MarketPage{
		Data: coins,
		Pagination: entity.PageCursor{
			CurrentPage: page,
			PerPage:     perPage,
			HasNextPage: true,
			HasPrevPage: page > 1,
		},
	}, nil
}

func coinID(page, idx int) string {
	return "coin-" + string(rune('a'+page)) + "-" + string(rune('0'+idx))
}

func (f *fakeMarketClient) GetByIDs(ctx context.Context, ids []string) ([]*entity.MarketCoin, error) {
	f.byIDsCalls.Add(1)
	if f.gate != nil {
		<-f.gate
	}
	if f.byIDsFn != nil {
		return f.byIDsFn(ctx, ids)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*entity.MarketCoin, len(ids))
	for i, id := range ids {
		price, ok := f.prices[id]
		if !ok {
			continue
		}
		p := price
		out[i] = &entity.MarketCoin{
			ID:           id,
			Symbol:       id[:1],
			Name:         id,
			CurrentPrice: &p,
		}
	}
	return out, nil
}

func (f *fakeMarketClient) Search(ctx context.Context, query string) (entity.SearchResult, error) {
	f.searchCalls.Add(1)
	if f.gate != nil {
		<-f.gate
	}
	if f.searchFn != nil {
		return f.searchFn(ctx, query)
	}
	result := entity.SearchResult{
		Coins: []entity.SearchCoin{{ID: query, Name: query}},
	}
	result.Normalize()
	return result, nil
}

// fakeSnapshotStore records saves in memory and can be told to fail.
type fakeSnapshotStore struct {
	mu        sync.Mutex
	saved     []entity.WishlistState
	saveErr   error
	marker    bool
	markerErr error
}

func (f *fakeSnapshotStore) LoadState() (entity.WishlistState, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.saved) == 0 {
		return entity.NewWishlistState(), false, nil
	}
	return f.saved[len(f.saved)-1], true, nil
}

func (f *fakeSnapshotStore) SaveState(state entity.WishlistState) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = append(f.saved, state)
	return nil
}

func (f *fakeSnapshotStore) HasSeedMarker() (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.marker, f.markerErr
}

func (f *fakeSnapshotStore) SetSeedMarker() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.marker = true
	return nil
}

func (f *fakeSnapshotStore) saveCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.saved)
}
