package service

import (
	"context"
	"sync"

	"wishlist_tracker/internal/domain/entity"
)

// InfiniteList accumulates successive market pages under one logical key
// for infinite-scroll browsing. Next-page availability follows the last
// page's cursor; FetchNextPage is a no-op while a fetch is in flight or
// when no next page exists.
type InfiniteList struct {
	cache   *QueryCache
	perPage int

	mu       sync.Mutex
	pages    []entity.MarketPage
	fetching bool
	seq      uint64
}

// NewInfiniteList creates an empty accumulating list with the given page
// size, backed by the query cache.
func (q *QueryCache) NewInfiniteList(perPage int) *InfiniteList {
	if perPage <= 0 {
		perPage = 10
	}
	return &InfiniteList{cache: q, perPage: perPage}
}

// HasNextPage reports whether another page may exist. An empty list always
// has a first page to fetch.
func (l *InfiniteList) HasNextPage() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.hasNextLocked()
}

func (l *InfiniteList) hasNextLocked() bool {
	if len(l.pages) == 0 {
		return true
	}
	return l.pages[len(l.pages)-1].Pagination.HasNextPage
}

// IsFetching reports whether a page fetch is currently outstanding.
func (l *InfiniteList) IsFetching() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.fetching
}

// FetchNextPage fetches and appends the next page. Returns immediately when
// a fetch for this list is already in flight or the cursor says there is no
// next page. A response that arrives after Reset is discarded.
func (l *InfiniteList) FetchNextPage(ctx context.Context) error {
	l.mu.Lock()
	if l.fetching || !l.hasNextLocked() {
		l.mu.Unlock()
		return nil
	}
	l.fetching = true
	seq := l.seq
	next := len(l.pages) + 1
	l.mu.Unlock()

	page, err := l.cache.TrendingCoins(ctx, next, l.perPage)

	l.mu.Lock()
	defer l.mu.Unlock()
	l.fetching = false
	if err != nil {
		return err
	}
	if seq != l.seq {
		// List was reset while the fetch was in flight.
		return nil
	}
	l.pages = append(l.pages, page)
	return nil
}

// Coins returns all accumulated pages flattened in fetch order.
func (l *InfiniteList) Coins() []entity.MarketCoin {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []entity.MarketCoin
	for _, page := range l.pages {
		out = append(out, page.Data...)
	}
	return out
}

// Pages returns the number of pages accumulated so far.
func (l *InfiniteList) Pages() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.pages)
}

// Reset drops all accumulated pages. An in-flight fetch is not aborted but
// its result will be discarded on arrival.
func (l *InfiniteList) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.pages = nil
	l.seq++
}
