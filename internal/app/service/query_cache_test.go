package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"wishlist_tracker/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrendingCoinsCached(t *testing.T) {
	client := newFakeMarketClient()
	cache := NewQueryCache(client, DefaultCacheTTLs(), nopLogger{})

	first, err := cache.TrendingCoins(context.Background(), 1, 10)
	require.NoError(t, err)
	second, err := cache.TrendingCoins(context.Background(), 1, 10)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int64(1), client.listCalls.Load(), "second read served from cache")

	_, err = cache.TrendingCoins(context.Background(), 2, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), client.listCalls.Load(), "different page is a different key")
}

func TestCoinsByIDsDeduplicatesInFlight(t *testing.T) {
	client := newFakeMarketClient()
	client.setPrice("bitcoin", 100)
	client.gate = make(chan struct{})
	cache := NewQueryCache(client, DefaultCacheTTLs(), nopLogger{})

	ids := []string{"bitcoin"}
	var wg sync.WaitGroup
	results := make([][]*entity.MarketCoin, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			coins, err := cache.CoinsByIDs(context.Background(), ids)
			assert.NoError(t, err)
			results[i] = coins
		}(i)
	}

	// Wait for the first fetch to be held at the gate, give the second
	// caller time to attach, then release.
	require.Eventually(t, func() bool { return client.byIDsCalls.Load() == 1 },
		time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(client.gate)
	wg.Wait()

	assert.Equal(t, int64(1), client.byIDsCalls.Load(), "concurrent callers share one request")
	require.NotNil(t, results[0][0])
	assert.Equal(t, results[0], results[1])
}

func TestCoinsByIDsEmpty(t *testing.T) {
	client := newFakeMarketClient()
	cache := NewQueryCache(client, DefaultCacheTTLs(), nopLogger{})

	coins, err := cache.CoinsByIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, coins)
	assert.Equal(t, int64(0), client.byIDsCalls.Load())
}

func TestFetchRetriesTransportFailureOnce(t *testing.T) {
	client := newFakeMarketClient()
	failOnce := true
	client.byIDsFn = func(ctx context.Context, ids []string) ([]*entity.MarketCoin, error) {
		if failOnce {
			failOnce = false
			return nil, &entity.TransportError{Op: "GET /coins/markets", Err: errors.New("connection reset")}
		}
		return []*entity.MarketCoin{{ID: ids[0]}}, nil
	}
	cache := NewQueryCache(client, DefaultCacheTTLs(), nopLogger{})

	coins, err := cache.CoinsByIDs(context.Background(), []string{"bitcoin"})
	require.NoError(t, err)
	require.Len(t, coins, 1)
	assert.Equal(t, int64(2), client.byIDsCalls.Load())
}

func TestFetchDoesNotRetryRateLimit(t *testing.T) {
	client := newFakeMarketClient()
	client.byIDsFn = func(ctx context.Context, ids []string) ([]*entity.MarketCoin, error) {
		return nil, entity.ErrRateLimited
	}
	cache := NewQueryCache(client, DefaultCacheTTLs(), nopLogger{})

	_, err := cache.CoinsByIDs(context.Background(), []string{"bitcoin"})
	require.ErrorIs(t, err, entity.ErrRateLimited)
	assert.Equal(t, int64(1), client.byIDsCalls.Load())
}

func TestCoinsByIDsStaleFallback(t *testing.T) {
	client := newFakeMarketClient()
	client.byIDsFn = func(ctx context.Context, ids []string) ([]*entity.MarketCoin, error) {
		return nil, entity.ErrRateLimited
	}
	cache := NewQueryCache(client, DefaultCacheTTLs(), nopLogger{})

	ids := []string{"bitcoin"}
	price := 100.0
	stalePayload := []*entity.MarketCoin{{ID: "bitcoin", CurrentPrice: &price}}
	cache.store.Set(byIDsKey(ids), cacheEntry{
		fetchedAt: time.Now().Add(-7 * time.Minute),
		payload:   stalePayload,
	}, cache.ttls.ByIDs+cache.ttls.ByIDsGrace)

	coins, err := cache.CoinsByIDs(context.Background(), ids)
	require.NoError(t, err, "stale entry serves as a fallback when the re-fetch fails")
	assert.Equal(t, stalePayload, coins)
	assert.Equal(t, int64(1), client.byIDsCalls.Load())
}

func TestRefreshCoinsByIDsBypassesCache(t *testing.T) {
	client := newFakeMarketClient()
	client.setPrice("bitcoin", 100)
	cache := NewQueryCache(client, DefaultCacheTTLs(), nopLogger{})

	_, err := cache.CoinsByIDs(context.Background(), []string{"bitcoin"})
	require.NoError(t, err)

	client.setPrice("bitcoin", 150)
	coins, err := cache.RefreshCoinsByIDs(context.Background(), []string{"bitcoin"})
	require.NoError(t, err)
	require.NotNil(t, coins[0].CurrentPrice)
	assert.Equal(t, 150.0, *coins[0].CurrentPrice)
	assert.Equal(t, int64(2), client.byIDsCalls.Load())
}

func TestInfiniteList(t *testing.T) {
	client := newFakeMarketClient()
	client.listFn = func(ctx context.Context, page, perPage int) (entity.MarketPage, error) {
		coins := make([]entity.MarketCoin, 0, perPage)
		if page <= 2 {
			for i := 0; i < perPage; i++ {
				coins = append(coins, entity.MarketCoin{ID: coinID(page, i)})
			}
		}
		return entity.MarketPage{
			Data: coins,
			Pagination: entity.PageCursor{
				CurrentPage: page,
				PerPage:     perPage,
				HasNextPage: len(coins) == perPage,
				HasPrevPage: page > 1,
			},
		}, nil
	}
	cache := NewQueryCache(client, DefaultCacheTTLs(), nopLogger{})
	list := cache.NewInfiniteList(3)

	assert.True(t, list.HasNextPage(), "empty list always has a first page")
	assert.Empty(t, list.Coins())

	require.NoError(t, list.FetchNextPage(context.Background()))
	assert.Equal(t, 1, list.Pages())
	assert.Len(t, list.Coins(), 3)
	assert.True(t, list.HasNextPage())

	require.NoError(t, list.FetchNextPage(context.Background()))
	assert.Equal(t, 2, list.Pages())
	assert.Len(t, list.Coins(), 6, "pages accumulate in order")

	require.NoError(t, list.FetchNextPage(context.Background()))
	assert.False(t, list.HasNextPage(), "short page ends the listing")

	require.NoError(t, list.FetchNextPage(context.Background()))
	assert.Equal(t, 3, list.Pages(), "fetch past the end is a no-op")

	list.Reset()
	assert.Empty(t, list.Coins())
	assert.True(t, list.HasNextPage())
}

func TestSearchSessionDebounce(t *testing.T) {
	client := newFakeMarketClient()
	cache := NewQueryCache(client, DefaultCacheTTLs(), nopLogger{})

	updates := make(chan struct{}, 16)
	session := cache.NewSearchSession(10*time.Millisecond, func() { updates <- struct{}{} }, nopLogger{})
	defer session.Close()

	// Rapid typing: only the final query reaches the provider.
	session.SetQuery("b")
	session.SetQuery("bi")
	session.SetQuery("bitcoin")

	select {
	case <-updates:
	case <-time.After(time.Second):
		t.Fatal("no update after debounce window")
	}

	query, results, err := session.Results()
	require.NoError(t, err)
	assert.Equal(t, "bitcoin", query)
	require.Len(t, results.Coins, 1)
	assert.Equal(t, "bitcoin", results.Coins[0].ID)
	assert.Equal(t, int64(1), client.searchCalls.Load())
}

func TestSearchSessionClearsOnEmptyQuery(t *testing.T) {
	client := newFakeMarketClient()
	cache := NewQueryCache(client, DefaultCacheTTLs(), nopLogger{})

	updates := make(chan struct{}, 16)
	session := cache.NewSearchSession(5*time.Millisecond, func() { updates <- struct{}{} }, nopLogger{})
	defer session.Close()

	session.SetQuery("bitcoin")
	select {
	case <-updates:
	case <-time.After(time.Second):
		t.Fatal("no update after debounce window")
	}

	session.SetQuery("   ")
	select {
	case <-updates:
	case <-time.After(time.Second):
		t.Fatal("no update after clearing the query")
	}

	query, results, err := session.Results()
	require.NoError(t, err)
	assert.Empty(t, query)
	assert.Empty(t, results.Coins)
	assert.Equal(t, int64(1), client.searchCalls.Load(), "clearing never hits the provider")
}
