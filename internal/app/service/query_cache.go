package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"wishlist_tracker/internal/app/port"
	"wishlist_tracker/internal/domain/entity"
	"wishlist_tracker/internal/pkg/metrics"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"
)

// CacheTTLs holds the per-operation staleness windows of the query cache.
// ByIDsGrace is the extra retention after a by-ids entry goes stale: the
// entry stays usable as a fallback before eviction, so rapid re-reads do
// not hammer the provider.
type CacheTTLs struct {
	List       time.Duration
	Search     time.Duration
	ByIDs      time.Duration
	ByIDsGrace time.Duration
}

// DefaultCacheTTLs returns the staleness windows the application ships with.
func DefaultCacheTTLs() CacheTTLs {
	return CacheTTLs{
		List:       2 * time.Minute,
		Search:     1 * time.Minute,
		ByIDs:      5 * time.Minute,
		ByIDsGrace: 10 * time.Minute,
	}
}

type cacheEntry struct {
	fetchedAt time.Time
	payload   any
}

// QueryCache wraps the market data client with key-based caching, in-flight
// request de-duplication and a single retry on transport failure. At most
// one request per key is ever outstanding; concurrent callers for the same
// key attach to the in-flight result.
type QueryCache struct {
	client port.MarketDataClient
	store  *gocache.Cache
	group  singleflight.Group
	ttls   CacheTTLs
	logger port.Logger
}

// NewQueryCache creates a QueryCache over the given client.
func NewQueryCache(client port.MarketDataClient, ttls CacheTTLs, logger port.Logger) *QueryCache {
	if ttls.List <= 0 {
		ttls = DefaultCacheTTLs()
	}
	return &QueryCache{
		client: client,
		store:  gocache.New(gocache.NoExpiration, time.Minute),
		ttls:   ttls,
		logger: logger,
	}
}

func listKey(page, perPage int) string {
	return fmt.Sprintf("coins/list/p=%d,pp=%d", page, perPage)
}

func searchKey(query string) string {
	return "coins/search/" + query
}

func byIDsKey(ids []string) string {
	return "coins/byIds/" + strings.Join(ids, ",")
}

// TrendingCoins returns one page of market listings, served from cache
// within the list staleness window.
func (q *QueryCache) TrendingCoins(ctx context.Context, page, perPage int) (entity.MarketPage, error) {
	key := listKey(page, perPage)
	if entry, ok := q.store.Get(key); ok {
		metrics.CacheLookupsTotal.WithLabelValues("list", "hit").Inc()
		return entry.(cacheEntry).payload.(entity.MarketPage), nil
	}
	metrics.CacheLookupsTotal.WithLabelValues("list", "miss").Inc()

	payload, err := q.fetch(ctx, key, q.ttls.List, func(ctx context.Context) (any, error) {
		return q.client.ListMarkets(ctx, page, perPage)
	})
	if err != nil {
		return entity.MarketPage{}, err
	}
	return payload.(entity.MarketPage), nil
}

// SearchCoins runs a provider search for a trimmed non-empty query, served
// from cache within the search staleness window. Query validation is the
// client's concern and propagates unmodified.
func (q *QueryCache) SearchCoins(ctx context.Context, query string) (entity.SearchResult, error) {
	trimmed := strings.TrimSpace(query)
	key := searchKey(trimmed)
	if entry, ok := q.store.Get(key); ok {
		metrics.CacheLookupsTotal.WithLabelValues("search", "hit").Inc()
		return entry.(cacheEntry).payload.(entity.SearchResult), nil
	}
	metrics.CacheLookupsTotal.WithLabelValues("search", "miss").Inc()

	payload, err := q.fetch(ctx, key, q.ttls.Search, func(ctx context.Context) (any, error) {
		return q.client.Search(ctx, trimmed)
	})
	if err != nil {
		return entity.SearchResult{}, err
	}
	return payload.(entity.SearchResult), nil
}

// CoinsByIDs returns market records 1:1 with the given ids. Entries are
// keyed by the exact ordered id list, stay fresh for the by-ids window and
// survive a further grace period as a stale fallback when a re-fetch fails.
func (q *QueryCache) CoinsByIDs(ctx context.Context, ids []string) ([]*entity.MarketCoin, error) {
	if len(ids) == 0 {
		return []*entity.MarketCoin{}, nil
	}

	key := byIDsKey(ids)
	var stale *cacheEntry
	if raw, ok := q.store.Get(key); ok {
		entry := raw.(cacheEntry)
		if time.Since(entry.fetchedAt) <= q.ttls.ByIDs {
			metrics.CacheLookupsTotal.WithLabelValues("by_ids", "hit").Inc()
			return entry.payload.([]*entity.MarketCoin), nil
		}
		metrics.CacheLookupsTotal.WithLabelValues("by_ids", "stale").Inc()
		stale = &entry
	} else {
		metrics.CacheLookupsTotal.WithLabelValues("by_ids", "miss").Inc()
	}

	payload, err := q.fetchByIDs(ctx, key, ids)
	if err != nil {
		if stale != nil {
			q.logger.Warn("Serving stale by-ids entry after failed re-fetch", "key", key, "error", err)
			return stale.payload.([]*entity.MarketCoin), nil
		}
		return nil, err
	}
	return payload, nil
}

// RefreshCoinsByIDs drops any cached entry for the exact id list and
// fetches fresh records, still de-duplicated against concurrent callers.
// Used by the explicit user refresh, which must not be served stale prices.
func (q *QueryCache) RefreshCoinsByIDs(ctx context.Context, ids []string) ([]*entity.MarketCoin, error) {
	if len(ids) == 0 {
		return []*entity.MarketCoin{}, nil
	}
	key := byIDsKey(ids)
	q.store.Delete(key)
	return q.fetchByIDs(ctx, key, ids)
}

func (q *QueryCache) fetchByIDs(ctx context.Context, key string, ids []string) ([]*entity.MarketCoin, error) {
	payload, err := q.fetch(ctx, key, q.ttls.ByIDs+q.ttls.ByIDsGrace, func(ctx context.Context) (any, error) {
		return q.client.GetByIDs(ctx, ids)
	})
	if err != nil {
		return nil, err
	}
	return payload.([]*entity.MarketCoin), nil
}

// fetch funnels every network access through singleflight, retries a
// transport failure once, and stores successful results under key. Rate
// limits and provider errors surface without a retry.
func (q *QueryCache) fetch(ctx context.Context, key string, retention time.Duration, fn func(context.Context) (any, error)) (any, error) {
	payload, err, shared := q.group.Do(key, func() (any, error) {
		res, err := fn(ctx)
		if err != nil && entity.IsRetryable(err) {
			q.logger.Warn("Transport failure, retrying once", "key", key, "error", err)
			res, err = fn(ctx)
		}
		if err != nil {
			return nil, err
		}
		q.store.Set(key, cacheEntry{fetchedAt: time.Now(), payload: res}, retention)
		return res, nil
	})
	if shared {
		q.logger.Debug("Joined in-flight request", "key", key)
	}
	return payload, err
}
