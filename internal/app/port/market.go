package port

import (
	"context"

	"wishlist_tracker/internal/domain/entity"
)

// MarketDataClient defines the interface for the external market-data
// provider. Implementations normalize transport and provider failures into
// the entity error taxonomy and never retry.
type MarketDataClient interface {
	// ListMarkets fetches one page of market listings. The cursor's
	// HasNextPage is true iff the page came back full.
	ListMarkets(ctx context.Context, page, perPage int) (entity.MarketPage, error)

	// GetByIDs fetches market records for the given ids, transparently
	// chunking to the provider limit with strictly sequential chunk
	// requests. The result is positionally 1:1 with ids; entries the
	// provider dropped are nil.
	GetByIDs(ctx context.Context, ids []string) ([]*entity.MarketCoin, error)

	// Search runs a free-text search. An empty or whitespace-only query
	// fails with entity.ErrInvalidArgument.
	Search(ctx context.Context, query string) (entity.SearchResult, error)
}
