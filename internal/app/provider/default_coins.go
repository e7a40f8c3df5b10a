package provider

import (
	"wishlist_tracker/internal/app/port"
	"wishlist_tracker/internal/domain/entity"
)

// Built-in first-run defaults, used when the configuration supplies none.
var defaultHoldings = map[string]string{
	"bitcoin":  "0.0050",
	"ethereum": "0.2500",
	"solana":   "2.0000",
	"cardano":  "150",
	"dogecoin": "500",
}

var defaultCoinOrder = []string{"bitcoin", "ethereum", "solana", "cardano", "dogecoin"}

type defaultCoinProviderImpl struct {
	order    []string
	holdings map[string]string
	logger   port.Logger
}

// NewDefaultCoinProvider creates the first-run default provider. Passing a
// nil or empty coin list selects the built-in defaults.
func NewDefaultCoinProvider(order []string, holdings map[string]string, logger port.Logger) port.DefaultCoinProvider {
	if len(order) == 0 {
		order = defaultCoinOrder
		holdings = defaultHoldings
	}
	return &defaultCoinProviderImpl{order: order, holdings: holdings, logger: logger}
}

// DefaultState builds the seeded wishlist: every default id watched with
// its default holdings, unresolved until the first market fetch fills in
// prices.
func (p *defaultCoinProviderImpl) DefaultState() entity.WishlistState {
	state := entity.NewWishlistState()
	for _, id := range p.order {
		holdings := p.holdings[id]
		if holdings == "" {
			holdings = "0"
		}
		state.IDs = append(state.IDs, id)
		state.Entities[id] = &entity.StoredCoin{
			MarketCoin: entity.MarketCoin{ID: id},
			Holdings:   holdings,
		}
	}
	p.logger.Debug("Built default wishlist state", "ids", len(state.IDs))
	return state
}
