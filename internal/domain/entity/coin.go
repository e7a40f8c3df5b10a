package entity

// Sparkline holds an ordered sequence of historical price samples.
type Sparkline struct {
	Price []float64 `json:"price"`
}

// MarketCoin is the subset of a provider market record the application
// depends on. Pointer fields are nullable in provider responses.
type MarketCoin struct {
	ID                       string    `json:"id"`
	Symbol                   string    `json:"symbol"`
	Name                     string    `json:"name"`
	Image                    string    `json:"image"`
	CurrentPrice             *float64  `json:"current_price"`
	MarketCapRank            *int64    `json:"market_cap_rank"`
	PriceChangePercentage24h *float64  `json:"price_change_percentage_24h"`
	Sparkline7d              Sparkline `json:"sparkline_in_7d"`
	LastUpdated              string    `json:"last_updated"`
}

// PageCursor describes the position of a market page. HasNextPage is a
// heuristic: true iff the page came back full.
type PageCursor struct {
	CurrentPage int  `json:"currentPage"`
	PerPage     int  `json:"perPage"`
	HasNextPage bool `json:"hasNextPage"`
	HasPrevPage bool `json:"hasPrevPage"`
}

// MarketPage is one page of market listings together with its cursor.
type MarketPage struct {
	Data       []MarketCoin `json:"data"`
	Pagination PageCursor   `json:"pagination"`
}
