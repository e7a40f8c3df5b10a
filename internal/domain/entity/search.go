package entity

// SearchCoin is a coin hit from the provider search endpoint. It carries
// thumbnails instead of the full market image set.
type SearchCoin struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Symbol        string `json:"symbol"`
	MarketCapRank *int64 `json:"market_cap_rank"`
	Thumb         string `json:"thumb"`
	Large         string `json:"large"`
}

// SearchExchange is an exchange hit from the provider search endpoint.
type SearchExchange struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	MarketType string `json:"market_type"`
	Thumb      string `json:"thumb"`
	Large      string `json:"large"`
}

// SearchCategory is a category hit from the provider search endpoint.
type SearchCategory struct {
	ID   any    `json:"id"`
	Name string `json:"name"`
}

// SearchNFT is an NFT collection hit from the provider search endpoint.
type SearchNFT struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
	Thumb  string `json:"thumb"`
}

// SearchResult groups all hit kinds for one query. Slices are always
// non-nil; an absent section decodes to an empty slice.
type SearchResult struct {
	Coins      []SearchCoin     `json:"coins"`
	Exchanges  []SearchExchange `json:"exchanges"`
	Categories []SearchCategory `json:"categories"`
	NFTs       []SearchNFT      `json:"nfts"`
}

// Normalize replaces nil sections with empty slices.
func (r *SearchResult) Normalize() {
	if r.Coins == nil {
		r.Coins = []SearchCoin{}
	}
	if r.Exchanges == nil {
		r.Exchanges = []SearchExchange{}
	}
	if r.Categories == nil {
		r.Categories = []SearchCategory{}
	}
	if r.NFTs == nil {
		r.NFTs = []SearchNFT{}
	}
}
