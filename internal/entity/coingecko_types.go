package entity

// MarketRecord mirrors one element of the CoinGecko /coins/markets response.
// Pointer fields are null for coins the provider has no data for. Fields the
// application ignores are still declared so a schema drift shows up in one
// place.
type MarketRecord struct {
	ID                       string        `json:"id"`
	Symbol                   string        `json:"symbol"`
	Name                     string        `json:"name"`
	Image                    string        `json:"image"`
	CurrentPrice             *float64      `json:"current_price"`
	MarketCap                *float64      `json:"market_cap"`
	MarketCapRank            *int64        `json:"market_cap_rank"`
	FullyDilutedValuation    *float64      `json:"fully_diluted_valuation"`
	TotalVolume              *float64      `json:"total_volume"`
	High24h                  *float64      `json:"high_24h"`
	Low24h                   *float64      `json:"low_24h"`
	PriceChange24h           *float64      `json:"price_change_24h"`
	PriceChangePercentage24h *float64      `json:"price_change_percentage_24h"`
	CirculatingSupply        *float64      `json:"circulating_supply"`
	TotalSupply              *float64      `json:"total_supply"`
	MaxSupply                *float64      `json:"max_supply"`
	ATH                      *float64      `json:"ath"`
	ATHChangePercentage      *float64      `json:"ath_change_percentage"`
	ATHDate                  *string       `json:"ath_date"`
	ATL                      *float64      `json:"atl"`
	ATLChangePercentage      *float64      `json:"atl_change_percentage"`
	ATLDate                  *string       `json:"atl_date"`
	LastUpdated              string        `json:"last_updated"`
	SparklineIn7d            *SparklineRaw `json:"sparkline_in_7d"`
}

// SparklineRaw is the sparkline block of a market record.
type SparklineRaw struct {
	Price []float64 `json:"price"`
}

// SearchResponse mirrors the CoinGecko /search response. The icos section
// has no stable schema and is decoded opaquely.
type SearchResponse struct {
	Coins      []SearchCoinRecord     `json:"coins"`
	Exchanges  []SearchExchangeRecord `json:"exchanges"`
	ICOs       []any                  `json:"icos"`
	Categories []SearchCategoryRecord `json:"categories"`
	NFTs       []SearchNFTRecord      `json:"nfts"`
}

// SearchCoinRecord is a coin hit of the /search response.
type SearchCoinRecord struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Symbol        string `json:"symbol"`
	MarketCapRank *int64 `json:"market_cap_rank"`
	Thumb         string `json:"thumb"`
	Large         string `json:"large"`
}

// SearchExchangeRecord is an exchange hit of the /search response.
type SearchExchangeRecord struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	MarketType string `json:"market_type"`
	Thumb      string `json:"thumb"`
	Large      string `json:"large"`
}

// SearchCategoryRecord is a category hit of the /search response. Category
// ids have switched between numbers and strings across provider versions,
// hence the loose type.
type SearchCategoryRecord struct {
	ID   any    `json:"id"`
	Name string `json:"name"`
}

// SearchNFTRecord is an NFT collection hit of the /search response.
type SearchNFTRecord struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
	Thumb  string `json:"thumb"`
}
