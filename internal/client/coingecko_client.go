package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"wishlist_tracker/internal/app/port"
	"wishlist_tracker/internal/domain/entity"
	cg "wishlist_tracker/internal/entity"
	"wishlist_tracker/internal/pkg/metrics"
	"wishlist_tracker/internal/pkg/utils"

	jsoniter "github.com/json-iterator/go"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// MaxIDsPerRequest is the provider's hard limit on comma-joined ids in one
// /coins/markets request.
const MaxIDsPerRequest = 250

const apiKeyHeader = "x-cg-demo-api-key"

// coinGeckoClientImpl implements port.MarketDataClient against the
// CoinGecko HTTP API.
type coinGeckoClientImpl struct {
	client     *fasthttp.Client
	baseURL    string
	apiKey     string
	vsCurrency string
	timeout    time.Duration
	limiter    *rate.Limiter
	logger     *zap.Logger
}

// NewCoinGeckoClient creates a new CoinGecko market data client. An empty
// apiKey means requests go out unauthenticated against the public tier;
// requestsPerMinute sizes the local rate limiter accordingly.
func NewCoinGeckoClient(baseURL, apiKey, vsCurrency string, timeout time.Duration, requestsPerMinute int, logger *zap.Logger) port.MarketDataClient {
	if requestsPerMinute <= 0 {
		requestsPerMinute = 30
	}
	return &coinGeckoClientImpl{
		client:     &fasthttp.Client{},
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		vsCurrency: vsCurrency,
		timeout:    timeout,
		limiter:    rate.NewLimiter(rate.Every(time.Minute/time.Duration(requestsPerMinute)), 1),
		logger:     logger.Named("CoinGeckoClient"),
	}
}

// ListMarkets implements port.MarketDataClient.
func (c *coinGeckoClientImpl) ListMarkets(ctx context.Context, page, perPage int) (entity.MarketPage, error) {
	if page < 1 {
		page = 1
	}

	params := url.Values{}
	params.Set("vs_currency", c.vsCurrency)
	params.Set("page", strconv.Itoa(page))
	params.Set("per_page", strconv.Itoa(perPage))
	requestURL := fmt.Sprintf("%s/coins/markets?%s", c.baseURL, params.Encode())

	body, err := c.doGet(ctx, "list_markets", requestURL)
	if err != nil {
		return entity.MarketPage{}, err
	}

	var records []cg.MarketRecord
	if err := json.Unmarshal(body, &records); err != nil {
		metrics.ProviderRequestsTotal.WithLabelValues("list_markets", "transport_error").Inc()
		c.logger.Error("Failed to unmarshal markets response", zap.String("url", requestURL), zap.Error(err))
		return entity.MarketPage{}, &entity.TransportError{Op: "list_markets decode", Err: err}
	}

	coins := make([]entity.MarketCoin, 0, len(records))
	for _, rec := range records {
		coins = append(coins, toMarketCoin(rec))
	}

	c.logger.Debug("Fetched market page", zap.Int("page", page), zap.Int("perPage", perPage), zap.Int("count", len(coins)))
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

// GetByIDs implements port.MarketDataClient. Chunks are requested strictly
// sequentially to stay inside the provider's rate limits.
func (c *coinGeckoClientImpl) GetByIDs(ctx context.Context, ids []string) ([]*entity.MarketCoin, error) {
	if len(ids) == 0 {
		return []*entity.MarketCoin{}, nil
	}

	byID := make(map[string]entity.MarketCoin, len(ids))
	for _, batch := range utils.BatchStrings(ids, MaxIDsPerRequest) {
		params := url.Values{}
		params.Set("vs_currency", c.vsCurrency)
		params.Set("ids", strings.Join(batch, ","))
		params.Set("per_page", strconv.Itoa(len(batch)))
		params.Set("page", "1")
		params.Set("sparkline", "true")
		params.Set("price_change_percentage", "24h")
		requestURL := fmt.Sprintf("%s/coins/markets?%s", c.baseURL, params.Encode())

		body, err := c.doGet(ctx, "get_by_ids", requestURL)
		if err != nil {
			return nil, err
		}

		var records []cg.MarketRecord
		if err := json.Unmarshal(body, &records); err != nil {
			metrics.ProviderRequestsTotal.WithLabelValues("get_by_ids", "transport_error").Inc()
			c.logger.Error("Failed to unmarshal batch response", zap.String("url", requestURL), zap.Error(err))
			return nil, &entity.TransportError{Op: "get_by_ids decode", Err: err}
		}
		for _, rec := range records {
			if rec.ID == "" {
				continue
			}
			byID[rec.ID] = toMarketCoin(rec)
		}
	}

	// 1:1 positional correspondence with the requested ids; the provider
	// silently drops unknown ids, those become nil.
	results := make([]*entity.MarketCoin, len(ids))
	for i, id := range ids {
		if coin, ok := byID[id]; ok {
			copied := coin
			results[i] = &copied
		}
	}
	c.logger.Debug("Fetched coins by ids", zap.Int("requested", len(ids)), zap.Int("resolved", len(byID)))
	return results, nil
}

// Search implements port.MarketDataClient.
func (c *coinGeckoClientImpl) Search(ctx context.Context, query string) (entity.SearchResult, error) {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return entity.SearchResult{}, fmt.Errorf("search query is required: %w", entity.ErrInvalidArgument)
	}

	params := url.Values{}
	params.Set("query", trimmed)
	requestURL := fmt.Sprintf("%s/search?%s", c.baseURL, params.Encode())

	body, err := c.doGet(ctx, "search", requestURL)
	if err != nil {
		return entity.SearchResult{}, err
	}

	var resp cg.SearchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		metrics.ProviderRequestsTotal.WithLabelValues("search", "transport_error").Inc()
		c.logger.Error("Failed to unmarshal search response", zap.String("url", requestURL), zap.Error(err))
		return entity.SearchResult{}, &entity.TransportError{Op: "search decode", Err: err}
	}

	result := toSearchResult(resp)
	c.logger.Debug("Search completed", zap.String("query", trimmed), zap.Int("coinHits", len(result.Coins)))
	return result, nil
}

// doGet executes one GET request and maps failures onto the error taxonomy.
// No retries happen at this layer.
func (c *coinGeckoClientImpl) doGet(ctx context.Context, operation, requestURL string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		metrics.ProviderRequestsTotal.WithLabelValues(operation, "transport_error").Inc()
		return nil, &entity.TransportError{Op: operation + " limiter wait", Err: err}
	}

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	req.SetRequestURI(requestURL)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set(apiKeyHeader, c.apiKey)
	}

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	var err error
	if deadline, ok := ctx.Deadline(); ok {
		err = c.client.DoDeadline(req, resp, deadline)
	} else {
		err = c.client.DoTimeout(req, resp, c.timeout)
	}
	if err != nil {
		metrics.ProviderRequestsTotal.WithLabelValues(operation, "transport_error").Inc()
		c.logger.Error("Request to CoinGecko failed", zap.String("url", requestURL), zap.Error(err))
		return nil, &entity.TransportError{Op: operation, Err: err}
	}

	status := resp.StatusCode()
	rawBody := resp.Body()

	switch {
	case status == fasthttp.StatusTooManyRequests:
		metrics.ProviderRequestsTotal.WithLabelValues(operation, "rate_limited").Inc()
		c.logger.Warn("CoinGecko rate limit hit", zap.String("url", requestURL))
		return nil, fmt.Errorf("%s: %w", operation, entity.ErrRateLimited)
	case status < 200 || status > 299:
		metrics.ProviderRequestsTotal.WithLabelValues(operation, "provider_error").Inc()
		c.logger.Error("CoinGecko request failed",
			zap.String("url", requestURL),
			zap.Int("statusCode", status),
			zap.ByteString("responseBody", rawBody))
		return nil, &entity.ProviderError{Status: status, Body: string(rawBody)}
	}

	metrics.ProviderRequestsTotal.WithLabelValues(operation, "ok").Inc()
	// fasthttp reuses response buffers after release.
	out := make([]byte, len(rawBody))
	copy(out, rawBody)
	return out, nil
}

func toMarketCoin(rec cg.MarketRecord) entity.MarketCoin {
	coin := entity.MarketCoin{
		ID:                       rec.ID,
		Symbol:                   rec.Symbol,
		Name:                     rec.Name,
		Image:                    rec.Image,
		CurrentPrice:             rec.CurrentPrice,
		MarketCapRank:            rec.MarketCapRank,
		PriceChangePercentage24h: rec.PriceChangePercentage24h,
		LastUpdated:              rec.LastUpdated,
	}
	if rec.SparklineIn7d != nil {
		coin.Sparkline7d = entity.Sparkline{Price: rec.SparklineIn7d.Price}
	}
	return coin
}

func toSearchResult(resp cg.SearchResponse) entity.SearchResult {
	result := entity.SearchResult{}
	for _, c := range resp.Coins {
		result.Coins = append(result.Coins, entity.SearchCoin{
			ID:            c.ID,
			Name:          c.Name,
			Symbol:        c.Symbol,
			MarketCapRank: c.MarketCapRank,
			Thumb:         c.Thumb,
			Large:         c.Large,
		})
	}
	for _, e := range resp.Exchanges {
		result.Exchanges = append(result.Exchanges, entity.SearchExchange{
			ID:         e.ID,
			Name:       e.Name,
			MarketType: e.MarketType,
			Thumb:      e.Thumb,
			Large:      e.Large,
		})
	}
	for _, cat := range resp.Categories {
		result.Categories = append(result.Categories, entity.SearchCategory{ID: cat.ID, Name: cat.Name})
	}
	for _, n := range resp.NFTs {
		result.NFTs = append(result.NFTs, entity.SearchNFT{
			ID:     n.ID,
			Name:   n.Name,
			Symbol: n.Symbol,
			Thumb:  n.Thumb,
		})
	}
	result.Normalize()
	return result
}
