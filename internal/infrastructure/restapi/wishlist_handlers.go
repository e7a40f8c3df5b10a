package restapi

import (
	"errors"
	"net/http"
	"strconv"

	"wishlist_tracker/internal/app/port"
	"wishlist_tracker/internal/app/service"
	"wishlist_tracker/internal/domain/entity"
	"wishlist_tracker/internal/infrastructure/configloader"

	"github.com/gin-gonic/gin"
)

// WishlistResponse is the read payload for the wishlist endpoint: the raw
// state plus the derived aggregates the header view consumes.
type WishlistResponse struct {
	Data struct {
		IDs         []string                      `json:"ids"`
		Entities    map[string]*entity.StoredCoin `json:"entities"`
		Total       float64                       `json:"total"`
		Slices      []entity.AllocationSlice      `json:"slices"`
		LastUpdated string                        `json:"lastUpdated"`
	} `json:"data"`
	StatusMessage string `json:"status_message,omitempty"`
}

// WishlistHandler exposes the store mutation interface and the browse and
// search flows over HTTP.
type WishlistHandler struct {
	store  port.WishlistStore
	cache  *service.QueryCache
	browse *service.InfiniteList
	search *service.SearchSession
	cfg    *configloader.Config
}

// NewWishlistHandler creates the handler set around the wired services.
func NewWishlistHandler(store port.WishlistStore, cache *service.QueryCache, browse *service.InfiniteList, search *service.SearchSession, cfg *configloader.Config) *WishlistHandler {
	return &WishlistHandler{
		store:  store,
		cache:  cache,
		browse: browse,
		search: search,
		cfg:    cfg,
	}
}

// GetWishlistHandler returns the current state and derived aggregates.
func (h *WishlistHandler) GetWishlistHandler(c *gin.Context) {
	c.JSON(http.StatusOK, h.wishlistResponse(""))
}

// AddCoinHandler watches a coin and resolves its market data.
func (h *WishlistHandler) AddCoinHandler(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "coin id is required"})
		return
	}

	h.store.Add(id)

	// Resolution failure leaves the id watched but unresolved; the entry
	// fills in on the next successful fetch.
	msg := ""
	if err := h.store.EnsureResolved(c.Request.Context()); err != nil {
		msg = "Coin added. Market data could not be fetched: " + err.Error()
	}
	c.JSON(http.StatusOK, h.wishlistResponse(msg))
}

// RemoveCoinHandler stops watching a coin.
func (h *WishlistHandler) RemoveCoinHandler(c *gin.Context) {
	h.store.Remove(c.Param("id"))
	c.JSON(http.StatusOK, h.wishlistResponse(""))
}

type holdingsRequest struct {
	Holdings string `json:"holdings"`
}

// UpdateHoldingsHandler replaces the holdings text for a watched coin.
func (h *WishlistHandler) UpdateHoldingsHandler(c *gin.Context) {
	var req holdingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}
	h.store.UpdateHoldings(c.Param("id"), req.Holdings)
	c.JSON(http.StatusOK, h.wishlistResponse(""))
}

// RefreshHandler force-fetches fresh prices for every watched coin. A
// failed fetch leaves the existing state untouched.
func (h *WishlistHandler) RefreshHandler(c *gin.Context) {
	if err := h.store.Refresh(c.Request.Context()); err != nil {
		h.writeFetchError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.wishlistResponse("Prices refreshed."))
}

// ListCoinsHandler returns one page of market listings.
func (h *WishlistHandler) ListCoinsHandler(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", strconv.Itoa(h.cfg.Wishlist.BrowsePerPage)))

	result, err := h.cache.TrendingCoins(c.Request.Context(), page, perPage)
	if err != nil {
		h.writeFetchError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// BrowseHandler returns everything the infinite list accumulated so far.
func (h *WishlistHandler) BrowseHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"coins":       h.browse.Coins(),
		"pages":       h.browse.Pages(),
		"hasNextPage": h.browse.HasNextPage(),
		"isFetching":  h.browse.IsFetching(),
	})
}

// BrowseNextHandler fetches the next page into the infinite list. Calling
// it while a fetch is in flight or past the last page is a harmless no-op.
func (h *WishlistHandler) BrowseNextHandler(c *gin.Context) {
	if err := h.browse.FetchNextPage(c.Request.Context()); err != nil {
		h.writeFetchError(c, err)
		return
	}
	h.BrowseHandler(c)
}

// SearchHandler runs a one-shot cached search.
func (h *WishlistHandler) SearchHandler(c *gin.Context) {
	result, err := h.cache.SearchCoins(c.Request.Context(), c.Query("q"))
	if err != nil {
		h.writeFetchError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type searchInputRequest struct {
	Query string `json:"query"`
}

// SearchInputHandler feeds one keystroke-level input into the debounced
// search session. The provider call fires only after input quiesces.
func (h *WishlistHandler) SearchInputHandler(c *gin.Context) {
	var req searchInputRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}
	h.search.SetQuery(req.Query)
	c.Status(http.StatusAccepted)
}

// SearchResultsHandler returns the session's latest committed results.
func (h *WishlistHandler) SearchResultsHandler(c *gin.Context) {
	query, results, err := h.search.Results()
	resp := gin.H{"query": query, "results": results}
	if err != nil {
		resp["error"] = err.Error()
	}
	c.JSON(http.StatusOK, resp)
}

func (h *WishlistHandler) wishlistResponse(msg string) WishlistResponse {
	state := h.store.Snapshot()
	resp := WishlistResponse{StatusMessage: msg}
	resp.Data.IDs = state.IDs
	resp.Data.Entities = state.Entities
	resp.Data.Total = entity.PortfolioTotal(state)
	resp.Data.Slices = entity.AllocationSlices(state)
	resp.Data.LastUpdated = entity.LastUpdatedDisplay(state)
	return resp
}

// writeFetchError maps the error taxonomy onto HTTP statuses. The message
// text travels with the response for inline display.
func (h *WishlistHandler) writeFetchError(c *gin.Context, err error) {
	status := http.StatusBadGateway
	var providerErr *entity.ProviderError
	var transportErr *entity.TransportError
	switch {
	case errors.Is(err, entity.ErrInvalidArgument):
		status = http.StatusBadRequest
	case errors.Is(err, entity.ErrRateLimited):
		status = http.StatusTooManyRequests
	case errors.As(err, &providerErr):
		status = http.StatusBadGateway
	case errors.As(err, &transportErr):
		status = http.StatusGatewayTimeout
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
