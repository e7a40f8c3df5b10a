package restapi

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// SetupRouter configures and returns the Gin router.
func SetupRouter(handler *WishlistHandler, logger *zap.Logger) *gin.Engine {
	router := gin.New()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true // Adjust for production
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	router.Use(cors.New(corsConfig))

	router.Use(ZapLoggerMiddleware(logger))
	router.Use(gin.Recovery())

	v1 := router.Group("/api/v1")
	{
		v1.GET("/wishlist", handler.GetWishlistHandler)
		v1.POST("/wishlist/refresh", handler.RefreshHandler)
		v1.POST("/wishlist/:id", handler.AddCoinHandler)
		v1.DELETE("/wishlist/:id", handler.RemoveCoinHandler)
		v1.PUT("/wishlist/:id/holdings", handler.UpdateHoldingsHandler)

		v1.GET("/coins", handler.ListCoinsHandler)
		v1.GET("/coins/browse", handler.BrowseHandler)
		v1.POST("/coins/browse/next", handler.BrowseNextHandler)

		v1.GET("/search", handler.SearchHandler)
		v1.POST("/search/input", handler.SearchInputHandler)
		v1.GET("/search/results", handler.SearchResultsHandler)
	}

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	return router
}
