package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"wishlist_tracker/internal/app/provider"
	"wishlist_tracker/internal/app/service"
	"wishlist_tracker/internal/client"
	"wishlist_tracker/internal/infrastructure/configloader"
	"wishlist_tracker/internal/infrastructure/restapi"
	"wishlist_tracker/internal/infrastructure/snapshotstore"
	"wishlist_tracker/internal/pkg/logger"
	"wishlist_tracker/internal/pkg/metrics"
	"wishlist_tracker/internal/pkg/utils"

	"github.com/sirupsen/logrus"
	"go.uber.org/zap"
	"go.uber.org/zap/exp/zapslog"
)

func main() {
	// Bootstrap logger until the real one is configured.
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(os.Stdout)

	zapLogger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize zap logger: %v", err)
	}
	defer zapLogger.Sync()

	// Route slog-based package logging through the zap core.
	logger.Init(zapslog.NewHandler(zapLogger.Core(), &zapslog.HandlerOptions{}))
	appLogger := logger.NewSlogAdapter()

	cfgPath := utils.GetEnv("CONFIG_PATH", "config/config.yaml")
	cfg, err := configloader.Load(cfgPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	zapLogger.Info("Configuration loaded", zap.String("path", cfgPath))

	metrics.MustRegisterMetrics()

	coinGeckoClient := client.NewCoinGeckoClient(
		cfg.CoinGecko.BaseURL,
		cfg.CoinGecko.APIKey,
		cfg.CoinGecko.VsCurrency,
		time.Duration(cfg.CoinGecko.ClientTimeoutSeconds)*time.Second,
		cfg.CoinGecko.RequestsPerMinute,
		zapLogger,
	)
	zapLogger.Info("CoinGecko client initialized", zap.Bool("authenticated", cfg.CoinGecko.APIKey != ""))

	queryCache := service.NewQueryCache(coinGeckoClient, service.CacheTTLs{
		List:       time.Duration(cfg.Cache.ListTTLSeconds) * time.Second,
		Search:     time.Duration(cfg.Cache.SearchTTLSeconds) * time.Second,
		ByIDs:      time.Duration(cfg.Cache.ByIDsTTLSeconds) * time.Second,
		ByIDsGrace: time.Duration(cfg.Cache.ByIDsGraceSeconds) * time.Second,
	}, appLogger)

	snapshots := snapshotstore.NewFileStore(cfg.Storage.StatePath, cfg.Storage.SeedMarkerPath, appLogger)
	defaults := provider.NewDefaultCoinProvider(cfg.Wishlist.DefaultCoins, cfg.Wishlist.DefaultHoldings, appLogger)
	initialState := snapshotstore.Bootstrap(snapshots, defaults, appLogger)

	wishlistStore := service.NewWishlistService(initialState, queryCache, snapshots, appLogger)
	zapLogger.Info("Wishlist store initialized", zap.Int("ids", len(initialState.IDs)))

	// Resolve market data for any watched ids that came back from disk
	// without it.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		if err := wishlistStore.EnsureResolved(ctx); err != nil {
			zapLogger.Warn("Initial market data resolution failed", zap.Error(err))
		}
	}()

	browseList := queryCache.NewInfiniteList(cfg.Wishlist.BrowsePerPage)
	searchSession := queryCache.NewSearchSession(
		time.Duration(cfg.Cache.SearchDebounceMillis)*time.Millisecond, nil, appLogger)
	defer searchSession.Close()

	handler := restapi.NewWishlistHandler(wishlistStore, queryCache, browseList, searchSession, cfg)
	router := restapi.SetupRouter(handler, zapLogger)

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeoutSeconds) * time.Second,
	}

	go func() {
		zapLogger.Info(fmt.Sprintf("Server starting on %s", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zapLogger.Info("Shutting down server...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		zapLogger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("Server exiting")
}
