package configloader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "{}"))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Port)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "https://api.coingecko.com/api/v3", cfg.CoinGecko.BaseURL)
	assert.Equal(t, "usd", cfg.CoinGecko.VsCurrency)
	assert.Equal(t, 30, cfg.CoinGecko.RequestsPerMinute)
	assert.Equal(t, 120, cfg.Cache.ListTTLSeconds)
	assert.Equal(t, 60, cfg.Cache.SearchTTLSeconds)
	assert.Equal(t, 300, cfg.Cache.ByIDsTTLSeconds)
	assert.Equal(t, 600, cfg.Cache.ByIDsGraceSeconds)
	assert.Equal(t, 500, cfg.Cache.SearchDebounceMillis)
	assert.Equal(t, "data/wishlist.json", cfg.Storage.StatePath)
	assert.Equal(t, "data/wishlist.seeded.json", cfg.Storage.SeedMarkerPath)
	assert.Equal(t, 12, cfg.Wishlist.BrowsePerPage)
}

func TestLoadOverrides(t *testing.T) {
	path := writeConfig(t, `
server:
  port: ":9090"
coingecko:
  apiKey: "CG-abc"
  vsCurrency: "eur"
cache:
  searchDebounceMillis: 250
wishlist:
  defaultCoins: ["bitcoin", "ethereum"]
  defaultHoldings:
    bitcoin: "0.5"
  browsePerPage: 24
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Port)
	assert.Equal(t, "CG-abc", cfg.CoinGecko.APIKey)
	assert.Equal(t, "eur", cfg.CoinGecko.VsCurrency)
	assert.Equal(t, 250, cfg.Cache.SearchDebounceMillis)
	assert.Equal(t, []string{"bitcoin", "ethereum"}, cfg.Wishlist.DefaultCoins)
	assert.Equal(t, "0.5", cfg.Wishlist.DefaultHoldings["bitcoin"])
	assert.Equal(t, 24, cfg.Wishlist.BrowsePerPage)
	assert.Equal(t, 10, cfg.CoinGecko.ClientTimeoutSeconds, "unset fields still get defaults")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}
