package configloader

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ServerConfig holds server-specific configurations.
type ServerConfig struct {
	Port                string `yaml:"port"`
	ReadTimeoutSeconds  int    `yaml:"readTimeoutSeconds"`
	WriteTimeoutSeconds int    `yaml:"writeTimeoutSeconds"`
	IdleTimeoutSeconds  int    `yaml:"idleTimeoutSeconds"`
}

// LoggingConfig holds logging-specific configurations.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// CoinGeckoConfig holds CoinGecko API specific configurations.
type CoinGeckoConfig struct {
	APIKey               string `yaml:"apiKey"`
	BaseURL              string `yaml:"baseURL"`
	ClientTimeoutSeconds int    `yaml:"clientTimeoutSeconds"`
	VsCurrency           string `yaml:"vsCurrency"`
	RequestsPerMinute    int    `yaml:"requestsPerMinute"`
}

// CacheConfig holds the query cache staleness windows.
type CacheConfig struct {
	ListTTLSeconds       int `yaml:"listTTLSeconds"`
	SearchTTLSeconds     int `yaml:"searchTTLSeconds"`
	ByIDsTTLSeconds      int `yaml:"byIdsTTLSeconds"`
	ByIDsGraceSeconds    int `yaml:"byIdsGraceSeconds"`
	SearchDebounceMillis int `yaml:"searchDebounceMillis"`
}

// StorageConfig holds the durable snapshot paths.
type StorageConfig struct {
	StatePath      string `yaml:"statePath"`
	SeedMarkerPath string `yaml:"seedMarkerPath"`
}

// WishlistConfig holds wishlist seeding and browsing settings.
type WishlistConfig struct {
	DefaultCoins    []string          `yaml:"defaultCoins"`
	DefaultHoldings map[string]string `yaml:"defaultHoldings"`
	BrowsePerPage   int               `yaml:"browsePerPage"`
}

// Config is the top-level configuration structure.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Logging   LoggingConfig   `yaml:"logging"`
	CoinGecko CoinGeckoConfig `yaml:"coingecko"`
	Cache     CacheConfig     `yaml:"cache"`
	Storage   StorageConfig   `yaml:"storage"`
	Wishlist  WishlistConfig  `yaml:"wishlist"`
}

// Load reads the YAML configuration file from the given path, unmarshals it
// and applies defaults for anything left unset.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config data from %s: %w", path, err)
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == "" {
		cfg.Server.Port = ":8080"
	}
	if cfg.Server.ReadTimeoutSeconds <= 0 {
		cfg.Server.ReadTimeoutSeconds = 10
	}
	if cfg.Server.WriteTimeoutSeconds <= 0 {
		cfg.Server.WriteTimeoutSeconds = 10
	}
	if cfg.Server.IdleTimeoutSeconds <= 0 {
		cfg.Server.IdleTimeoutSeconds = 60
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}

	if cfg.CoinGecko.BaseURL == "" {
		cfg.CoinGecko.BaseURL = "https://api.coingecko.com/api/v3" // Default public API
	}
	if cfg.CoinGecko.ClientTimeoutSeconds <= 0 {
		cfg.CoinGecko.ClientTimeoutSeconds = 10
	}
	if cfg.CoinGecko.VsCurrency == "" {
		cfg.CoinGecko.VsCurrency = "usd"
	}
	if cfg.CoinGecko.RequestsPerMinute <= 0 {
		// Public tier allowance; authenticated tiers can raise this.
		cfg.CoinGecko.RequestsPerMinute = 30
	}
	// No default for APIKey; absent key means unauthenticated public-tier calls.

	if cfg.Cache.ListTTLSeconds <= 0 {
		cfg.Cache.ListTTLSeconds = 120
	}
	if cfg.Cache.SearchTTLSeconds <= 0 {
		cfg.Cache.SearchTTLSeconds = 60
	}
	if cfg.Cache.ByIDsTTLSeconds <= 0 {
		cfg.Cache.ByIDsTTLSeconds = 300
	}
	if cfg.Cache.ByIDsGraceSeconds <= 0 {
		cfg.Cache.ByIDsGraceSeconds = 600
	}
	if cfg.Cache.SearchDebounceMillis <= 0 {
		cfg.Cache.SearchDebounceMillis = 500
	}

	if cfg.Storage.StatePath == "" {
		cfg.Storage.StatePath = "data/wishlist.json"
	}
	if cfg.Storage.SeedMarkerPath == "" {
		cfg.Storage.SeedMarkerPath = "data/wishlist.seeded.json"
	}

	if cfg.Wishlist.BrowsePerPage <= 0 {
		cfg.Wishlist.BrowsePerPage = 12
	}
}
