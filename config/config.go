package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Search    SearchConfig
	Images    ImagesConfig
	Catalog   CatalogConfig
	Cache     CacheConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// SearchConfig holds Custom Search API configuration
type SearchConfig struct {
	APIKey      string        `mapstructure:"api_key"`
	EngineID    string        `mapstructure:"engine_id"`
	BaseURL     string        `mapstructure:"base_url"`
	BaseQuery   string        `mapstructure:"base_query"`
	ResultCount int           `mapstructure:"result_count"`
	Timeout     time.Duration `mapstructure:"timeout"`
	Cooldown    time.Duration `mapstructure:"cooldown"` // wait after HTTP 429, doubled per attempt
	MaxAttempts int           `mapstructure:"max_attempts"`
	// Stores is the storefront allow-list used both for site: filters and source labels
	Stores []string `mapstructure:"stores"`
}

// ImagesConfig holds image cache configuration
type ImagesConfig struct {
	CacheDir        string        `mapstructure:"cache_dir"`
	PlaceholderPath string        `mapstructure:"placeholder_path"`
	PlaceholderURL  string        `mapstructure:"placeholder_url"`
	Attempts        int           `mapstructure:"attempts"`
	Timeout         time.Duration `mapstructure:"timeout"`
	RetryDelay      time.Duration `mapstructure:"retry_delay"`
}

// CatalogConfig holds catalog run and rendering configuration
type CatalogConfig struct {
	Queries     []string      `mapstructure:"queries"`
	QueryPause  time.Duration `mapstructure:"query_pause"`
	OutputPath  string        `mapstructure:"output_path"`
	AssetPrefix string        `mapstructure:"asset_prefix"`

	QuickSearches []string `mapstructure:"quick_searches"`
}

// CacheConfig holds the API query result cache configuration
type CacheConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIP  float64 `mapstructure:"per_ip"` // requests per second per client
	Burst  int     `mapstructure:"burst"`
	Search float64 `mapstructure:"search"` // outbound search requests per second
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	// Secrets may live in a local .env file instead of the shell environment
	if err := loadEnvFile(); err != nil {
		return nil, fmt.Errorf("error reading .env file: %w", err)
	}

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/storehelper/")

	v.SetEnvPrefix("STOREHELPER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Config file is optional; env vars and defaults are enough
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// loadEnvFile loads variables from ./.env without overriding ones already set
func loadEnvFile() error {
	if _, err := os.Stat(".env"); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	return gotenv.Load(".env")
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:*"})

	// Search defaults. Credentials have no default on purpose.
	v.SetDefault("search.api_key", "")
	v.SetDefault("search.engine_id", "")
	v.SetDefault("search.base_url", "https://www.googleapis.com/customsearch/v1")
	v.SetDefault("search.base_query", "Taylor Swift merchandise")
	v.SetDefault("search.result_count", 10)
	v.SetDefault("search.timeout", "10s")
	v.SetDefault("search.cooldown", "60s")
	v.SetDefault("search.max_attempts", 3)
	v.SetDefault("search.stores", []string{
		"store.taylorswift.com",
		"shop.universalmusic.com",
		"amazon.com/Taylor-Swift",
		"etsy.com/market/taylor_swift",
	})

	// Image cache defaults
	v.SetDefault("images.cache_dir", "cache/images")
	v.SetDefault("images.placeholder_path", "images/placeholder.png")
	v.SetDefault("images.placeholder_url", "https://via.placeholder.com/400x400.png?text=Product+Image+Not+Available")
	v.SetDefault("images.attempts", 3)
	v.SetDefault("images.timeout", "10s")
	v.SetDefault("images.retry_delay", "1s")

	// Catalog defaults
	v.SetDefault("catalog.queries", []string{
		"eras tour merch",
		"official store products",
		"collectibles authentic",
		"new arrivals",
	})
	v.SetDefault("catalog.query_pause", "2s")
	v.SetDefault("catalog.output_path", "index.html")
	v.SetDefault("catalog.asset_prefix", "../")
	v.SetDefault("catalog.quick_searches", []string{"eras tour", "merchandise", "clothing"})

	// API result cache defaults
	v.SetDefault("cache.ttl", "1h")

	// Rate limit defaults
	v.SetDefault("ratelimit.per_ip", 5)
	v.SetDefault("ratelimit.burst", 10)
	v.SetDefault("ratelimit.search", 1)
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Search.APIKey == "" {
		return fmt.Errorf("search API key is required (set STOREHELPER_SEARCH_API_KEY)")
	}

	if config.Search.EngineID == "" {
		return fmt.Errorf("search engine id is required (set STOREHELPER_SEARCH_ENGINE_ID)")
	}

	if len(config.Search.Stores) == 0 {
		return fmt.Errorf("at least one store must be configured")
	}

	if config.Search.MaxAttempts < 1 {
		return fmt.Errorf("search max_attempts must be at least 1, got: %d", config.Search.MaxAttempts)
	}

	if config.Images.Attempts < 1 {
		return fmt.Errorf("images attempts must be at least 1, got: %d", config.Images.Attempts)
	}

	if config.Catalog.OutputPath == "" {
		return fmt.Errorf("catalog output path is required")
	}

	return nil
}
