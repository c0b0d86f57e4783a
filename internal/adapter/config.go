package adapter

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Region identifies a listings backend
type Region string

const (
	RegionNorthAmerica  Region = "north_america"
	RegionUnitedKingdom Region = "united_kingdom"
)

// RatingsVendor identifies a ratings backend
type RatingsVendor string

const (
	VendorRottenTomatoes RatingsVendor = "rottentomatoes"
	VendorMetacritic     RatingsVendor = "metacritic"
)

// Config holds all application configuration
type Config struct {
	Providers []ProviderConfig `mapstructure:"providers"`
	Ratings   []RatingsConfig  `mapstructure:"ratings"`
	Geocoder  ServiceConfig    `mapstructure:"geocoder"`
	Artwork   ServiceConfig    `mapstructure:"artwork"`
	Cache     CacheConfig      `mapstructure:"cache"`
	Logging   LoggingConfig    `mapstructure:"logging"`
	Metrics   MetricsConfig    `mapstructure:"metrics"`
	UI        UIConfig         `mapstructure:"ui"`
	Player    PlayerConfig     `mapstructure:"player"`
}

// ProviderConfig configures one regional listings backend. Order matters:
// it is the data provider index.
type ProviderConfig struct {
	Region Region `mapstructure:"region"`
	URL    string `mapstructure:"url"`
	APIKey string `mapstructure:"api_key"`
}

// RatingsConfig configures one ratings vendor. Order matters: it is the
// ratings provider index.
type RatingsConfig struct {
	Vendor RatingsVendor `mapstructure:"vendor"`
	URL    string        `mapstructure:"url"`
	APIKey string        `mapstructure:"api_key"`
}

// ServiceConfig configures a single HTTP collaborator. An empty URL
// disables it.
type ServiceConfig struct {
	URL    string `mapstructure:"url"`
	APIKey string `mapstructure:"api_key"`
}

// CacheConfig holds local cache configuration
type CacheConfig struct {
	Dir              string        `mapstructure:"dir"`                // Empty keeps everything in memory
	SearchFreshness  time.Duration `mapstructure:"search_freshness"`   // How long listings count as current
	RetryAfter       time.Duration `mapstructure:"retry_after"`        // Back-off for failed artifacts
	SearchRetryAfter time.Duration `mapstructure:"search_retry_after"` // Back-off for failed listings
	FetchTimeout     time.Duration `mapstructure:"fetch_timeout"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// MetricsConfig holds the prometheus endpoint configuration
type MetricsConfig struct {
	Addr string `mapstructure:"addr"` // e.g. ":9464"; empty disables
}

// UIConfig holds UI configuration
type UIConfig struct {
	DefaultSort string `mapstructure:"default_sort"` // Empty = the saved order
}

// PlayerConfig holds the trailer player configuration
type PlayerConfig struct {
	Command string   `mapstructure:"command"` // Empty = auto-detect
	Args    []string `mapstructure:"args"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Providers: []ProviderConfig{
			{Region: RegionNorthAmerica, URL: "https://api.boxoffice.example/na"},
			{Region: RegionUnitedKingdom, URL: "https://api.boxoffice.example/uk"},
		},
		Ratings: []RatingsConfig{
			{Vendor: VendorRottenTomatoes, URL: "https://ratings.boxoffice.example/rt"},
			{Vendor: VendorMetacritic, URL: "https://ratings.boxoffice.example/mc"},
		},
		Geocoder: ServiceConfig{URL: "https://geo.boxoffice.example"},
		Artwork:  ServiceConfig{URL: "https://art.boxoffice.example"},
		Cache: CacheConfig{
			Dir:              defaultCachePath(),
			SearchFreshness:  6 * time.Hour,
			RetryAfter:       5 * time.Minute,
			SearchRetryAfter: 30 * time.Second,
			FetchTimeout:     30 * time.Second,
		},
		Logging: LoggingConfig{
			File:  defaultLogPath(),
			Level: "INFO",
		},
		UI: UIConfig{
			DefaultSort: "",
		},
	}
}

// defaultLogPath returns the default log file path for the current OS
func defaultLogPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "boxoffice", "boxoffice.log")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "boxoffice", "boxoffice.log")
	}
}

// defaultConfigPath returns the default config directory for the current OS
func defaultConfigPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "boxoffice")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "boxoffice")
	}
}

// defaultCachePath returns the default cache directory path for the current OS
func defaultCachePath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("LOCALAPPDATA"), "boxoffice", "cache")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "boxoffice", "cache")
	}
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix("BOXOFFICE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults make scalar keys visible to AutomaticEnv (BOXOFFICE_CACHE_DIR etc.)
	def := DefaultConfig()
	v.SetDefault("cache.dir", def.Cache.Dir)
	v.SetDefault("cache.search_freshness", def.Cache.SearchFreshness)
	v.SetDefault("cache.retry_after", def.Cache.RetryAfter)
	v.SetDefault("cache.search_retry_after", def.Cache.SearchRetryAfter)
	v.SetDefault("cache.fetch_timeout", def.Cache.FetchTimeout)
	v.SetDefault("logging.file", def.Logging.File)
	v.SetDefault("logging.level", def.Logging.Level)
	v.SetDefault("metrics.addr", def.Metrics.Addr)
	v.SetDefault("geocoder.url", def.Geocoder.URL)
	v.SetDefault("geocoder.api_key", "")
	v.SetDefault("artwork.url", def.Artwork.URL)
	v.SetDefault("artwork.api_key", "")
	v.SetDefault("player.command", def.Player.Command)
	v.SetDefault("ui.default_sort", def.UI.DefaultSort)
	return v
}

// LoadConfig loads configuration from a file and the environment. With an
// empty path the default config directory and the working directory are
// searched; a missing file is not an error.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	v := newViper()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(defaultConfigPath())
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the parts of the configuration the engine cannot run without.
func (c *Config) Validate() error {
	if len(c.Providers) == 0 {
		return fmt.Errorf("config: at least one listings provider is required")
	}
	for i, p := range c.Providers {
		if p.URL == "" {
			return fmt.Errorf("config: providers[%d] (%s) has no url", i, p.Region)
		}
	}
	return nil
}

// SaveConfig writes cfg to path, or to the default location when path is empty.
func SaveConfig(cfg *Config, path string) error {
	if path == "" {
		path = filepath.Join(defaultConfigPath(), "config.yaml")
	}

	// Ensure config directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")

	providers := make([]map[string]any, 0, len(cfg.Providers))
	for _, p := range cfg.Providers {
		providers = append(providers, map[string]any{
			"region":  string(p.Region),
			"url":     p.URL,
			"api_key": p.APIKey,
		})
	}
	v.Set("providers", providers)

	ratings := make([]map[string]any, 0, len(cfg.Ratings))
	for _, r := range cfg.Ratings {
		ratings = append(ratings, map[string]any{
			"vendor":  string(r.Vendor),
			"url":     r.URL,
			"api_key": r.APIKey,
		})
	}
	v.Set("ratings", ratings)

	v.Set("geocoder.url", cfg.Geocoder.URL)
	v.Set("geocoder.api_key", cfg.Geocoder.APIKey)
	v.Set("artwork.url", cfg.Artwork.URL)
	v.Set("artwork.api_key", cfg.Artwork.APIKey)

	v.Set("cache.dir", cfg.Cache.Dir)
	v.Set("cache.search_freshness", cfg.Cache.SearchFreshness.String())
	v.Set("cache.retry_after", cfg.Cache.RetryAfter.String())
	v.Set("cache.search_retry_after", cfg.Cache.SearchRetryAfter.String())
	v.Set("cache.fetch_timeout", cfg.Cache.FetchTimeout.String())

	v.Set("logging.file", cfg.Logging.File)
	v.Set("logging.level", cfg.Logging.Level)
	v.Set("metrics.addr", cfg.Metrics.Addr)

	v.Set("ui.default_sort", cfg.UI.DefaultSort)
	v.Set("player.command", cfg.Player.Command)
	v.Set("player.args", cfg.Player.Args)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// ClearCache removes the on-disk cache
func ClearCache(cfg *Config) error {
	if cfg.Cache.Dir == "" {
		return nil
	}
	if err := os.RemoveAll(cfg.Cache.Dir); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	return nil
}
