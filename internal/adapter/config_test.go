package adapter

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
providers:
  - region: united_kingdom
    url: http://localhost:9000/uk
cache:
  dir: /tmp/boxoffice-test
  search_freshness: 90m
logging:
  level: debug
`
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if len(cfg.Providers) != 1 || cfg.Providers[0].Region != RegionUnitedKingdom {
		t.Errorf("providers = %+v", cfg.Providers)
	}
	if cfg.Cache.SearchFreshness != 90*time.Minute {
		t.Errorf("search_freshness = %v", cfg.Cache.SearchFreshness)
	}
	if cfg.Cache.FetchTimeout != 30*time.Second {
		t.Errorf("fetch_timeout default lost: %v", cfg.Cache.FetchTimeout)
	}
	if len(cfg.Ratings) != 2 {
		t.Errorf("ratings defaults lost: %+v", cfg.Ratings)
	}
	if parseLogLevel(cfg.Logging.Level).String() != "DEBUG" {
		t.Errorf("level = %q", cfg.Logging.Level)
	}
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("BOXOFFICE_CACHE_DIR", "/var/cache/boxoffice")
	t.Setenv("BOXOFFICE_METRICS_ADDR", ":9464")

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("ui:\n  default_sort: score\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Cache.Dir != "/var/cache/boxoffice" {
		t.Errorf("cache.dir = %q", cfg.Cache.Dir)
	}
	if cfg.Metrics.Addr != ":9464" {
		t.Errorf("metrics.addr = %q", cfg.Metrics.Addr)
	}
	if cfg.UI.DefaultSort != "score" {
		t.Errorf("ui.default_sort = %q", cfg.UI.DefaultSort)
	}
}

func TestSaveConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := DefaultConfig()
	cfg.Cache.SearchFreshness = 2 * time.Hour
	cfg.Cache.SearchRetryAfter = 45 * time.Second
	cfg.Providers = cfg.Providers[:1]
	cfg.Providers[0].APIKey = "secret"
	cfg.Player.Command = "mpv"
	cfg.Player.Args = []string{"--fs"}

	if err := SaveConfig(cfg, path); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}
	got, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if got.Cache.SearchFreshness != 2*time.Hour {
		t.Errorf("search_freshness = %v", got.Cache.SearchFreshness)
	}
	if got.Cache.SearchRetryAfter != 45*time.Second {
		t.Errorf("search_retry_after = %v", got.Cache.SearchRetryAfter)
	}
	if len(got.Providers) != 1 || got.Providers[0].APIKey != "secret" {
		t.Errorf("providers = %+v", got.Providers)
	}
	if got.Player.Command != "mpv" || len(got.Player.Args) != 1 {
		t.Errorf("player = %+v", got.Player)
	}
}

func TestLoadConfigMissingExplicitFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected an error for a missing explicit config file")
	}
}

func TestValidateRequiresProviderURL(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Providers[1].URL = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error")
	}
}
