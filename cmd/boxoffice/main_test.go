package main

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
)

const showtimesBody = `{
  "movies": [
    {"id": "m1", "title": "Dune: Part Two", "release_date": "2024-03-01", "score": 93, "runtime": 166},
    {"id": "m2", "title": "Wicked", "score": 88}
  ],
  "theaters": [
    {"id": "t1", "name": "Castro", "address": "429 Castro St", "lat": 37.762, "lng": -122.435,
     "showtimes": [{"movie_id": "m1", "times": ["19:30"]}]},
    {"id": "t2", "name": "Roxie", "address": "3117 16th St", "lat": 37.765, "lng": -122.422,
     "showtimes": [{"movie_id": "m2", "times": ["20:00"]}]}
  ]
}`

type cliEnv struct {
	configPath string
	cacheDir   string
	showtimes  atomic.Int32
}

func setupCLIEnv(t *testing.T) *cliEnv {
	t.Helper()
	env := &cliEnv{}

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/showtimes", func(w http.ResponseWriter, r *http.Request) {
		env.showtimes.Add(1)
		w.Write([]byte(showtimesBody))
	})
	mux.HandleFunc("/v1/geocode", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("q") != "94107" {
			w.Write([]byte(`{"results":[]}`))
			return
		}
		w.Write([]byte(`{"results":[{"lat":37.7599,"lng":-122.4148,"city":"San Francisco","state":"CA","postal_code":"94107"}]}`))
	})
	mux.HandleFunc("/v1/movies/search", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results":[]}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	base := t.TempDir()
	env.cacheDir = filepath.Join(base, "cache")
	env.configPath = filepath.Join(base, "config.yaml")
	cfg := fmt.Sprintf(`
providers:
  - region: north_america
    url: %[1]s
ratings:
  - vendor: rottentomatoes
    url: %[1]s
geocoder:
  url: %[1]s
artwork:
  url: %[1]s
cache:
  dir: %[2]s
logging:
  file: %[3]s
`, srv.URL, env.cacheDir, filepath.Join(base, "boxoffice.log"))
	if err := os.WriteFile(env.configPath, []byte(cfg), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return env
}

func (e *cliEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd, ctx := newRootCommand()
	defer ctx.close()

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", e.configPath}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestVersionSkipsConfig(t *testing.T) {
	cmd, ctx := newRootCommand()
	defer ctx.close()

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--config", filepath.Join(t.TempDir(), "missing.yaml"), "version"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.HasPrefix(out.String(), "boxoffice ") {
		t.Errorf("output = %q", out.String())
	}
}

func TestListingsWithoutLocation(t *testing.T) {
	env := setupCLIEnv(t)
	_, err := env.run(t, "listings")
	if err == nil || !strings.Contains(err.Error(), "boxoffice location") {
		t.Fatalf("err = %v, want hint to set a location", err)
	}
}

func TestLocationThenListings(t *testing.T) {
	env := setupCLIEnv(t)

	out, err := env.run(t, "location", "94107")
	if err != nil {
		t.Fatalf("location: %v", err)
	}
	if !strings.Contains(out, "San Francisco") {
		t.Errorf("location output = %q", out)
	}

	out, err = env.run(t, "listings", "--sort", "score")
	if err != nil {
		t.Fatalf("listings: %v", err)
	}
	dune := strings.Index(out, "Dune: Part Two")
	wicked := strings.Index(out, "Wicked")
	if dune < 0 || wicked < 0 || dune > wicked {
		t.Errorf("listings not sorted by score:\n%s", out)
	}

	// Second run answers from the persisted result
	fetched := env.showtimes.Load()
	if _, err := env.run(t, "listings"); err != nil {
		t.Fatalf("listings again: %v", err)
	}
	if got := env.showtimes.Load(); got != fetched {
		t.Errorf("showtimes fetched again (%d -> %d)", fetched, got)
	}

	out, err = env.run(t, "listings", "--filter", "wkd")
	if err != nil {
		t.Fatalf("listings --filter: %v", err)
	}
	if strings.Contains(out, "Dune") || !strings.Contains(out, "Wicked") {
		t.Errorf("filtered listings:\n%s", out)
	}
}

func TestFavoritesRoundTrip(t *testing.T) {
	env := setupCLIEnv(t)
	if _, err := env.run(t, "location", "94107"); err != nil {
		t.Fatalf("location: %v", err)
	}

	if _, err := env.run(t, "favorites", "add", "t2"); err != nil {
		t.Fatalf("favorites add: %v", err)
	}
	if _, err := env.run(t, "favorites", "add", "nope"); err == nil {
		t.Error("adding an unknown theater should fail")
	}

	out, err := env.run(t, "favorites", "list")
	if err != nil || !strings.Contains(out, "Roxie") {
		t.Fatalf("favorites list = %q, err = %v", out, err)
	}

	out, err = env.run(t, "theaters", "--sort", "distance")
	if err != nil {
		t.Fatalf("theaters: %v", err)
	}
	if !strings.Contains(out, "★") || strings.Index(out, "Roxie") > strings.Index(out, "Castro") {
		t.Errorf("theaters output:\n%s", out)
	}

	if _, err := env.run(t, "favorites", "remove", "t2"); err != nil {
		t.Fatalf("favorites remove: %v", err)
	}
	out, _ = env.run(t, "favorites", "list")
	if !strings.Contains(out, "No favorite theaters") {
		t.Errorf("favorites after remove = %q", out)
	}
}

func TestProviderAndRatingsSelection(t *testing.T) {
	env := setupCLIEnv(t)

	out, err := env.run(t, "ratings", "1")
	if err != nil {
		t.Fatalf("ratings: %v", err)
	}
	if !strings.Contains(out, "* 1  None") {
		t.Errorf("ratings output = %q", out)
	}

	out, err = env.run(t, "ratings")
	if err != nil || !strings.Contains(out, "* 1  None") {
		t.Errorf("ratings selection not persisted: %q, %v", out, err)
	}

	if _, err := env.run(t, "provider", "5"); err == nil {
		t.Error("out of range provider index should fail")
	}
}

func TestMetricsServerWaitsForModel(t *testing.T) {
	base := t.TempDir()
	blocker := filepath.Join(base, "not-a-dir")
	if err := os.WriteFile(blocker, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	configPath := filepath.Join(base, "config.yaml")
	cfg := fmt.Sprintf(`
providers:
  - region: north_america
    url: http://127.0.0.1:1
cache:
  dir: %s
logging:
  file: %s
metrics:
  addr: 127.0.0.1:0
`, filepath.Join(blocker, "cache"), filepath.Join(base, "boxoffice.log"))
	if err := os.WriteFile(configPath, []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}

	metricsAddr := ""
	ctx := newCommandContext(&configPath, &metricsAddr)
	defer ctx.close()

	if _, err := ctx.ensureModel(); err == nil {
		t.Fatal("expected the cache directory to be unusable")
	}
	if ctx.server != nil {
		t.Error("metrics server started although the model failed to build")
	}
}
