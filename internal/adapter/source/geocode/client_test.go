package geocode

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mmcdole/boxoffice/internal/domain"
)

func TestGeocode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("q") {
		case "94107":
			w.Write([]byte(`{"results":[{"lat":0,"lng":0},{"lat":37.7599,"lng":-122.4148,"city":"San Francisco","postal_code":"94107"}]}`))
		case "gone":
			http.NotFound(w, r)
		default:
			w.Write([]byte(`{"results":[]}`))
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "key", nil)

	loc, err := c.Geocode(context.Background(), "94107")
	if err != nil {
		t.Fatalf("Geocode: %v", err)
	}
	if loc.City != "San Francisco" || !loc.HasCoordinates() {
		t.Errorf("loc = %+v", loc)
	}

	for _, q := range []string{"nowhere", "gone"} {
		if _, err := c.Geocode(context.Background(), q); !errors.Is(err, domain.ErrLocationNotFound) {
			t.Errorf("Geocode(%q) err = %v, want ErrLocationNotFound", q, err)
		}
	}
}
