package showtimes

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mmcdole/boxoffice/internal/adapter/source/api"
	"github.com/mmcdole/boxoffice/internal/domain"
)

const listingsBody = `{
  "movies": [
    {"id": "m1", "title": " Dune: Part Two ", "release_date": "2024-03-01", "score": 93, "runtime": 166},
    {"id": "m2", "title": "Wicked", "score": null}
  ],
  "theaters": [
    {"id": "t1", "name": "Castro", "address": "429 Castro St", "lat": 37.762, "lng": -122.435,
     "showtimes": [{"movie_id": "m1", "times": ["19:30", "bogus", "22:15"]}]},
    {"id": "t2", "name": "Drive-In", "showtimes": []}
  ]
}`

func TestFetchListings(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/showtimes" {
			http.NotFound(w, r)
			return
		}
		if got := r.URL.Query().Get("postcode"); got != "SW1A 1AA" {
			t.Errorf("postcode = %q", got)
		}
		if got := r.URL.Query().Get("date"); got != "01/03/2024" {
			t.Errorf("date = %q", got)
		}
		if r.Header.Get("X-Session-Id") == "" {
			t.Error("missing session header")
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(listingsBody))
	}))
	defer srv.Close()

	region := UnitedKingdom
	region.TimeZone = time.UTC
	c := NewClient(region, srv.URL, "", nil)
	date := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	l, err := c.FetchListings(context.Background(), domain.Location{PostalCode: "SW1A 1AA"}, date)
	if err != nil {
		t.Fatalf("FetchListings: %v", err)
	}

	if len(l.Movies) != 2 || l.Movies[0].Title != "Dune: Part Two" || l.Movies[0].Score != 93 {
		t.Errorf("movies = %+v", l.Movies)
	}
	if l.Movies[1].Score != domain.NoScore {
		t.Errorf("null score = %d, want NoScore", l.Movies[1].Score)
	}
	if len(l.Theaters) != 2 {
		t.Errorf("theater without showtimes dropped: %+v", l.Theaters)
	}
	if len(l.Performances) != 2 {
		t.Fatalf("performances = %+v", l.Performances)
	}
	if want := date.Add(19*time.Hour + 30*time.Minute); !l.Performances[0].Showtime.Equal(want) {
		t.Errorf("showtime = %v, want %v", l.Performances[0].Showtime, want)
	}
}

func TestFetchListingsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "maintenance", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(NorthAmerica, srv.URL, "", nil)
	_, err := c.FetchListings(context.Background(), domain.Location{PostalCode: "94107"}, time.Now())
	if !errors.Is(err, domain.ErrFetchFailed) {
		t.Fatalf("err = %v, want ErrFetchFailed", err)
	}
	var fe *domain.FetchError
	if !errors.As(err, &fe) || fe.Source != domain.NorthAmerica || fe.Op != "listings" {
		t.Errorf("err = %#v", err)
	}
}

func TestFetchListingsBadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>"))
	}))
	defer srv.Close()

	c := NewClient(NorthAmerica, srv.URL, "", nil)
	_, err := c.FetchListings(context.Background(), domain.Location{PostalCode: "94107"}, time.Now())
	if !errors.Is(err, domain.ErrFetchFailed) {
		t.Fatalf("err = %v", err)
	}
	if errors.Is(err, api.ErrNotFound) {
		t.Error("parse failure must not look like a 404")
	}
}
