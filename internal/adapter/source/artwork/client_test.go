package artwork

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mmcdole/boxoffice/internal/domain"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/movies/m1/poster", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte("\x89PNG fake"))
	})
	mux.HandleFunc("/cdn/m2.jpg", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
		w.Write([]byte("jpeg bytes"))
	})
	mux.HandleFunc("/v1/movies/m1/trailers", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"trailers":[{"title":"Official Trailer","url":"https://video.example/m1"}]}`))
	})
	mux.HandleFunc("/v1/movies/m1/reviews", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"reviews":[{"author":"A. Critic","publisher":"Daily","text":"Sandy.","score":80}]}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchPoster(t *testing.T) {
	srv := newServer(t)
	c := NewClient(srv.URL, "", nil)

	p, err := c.FetchPoster(context.Background(), domain.Movie{ID: "m1"})
	if err != nil {
		t.Fatalf("FetchPoster: %v", err)
	}
	if p.ContentType != "image/png" || !bytes.HasPrefix(p.Data, []byte("\x89PNG")) {
		t.Errorf("poster = %+v", p)
	}

	p, err = c.FetchPoster(context.Background(), domain.Movie{ID: "m2", PosterURL: srv.URL + "/cdn/m2.jpg"})
	if err != nil {
		t.Fatalf("FetchPoster by URL: %v", err)
	}
	if string(p.Data) != "jpeg bytes" {
		t.Errorf("poster data = %q", p.Data)
	}
}

func TestFetchTrailersAndReviews(t *testing.T) {
	srv := newServer(t)
	c := NewClient(srv.URL, "", nil)

	trailers, err := c.FetchTrailers(context.Background(), domain.Movie{ID: "m1"})
	if err != nil || len(trailers) != 1 || trailers[0].Title != "Official Trailer" {
		t.Fatalf("trailers = %+v, err = %v", trailers, err)
	}
	reviews, err := c.FetchReviews(context.Background(), domain.Movie{ID: "m1"})
	if err != nil || len(reviews) != 1 || reviews[0].Score != 80 {
		t.Fatalf("reviews = %+v, err = %v", reviews, err)
	}

	// Unknown movies have nothing, which is not an error
	none, err := c.FetchReviews(context.Background(), domain.Movie{ID: "zzz"})
	if err != nil || len(none) != 0 {
		t.Fatalf("reviews for unknown = %+v, err = %v", none, err)
	}
}
