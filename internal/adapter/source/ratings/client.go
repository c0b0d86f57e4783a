// Package ratings fetches third-party critic scores.
package ratings

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"github.com/mmcdole/boxoffice/internal/adapter/source/api"
	"github.com/mmcdole/boxoffice/internal/domain"
)

// Client implements domain.RatingsSource for one vendor.
type Client struct {
	vendor vendor
	api    *api.Client
	logger *slog.Logger
}

type vendor struct {
	name  string
	path  string
	score func(body scoreResponse, movie domain.Movie) (int, bool)
}

// scoreResponse covers both vendors' payloads.
type scoreResponse struct {
	Results []struct {
		Title       string `json:"title"`
		Year        int    `json:"year"`
		Tomatometer *int   `json:"tomatometer"`
	} `json:"results"`
	Metascore *int `json:"metascore"`
}

// NewRottenTomatoes creates a Rotten Tomatoes client.
func NewRottenTomatoes(baseURL, apiKey string, logger *slog.Logger) *Client {
	return newClient(vendor{
		name:  domain.RottenTomatoes,
		path:  "/v1/movies/search",
		score: tomatometer,
	}, baseURL, apiKey, logger)
}

// NewMetacritic creates a Metacritic client.
func NewMetacritic(baseURL, apiKey string, logger *slog.Logger) *Client {
	return newClient(vendor{
		name:  domain.Metacritic,
		path:  "/v1/scores",
		score: metascore,
	}, baseURL, apiKey, logger)
}

func newClient(v vendor, baseURL, apiKey string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{vendor: v, api: api.NewClient(v.name, baseURL, apiKey, logger), logger: logger}
}

func (c *Client) Name() string { return c.vendor.name }

// FetchRating looks the movie up by title (and release year when known).
func (c *Client) FetchRating(ctx context.Context, movie domain.Movie) (domain.Rating, error) {
	query := url.Values{}
	query.Set("title", movie.Title)
	if !movie.ReleaseDate.IsZero() {
		query.Set("year", strconv.Itoa(movie.ReleaseDate.Year()))
	}

	var body scoreResponse
	if err := c.api.GetJSON(ctx, "rating", c.vendor.path, query, &body); err != nil {
		return domain.Rating{}, err
	}

	score, ok := c.vendor.score(body, movie)
	if !ok {
		return domain.Rating{}, domain.NewFetchError(c.vendor.name, "rating",
			fmt.Errorf("no score for %q: %w", movie.Title, api.ErrNotFound))
	}
	return domain.Rating{Score: score, Source: c.vendor.name}, nil
}

// tomatometer picks the search hit whose title (and year, if both sides
// have one) matches the movie.
func tomatometer(body scoreResponse, movie domain.Movie) (int, bool) {
	for _, r := range body.Results {
		if r.Tomatometer == nil || !strings.EqualFold(r.Title, movie.Title) {
			continue
		}
		if r.Year != 0 && !movie.ReleaseDate.IsZero() && r.Year != movie.ReleaseDate.Year() {
			continue
		}
		return clamp(*r.Tomatometer), true
	}
	return 0, false
}

func metascore(body scoreResponse, _ domain.Movie) (int, bool) {
	if body.Metascore == nil {
		return 0, false
	}
	return clamp(*body.Metascore), true
}

func clamp(score int) int {
	return max(0, min(100, score))
}
