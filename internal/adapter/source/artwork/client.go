// Package artwork fetches posters, trailers and reviews.
package artwork

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/mmcdole/boxoffice/internal/adapter/source/api"
	"github.com/mmcdole/boxoffice/internal/domain"
)

const sourceName = "artwork"

type trailersResponse struct {
	Trailers []domain.Trailer `json:"trailers"`
}

type reviewsResponse struct {
	Reviews []domain.Review `json:"reviews"`
}

// Client implements domain.ArtworkSource.
type Client struct {
	api    *api.Client
	logger *slog.Logger
}

func NewClient(baseURL, apiKey string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{api: api.NewClient(sourceName, baseURL, apiKey, logger), logger: logger}
}

// FetchPoster downloads the movie's poster, preferring the URL the listings
// provider supplied.
func (c *Client) FetchPoster(ctx context.Context, movie domain.Movie) (domain.Poster, error) {
	path := movie.PosterURL
	if path == "" {
		path = "/v1/movies/" + url.PathEscape(movie.ID) + "/poster"
	}
	data, contentType, err := c.api.Get(ctx, "poster", path, nil, "image/*")
	if err != nil {
		return domain.Poster{}, err
	}
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	return domain.Poster{MovieID: movie.ID, ContentType: contentType, Data: data}, nil
}

// FetchTrailers lists the movie's trailers. A movie the service does not
// know has no trailers.
func (c *Client) FetchTrailers(ctx context.Context, movie domain.Movie) ([]domain.Trailer, error) {
	var resp trailersResponse
	err := c.api.GetJSON(ctx, "trailers", "/v1/movies/"+url.PathEscape(movie.ID)+"/trailers", nil, &resp)
	if errors.Is(err, api.ErrNotFound) {
		return []domain.Trailer{}, nil
	}
	if err != nil {
		return nil, err
	}
	return resp.Trailers, nil
}

// FetchReviews lists critic reviews. A movie the service does not know has
// no reviews.
func (c *Client) FetchReviews(ctx context.Context, movie domain.Movie) ([]domain.Review, error) {
	var resp reviewsResponse
	err := c.api.GetJSON(ctx, "reviews", "/v1/movies/"+url.PathEscape(movie.ID)+"/reviews", nil, &resp)
	if errors.Is(err, api.ErrNotFound) {
		return []domain.Review{}, nil
	}
	if err != nil {
		return nil, err
	}
	return resp.Reviews, nil
}
