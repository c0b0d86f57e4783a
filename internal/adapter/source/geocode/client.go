// Package geocode resolves addresses and postal codes to coordinates.
package geocode

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/mmcdole/boxoffice/internal/adapter/source/api"
	"github.com/mmcdole/boxoffice/internal/domain"
)

const sourceName = "geocoder"

type response struct {
	Results []struct {
		Lat        float64 `json:"lat"`
		Lng        float64 `json:"lng"`
		Address    string  `json:"address"`
		City       string  `json:"city"`
		State      string  `json:"state"`
		PostalCode string  `json:"postal_code"`
		Country    string  `json:"country"`
	} `json:"results"`
}

// Client implements domain.Geocoder.
type Client struct {
	api *api.Client
}

func NewClient(baseURL, apiKey string, logger *slog.Logger) *Client {
	return &Client{api: api.NewClient(sourceName, baseURL, apiKey, logger)}
}

// Geocode returns the best match for address. No match is
// domain.ErrLocationNotFound.
func (c *Client) Geocode(ctx context.Context, address string) (domain.Location, error) {
	query := url.Values{}
	query.Set("q", address)

	var resp response
	if err := c.api.GetJSON(ctx, "geocode", "/v1/geocode", query, &resp); err != nil {
		if errors.Is(err, api.ErrNotFound) {
			return domain.Location{}, fmt.Errorf("%w: %q", domain.ErrLocationNotFound, address)
		}
		return domain.Location{}, err
	}

	for _, r := range resp.Results {
		loc := domain.Location{
			Latitude:   r.Lat,
			Longitude:  r.Lng,
			Address:    r.Address,
			City:       r.City,
			State:      r.State,
			PostalCode: r.PostalCode,
			Country:    r.Country,
		}
		if loc.HasCoordinates() {
			return loc, nil
		}
	}
	return domain.Location{}, fmt.Errorf("%w: %q", domain.ErrLocationNotFound, address)
}
