// Package showtimes is the listings client for the regional showtime APIs.
package showtimes

import (
	"context"
	"log/slog"
	"net/url"
	"strconv"
	"time"

	"github.com/mmcdole/boxoffice/internal/adapter/source/api"
	"github.com/mmcdole/boxoffice/internal/domain"
)

// Region describes how one regional API spells its query.
type Region struct {
	Name        string
	PostalParam string
	DateLayout  string
	TimeZone    *time.Location
}

var (
	NorthAmerica = Region{
		Name:        domain.NorthAmerica,
		PostalParam: "zip",
		DateLayout:  time.DateOnly,
		TimeZone:    time.Local,
	}
	UnitedKingdom = Region{
		Name:        domain.UnitedKingdom,
		PostalParam: "postcode",
		DateLayout:  "02/01/2006",
		TimeZone:    time.Local,
	}
)

// Client implements domain.ListingsProvider for one region.
type Client struct {
	region Region
	api    *api.Client
	logger *slog.Logger
}

// NewClient creates a listings client.
func NewClient(region Region, baseURL, apiKey string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if region.TimeZone == nil {
		region.TimeZone = time.UTC
	}
	return &Client{
		region: region,
		api:    api.NewClient(region.Name, baseURL, apiKey, logger),
		logger: logger,
	}
}

func (c *Client) Name() string { return c.region.Name }

// FetchListings returns everything playing near loc on date.
func (c *Client) FetchListings(ctx context.Context, loc domain.Location, date time.Time) (domain.Listings, error) {
	query := url.Values{}
	if loc.PostalCode != "" {
		query.Set(c.region.PostalParam, loc.PostalCode)
	}
	if loc.HasCoordinates() {
		query.Set("lat", strconv.FormatFloat(loc.Latitude, 'f', 5, 64))
		query.Set("lng", strconv.FormatFloat(loc.Longitude, 'f', 5, 64))
	}
	query.Set("date", date.Format(c.region.DateLayout))

	var resp ListingsResponse
	if err := c.api.GetJSON(ctx, "listings", "/v1/showtimes", query, &resp); err != nil {
		return domain.Listings{}, err
	}

	l := MapListings(resp, date, c.region.TimeZone)
	c.logger.Debug("fetched listings",
		"region", c.region.Name,
		"movies", len(l.Movies),
		"theaters", len(l.Theaters),
		"performances", len(l.Performances))
	return l, nil
}
