// Package source builds the HTTP collaborators described by the config.
package source

import (
	"fmt"
	"log/slog"

	"github.com/mmcdole/boxoffice/internal/adapter"
	"github.com/mmcdole/boxoffice/internal/adapter/source/artwork"
	"github.com/mmcdole/boxoffice/internal/adapter/source/geocode"
	"github.com/mmcdole/boxoffice/internal/adapter/source/ratings"
	"github.com/mmcdole/boxoffice/internal/adapter/source/showtimes"
	"github.com/mmcdole/boxoffice/internal/domain"
)

// Collaborators bundles everything the model fetches from.
type Collaborators struct {
	Providers []domain.ListingsProvider
	Ratings   []domain.RatingsSource
	Geocoder  domain.Geocoder
	Artwork   domain.ArtworkSource
}

// NewListingsProvider creates the listings client for one region.
func NewListingsProvider(cfg adapter.ProviderConfig, logger *slog.Logger) (domain.ListingsProvider, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("%s: provider URL is required", cfg.Region)
	}

	switch cfg.Region {
	case adapter.RegionNorthAmerica:
		return showtimes.NewClient(showtimes.NorthAmerica, cfg.URL, cfg.APIKey, logger), nil

	case adapter.RegionUnitedKingdom:
		return showtimes.NewClient(showtimes.UnitedKingdom, cfg.URL, cfg.APIKey, logger), nil

	default:
		return nil, fmt.Errorf("unknown region: %s", cfg.Region)
	}
}

// NewRatingsSource creates the client for one ratings vendor.
func NewRatingsSource(cfg adapter.RatingsConfig, logger *slog.Logger) (domain.RatingsSource, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("%s: ratings URL is required", cfg.Vendor)
	}

	switch cfg.Vendor {
	case adapter.VendorRottenTomatoes:
		return ratings.NewRottenTomatoes(cfg.URL, cfg.APIKey, logger), nil

	case adapter.VendorMetacritic:
		return ratings.NewMetacritic(cfg.URL, cfg.APIKey, logger), nil

	default:
		return nil, fmt.Errorf("unknown ratings vendor: %s", cfg.Vendor)
	}
}

// NewFromConfig creates every collaborator. The geocoder and artwork
// service are optional and stay nil when their URL is empty.
func NewFromConfig(cfg *adapter.Config, logger *slog.Logger) (*Collaborators, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	c := &Collaborators{}
	for _, p := range cfg.Providers {
		provider, err := NewListingsProvider(p, logger)
		if err != nil {
			return nil, err
		}
		c.Providers = append(c.Providers, provider)
	}
	for _, r := range cfg.Ratings {
		src, err := NewRatingsSource(r, logger)
		if err != nil {
			return nil, err
		}
		c.Ratings = append(c.Ratings, src)
	}
	if cfg.Geocoder.URL != "" {
		c.Geocoder = geocode.NewClient(cfg.Geocoder.URL, cfg.Geocoder.APIKey, logger)
	}
	if cfg.Artwork.URL != "" {
		c.Artwork = artwork.NewClient(cfg.Artwork.URL, cfg.Artwork.APIKey, logger)
	}
	return c, nil
}
