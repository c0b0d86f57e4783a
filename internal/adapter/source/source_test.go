package source

import (
	"testing"

	"github.com/mmcdole/boxoffice/internal/adapter"
	"github.com/mmcdole/boxoffice/internal/domain"
)

func TestNewFromConfig(t *testing.T) {
	cfg := adapter.DefaultConfig()
	cfg.Artwork.URL = ""

	c, err := NewFromConfig(cfg, adapter.NullLogger())
	if err != nil {
		t.Fatalf("NewFromConfig: %v", err)
	}

	if len(c.Providers) != 2 ||
		c.Providers[0].Name() != domain.NorthAmerica ||
		c.Providers[1].Name() != domain.UnitedKingdom {
		t.Errorf("providers in wrong order: %v", c.Providers)
	}
	if len(c.Ratings) != 2 || c.Ratings[1].Name() != domain.Metacritic {
		t.Errorf("ratings = %v", c.Ratings)
	}
	if c.Geocoder == nil {
		t.Error("geocoder should be configured")
	}
	if c.Artwork != nil {
		t.Error("artwork with empty URL should be nil")
	}
}

func TestNewListingsProviderRejectsUnknownRegion(t *testing.T) {
	_, err := NewListingsProvider(adapter.ProviderConfig{Region: "mars", URL: "http://x"}, nil)
	if err == nil {
		t.Fatal("expected error for unknown region")
	}
	_, err = NewRatingsSource(adapter.RatingsConfig{Vendor: adapter.VendorMetacritic}, nil)
	if err == nil {
		t.Fatal("expected error for missing URL")
	}
}
