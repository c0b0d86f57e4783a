package domain

import (
	"context"
	"time"
)

// ListingsProvider is a regional backend supplying movie/theater/performance listings.
// Implementations must return stable identifiers across calls and tolerate partial
// results (e.g., theaters with no showtimes).
type ListingsProvider interface {
	// Name identifies the provider (e.g., "North America")
	Name() string

	// FetchListings returns everything playing near loc on date.
	// Failures are *FetchError values.
	FetchListings(ctx context.Context, loc Location, date time.Time) (Listings, error)
}

// RatingsSource supplies third-party scores for movies.
type RatingsSource interface {
	Name() string
	FetchRating(ctx context.Context, movie Movie) (Rating, error)
}

// Geocoder resolves a free-text address or postal code.
// Returns ErrLocationNotFound when nothing matches.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (Location, error)
}

// ArtworkSource provides the per-movie auxiliary artifacts.
type ArtworkSource interface {
	FetchPoster(ctx context.Context, movie Movie) (Poster, error)
	FetchTrailers(ctx context.Context, movie Movie) ([]Trailer, error)
	FetchReviews(ctx context.Context, movie Movie) ([]Review, error)
}

// KVStore is the durable key-value store. Namespaces keep key spaces apart
// (poster and trailer share movie ids but never collide).
type KVStore interface {
	Put(namespace, key string, value []byte) error

	// Get returns (nil, false, nil) on a clean miss
	Get(namespace, key string) ([]byte, bool, error)

	Delete(namespace, key string) error
	Keys(namespace string) ([]string, error)
	Close() error
}
