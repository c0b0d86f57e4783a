package boxoffice

import (
	"context"
	"fmt"

	"github.com/mmcdole/boxoffice/internal/domain"
)

// PosterForMovie returns the cached poster, scheduling a download on a miss.
func (m *Model) PosterForMovie(movieID string) (domain.Poster, bool) {
	return m.posters.Get(movieID)
}

// TrailersForMovie returns the cached trailers, scheduling a fetch on a miss.
func (m *Model) TrailersForMovie(movieID string) []domain.Trailer {
	t, _ := m.trailers.Get(movieID)
	return t
}

// ReviewsForMovie returns the cached reviews, scheduling a fetch on a miss.
func (m *Model) ReviewsForMovie(movieID string) []domain.Review {
	r, _ := m.reviews.Get(movieID)
	return r
}

// RatingForMovie returns the current vendor's rating. With ratings turned
// off it reports false without touching the cache.
func (m *Model) RatingForMovie(movieID string) (domain.Rating, bool) {
	m.mu.Lock()
	src := m.ratingsSourceLocked()
	m.mu.Unlock()
	if src == nil {
		return domain.Rating{}, false
	}
	return m.ratings.Get(ratingKey{Source: src.Name(), MovieID: movieID})
}

// ScoreForMovie returns the score shown for a movie: the vendor rating when
// one is cached, otherwise the provider's score. With ratings turned off it
// is domain.NoScore.
func (m *Model) ScoreForMovie(movieID string) int {
	mv, ok := m.Movie(movieID)
	if !ok {
		return domain.NoScore
	}
	return m.scoreFor(mv)
}

func (m *Model) scoreFor(mv domain.Movie) int {
	if m.NoRatings() {
		return domain.NoScore
	}
	if r, ok := m.RatingForMovie(mv.ID); ok && r.Score >= 0 {
		return r.Score
	}
	if mv.HasScore() {
		return mv.Score
	}
	return domain.NoScore
}

// SynopsisForMovie returns the provider synopsis, falling back to the first
// cached review.
func (m *Model) SynopsisForMovie(movieID string) string {
	mv, ok := m.Movie(movieID)
	if ok && mv.Synopsis != "" {
		return mv.Synopsis
	}
	if r, ok := m.reviews.Peek(movieID); ok && len(r) > 0 {
		return r[0].Text
	}
	return ""
}

// LocationForAddress returns the geocoded address, scheduling a lookup on a miss.
func (m *Model) LocationForAddress(address string) (domain.Location, bool) {
	key := normalizeAddress(address)
	if key == "" {
		return domain.Location{}, false
	}
	return m.locations.Get(key)
}

// LocationForPostalCode returns the geocoded postal code, scheduling a lookup on a miss.
func (m *Model) LocationForPostalCode(postalCode string) (domain.Location, bool) {
	return m.LocationForAddress(postalCode)
}

// LookupLocation geocodes address, waiting for the answer.
func (m *Model) LookupLocation(ctx context.Context, address string) (domain.Location, error) {
	key := normalizeAddress(address)
	if key == "" {
		return domain.Location{}, domain.ErrLocationNotFound
	}
	return m.locations.Load(ctx, key)
}

// NoLocationInformationFound is the message shown when geocoding finds nothing.
func (m *Model) NoLocationInformationFound() string {
	return "No location information found"
}

// --- Fetchers ---

func (m *Model) artworkMovie(movieID string) (domain.Movie, error) {
	if m.opts.Artwork == nil {
		return domain.Movie{}, fmt.Errorf("%w: no artwork source", domain.ErrFetchFailed)
	}
	mv, ok := m.Movie(movieID)
	if !ok {
		return domain.Movie{}, fmt.Errorf("%w: movie %q not in listings", domain.ErrInvalidSelection, movieID)
	}
	return mv, nil
}

func (m *Model) fetchPoster(ctx context.Context, movieID string) (domain.Poster, error) {
	mv, err := m.artworkMovie(movieID)
	if err != nil {
		return domain.Poster{}, err
	}
	return m.opts.Artwork.FetchPoster(ctx, mv)
}

func (m *Model) fetchTrailers(ctx context.Context, movieID string) ([]domain.Trailer, error) {
	mv, err := m.artworkMovie(movieID)
	if err != nil {
		return nil, err
	}
	return m.opts.Artwork.FetchTrailers(ctx, mv)
}

func (m *Model) fetchReviews(ctx context.Context, movieID string) ([]domain.Review, error) {
	mv, err := m.artworkMovie(movieID)
	if err != nil {
		return nil, err
	}
	return m.opts.Artwork.FetchReviews(ctx, mv)
}

// fetchRating asks the vendor named in the key, which may no longer be the
// selected one.
func (m *Model) fetchRating(ctx context.Context, key ratingKey) (domain.Rating, error) {
	var src domain.RatingsSource
	for _, r := range m.opts.Ratings {
		if r.Name() == key.Source {
			src = r
			break
		}
	}
	if src == nil {
		return domain.Rating{}, domain.ErrNoRatingsSource
	}
	mv, ok := m.Movie(key.MovieID)
	if !ok {
		return domain.Rating{}, fmt.Errorf("%w: movie %q not in listings", domain.ErrInvalidSelection, key.MovieID)
	}
	r, err := src.FetchRating(ctx, mv)
	if err != nil {
		return domain.Rating{}, err
	}
	if r.Source == "" {
		r.Source = src.Name()
	}
	return r, nil
}

func (m *Model) geocode(ctx context.Context, address string) (domain.Location, error) {
	if m.opts.Geocoder == nil {
		return domain.Location{}, domain.ErrLocationNotFound
	}
	return m.opts.Geocoder.Geocode(ctx, address)
}
