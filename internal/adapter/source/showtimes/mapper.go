package showtimes

import (
	"strings"
	"time"

	"github.com/mmcdole/boxoffice/internal/domain"
)

// MapListings converts a response into domain listings for date. Showtimes
// that do not parse are skipped; theaters without showtimes are kept.
func MapListings(resp ListingsResponse, date time.Time, loc *time.Location) domain.Listings {
	out := domain.Listings{
		Movies:   make([]domain.Movie, 0, len(resp.Movies)),
		Theaters: make([]domain.Theater, 0, len(resp.Theaters)),
	}
	for _, m := range resp.Movies {
		if m.ID == "" {
			continue
		}
		out.Movies = append(out.Movies, MapMovie(m))
	}
	for _, t := range resp.Theaters {
		if t.ID == "" {
			continue
		}
		out.Theaters = append(out.Theaters, MapTheater(t))
		for _, s := range t.Showtimes {
			for _, clock := range s.Times {
				at, ok := parseShowtime(date, clock, loc)
				if !ok {
					continue
				}
				out.Performances = append(out.Performances, domain.Performance{
					MovieID:   s.MovieID,
					TheaterID: t.ID,
					Showtime:  at,
				})
			}
		}
	}
	return out
}

func MapMovie(m MovieDTO) domain.Movie {
	score := domain.NoScore
	if m.Score != nil && *m.Score >= 0 && *m.Score <= 100 {
		score = *m.Score
	}
	var released time.Time
	if m.ReleaseDate != "" {
		if t, err := time.Parse(time.DateOnly, m.ReleaseDate); err == nil {
			released = t
		}
	}
	return domain.Movie{
		ID:          m.ID,
		Title:       strings.TrimSpace(m.Title),
		ReleaseDate: released,
		Synopsis:    strings.TrimSpace(m.Synopsis),
		Score:       score,
		Rating:      m.Rating,
		Length:      m.Runtime,
		PosterURL:   m.PosterURL,
		Directors:   m.Directors,
		Cast:        m.Cast,
		Genres:      m.Genres,
	}
}

func MapTheater(t TheaterDTO) domain.Theater {
	return domain.Theater{
		ID:      t.ID,
		Name:    strings.TrimSpace(t.Name),
		Address: strings.TrimSpace(t.Address),
		Phone:   t.Phone,
		Location: domain.Location{
			Latitude:   t.Lat,
			Longitude:  t.Lng,
			Address:    strings.TrimSpace(t.Address),
			City:       t.City,
			State:      t.State,
			PostalCode: t.PostalCode,
			Country:    t.Country,
		},
	}
}

func parseShowtime(date time.Time, clock string, loc *time.Location) (time.Time, bool) {
	t, err := time.Parse("15:04", strings.TrimSpace(clock))
	if err != nil {
		return time.Time{}, false
	}
	y, m, d := date.Date()
	return time.Date(y, m, d, t.Hour(), t.Minute(), 0, 0, loc), true
}
