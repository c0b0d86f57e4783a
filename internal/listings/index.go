// Package listings indexes a search result for relational queries and
// defines the stable orderings used by every movie and theater list.
package listings

import (
	"sort"

	"github.com/mmcdole/boxoffice/internal/domain"
)

// Index answers relational questions about one SearchResult.
// It is built once and never mutated, so it is safe for concurrent reads.
type Index struct {
	movies   []domain.Movie
	theaters []domain.Theater

	movieByID   map[string]int
	theaterByID map[string]int

	// movie id -> theater ids in first-seen order
	theatersFor map[string][]string
	// theater id -> movie ids in first-seen order
	moviesAt map[string][]string
	// movie id + "\x00" + theater id -> performances sorted by showtime
	performances map[string][]domain.Performance
}

// Build indexes a search result. Performances that reference unknown movies
// or theaters are skipped; theaters without showtimes are kept.
func Build(result domain.SearchResult) *Index {
	idx := &Index{
		movies:       result.Movies,
		theaters:     result.Theaters,
		movieByID:    make(map[string]int, len(result.Movies)),
		theaterByID:  make(map[string]int, len(result.Theaters)),
		theatersFor:  make(map[string][]string),
		moviesAt:     make(map[string][]string),
		performances: make(map[string][]domain.Performance),
	}

	for i, m := range result.Movies {
		if _, dup := idx.movieByID[m.ID]; !dup {
			idx.movieByID[m.ID] = i
		}
	}
	for i, t := range result.Theaters {
		if _, dup := idx.theaterByID[t.ID]; !dup {
			idx.theaterByID[t.ID] = i
		}
	}

	for _, p := range result.Performances {
		if _, ok := idx.movieByID[p.MovieID]; !ok {
			continue
		}
		if _, ok := idx.theaterByID[p.TheaterID]; !ok {
			continue
		}

		k := pairKey(p.MovieID, p.TheaterID)
		if _, seen := idx.performances[k]; !seen {
			idx.theatersFor[p.MovieID] = append(idx.theatersFor[p.MovieID], p.TheaterID)
			idx.moviesAt[p.TheaterID] = append(idx.moviesAt[p.TheaterID], p.MovieID)
		}
		idx.performances[k] = append(idx.performances[k], p)
	}

	for _, perfs := range idx.performances {
		sort.SliceStable(perfs, func(i, j int) bool {
			return perfs[i].Showtime.Before(perfs[j].Showtime)
		})
	}

	return idx
}

// Empty returns an index over nothing.
func Empty() *Index {
	return Build(domain.SearchResult{})
}

// Movies returns all movies in provider order.
func (x *Index) Movies() []domain.Movie {
	return append([]domain.Movie(nil), x.movies...)
}

// Theaters returns all theaters in provider order.
func (x *Index) Theaters() []domain.Theater {
	return append([]domain.Theater(nil), x.theaters...)
}

func (x *Index) Movie(id string) (domain.Movie, bool) {
	i, ok := x.movieByID[id]
	if !ok {
		return domain.Movie{}, false
	}
	return x.movies[i], true
}

func (x *Index) Theater(id string) (domain.Theater, bool) {
	i, ok := x.theaterByID[id]
	if !ok {
		return domain.Theater{}, false
	}
	return x.theaters[i], true
}

// TheatersShowingMovie returns the theaters with at least one performance of movieID.
func (x *Index) TheatersShowingMovie(movieID string) []domain.Theater {
	ids := x.theatersFor[movieID]
	out := make([]domain.Theater, 0, len(ids))
	for _, id := range ids {
		out = append(out, x.theaters[x.theaterByID[id]])
	}
	return out
}

// MoviesAtTheater returns the movies with at least one performance at theaterID.
func (x *Index) MoviesAtTheater(theaterID string) []domain.Movie {
	ids := x.moviesAt[theaterID]
	out := make([]domain.Movie, 0, len(ids))
	for _, id := range ids {
		out = append(out, x.movies[x.movieByID[id]])
	}
	return out
}

// Performances returns the showtimes of movieID at theaterID, earliest first.
func (x *Index) Performances(movieID, theaterID string) []domain.Performance {
	return append([]domain.Performance(nil), x.performances[pairKey(movieID, theaterID)]...)
}

// Locator returns where a theater is. It may consult more than the
// theater's own Location, e.g. a geocoded address.
type Locator func(domain.Theater) domain.Location

// DistanceMap computes the distance from origin to every theater, placing
// each with locate (nil uses the theater's Location). Theaters without
// coordinates, or every theater when origin has none, map to
// domain.UnknownDistance.
func (x *Index) DistanceMap(origin domain.Location, locate Locator) map[string]float64 {
	out := make(map[string]float64, len(x.theaters))
	for _, t := range x.theaters {
		if !origin.HasCoordinates() {
			out[t.ID] = domain.UnknownDistance
			continue
		}
		loc := t.Location
		if locate != nil {
			loc = locate(t)
		}
		out[t.ID] = origin.DistanceTo(loc)
	}
	return out
}

// InRange keeps the theaters whose distance is at most radius. Theaters
// missing from distances or at unknown distance are dropped.
func InRange(theaters []domain.Theater, distances map[string]float64, radius float64) []domain.Theater {
	var out []domain.Theater
	for _, t := range theaters {
		d, ok := distances[t.ID]
		if !ok || d >= domain.UnknownDistance {
			continue
		}
		if d <= radius {
			out = append(out, t)
		}
	}
	return out
}

func pairKey(movieID, theaterID string) string {
	return movieID + "\x00" + theaterID
}
