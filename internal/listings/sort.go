package listings

import (
	"sort"

	"github.com/mmcdole/boxoffice/internal/domain"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// MovieOrder selects how movie lists are ordered. The numeric values match
// the persisted all-movies segment index.
type MovieOrder int

const (
	ByTitle MovieOrder = iota
	ByReleaseDate
	ByScore
)

func (o MovieOrder) String() string {
	switch o {
	case ByReleaseDate:
		return "release"
	case ByScore:
		return "score"
	default:
		return "title"
	}
}

// ParseMovieOrder maps "title", "score" or "release" to an order.
func ParseMovieOrder(s string) (MovieOrder, bool) {
	switch s {
	case "title":
		return ByTitle, true
	case "score":
		return ByScore, true
	case "release", "release-date":
		return ByReleaseDate, true
	}
	return ByTitle, false
}

// TheaterOrder selects how theater lists are ordered. The numeric values
// match the persisted all-theaters segment index.
type TheaterOrder int

const (
	ByName TheaterOrder = iota
	ByDistance
)

func (o TheaterOrder) String() string {
	if o == ByDistance {
		return "distance"
	}
	return "name"
}

// ScoreFunc returns the score used for ordering a movie. It lets callers
// substitute a ratings-vendor score for the provider's.
type ScoreFunc func(domain.Movie) int

// ProviderScore orders by the score the listings provider supplied.
func ProviderScore(m domain.Movie) int { return m.Score }

// newCollator returns a case-insensitive collator. Collators keep internal
// buffers, so each sort gets its own.
func newCollator() *collate.Collator {
	return collate.New(language.Und, collate.IgnoreCase, collate.Loose)
}

// SortMovies returns a sorted copy of movies. Every order is total: ties
// fall back to the title and finally the id.
func SortMovies(movies []domain.Movie, order MovieOrder, score ScoreFunc) []domain.Movie {
	if score == nil {
		score = ProviderScore
	}
	out := append([]domain.Movie(nil), movies...)
	col := newCollator()
	byTitle := func(a, b domain.Movie) bool {
		if c := col.CompareString(a.Title, b.Title); c != 0 {
			return c < 0
		}
		if a.Title != b.Title {
			return a.Title < b.Title
		}
		return a.ID < b.ID
	}

	switch order {
	case ByScore:
		scores := make(map[string]int, len(out))
		for _, m := range out {
			scores[m.ID] = score(m)
		}
		sort.SliceStable(out, func(i, j int) bool {
			si, sj := scores[out[i].ID], scores[out[j].ID]
			if si != sj {
				return si > sj
			}
			return byTitle(out[i], out[j])
		})
	case ByReleaseDate:
		sort.SliceStable(out, func(i, j int) bool {
			di, dj := out[i].ReleaseDate, out[j].ReleaseDate
			if !di.Equal(dj) {
				return di.After(dj)
			}
			return byTitle(out[i], out[j])
		})
	default:
		sort.SliceStable(out, func(i, j int) bool {
			return byTitle(out[i], out[j])
		})
	}
	return out
}

// SortTheatersByName returns a copy ordered case-insensitively by name.
func SortTheatersByName(theaters []domain.Theater) []domain.Theater {
	out := append([]domain.Theater(nil), theaters...)
	col := newCollator()
	sort.SliceStable(out, func(i, j int) bool {
		return lessByName(col, out[i], out[j])
	})
	return out
}

// SortTheatersByDistance returns a copy ordered by ascending distance.
// Theaters at unknown distance (or missing from distances) sort last; ties
// are broken by name.
func SortTheatersByDistance(theaters []domain.Theater, distances map[string]float64) []domain.Theater {
	out := append([]domain.Theater(nil), theaters...)
	col := newCollator()
	dist := func(t domain.Theater) float64 {
		if d, ok := distances[t.ID]; ok {
			return d
		}
		return domain.UnknownDistance
	}
	sort.SliceStable(out, func(i, j int) bool {
		di, dj := dist(out[i]), dist(out[j])
		if di != dj {
			return di < dj
		}
		return lessByName(col, out[i], out[j])
	})
	return out
}

// SortTheaters dispatches on order.
func SortTheaters(theaters []domain.Theater, order TheaterOrder, distances map[string]float64) []domain.Theater {
	if order == ByDistance {
		return SortTheatersByDistance(theaters, distances)
	}
	return SortTheatersByName(theaters)
}

func lessByName(col *collate.Collator, a, b domain.Theater) bool {
	if c := col.CompareString(a.Name, b.Name); c != 0 {
		return c < 0
	}
	if a.Name != b.Name {
		return a.Name < b.Name
	}
	return a.ID < b.ID
}
