package listings

import (
	"reflect"
	"testing"
	"time"

	"github.com/mmcdole/boxoffice/internal/domain"
)

func day(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return t
}

func movieTitles(ms []domain.Movie) []string {
	out := make([]string, len(ms))
	for i, m := range ms {
		out[i] = m.Title
	}
	return out
}

func theaterNames(ts []domain.Theater) []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = t.Name
	}
	return out
}

func sampleMovies() []domain.Movie {
	return []domain.Movie{
		{ID: "a", Title: "A", Score: 80, ReleaseDate: day("2020-01-01")},
		{ID: "b", Title: "B", Score: 90, ReleaseDate: day("2019-01-01")},
		{ID: "c", Title: "C", Score: 80, ReleaseDate: day("2021-01-01")},
	}
}

func TestSortMovies(t *testing.T) {
	tests := []struct {
		name  string
		in    []domain.Movie
		order MovieOrder
		want  []string
	}{
		{"score desc, title tiebreak", sampleMovies(), ByScore, []string{"B", "A", "C"}},
		{"release date desc", sampleMovies(), ByReleaseDate, []string{"C", "A", "B"}},
		{
			"title ignores case",
			[]domain.Movie{{ID: "1", Title: "zodiac"}, {ID: "2", Title: "Alien"}, {ID: "3", Title: "brazil"}},
			ByTitle,
			[]string{"Alien", "brazil", "zodiac"},
		},
		{
			"release ties fall back to title",
			[]domain.Movie{
				{ID: "1", Title: "Heat", ReleaseDate: day("2024-05-01")},
				{ID: "2", Title: "Drive", ReleaseDate: day("2024-05-01")},
			},
			ByReleaseDate,
			[]string{"Drive", "Heat"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := movieTitles(SortMovies(tt.in, tt.order, nil))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSortMoviesDoesNotMutateInput(t *testing.T) {
	in := sampleMovies()
	SortMovies(in, ByScore, nil)
	if got := movieTitles(in); !reflect.DeepEqual(got, []string{"A", "B", "C"}) {
		t.Errorf("input reordered: %v", got)
	}
}

func TestSortMoviesWithExternalScore(t *testing.T) {
	vendor := map[string]int{"a": 10, "b": 20, "c": 99}
	got := movieTitles(SortMovies(sampleMovies(), ByScore, func(m domain.Movie) int { return vendor[m.ID] }))
	want := []string{"C", "B", "A"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestSortTheatersByDistance(t *testing.T) {
	theaters := []domain.Theater{{ID: "x", Name: "X"}, {ID: "y", Name: "Y"}, {ID: "z", Name: "Z"}}
	distances := map[string]float64{"x": 2.0, "y": domain.UnknownDistance, "z": 1.0}

	got := theaterNames(SortTheatersByDistance(theaters, distances))
	want := []string{"Z", "X", "Y"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestSortTheatersByDistanceTiesByName(t *testing.T) {
	theaters := []domain.Theater{
		{ID: "1", Name: "roxie"},
		{ID: "2", Name: "Castro"},
		{ID: "3", Name: "Alamo"},
	}
	distances := map[string]float64{"1": 1.5, "2": 1.5}

	got := theaterNames(SortTheatersByDistance(theaters, distances))
	want := []string{"Castro", "roxie", "Alamo"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}

	got = theaterNames(SortTheaters(theaters, ByName, nil))
	want = []string{"Alamo", "Castro", "roxie"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("by name: got %v, want %v", got, want)
	}
}

func sampleResult() domain.SearchResult {
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	return domain.SearchResult{
		Provider:   "North America",
		PostalCode: "94107",
		Date:       base,
		Movies: []domain.Movie{
			{ID: "m1", Title: "Dune"},
			{ID: "m2", Title: "Wicked"},
			{ID: "m3", Title: "Nosferatu"},
		},
		Theaters: []domain.Theater{
			{ID: "t1", Name: "Castro", Location: domain.Location{Latitude: 37.762, Longitude: -122.435}},
			{ID: "t2", Name: "Roxie", Location: domain.Location{Latitude: 37.765, Longitude: -122.422}},
			{ID: "t3", Name: "Drive-In"}, // no showtimes, no coordinates
		},
		Performances: []domain.Performance{
			{MovieID: "m1", TheaterID: "t1", Showtime: base.Add(21 * time.Hour)},
			{MovieID: "m1", TheaterID: "t1", Showtime: base.Add(18 * time.Hour)},
			{MovieID: "m1", TheaterID: "t2", Showtime: base.Add(19 * time.Hour)},
			{MovieID: "m2", TheaterID: "t2", Showtime: base.Add(20 * time.Hour)},
			{MovieID: "ghost", TheaterID: "t2", Showtime: base.Add(20 * time.Hour)},
		},
	}
}

func TestIndexRelations(t *testing.T) {
	idx := Build(sampleResult())

	if got := theaterNames(idx.TheatersShowingMovie("m1")); !reflect.DeepEqual(got, []string{"Castro", "Roxie"}) {
		t.Errorf("TheatersShowingMovie(m1) = %v", got)
	}
	if got := movieTitles(idx.MoviesAtTheater("t2")); !reflect.DeepEqual(got, []string{"Dune", "Wicked"}) {
		t.Errorf("MoviesAtTheater(t2) = %v", got)
	}
	if got := idx.TheatersShowingMovie("m3"); len(got) != 0 {
		t.Errorf("movie without showtimes should have no theaters, got %v", got)
	}
	if got := idx.MoviesAtTheater("t3"); len(got) != 0 {
		t.Errorf("theater without showtimes should have no movies, got %v", got)
	}

	perfs := idx.Performances("m1", "t1")
	if len(perfs) != 2 || !perfs[0].Showtime.Before(perfs[1].Showtime) {
		t.Errorf("Performances(m1, t1) = %v, want two in showtime order", perfs)
	}

	if _, ok := idx.Theater("t3"); !ok {
		t.Error("theater without showtimes should still be indexed")
	}
	if _, ok := idx.Movie("ghost"); ok {
		t.Error("performances must not invent movies")
	}
}

func TestDistanceMapAndRange(t *testing.T) {
	idx := Build(sampleResult())
	user := domain.Location{Latitude: 37.7599, Longitude: -122.4148}

	distances := idx.DistanceMap(user, nil)
	if distances["t3"] != domain.UnknownDistance {
		t.Errorf("t3 distance = %v, want unknown", distances["t3"])
	}
	if distances["t1"] <= 0 || distances["t1"] > 5 {
		t.Errorf("t1 distance = %v, want a few miles", distances["t1"])
	}

	inRange := InRange(idx.Theaters(), distances, 5)
	if got := theaterNames(inRange); !reflect.DeepEqual(got, []string{"Castro", "Roxie"}) {
		t.Errorf("InRange = %v", got)
	}

	none := idx.DistanceMap(domain.Location{}, nil)
	for id, d := range none {
		if d != domain.UnknownDistance {
			t.Errorf("%s: distance %v without a user location", id, d)
		}
	}
	if got := InRange(idx.Theaters(), none, 1e9); len(got) != 0 {
		t.Errorf("unknown distances must be excluded, got %v", theaterNames(got))
	}
}

func TestDistanceMapUsesLocator(t *testing.T) {
	idx := Build(sampleResult())
	user := domain.Location{Latitude: 37.7599, Longitude: -122.4148}

	var asked []string
	distances := idx.DistanceMap(user, func(th domain.Theater) domain.Location {
		asked = append(asked, th.ID)
		if th.ID == "t3" {
			return user
		}
		return th.Location
	})
	if distances["t3"] != 0 {
		t.Errorf("t3 distance = %v, want the located position", distances["t3"])
	}
	if len(asked) != len(idx.Theaters()) {
		t.Errorf("locator asked for %v", asked)
	}

	asked = nil
	idx.DistanceMap(domain.Location{}, func(th domain.Theater) domain.Location {
		asked = append(asked, th.ID)
		return th.Location
	})
	if len(asked) != 0 {
		t.Errorf("locator consulted without a user location: %v", asked)
	}
}
