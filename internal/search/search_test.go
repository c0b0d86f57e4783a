package search

import (
	"testing"

	"github.com/mmcdole/boxoffice/internal/domain"
)

var movies = []domain.Movie{
	{ID: "m1", Title: "Dune: Part Two"},
	{ID: "m2", Title: "Wicked"},
	{ID: "m3", Title: "Dune"},
	{ID: "m4", Title: "Inside Out 2"},
}

func ids(results []MovieResult) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.Movie.ID
	}
	return out
}

func TestMoviesEmptyQueryKeepsOrder(t *testing.T) {
	got := ids(Movies("  ", movies))
	want := []string{"m1", "m2", "m3", "m4"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestMoviesFuzzyTitle(t *testing.T) {
	got := Movies("DUNE", movies)
	if len(got) != 2 {
		t.Fatalf("got %v, want both Dune titles", ids(got))
	}
	for _, r := range got {
		if len(r.MatchedIndexes) != 4 {
			t.Errorf("%s matched %v", r.Movie.Title, r.MatchedIndexes)
		}
	}

	got = Movies("wkd", movies)
	if len(got) != 1 || got[0].Movie.ID != "m2" {
		t.Errorf("wkd matched %v", ids(got))
	}

	if got := Movies("zzz", movies); len(got) != 0 {
		t.Errorf("zzz matched %v", ids(got))
	}
}

func TestTheatersMatchesNameOrAddress(t *testing.T) {
	theaters := []domain.Theater{
		{ID: "t1", Name: "Castro Theatre", Address: "429 Castro St"},
		{ID: "t2", Name: "Roxie", Address: "3117 16th St"},
		{ID: "t3", Name: "Café Cinéma", Address: "1 Market St"},
	}

	got := Theaters("castro", theaters)
	if len(got) != 1 || got[0].ID != "t1" {
		t.Errorf("castro matched %v", got)
	}

	got = Theaters("16th", theaters)
	if len(got) != 1 || got[0].ID != "t2" {
		t.Errorf("16th matched %v", got)
	}

	got = Theaters("cafe cinema", theaters)
	if len(got) != 1 || got[0].ID != "t3" {
		t.Errorf("diacritics not folded: %v", got)
	}

	if got := Theaters("", theaters); len(got) != 3 {
		t.Errorf("empty query returned %d theaters", len(got))
	}
}
