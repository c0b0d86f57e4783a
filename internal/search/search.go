// Package search filters the current listings by free text.
package search

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	sfuzzy "github.com/sahilm/fuzzy"

	"github.com/mmcdole/boxoffice/internal/domain"
)

// MovieResult is a movie that matched a title filter
type MovieResult struct {
	Movie          domain.Movie
	MatchedIndexes []int // Character positions that matched (for highlighting)
	Score          int   // Higher is better
}

// movieSource implements sahilm/fuzzy.Source over pre-lowered titles
type movieSource struct {
	movies []domain.Movie
	lower  []string
}

func (s *movieSource) String(i int) string { return s.lower[i] }
func (s *movieSource) Len() int            { return len(s.movies) }

// Movies filters movies by title. Results are ordered best match first;
// equal scores keep the input order, so callers can sort before filtering.
// An empty query matches everything.
func Movies(query string, movies []domain.Movie) []MovieResult {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		results := make([]MovieResult, len(movies))
		for i, mv := range movies {
			results[i] = MovieResult{Movie: mv}
		}
		return results
	}

	src := &movieSource{movies: movies, lower: make([]string, len(movies))}
	for i, mv := range movies {
		src.lower[i] = strings.ToLower(mv.Title)
	}

	matches := sfuzzy.FindFrom(query, src)
	results := make([]MovieResult, len(matches))
	for i, match := range matches {
		results[i] = MovieResult{
			Movie:          movies[match.Index],
			MatchedIndexes: match.MatchedIndexes,
			Score:          match.Score,
		}
	}
	return results
}

// Theaters filters theaters whose name or address contains the query's
// characters in order, ignoring case and diacritics. Closer matches come
// first.
func Theaters(query string, theaters []domain.Theater) []domain.Theater {
	query = strings.TrimSpace(query)
	if query == "" {
		return append([]domain.Theater(nil), theaters...)
	}

	targets := make([]string, 0, len(theaters)*2)
	owner := make([]int, 0, len(theaters)*2)
	for i, t := range theaters {
		targets = append(targets, t.Name)
		owner = append(owner, i)
		if t.Address != "" {
			targets = append(targets, t.Address)
			owner = append(owner, i)
		}
	}

	ranks := fuzzy.RankFindNormalizedFold(query, targets)
	sort.Stable(ranks)

	seen := make(map[int]bool, len(ranks))
	var out []domain.Theater
	for _, r := range ranks {
		i := owner[r.OriginalIndex]
		if seen[i] {
			continue
		}
		seen[i] = true
		out = append(out, theaters[i])
	}
	return out
}
