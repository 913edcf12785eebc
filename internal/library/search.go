package library

import (
	"sort"
	"strings"

	"github.com/Rob-Bauman/movie-tracker/internal/domain"
	"github.com/lithammer/fuzzysearch/fuzzy"
	sfuzzy "github.com/sahilm/fuzzy"
)

// Match is a fuzzy search hit in the local collection
type Match struct {
	Movie          domain.UserMovie
	MatchedIndexes []int // Character positions that matched (for highlighting)
	Score          int   // Higher is better
}

// titleIndex implements sahilm/fuzzy.Source over lowercased titles
type titleIndex struct {
	movies      []domain.UserMovie
	lowerTitles []string
}

func newTitleIndex(movies []domain.UserMovie) *titleIndex {
	idx := &titleIndex{movies: movies, lowerTitles: make([]string, len(movies))}
	for i, m := range movies {
		idx.lowerTitles[i] = strings.ToLower(m.Title)
	}
	return idx
}

// String returns the lowercase title at index i (implements fuzzy.Source)
func (idx *titleIndex) String(i int) string { return idx.lowerTitles[i] }

// Len returns the number of items (implements fuzzy.Source)
func (idx *titleIndex) Len() int { return len(idx.movies) }

// SearchMovies fuzzy-matches query against the titles of movies, best first.
func SearchMovies(movies []domain.UserMovie, query string) []Match {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}

	idx := newTitleIndex(movies)
	found := sfuzzy.FindFrom(strings.ToLower(query), idx)

	matches := make([]Match, 0, len(found))
	for _, f := range found {
		matches = append(matches, Match{
			Movie:          idx.movies[f.Index],
			MatchedIndexes: f.MatchedIndexes,
			Score:          f.Score,
		})
	}
	return matches
}

// FindList resolves a user reference to a list: exact id, then
// case-insensitive name, then the closest fuzzy name match.
func FindList(lists []domain.MovieList, ref string) (domain.MovieList, bool) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return domain.MovieList{}, false
	}

	for _, l := range lists {
		if l.ID == ref {
			return l, true
		}
	}
	for _, l := range lists {
		if strings.EqualFold(l.Name, ref) {
			return l, true
		}
	}

	names := make([]string, len(lists))
	for i, l := range lists {
		names[i] = l.Name
	}
	ranks := fuzzy.RankFindNormalizedFold(ref, names)
	if len(ranks) == 0 {
		return domain.MovieList{}, false
	}
	sort.Sort(ranks)
	return lists[ranks[0].OriginalIndex], true
}
