package library

import (
	"cmp"
	"slices"

	"github.com/Rob-Bauman/movie-tracker/internal/domain"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// comparator orders two movies ascending. Strings go through the collator.
type comparator func(a, b domain.UserMovie, col *collate.Collator) int

func byString(field func(domain.UserMovie) string) comparator {
	return func(a, b domain.UserMovie, col *collate.Collator) int {
		return col.CompareString(field(a), field(b))
	}
}

func byInt(field func(domain.UserMovie) int) comparator {
	return func(a, b domain.UserMovie, _ *collate.Collator) int {
		return cmp.Compare(field(a), field(b))
	}
}

// comparators is the closed set of sortable fields
var comparators = map[domain.SortField]comparator{
	domain.SortByAddedDate: byString(func(m domain.UserMovie) string { return m.AddedDate }),
	domain.SortByWatchDate: byString(func(m domain.UserMovie) string { return m.WatchDate }),
	domain.SortByTitle:     byString(func(m domain.UserMovie) string { return m.Title }),
	domain.SortByYear:      byString(func(m domain.UserMovie) string { return m.Year }),
	domain.SortByDirector:  byString(func(m domain.UserMovie) string { return m.Director }),
	domain.SortByRating:    byInt(func(m domain.UserMovie) int { return m.Rating }),
	domain.SortByRuntime:   byInt(func(m domain.UserMovie) int { return m.Runtime }),
	domain.SortByID:        byInt(func(m domain.UserMovie) int { return m.ID }),
}

// SortMovies sorts movies in place. Ties keep their original relative order
// in both directions. Unknown fields leave the slice untouched.
func SortMovies(movies []domain.UserMovie, sortBy domain.SortField, direction domain.SortDirection, locale language.Tag) {
	compare, ok := comparators[sortBy]
	if !ok {
		return
	}
	// Collators keep internal buffers, so each sort gets its own
	col := collate.New(locale)

	slices.SortStableFunc(movies, func(a, b domain.UserMovie) int {
		if direction == domain.SortAsc {
			return compare(a, b, col)
		}
		return compare(b, a, col)
	})
}
