package library

import (
	"time"

	"github.com/Rob-Bauman/movie-tracker/internal/domain"
)

// Filter selects a subset of the collection. Values other than the
// named filters are treated as a list id.
type Filter string

const (
	FilterAll       Filter = "all"
	FilterFavorites Filter = "favorites"
	FilterRecent    Filter = "recent"
	FilterUnwatched Filter = "unwatched"
)

// Filters lists the named filters in display order
var Filters = []Filter{FilterAll, FilterFavorites, FilterRecent, FilterUnwatched}

const (
	favoriteRating = 4
	recentDays     = 30
)

// FilterMovies returns the movies matching filter, keeping their order.
// An unknown list id leaves the movies unfiltered.
func FilterMovies(movies []domain.UserMovie, lists []domain.MovieList, filter Filter, now time.Time) []domain.UserMovie {
	var keep func(domain.UserMovie) bool

	switch filter {
	case "", FilterAll:
		return movies
	case FilterFavorites:
		keep = func(m domain.UserMovie) bool { return m.Rating >= favoriteRating }
	case FilterRecent:
		since := domain.FormatDate(now.AddDate(0, 0, -recentDays))
		keep = func(m domain.UserMovie) bool { return m.WatchDate != "" && m.WatchDate >= since }
	case FilterUnwatched:
		keep = func(m domain.UserMovie) bool { return !m.IsWatched() }
	default:
		var list *domain.MovieList
		for i := range lists {
			if lists[i].ID == string(filter) {
				list = &lists[i]
				break
			}
		}
		if list == nil {
			return movies
		}
		keep = func(m domain.UserMovie) bool { return list.Contains(m.ID) }
	}

	out := make([]domain.UserMovie, 0, len(movies))
	for _, m := range movies {
		if keep(m) {
			out = append(out, m)
		}
	}
	return out
}

// ResolveListMovies returns the movies referenced by list in list order,
// skipping ids with no matching movie.
func ResolveListMovies(movies []domain.UserMovie, list domain.MovieList) []domain.UserMovie {
	byID := make(map[int]domain.UserMovie, len(movies))
	for _, m := range movies {
		byID[m.ID] = m
	}
	out := make([]domain.UserMovie, 0, len(list.MovieIDs))
	for _, id := range list.MovieIDs {
		if m, ok := byID[id]; ok {
			out = append(out, m)
		}
	}
	return out
}
