package tmdb

import "github.com/Rob-Bauman/movie-tracker/internal/domain"

// ToUserMovie builds an unrated, unwatched collection record from remote details.
// credits may be nil. AddedDate is left for the repository to stamp.
func ToUserMovie(details *domain.Movie, credits *domain.Credits) domain.UserMovie {
	m := domain.UserMovie{
		ID:     details.ID,
		Title:  details.Title,
		Year:   domain.ReleaseYear(details.ReleaseDate),
		Genres: details.GenreNames(),
	}
	if details.PosterPath != nil {
		p := *details.PosterPath
		m.PosterPath = &p
	}
	if details.Runtime != nil {
		m.Runtime = *details.Runtime
	}
	if credits != nil {
		m.Director = credits.Director()
	}
	return m
}
