package domain

import "fmt"

// UserMovie is a user's personal record for a movie.
// ID is the TMDB id, so a movie can only appear once in the collection.
type UserMovie struct {
	ID            int      `json:"id"`
	Title         string   `json:"title"`
	Year          string   `json:"year"`
	PosterPath    *string  `json:"posterPath,omitempty"`
	WatchDate     string   `json:"watchDate"` // YYYY-MM-DD, empty means unwatched
	Rating        int      `json:"rating"`    // 1-5, 0 means unrated
	Notes         string   `json:"notes"`
	Genres        []string `json:"genres"`
	Director      string   `json:"director"`
	Runtime       int      `json:"runtime"`   // minutes
	AddedDate     string   `json:"addedDate"` // YYYY-MM-DD, set once on add
	SawInTheaters *bool    `json:"sawInTheaters,omitempty"`
	RecommendedBy *string  `json:"recommendedBy,omitempty"`
}

// IsWatched returns true if the movie has a watch date
func (m UserMovie) IsWatched() bool {
	return m.WatchDate != ""
}

// IsRated returns true if the user gave the movie a rating
func (m UserMovie) IsRated() bool {
	return m.Rating > 0
}

// FormattedRuntime returns the runtime as "2h 5m"
func (m UserMovie) FormattedRuntime() string {
	return FormatRuntime(m.Runtime)
}

// Description returns secondary info for display, e.g. "1999 · Lana Wachowski · ★★★★"
func (m UserMovie) Description() string {
	desc := m.Year
	if m.Director != "" {
		if desc != "" {
			desc += " · "
		}
		desc += m.Director
	}
	if m.Rating > 0 {
		if desc != "" {
			desc += " · "
		}
		desc += Stars(m.Rating)
	}
	return desc
}

// Clone returns a deep copy so callers can't mutate stored slices.
func (m UserMovie) Clone() UserMovie {
	c := m
	if m.Genres != nil {
		c.Genres = append([]string(nil), m.Genres...)
	}
	if m.PosterPath != nil {
		p := *m.PosterPath
		c.PosterPath = &p
	}
	if m.SawInTheaters != nil {
		s := *m.SawInTheaters
		c.SawInTheaters = &s
	}
	if m.RecommendedBy != nil {
		r := *m.RecommendedBy
		c.RecommendedBy = &r
	}
	return c
}

// MovieList is a named, user-created grouping of movies.
type MovieList struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	MovieIDs    []int  `json:"movieIds"`
	CreatedDate string `json:"createdDate"`
}

// Contains reports whether the list holds movieID
func (l MovieList) Contains(movieID int) bool {
	for _, id := range l.MovieIDs {
		if id == movieID {
			return true
		}
	}
	return false
}

// Without returns a copy of the list with movieID stripped
func (l MovieList) Without(movieID int) MovieList {
	ids := make([]int, 0, len(l.MovieIDs))
	for _, id := range l.MovieIDs {
		if id != movieID {
			ids = append(ids, id)
		}
	}
	l.MovieIDs = ids
	return l
}

// NewList carries the caller-supplied fields of a list; id and createdDate are generated.
type NewList struct {
	Name        string
	Description string
	MovieIDs    []int
}

// Stars renders a 0-5 rating as filled/empty stars
func Stars(rating int) string {
	if rating < 0 {
		rating = 0
	}
	if rating > 5 {
		rating = 5
	}
	s := ""
	for i := 1; i <= 5; i++ {
		if i <= rating {
			s += "★"
		} else {
			s += "☆"
		}
	}
	return s
}

// ValidateRating checks the rating is within 0-5
func ValidateRating(rating int) error {
	if rating < 0 || rating > 5 {
		return fmt.Errorf("%w: %d", ErrInvalidRating, rating)
	}
	return nil
}
