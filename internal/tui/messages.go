package tui

import "github.com/Rob-Bauman/movie-tracker/internal/domain"

// ErrMsg represents an error
type ErrMsg struct {
	Err     error
	Context string
}

// Error implements the error interface
func (e ErrMsg) Error() string {
	if e.Context != "" {
		return e.Context + ": " + e.Err.Error()
	}
	return e.Err.Error()
}

// CollectionLoadedMsg carries a fresh snapshot of both collections
type CollectionLoadedMsg struct {
	Movies []domain.UserMovie
	Lists  []domain.MovieList
}

// MutationDoneMsg reports a finished write; the browser reloads afterwards
type MutationDoneMsg struct {
	Status string
}
