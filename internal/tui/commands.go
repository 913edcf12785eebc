package tui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Rob-Bauman/movie-tracker/internal/domain"
	"github.com/Rob-Bauman/movie-tracker/internal/library"
	tea "github.com/charmbracelet/bubbletea"
)

const storageTimeout = 5 * time.Second

// Collection is the repository surface the browser needs
type Collection interface {
	ListMovies(ctx context.Context, opts library.ListOptions) []domain.UserMovie
	ListLists(ctx context.Context) []domain.MovieList
	UpdateMovie(ctx context.Context, movie domain.UserMovie) bool
	RemoveMovie(ctx context.Context, id int) bool
}

var errWriteFailed = errors.New("write was rejected, see log for details")

// LoadCollectionCmd loads movies in the requested order plus all lists
func LoadCollectionCmd(repo Collection, opts library.ListOptions) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), storageTimeout)
		defer cancel()

		return CollectionLoadedMsg{
			Movies: repo.ListMovies(ctx, opts),
			Lists:  repo.ListLists(ctx),
		}
	}
}

// UpdateMovieCmd replaces a movie record
func UpdateMovieCmd(repo Collection, movie domain.UserMovie, status string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), storageTimeout)
		defer cancel()

		if !repo.UpdateMovie(ctx, movie) {
			return ErrMsg{Err: errWriteFailed, Context: fmt.Sprintf("updating %q", movie.Title)}
		}
		return MutationDoneMsg{Status: status}
	}
}

// RemoveMovieCmd deletes a movie and strips it from lists
func RemoveMovieCmd(repo Collection, movie domain.UserMovie) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), storageTimeout)
		defer cancel()

		if !repo.RemoveMovie(ctx, movie.ID) {
			return ErrMsg{Err: errWriteFailed, Context: fmt.Sprintf("removing %q", movie.Title)}
		}
		return MutationDoneMsg{Status: fmt.Sprintf("Removed %s", movie.Title)}
	}
}
