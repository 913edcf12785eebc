package tui

import (
	"github.com/Rob-Bauman/movie-tracker/internal/domain"
	"github.com/Rob-Bauman/movie-tracker/internal/tui/styles"
	"github.com/charmbracelet/bubbles/list"
)

// movieItem adapts a UserMovie to list.DefaultItem
type movieItem struct {
	movie domain.UserMovie
}

func (i movieItem) Title() string {
	return styles.RenderWatchStatus(i.movie.IsWatched()) + " " + i.movie.Title
}

func (i movieItem) Description() string {
	desc := i.movie.Description()
	if i.movie.Runtime > 0 {
		if desc != "" {
			desc += " · "
		}
		desc += i.movie.FormattedRuntime()
	}
	return desc
}

// FilterValue is matched by the list's fuzzy filter
func (i movieItem) FilterValue() string { return i.movie.Title }

func toItems(movies []domain.UserMovie) []list.Item {
	items := make([]list.Item, len(movies))
	for n, m := range movies {
		items[n] = movieItem{movie: m}
	}
	return items
}
