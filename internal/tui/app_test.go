package tui

import (
	"context"
	"testing"
	"time"

	"github.com/Rob-Bauman/movie-tracker/internal/domain"
	"github.com/Rob-Bauman/movie-tracker/internal/library"
	"github.com/Rob-Bauman/movie-tracker/internal/store"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestModel(t *testing.T) (Model, *library.Repository) {
	t.Helper()
	s, err := store.Open("")
	require.NoError(t, err)

	repo := library.NewRepository(s.Bucket(store.BucketCollections))
	ctx := context.Background()
	require.True(t, repo.AddMovie(ctx, domain.UserMovie{ID: 1, Title: "Heat", Rating: 5, Runtime: 170}))
	require.True(t, repo.AddMovie(ctx, domain.UserMovie{ID: 2, Title: "Alien", Runtime: 117}))
	_, ok := repo.AddList(ctx, domain.NewList{Name: "Classics", MovieIDs: []int{2}})
	require.True(t, ok)

	m := NewModel(repo, domain.SortByTitle, domain.SortAsc)
	m.now = func() time.Time { return time.Date(2024, 5, 5, 0, 0, 0, 0, time.UTC) }
	return m, repo
}

// run feeds msg to the model and executes the returned command chain once
func run(t *testing.T, m Model, msg tea.Msg) (Model, tea.Msg) {
	t.Helper()
	next, cmd := m.Update(msg)
	var out tea.Msg
	if cmd != nil {
		out = cmd()
	}
	return next.(Model), out
}

func keyMsg(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func load(t *testing.T, m Model) Model {
	t.Helper()
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	m = next.(Model)
	next, _ = m.Update(m.Init()())
	return next.(Model)
}

func TestLoadPopulatesListAndStats(t *testing.T) {
	m, _ := newTestModel(t)
	m = load(t, m)

	items := m.list.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "Alien", items[0].(movieItem).movie.Title)
	assert.Equal(t, 2, m.stats.TotalMovies)
	assert.Equal(t, "4h 47m", m.stats.FormattedWatchTime)
	assert.Equal(t, "5.0", m.stats.AverageRating)
}

func TestSortAndDirectionKeysReload(t *testing.T) {
	m, _ := newTestModel(t)
	m = load(t, m)

	m, msg := run(t, m, keyMsg("o"))
	assert.Equal(t, domain.SortDesc, m.direction)
	loaded, ok := msg.(CollectionLoadedMsg)
	require.True(t, ok)
	assert.Equal(t, "Heat", loaded.Movies[0].Title)

	m, _ = run(t, m, keyMsg("s"))
	assert.Equal(t, nextSortField(domain.SortByTitle), m.sortBy)
}

func TestFilterCyclesThroughLists(t *testing.T) {
	m, _ := newTestModel(t)
	m = load(t, m)

	for range library.Filters {
		m, _ = run(t, m, keyMsg("f"))
	}
	assert.Equal(t, "list: Classics", m.filterLabel())
	require.Len(t, m.list.Items(), 1)
	assert.Equal(t, "Alien", m.list.Items()[0].(movieItem).movie.Title)

	m, _ = run(t, m, keyMsg("f"))
	assert.Equal(t, library.FilterAll, m.filter)
}

func TestRateSelectedMovie(t *testing.T) {
	m, repo := newTestModel(t)
	m = load(t, m)

	_, msg := run(t, m, keyMsg("3"))
	done, ok := msg.(MutationDoneMsg)
	require.True(t, ok)
	assert.Contains(t, done.Status, "Alien")

	got, ok := repo.GetMovieByID(context.Background(), 2)
	require.True(t, ok)
	assert.Equal(t, 3, got.Rating)
}

func TestDeleteRequiresConfirmation(t *testing.T) {
	m, repo := newTestModel(t)
	m = load(t, m)
	ctx := context.Background()

	m, msg := run(t, m, keyMsg("x"))
	assert.Nil(t, msg)
	require.NotNil(t, m.confirmDelete)
	assert.Contains(t, m.View(), "Remove \"Alien\"")

	m, _ = run(t, m, keyMsg("n"))
	assert.Nil(t, m.confirmDelete)
	_, ok := repo.GetMovieByID(ctx, 2)
	assert.True(t, ok)

	m, _ = run(t, m, keyMsg("x"))
	_, msg = run(t, m, keyMsg("y"))
	assert.IsType(t, MutationDoneMsg{}, msg)
	_, ok = repo.GetMovieByID(ctx, 2)
	assert.False(t, ok)
	assert.Empty(t, repo.ListLists(ctx)[0].MovieIDs)
}

func TestMarkWatched(t *testing.T) {
	m, repo := newTestModel(t)
	m = load(t, m)

	_, msg := run(t, m, keyMsg("w"))
	require.IsType(t, MutationDoneMsg{}, msg)

	got, _ := repo.GetMovieByID(context.Background(), 2)
	assert.Equal(t, "2024-05-05", got.WatchDate)
}

func TestNextSortFieldWraps(t *testing.T) {
	last := domain.SortFields[len(domain.SortFields)-1]
	assert.Equal(t, domain.SortFields[0], nextSortField(last))
	assert.Equal(t, domain.SortFields[0], nextSortField("bogus"))
}
