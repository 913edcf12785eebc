// Package tui is a terminal browser over the movie collection.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/Rob-Bauman/movie-tracker/internal/domain"
	"github.com/Rob-Bauman/movie-tracker/internal/library"
	"github.com/Rob-Bauman/movie-tracker/internal/tui/styles"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Model is the browser state
type Model struct {
	repo Collection
	keys KeyMap
	list list.Model
	help help.Model
	now  func() time.Time

	sortBy    domain.SortField
	direction domain.SortDirection
	filter    library.Filter

	all   []domain.UserMovie // sorted, unfiltered
	lists []domain.MovieList
	stats library.Stats

	status        string
	err           error
	confirmDelete *domain.UserMovie
	showHelp      bool
	width, height int
}

// NewModel creates the browser. Empty sort settings use addedDate, descending.
func NewModel(repo Collection, sortBy domain.SortField, direction domain.SortDirection) Model {
	if sortBy == "" {
		sortBy = domain.SortByAddedDate
	}
	if direction == "" {
		direction = domain.SortDesc
	}

	l := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Movies"
	l.Styles.Title = styles.TitleStyle
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.DisableQuitKeybindings()

	return Model{
		repo:      repo,
		keys:      DefaultKeyMap(),
		list:      l,
		help:      help.New(),
		now:       time.Now,
		sortBy:    sortBy,
		direction: direction,
		filter:    library.FilterAll,
	}
}

// Run starts the browser on the alternate screen
func Run(m Model) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return m.reload()
}

func (m Model) reload() tea.Cmd {
	return LoadCollectionCmd(m.repo, library.ListOptions{SortBy: m.sortBy, Direction: m.direction})
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.updateLayout()
		return m, nil

	case CollectionLoadedMsg:
		m.all = msg.Movies
		m.lists = msg.Lists
		if !m.filterExists(m.filter) {
			m.filter = library.FilterAll
		}
		return m, m.applyFilter()

	case MutationDoneMsg:
		m.status = msg.Status
		m.err = nil
		return m, m.reload()

	case ErrMsg:
		m.err = msg
		return m, nil

	case tea.KeyMsg:
		// Typing into the list's filter prompt takes every key
		if m.list.FilterState() == list.Filtering {
			break
		}
		if m.confirmDelete != nil {
			return m.handleConfirm(msg)
		}
		if model, cmd, handled := m.handleKeyMsg(msg); handled {
			return model, cmd
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit, true

	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		m.updateLayout()
		return m, nil, true

	case key.Matches(msg, m.keys.Sort):
		m.sortBy = nextSortField(m.sortBy)
		m.status = "Sorted by " + string(m.sortBy)
		return m, m.reload(), true

	case key.Matches(msg, m.keys.Direction):
		m.direction = m.direction.Toggle()
		m.status = "Direction " + string(m.direction)
		return m, m.reload(), true

	case key.Matches(msg, m.keys.Filter):
		m.filter = m.nextFilter()
		m.status = "Showing " + m.filterLabel()
		return m, m.applyFilter(), true

	case key.Matches(msg, m.keys.Refresh):
		return m, m.reload(), true
	}

	movie, ok := m.selected()
	if !ok {
		return m, nil, false
	}

	switch {
	case key.Matches(msg, m.keys.Rate):
		rating := int(msg.String()[0] - '0')
		movie.Rating = rating
		return m, UpdateMovieCmd(m.repo, movie, fmt.Sprintf("Rated %s %s", movie.Title, domain.Stars(rating))), true

	case key.Matches(msg, m.keys.Watched):
		movie.WatchDate = domain.FormatDate(m.now())
		return m, UpdateMovieCmd(m.repo, movie, "Marked "+movie.Title+" watched"), true

	case key.Matches(msg, m.keys.Delete):
		m.confirmDelete = &movie
		return m, nil, true
	}
	return m, nil, false
}

func (m Model) handleConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	movie := *m.confirmDelete
	switch {
	case key.Matches(msg, m.keys.Confirm):
		m.confirmDelete = nil
		return m, RemoveMovieCmd(m.repo, movie)
	case key.Matches(msg, m.keys.Deny):
		m.confirmDelete = nil
	}
	return m, nil
}

func (m Model) selected() (domain.UserMovie, bool) {
	item, ok := m.list.SelectedItem().(movieItem)
	if !ok {
		return domain.UserMovie{}, false
	}
	return item.movie, true
}

func (m *Model) applyFilter() tea.Cmd {
	visible := library.FilterMovies(m.all, m.lists, m.filter, m.now())
	m.stats = library.ComputeStats(visible)
	m.list.Title = "Movies · " + m.filterLabel()
	return m.list.SetItems(toItems(visible))
}

// nextSortField cycles through the sortable fields
func nextSortField(current domain.SortField) domain.SortField {
	for n, f := range domain.SortFields {
		if f == current {
			return domain.SortFields[(n+1)%len(domain.SortFields)]
		}
	}
	return domain.SortFields[0]
}

// filterOptions is the named filters followed by one entry per list
func (m Model) filterOptions() []library.Filter {
	opts := append([]library.Filter(nil), library.Filters...)
	for _, l := range m.lists {
		opts = append(opts, library.Filter(l.ID))
	}
	return opts
}

func (m Model) filterExists(f library.Filter) bool {
	for _, o := range m.filterOptions() {
		if o == f {
			return true
		}
	}
	return false
}

func (m Model) nextFilter() library.Filter {
	opts := m.filterOptions()
	for n, o := range opts {
		if o == m.filter {
			return opts[(n+1)%len(opts)]
		}
	}
	return library.FilterAll
}

func (m Model) filterLabel() string {
	for _, l := range m.lists {
		if library.Filter(l.ID) == m.filter {
			return "list: " + l.Name
		}
	}
	return string(m.filter)
}

func (m *Model) updateLayout() {
	footer := 2
	if m.showHelp {
		footer += 3
	}
	m.help.ShowAll = m.showHelp
	m.list.SetSize(m.width, max(m.height-footer, 0))
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.list.View())
	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

func (m Model) renderFooter() string {
	var status string
	switch {
	case m.confirmDelete != nil:
		status = styles.ErrorStyle.Render(fmt.Sprintf("Remove %q from the collection? (y/n)", m.confirmDelete.Title))
	case m.err != nil:
		status = styles.ErrorStyle.Render(m.err.Error())
	case m.status != "":
		status = styles.DimStyle.Render(m.status)
	}

	badges := lipgloss.JoinHorizontal(lipgloss.Top,
		styles.BadgeStyle.Render(fmt.Sprintf("%d movies", m.stats.TotalMovies)),
		" ",
		styles.BadgeStyle.Render(m.stats.FormattedWatchTime),
		" ",
		styles.BadgeStyle.Render("avg "+m.stats.AverageRating),
		" ",
		styles.AccentStyle.Render(fmt.Sprintf("%s %s", m.sortBy, m.direction)),
	)

	footer := styles.StatusBarStyle.Render(badges + "  " + status)
	return footer + "\n" + m.help.View(m.keys)
}
