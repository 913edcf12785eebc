package library

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/Rob-Bauman/movie-tracker/internal/domain"
	"golang.org/x/text/language"
)

// Storage keys for the two collections
const (
	KeyMovies = "@MovieTracker:movies"
	KeyLists  = "@MovieTracker:lists"
)

// ListOptions selects the ordering of ListMovies.
// Zero values mean addedDate, descending.
type ListOptions struct {
	SortBy    domain.SortField
	Direction domain.SortDirection
}

// Repository is the only reader and writer of the persisted movie and list collections.
//
// Every operation loads the whole collection, mutates it in memory and writes it back.
// Storage faults never escape: reads degrade to empty, writes to false, and the fault
// is logged. Use Check to surface a fault explicitly.
type Repository struct {
	store  domain.KVStore
	logger *slog.Logger
	now    func() time.Time
	locale language.Tag

	// One writer per collection. RemoveMovie takes moviesMu before listsMu.
	moviesMu sync.Mutex
	listsMu  sync.Mutex
}

// Option configures a Repository
type Option func(*Repository)

// WithClock overrides time.Now (addedDate, list ids and createdDate)
func WithClock(now func() time.Time) Option {
	return func(r *Repository) { r.now = now }
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(r *Repository) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithLocale sets the collation locale for string sorting
func WithLocale(tag language.Tag) Option {
	return func(r *Repository) { r.locale = tag }
}

// NewRepository creates a repository over store
func NewRepository(store domain.KVStore, opts ...Option) *Repository {
	r := &Repository{
		store:  store,
		logger: slog.Default(),
		now:    time.Now,
		locale: language.English,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Repository) today() string {
	return domain.FormatDate(r.now())
}

// === Generic helpers ===

// load decodes the collection under key. A missing key is an empty collection.
func load[T any](ctx context.Context, store domain.KVStore, key string) ([]T, error) {
	data, ok, err := store.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	if !ok || len(data) == 0 {
		return []T{}, nil
	}
	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrCorruptCollection, key, err)
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

func save[T any](ctx context.Context, store domain.KVStore, key string, items []T) error {
	data, err := json.Marshal(items)
	if err != nil {
		return err
	}
	return store.Set(ctx, key, data)
}

func (r *Repository) loadMovies(ctx context.Context) ([]domain.UserMovie, error) {
	return load[domain.UserMovie](ctx, r.store, KeyMovies)
}

func (r *Repository) loadLists(ctx context.Context) ([]domain.MovieList, error) {
	return load[domain.MovieList](ctx, r.store, KeyLists)
}

// === Movies ===

// ListMovies returns the collection sorted by opts (stable for ties).
// An unreadable collection is returned as empty.
func (r *Repository) ListMovies(ctx context.Context, opts ListOptions) []domain.UserMovie {
	movies, err := r.loadMovies(ctx)
	if err != nil {
		r.logger.Error("failed to load movies", "error", err)
		return []domain.UserMovie{}
	}

	sortBy := opts.SortBy
	if sortBy == "" {
		sortBy = domain.SortByAddedDate
	}
	if _, ok := comparators[sortBy]; !ok {
		r.logger.Warn("unknown sort field, using default", "sortBy", sortBy)
		sortBy = domain.SortByAddedDate
	}
	direction := opts.Direction
	if direction != domain.SortAsc {
		direction = domain.SortDesc
	}

	SortMovies(movies, sortBy, direction, r.locale)
	return movies
}

// GetMovieByID returns the movie with id, if present
func (r *Repository) GetMovieByID(ctx context.Context, id int) (domain.UserMovie, bool) {
	movies, err := r.loadMovies(ctx)
	if err != nil {
		r.logger.Error("failed to load movies", "error", err, "movieID", id)
		return domain.UserMovie{}, false
	}
	for _, m := range movies {
		if m.ID == id {
			return m, true
		}
	}
	return domain.UserMovie{}, false
}

// AddMovie appends movie with addedDate set to today.
// Returns false if the id is already in the collection or on a storage fault.
func (r *Repository) AddMovie(ctx context.Context, movie domain.UserMovie) bool {
	if err := domain.ValidateRating(movie.Rating); err != nil {
		r.logger.Warn("rejected movie", "movieID", movie.ID, "error", err)
		return false
	}

	r.moviesMu.Lock()
	defer r.moviesMu.Unlock()

	movies, err := r.loadMovies(ctx)
	if err != nil {
		r.logger.Error("failed to add movie", "error", err, "movieID", movie.ID)
		return false
	}
	for _, m := range movies {
		if m.ID == movie.ID {
			r.logger.Debug("movie already in collection", "movieID", movie.ID)
			return false
		}
	}

	movie = movie.Clone()
	movie.AddedDate = r.today()
	if movie.Genres == nil {
		movie.Genres = []string{}
	}
	movies = append(movies, movie)

	if err := save(ctx, r.store, KeyMovies, movies); err != nil {
		r.logger.Error("failed to save movies", "error", err, "movieID", movie.ID)
		return false
	}
	r.logger.Info("added movie", "movieID", movie.ID, "title", movie.Title)
	return true
}

// UpdateMovie replaces the stored record with the same id.
// addedDate is kept from the stored record. Returns false if the id is unknown.
func (r *Repository) UpdateMovie(ctx context.Context, movie domain.UserMovie) bool {
	if err := domain.ValidateRating(movie.Rating); err != nil {
		r.logger.Warn("rejected movie update", "movieID", movie.ID, "error", err)
		return false
	}

	r.moviesMu.Lock()
	defer r.moviesMu.Unlock()

	movies, err := r.loadMovies(ctx)
	if err != nil {
		r.logger.Error("failed to update movie", "error", err, "movieID", movie.ID)
		return false
	}

	idx := -1
	for i, m := range movies {
		if m.ID == movie.ID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return false
	}

	movie = movie.Clone()
	movie.AddedDate = movies[idx].AddedDate
	if movie.Genres == nil {
		movie.Genres = []string{}
	}
	movies[idx] = movie

	if err := save(ctx, r.store, KeyMovies, movies); err != nil {
		r.logger.Error("failed to save movies", "error", err, "movieID", movie.ID)
		return false
	}
	r.logger.Info("updated movie", "movieID", movie.ID)
	return true
}

// RemoveMovie deletes the movie and strips its id from every list.
// Returns false if the movie was not found; a failed list cleanup is only logged.
func (r *Repository) RemoveMovie(ctx context.Context, id int) bool {
	r.moviesMu.Lock()
	defer r.moviesMu.Unlock()

	movies, err := r.loadMovies(ctx)
	if err != nil {
		r.logger.Error("failed to remove movie", "error", err, "movieID", id)
		return false
	}

	kept := make([]domain.UserMovie, 0, len(movies))
	for _, m := range movies {
		if m.ID != id {
			kept = append(kept, m)
		}
	}
	if len(kept) == len(movies) {
		return false
	}

	if err := save(ctx, r.store, KeyMovies, kept); err != nil {
		r.logger.Error("failed to save movies", "error", err, "movieID", id)
		return false
	}
	r.logger.Info("removed movie", "movieID", id)

	r.listsMu.Lock()
	defer r.listsMu.Unlock()

	lists, err := r.loadLists(ctx)
	if err != nil {
		r.logger.Error("failed to strip removed movie from lists", "error", err, "movieID", id)
		return true
	}

	changed := false
	for i, l := range lists {
		if l.Contains(id) {
			lists[i] = l.Without(id)
			changed = true
		}
	}
	if changed {
		if err := save(ctx, r.store, KeyLists, lists); err != nil {
			r.logger.Error("failed to save lists after movie removal", "error", err, "movieID", id)
		}
	}
	return true
}

// === Lists ===

// ListLists returns all lists in creation order
func (r *Repository) ListLists(ctx context.Context) []domain.MovieList {
	lists, err := r.loadLists(ctx)
	if err != nil {
		r.logger.Error("failed to load lists", "error", err)
		return []domain.MovieList{}
	}
	return lists
}

// GetListByID returns the list with id, if present
func (r *Repository) GetListByID(ctx context.Context, id string) (domain.MovieList, bool) {
	for _, l := range r.ListLists(ctx) {
		if l.ID == id {
			return l, true
		}
	}
	return domain.MovieList{}, false
}

// AddList creates a list whose id is the current time in milliseconds.
// Ids are not checked for collisions.
func (r *Repository) AddList(ctx context.Context, nl domain.NewList) (domain.MovieList, bool) {
	r.listsMu.Lock()
	defer r.listsMu.Unlock()

	lists, err := r.loadLists(ctx)
	if err != nil {
		r.logger.Error("failed to add list", "error", err, "name", nl.Name)
		return domain.MovieList{}, false
	}

	now := r.now()
	list := domain.MovieList{
		ID:          strconv.FormatInt(now.UnixMilli(), 10),
		Name:        nl.Name,
		Description: nl.Description,
		MovieIDs:    dedupeIDs(nl.MovieIDs),
		CreatedDate: domain.FormatDate(now),
	}
	lists = append(lists, list)

	if err := save(ctx, r.store, KeyLists, lists); err != nil {
		r.logger.Error("failed to save lists", "error", err, "name", nl.Name)
		return domain.MovieList{}, false
	}
	r.logger.Info("created list", "listID", list.ID, "name", list.Name)
	return list, true
}

// UpdateList replaces the list with the same id; createdDate is kept.
func (r *Repository) UpdateList(ctx context.Context, list domain.MovieList) bool {
	return r.mutateList(ctx, list.ID, func(stored *domain.MovieList) bool {
		createdDate := stored.CreatedDate
		*stored = list
		stored.MovieIDs = dedupeIDs(list.MovieIDs)
		stored.CreatedDate = createdDate
		return true
	})
}

// RemoveList deletes the list with id
func (r *Repository) RemoveList(ctx context.Context, id string) bool {
	r.listsMu.Lock()
	defer r.listsMu.Unlock()

	lists, err := r.loadLists(ctx)
	if err != nil {
		r.logger.Error("failed to remove list", "error", err, "listID", id)
		return false
	}

	kept := make([]domain.MovieList, 0, len(lists))
	for _, l := range lists {
		if l.ID != id {
			kept = append(kept, l)
		}
	}
	if len(kept) == len(lists) {
		return false
	}

	if err := save(ctx, r.store, KeyLists, kept); err != nil {
		r.logger.Error("failed to save lists", "error", err, "listID", id)
		return false
	}
	r.logger.Info("removed list", "listID", id)
	return true
}

// AddMovieToList appends movieID to the list. Adding a movie already in the
// list succeeds without writing. The movie itself is not checked.
func (r *Repository) AddMovieToList(ctx context.Context, movieID int, listID string) bool {
	return r.mutateList(ctx, listID, func(l *domain.MovieList) bool {
		if l.Contains(movieID) {
			return false
		}
		l.MovieIDs = append(l.MovieIDs, movieID)
		return true
	})
}

// RemoveMovieFromList returns false if the list is missing or does not hold movieID.
func (r *Repository) RemoveMovieFromList(ctx context.Context, movieID int, listID string) bool {
	found := false
	ok := r.mutateList(ctx, listID, func(l *domain.MovieList) bool {
		if !l.Contains(movieID) {
			return false
		}
		found = true
		*l = l.Without(movieID)
		return true
	})
	return ok && found
}

// mutateList applies fn to the list with id under the lists lock and saves if fn
// reports a change. Returns false if the list is missing or on a fault.
func (r *Repository) mutateList(ctx context.Context, id string, fn func(*domain.MovieList) bool) bool {
	r.listsMu.Lock()
	defer r.listsMu.Unlock()

	lists, err := r.loadLists(ctx)
	if err != nil {
		r.logger.Error("failed to load lists", "error", err, "listID", id)
		return false
	}

	idx := -1
	for i, l := range lists {
		if l.ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return false
	}

	if !fn(&lists[idx]) {
		return true
	}

	if err := save(ctx, r.store, KeyLists, lists); err != nil {
		r.logger.Error("failed to save lists", "error", err, "listID", id)
		return false
	}
	return true
}

// === Data management ===

// ClearAllData deletes both collections
func (r *Repository) ClearAllData(ctx context.Context) bool {
	r.moviesMu.Lock()
	defer r.moviesMu.Unlock()
	r.listsMu.Lock()
	defer r.listsMu.Unlock()

	if err := r.store.Delete(ctx, KeyMovies, KeyLists); err != nil {
		r.logger.Error("failed to clear data", "error", err)
		return false
	}
	r.logger.Info("cleared all data")
	return true
}

// Check reports storage or decode faults that the other operations swallow.
// A nil result means both collections are readable (or absent).
func (r *Repository) Check(ctx context.Context) error {
	_, movieErr := r.loadMovies(ctx)
	_, listErr := r.loadLists(ctx)
	return errors.Join(movieErr, listErr)
}

func dedupeIDs(ids []int) []int {
	out := make([]int, 0, len(ids))
	seen := make(map[int]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
