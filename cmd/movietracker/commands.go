package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/Rob-Bauman/movie-tracker/internal/domain"
	"github.com/Rob-Bauman/movie-tracker/internal/library"
	"github.com/Rob-Bauman/movie-tracker/internal/tmdb"
	"github.com/Rob-Bauman/movie-tracker/internal/tui"
	"github.com/spf13/afero"
	"golang.org/x/term"
)

var errUsage = errors.New("invalid usage")

// parseInterleaved parses flags that may appear before, between or after
// positional arguments and returns the positionals in order.
func parseInterleaved(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, fmt.Errorf("%w: %v", errUsage, err)
		}
		rest := fs.Args()
		if len(rest) == 0 {
			return positional, nil
		}
		positional = append(positional, rest[0])
		args = rest[1:]
	}
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func requireArgs(name string, args []string, n int) error {
	if len(args) < n {
		return fmt.Errorf("%w: %s needs %d argument(s)", errUsage, name, n)
	}
	return nil
}

func parseMovieID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid movie id %q", errUsage, s)
	}
	return id, nil
}

func (a *app) dispatch(ctx context.Context, cmd string, args []string) error {
	handlers := map[string]func(context.Context, []string) error{
		"search":      a.cmdSearch,
		"discover":    a.cmdDiscover,
		"add":         a.cmdAdd,
		"movies":      a.cmdMovies,
		"show":        a.cmdShow,
		"rate":        a.cmdRate,
		"remove":      a.cmdRemove,
		"find":        a.cmdFind,
		"stats":       a.cmdStats,
		"lists":       a.cmdLists,
		"list-create": a.cmdListCreate,
		"list-add":    a.cmdListAdd,
		"list-remove": a.cmdListRemove,
		"list-delete": a.cmdListDelete,
		"list-show":   a.cmdListShow,
		"import":      a.cmdImport,
		"clear":       a.cmdClear,
		"check":       a.cmdCheck,
		"browse":      a.cmdBrowse,
	}
	h, ok := handlers[cmd]
	if !ok {
		return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}
	return h(ctx, args)
}

// === Remote catalog ===

func (a *app) printResults(resp *domain.SearchResponse) {
	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	for _, m := range resp.Results {
		fmt.Fprintf(w, "%d\t%s\t%s\t%.1f\n", m.ID, m.Title, domain.ReleaseYear(m.ReleaseDate), m.VoteAverage)
	}
	w.Flush()
	fmt.Fprintf(a.out, "page %d of %d (%d results)\n", resp.Page, resp.TotalPages, resp.TotalResults)
}

func (a *app) cmdSearch(ctx context.Context, args []string) error {
	fs := newFlagSet("search")
	page := fs.Int("page", 1, "result page")
	pos, err := parseInterleaved(fs, args)
	if err != nil {
		return err
	}
	if err := requireArgs("search", pos, 1); err != nil {
		return err
	}

	resp, err := a.catalog.SearchMovies(ctx, strings.Join(pos, " "), *page)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	a.printResults(resp)
	return nil
}

func (a *app) cmdDiscover(ctx context.Context, args []string) error {
	fs := newFlagSet("discover")
	page := fs.Int("page", 1, "result page")
	pos, err := parseInterleaved(fs, args)
	if err != nil {
		return err
	}
	if err := requireArgs("discover", pos, 1); err != nil {
		return err
	}

	fetchers := map[string]func(context.Context, int) (*domain.SearchResponse, error){
		"popular":   a.catalog.GetPopularMovies,
		"trending":  a.catalog.GetTrendingMovies,
		"top-rated": a.catalog.GetTopRatedMovies,
		"upcoming":  a.catalog.GetUpcomingMovies,
	}
	fetch, ok := fetchers[pos[0]]
	if !ok {
		return fmt.Errorf("%w: unknown category %q", errUsage, pos[0])
	}
	resp, err := fetch(ctx, *page)
	if err != nil {
		return fmt.Errorf("discover failed: %w", err)
	}
	a.printResults(resp)
	return nil
}

func (a *app) cmdAdd(ctx context.Context, args []string) error {
	fs := newFlagSet("add")
	rating := fs.Int("rating", 0, "rating 0-5")
	watched := fs.String("watched", "", "watch date (YYYY-MM-DD or today)")
	notes := fs.String("notes", "", "personal notes")
	theaters := fs.Bool("theaters", false, "seen in theaters")
	recommendedBy := fs.String("recommended-by", "", "who recommended it")
	pos, err := parseInterleaved(fs, args)
	if err != nil {
		return err
	}
	if err := requireArgs("add", pos, 1); err != nil {
		return err
	}
	id, err := parseMovieID(pos[0])
	if err != nil {
		return err
	}
	if err := domain.ValidateRating(*rating); err != nil {
		return err
	}

	details, err := a.catalog.GetMovieDetails(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to fetch movie %d: %w", id, err)
	}
	credits, err := a.catalog.GetMovieCredits(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to fetch credits for %d: %w", id, err)
	}

	movie := tmdb.ToUserMovie(details, credits)
	movie.Rating = *rating
	movie.Notes = *notes
	switch {
	case *watched == "today":
		movie.WatchDate = domain.FormatDate(timeNow())
	case *watched != "":
		if !domain.IsValidDate(*watched) {
			return fmt.Errorf("%w: watch date must be YYYY-MM-DD", errUsage)
		}
		movie.WatchDate = *watched
	}
	if *theaters {
		movie.SawInTheaters = theaters
	}
	if *recommendedBy != "" {
		movie.RecommendedBy = recommendedBy
	}

	if !a.repo.AddMovie(ctx, movie) {
		return fmt.Errorf("could not add %q: already in the collection or storage failed", movie.Title)
	}
	fmt.Fprintf(a.out, "Added %s (%s)\n", movie.Title, movie.Year)
	return nil
}

// === Collection ===

func (a *app) printMovies(movies []domain.UserMovie) {
	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	for _, m := range movies {
		watched := m.WatchDate
		if watched == "" {
			watched = "-"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", m.ID, m.Title, m.Year, domain.Stars(m.Rating), watched)
	}
	w.Flush()
}

// resolveFilter accepts a named filter or a list reference
func (a *app) resolveFilter(ctx context.Context, value string, lists []domain.MovieList) (library.Filter, error) {
	for _, f := range library.Filters {
		if strings.EqualFold(string(f), value) {
			return f, nil
		}
	}
	list, ok := library.FindList(lists, value)
	if !ok {
		return "", fmt.Errorf("%w: %q", domain.ErrListNotFound, value)
	}
	return library.Filter(list.ID), nil
}

func (a *app) cmdMovies(ctx context.Context, args []string) error {
	fs := newFlagSet("movies")
	sortBy := fs.String("sort", a.cfg.Collection.DefaultSort, "sort field")
	dir := fs.String("dir", a.cfg.Collection.DefaultDirection, "asc or desc")
	filter := fs.String("filter", string(library.FilterAll), "filter or list name")
	if _, err := parseInterleaved(fs, args); err != nil {
		return err
	}

	field, err := domain.ParseSortField(*sortBy)
	if err != nil {
		return err
	}
	direction, err := domain.ParseSortDirection(*dir)
	if err != nil {
		return err
	}

	lists := a.repo.ListLists(ctx)
	f, err := a.resolveFilter(ctx, *filter, lists)
	if err != nil {
		return err
	}

	movies := a.repo.ListMovies(ctx, library.ListOptions{SortBy: field, Direction: direction})
	a.printMovies(library.FilterMovies(movies, lists, f, timeNow()))
	return nil
}

func (a *app) cmdShow(ctx context.Context, args []string) error {
	if err := requireArgs("show", args, 1); err != nil {
		return err
	}
	id, err := parseMovieID(args[0])
	if err != nil {
		return err
	}
	m, ok := a.repo.GetMovieByID(ctx, id)
	if !ok {
		return fmt.Errorf("%w: %d", domain.ErrMovieNotFound, id)
	}

	fmt.Fprintf(a.out, "%s (%s)\n", m.Title, m.Year)
	fmt.Fprintf(a.out, "Director:  %s\n", m.Director)
	fmt.Fprintf(a.out, "Runtime:   %s\n", m.FormattedRuntime())
	fmt.Fprintf(a.out, "Genres:    %s\n", strings.Join(m.Genres, ", "))
	fmt.Fprintf(a.out, "Rating:    %s\n", domain.Stars(m.Rating))
	if m.WatchDate != "" {
		fmt.Fprintf(a.out, "Watched:   %s\n", m.WatchDate)
	}
	if m.SawInTheaters != nil && *m.SawInTheaters {
		fmt.Fprintln(a.out, "Seen in theaters")
	}
	if m.RecommendedBy != nil && *m.RecommendedBy != "" {
		fmt.Fprintf(a.out, "Recommended by %s\n", *m.RecommendedBy)
	}
	if m.Notes != "" {
		fmt.Fprintf(a.out, "Notes:     %s\n", m.Notes)
	}
	if poster := tmdb.ImageURL(a.cfg.TMDB.ImageBaseURL, m.PosterPath, tmdb.ImagePoster, tmdb.SizeLarge); poster != "" {
		fmt.Fprintf(a.out, "Poster:    %s\n", poster)
	}
	fmt.Fprintf(a.out, "Added:     %s\n", m.AddedDate)
	return nil
}

func (a *app) cmdRate(ctx context.Context, args []string) error {
	if err := requireArgs("rate", args, 2); err != nil {
		return err
	}
	id, err := parseMovieID(args[0])
	if err != nil {
		return err
	}
	rating, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("%w: invalid rating %q", errUsage, args[1])
	}
	if err := domain.ValidateRating(rating); err != nil {
		return err
	}

	m, ok := a.repo.GetMovieByID(ctx, id)
	if !ok {
		return fmt.Errorf("%w: %d", domain.ErrMovieNotFound, id)
	}
	m.Rating = rating
	if !a.repo.UpdateMovie(ctx, m) {
		return fmt.Errorf("could not update %q", m.Title)
	}
	fmt.Fprintf(a.out, "Rated %s %s\n", m.Title, domain.Stars(rating))
	return nil
}

func (a *app) cmdRemove(ctx context.Context, args []string) error {
	if err := requireArgs("remove", args, 1); err != nil {
		return err
	}
	id, err := parseMovieID(args[0])
	if err != nil {
		return err
	}
	if !a.repo.RemoveMovie(ctx, id) {
		return fmt.Errorf("%w: %d", domain.ErrMovieNotFound, id)
	}
	fmt.Fprintf(a.out, "Removed %d\n", id)
	return nil
}

func (a *app) cmdFind(ctx context.Context, args []string) error {
	if err := requireArgs("find", args, 1); err != nil {
		return err
	}
	matches := library.SearchMovies(a.repo.ListMovies(ctx, library.ListOptions{}), strings.Join(args, " "))
	movies := make([]domain.UserMovie, len(matches))
	for i, m := range matches {
		movies[i] = m.Movie
	}
	a.printMovies(movies)
	return nil
}

func (a *app) cmdStats(ctx context.Context, _ []string) error {
	stats := library.ComputeStats(a.repo.ListMovies(ctx, library.ListOptions{}))
	fmt.Fprintf(a.out, "Movies:          %d\n", stats.TotalMovies)
	fmt.Fprintf(a.out, "Watched:         %d\n", stats.WatchedMovies)
	fmt.Fprintf(a.out, "Watch time:      %s\n", stats.FormattedWatchTime)
	fmt.Fprintf(a.out, "Average rating:  %s\n", stats.AverageRating)
	return nil
}

// === Lists ===

func (a *app) findList(ctx context.Context, ref string) (domain.MovieList, error) {
	list, ok := library.FindList(a.repo.ListLists(ctx), ref)
	if !ok {
		return domain.MovieList{}, fmt.Errorf("%w: %q", domain.ErrListNotFound, ref)
	}
	return list, nil
}

func (a *app) cmdLists(ctx context.Context, _ []string) error {
	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	for _, l := range a.repo.ListLists(ctx) {
		fmt.Fprintf(w, "%s\t%s\t%d movies\t%s\n", l.ID, l.Name, len(l.MovieIDs), l.Description)
	}
	return w.Flush()
}

func (a *app) cmdListCreate(ctx context.Context, args []string) error {
	fs := newFlagSet("list-create")
	description := fs.String("description", "", "list description")
	pos, err := parseInterleaved(fs, args)
	if err != nil {
		return err
	}
	if err := requireArgs("list-create", pos, 1); err != nil {
		return err
	}

	list, ok := a.repo.AddList(ctx, domain.NewList{Name: strings.Join(pos, " "), Description: *description})
	if !ok {
		return errors.New("could not create list")
	}
	fmt.Fprintf(a.out, "Created list %s (%s)\n", list.Name, list.ID)
	return nil
}

func (a *app) cmdListAdd(ctx context.Context, args []string) error {
	if err := requireArgs("list-add", args, 2); err != nil {
		return err
	}
	id, err := parseMovieID(args[0])
	if err != nil {
		return err
	}
	list, err := a.findList(ctx, strings.Join(args[1:], " "))
	if err != nil {
		return err
	}
	if _, ok := a.repo.GetMovieByID(ctx, id); !ok {
		return fmt.Errorf("%w: %d", domain.ErrMovieNotFound, id)
	}
	if !a.repo.AddMovieToList(ctx, id, list.ID) {
		return fmt.Errorf("could not add %d to %s", id, list.Name)
	}
	fmt.Fprintf(a.out, "Added %d to %s\n", id, list.Name)
	return nil
}

func (a *app) cmdListRemove(ctx context.Context, args []string) error {
	if err := requireArgs("list-remove", args, 2); err != nil {
		return err
	}
	id, err := parseMovieID(args[0])
	if err != nil {
		return err
	}
	list, err := a.findList(ctx, strings.Join(args[1:], " "))
	if err != nil {
		return err
	}
	if !a.repo.RemoveMovieFromList(ctx, id, list.ID) {
		return fmt.Errorf("%d is not in %s", id, list.Name)
	}
	fmt.Fprintf(a.out, "Removed %d from %s\n", id, list.Name)
	return nil
}

func (a *app) cmdListShow(ctx context.Context, args []string) error {
	if err := requireArgs("list-show", args, 1); err != nil {
		return err
	}
	list, err := a.findList(ctx, strings.Join(args, " "))
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "%s (%s)\n", list.Name, list.ID)
	if list.Description != "" {
		fmt.Fprintln(a.out, list.Description)
	}
	fmt.Fprintf(a.out, "Created: %s\n\n", list.CreatedDate)
	a.printMovies(library.ResolveListMovies(a.repo.ListMovies(ctx, library.ListOptions{}), list))
	return nil
}

func (a *app) cmdListDelete(ctx context.Context, args []string) error {
	if err := requireArgs("list-delete", args, 1); err != nil {
		return err
	}
	list, err := a.findList(ctx, strings.Join(args, " "))
	if err != nil {
		return err
	}
	if !a.repo.RemoveList(ctx, list.ID) {
		return fmt.Errorf("could not delete %s", list.Name)
	}
	fmt.Fprintf(a.out, "Deleted list %s\n", list.Name)
	return nil
}

// === Data ===

func (a *app) cmdImport(ctx context.Context, args []string) error {
	if err := requireArgs("import", args, 1); err != nil {
		return err
	}

	res, err := a.importer.ImportFile(ctx, afero.NewOsFs(), args[0])
	if err != nil && len(res.Imported) == 0 {
		a.printImportErrors(res.Errors)
		return fmt.Errorf("import failed: %w", err)
	}

	added, skipped := 0, 0
	for _, m := range res.Imported {
		if a.repo.AddMovie(ctx, m) {
			added++
		} else {
			skipped++
		}
	}

	fmt.Fprintf(a.out, "Imported: %d movies\n", added)
	if skipped > 0 {
		fmt.Fprintf(a.out, "Skipped: %d already in collection\n", skipped)
	}
	a.printImportErrors(res.Errors)
	// Cancellation mid-import still reports the rows that were saved
	return err
}

func (a *app) printImportErrors(errs []string) {
	if len(errs) == 0 {
		return
	}
	fmt.Fprintf(a.out, "Errors: %d\n", len(errs))
	for _, e := range errs {
		fmt.Fprintf(a.out, "  %s\n", e)
	}
}

func (a *app) cmdClear(ctx context.Context, args []string) error {
	fs := newFlagSet("clear")
	apiOnly := fs.Bool("cache", false, "only purge cached api responses")
	if _, err := parseInterleaved(fs, args); err != nil {
		return err
	}

	if *apiOnly {
		if err := a.catalog.Purge(ctx); err != nil {
			return err
		}
		fmt.Fprintln(a.out, "Cleared api cache")
		return nil
	}
	if !a.repo.ClearAllData(ctx) {
		return errors.New("could not clear data")
	}
	fmt.Fprintln(a.out, "Cleared all movies and lists")
	return nil
}

func (a *app) cmdCheck(ctx context.Context, _ []string) error {
	if err := a.repo.Check(ctx); err != nil {
		return fmt.Errorf("storage check failed: %w", err)
	}
	fmt.Fprintln(a.out, "ok")
	return nil
}

func (a *app) cmdBrowse(_ context.Context, _ []string) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New("browse needs an interactive terminal")
	}
	sortBy, _ := domain.ParseSortField(a.cfg.Collection.DefaultSort)
	direction, _ := domain.ParseSortDirection(a.cfg.Collection.DefaultDirection)

	a.logger.Info("starting TUI")
	if err := tui.Run(tui.NewModel(a.repo, sortBy, direction)); err != nil {
		a.logger.Error("TUI error", "error", err)
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
