// Package importer turns CSV exports into collection records resolved against the catalog.
package importer

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/Rob-Bauman/movie-tracker/internal/domain"
	"github.com/Rob-Bauman/movie-tracker/internal/tmdb"
	"github.com/spf13/afero"
)

// Recognized columns. Matching is case-insensitive; missing columns read as "".
const (
	ColTitle         = "title"
	ColWatchDate     = "watchDate"
	ColSawInTheaters = "sawInTheaters"
	ColRecommendedBy = "recommendedBy"
)

var columns = []string{ColTitle, ColWatchDate, ColSawInTheaters, ColRecommendedBy}

// ErrNoHeader is returned for input without a header row
var ErrNoHeader = errors.New("csv input has no header row")

// Result is the outcome of one import. Imported records are not yet persisted.
type Result struct {
	Imported []domain.UserMovie
	Errors   []string
}

// Importer resolves CSV rows one at a time through the catalog.
type Importer struct {
	catalog domain.Catalog
	now     func() time.Time
	logger  *slog.Logger
}

// Option configures an Importer
type Option func(*Importer)

// WithClock overrides time.Now for addedDate
func WithClock(now func() time.Time) Option {
	return func(i *Importer) { i.now = now }
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(i *Importer) {
		if logger != nil {
			i.logger = logger
		}
	}
}

// New creates an importer. catalog should be the cached client.
func New(catalog domain.Catalog, opts ...Option) *Importer {
	i := &Importer{
		catalog: catalog,
		now:     time.Now,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// ImportFile opens path on fs and imports it
func (i *Importer) ImportFile(ctx context.Context, fs afero.Fs, path string) (Result, error) {
	f, err := fs.Open(path)
	if err != nil {
		return Result{}, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()
	return i.Import(ctx, f)
}

// Import reads a CSV document with a header row. Row failures are collected in
// Result.Errors and never stop the batch. The returned error is non-nil only when
// the input has no header, the underlying reader fails, or ctx is cancelled;
// the rows handled so far are returned with it.
func (i *Importer) Import(ctx context.Context, r io.Reader) (Result, error) {
	res := Result{Imported: []domain.UserMovie{}, Errors: []string{}}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return res, ErrNoHeader
	}
	if err != nil {
		return res, fmt.Errorf("failed to read header: %w", err)
	}
	header = normalizeHeader(header)
	index := columnIndex(header)

	for {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// Only parse errors are row-scoped; anything else comes from the reader itself
			var parseErr *csv.ParseError
			if !errors.As(err, &parseErr) {
				i.logger.Error("csv read failed", "error", err, "imported", len(res.Imported))
				return res, fmt.Errorf("failed to read csv: %w", err)
			}
			res.Errors = append(res.Errors, fmt.Sprintf("Malformed row at line %d: %v", parseErr.StartLine, parseErr.Err))
			continue
		}

		row := parseRow(header, index, record)
		if row.title == "" {
			res.Errors = append(res.Errors, "Missing title in row: "+row.raw)
			continue
		}

		movie, err := i.resolve(ctx, row)
		if err != nil {
			if errors.Is(err, errNoMatch) {
				res.Errors = append(res.Errors, fmt.Sprintf("No match for %q", row.title))
			} else {
				res.Errors = append(res.Errors, fmt.Sprintf("Error importing %q: %v", row.title, err))
			}
			i.logger.Warn("import row failed", "title", row.title, "error", err)
			continue
		}
		res.Imported = append(res.Imported, movie)
	}

	i.logger.Info("csv import finished", "imported", len(res.Imported), "errors", len(res.Errors))
	return res, nil
}

var errNoMatch = errors.New("no search results")

// resolve takes the first search hit for the title and builds the record from
// its details and credits.
func (i *Importer) resolve(ctx context.Context, row csvRow) (domain.UserMovie, error) {
	search, err := i.catalog.SearchMovies(ctx, row.title, 1)
	if err != nil {
		return domain.UserMovie{}, err
	}
	if search == nil || len(search.Results) == 0 {
		return domain.UserMovie{}, errNoMatch
	}
	match := search.Results[0]

	details, err := i.catalog.GetMovieDetails(ctx, match.ID)
	if err != nil {
		return domain.UserMovie{}, err
	}
	credits, err := i.catalog.GetMovieCredits(ctx, match.ID)
	if err != nil {
		return domain.UserMovie{}, err
	}

	movie := tmdb.ToUserMovie(details, credits)
	movie.WatchDate = row.watchDate
	movie.AddedDate = domain.FormatDate(i.now())
	movie.SawInTheaters = &row.sawInTheaters
	movie.RecommendedBy = &row.recommendedBy
	return movie, nil
}

type csvRow struct {
	title         string
	watchDate     string
	sawInTheaters bool
	recommendedBy string
	raw           string // JSON of the row for error messages
}

func normalizeHeader(header []string) []string {
	out := make([]string, len(header))
	for n, h := range header {
		if n == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		out[n] = strings.TrimSpace(h)
	}
	return out
}

// columnIndex maps each recognized column to its position, first occurrence wins
func columnIndex(header []string) map[string]int {
	index := make(map[string]int, len(columns))
	for n, h := range header {
		for _, col := range columns {
			if _, seen := index[col]; !seen && strings.EqualFold(h, col) {
				index[col] = n
			}
		}
	}
	return index
}

func parseRow(header []string, index map[string]int, record []string) csvRow {
	field := func(col string) string {
		n, ok := index[col]
		if !ok || n >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[n])
	}

	raw := make(map[string]string, len(header))
	for n, h := range header {
		if n < len(record) {
			raw[h] = record[n]
		} else {
			raw[h] = ""
		}
	}
	rawJSON, _ := json.Marshal(raw)

	return csvRow{
		title:         field(ColTitle),
		watchDate:     field(ColWatchDate),
		sawInTheaters: strings.ToLower(field(ColSawInTheaters)) == "true",
		recommendedBy: field(ColRecommendedBy),
		raw:           string(rawJSON),
	}
}
