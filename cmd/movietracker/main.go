package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/Rob-Bauman/movie-tracker/internal/adapter"
	"github.com/Rob-Bauman/movie-tracker/internal/cache"
	"github.com/Rob-Bauman/movie-tracker/internal/domain"
	"github.com/Rob-Bauman/movie-tracker/internal/importer"
	"github.com/Rob-Bauman/movie-tracker/internal/library"
	"github.com/Rob-Bauman/movie-tracker/internal/store"
	"github.com/Rob-Bauman/movie-tracker/internal/tmdb"
)

// Version is set at build time via -ldflags
var Version = "dev"

const usage = `Usage: movietracker [-config path] <command> [args]

Commands:
  search <query> [-page n]          search the movie database
  discover <popular|trending|top-rated|upcoming> [-page n]
  add <tmdb-id> [-rating n] [-watched date|today] [-notes text] [-theaters] [-recommended-by name]
  movies [-sort field] [-dir asc|desc] [-filter all|favorites|recent|unwatched|<list>]
  show <id>                         show one movie from the collection
  rate <id> <0-5>
  remove <id>
  find <query>                      fuzzy search the collection
  stats
  lists
  list-create <name> [-description text]
  list-add <movie-id> <list>
  list-remove <movie-id> <list>
  list-delete <list>
  list-show <list>                  show a list's movies in list order
  import <file.csv>
  clear [-cache]                    delete all collection data, or only the api cache
  check                             report storage faults
  setup                             store your TMDB API key
  browse                            open the terminal browser
  version
`

func main() {
	var (
		configPath  string
		showVersion bool
	)
	flag.StringVar(&configPath, "config", "", "config file path")
	flag.BoolVar(&showVersion, "v", false, "print version")
	flag.BoolVar(&showVersion, "version", false, "print version")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	if showVersion {
		fmt.Printf("movietracker %s\n", Version)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, configPath, flag.Args(), os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if errors.Is(err, errUsage) {
			fmt.Fprint(os.Stderr, usage)
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string, args []string, out io.Writer) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: no command given", errUsage)
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	// Setup logger
	logger, closer, err := adapter.SetupLogger(&cfg.Logging)
	if err != nil {
		// Fall back to null logger if file logging fails
		logger = adapter.NullLogger()
	} else {
		defer closer.Close()
	}
	slog.SetDefault(logger)

	logger.Info("starting movietracker", "version", Version, "command", args[0])

	switch args[0] {
	case "version":
		fmt.Fprintf(out, "movietracker %s\n", Version)
		return nil
	case "setup":
		return runSetup(cfg, configPath, out)
	}

	a, err := newApp(ctx, cfg, logger, out)
	if err != nil {
		return err
	}
	defer a.Close()

	return a.dispatch(ctx, args[0], args[1:])
}

func loadConfig(path string) (*adapter.Config, error) {
	if path != "" {
		return adapter.LoadConfigFile(path)
	}
	return adapter.LoadConfig()
}

// app holds the wired components for one invocation
type app struct {
	cfg      *adapter.Config
	logger   *slog.Logger
	out      io.Writer
	repo     *library.Repository
	catalog  *tmdb.CachedClient
	importer *importer.Importer
	closers  []io.Closer
}

func newApp(ctx context.Context, cfg *adapter.Config, logger *slog.Logger, out io.Writer) (*app, error) {
	a := &app{cfg: cfg, logger: logger, out: out}

	db, err := store.Open(cfg.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}
	a.closers = append(a.closers, db)

	var apiStore domain.KVStore = db.Bucket(store.BucketAPI)
	if cfg.Cache.Backend == adapter.CacheBackendRedis {
		rs, err := store.OpenRedis(ctx, cfg.Cache.RedisURL, "movietracker")
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to connect to redis cache: %w", err)
		}
		a.closers = append(a.closers, rs)
		apiStore = rs
	}

	a.repo = library.NewRepository(
		db.Bucket(store.BucketCollections),
		library.WithLogger(logger),
		library.WithLocale(cfg.Locale()),
	)

	client := tmdb.NewClient(tmdb.Options{
		BaseURL:           cfg.TMDB.BaseURL,
		APIKey:            cfg.TMDB.APIKey,
		Language:          cfg.TMDB.Language,
		Timeout:           cfg.TMDB.Timeout,
		RequestsPerSecond: cfg.TMDB.RequestsPerSecond,
		Burst:             cfg.TMDB.Burst,
		MaxRetries:        cfg.TMDB.MaxRetries,
	}, logger)
	apiCache := cache.New(apiStore, tmdb.KeyPrefix, cache.WithTTL(cfg.Cache.TTL), cache.WithLogger(logger))
	a.catalog = tmdb.NewCachedClient(client, apiCache)

	a.importer = importer.New(a.catalog, importer.WithLogger(logger))
	return a, nil
}

// Close releases storage handles in reverse order
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i].Close())
	}
	a.closers = nil
	return errors.Join(errs...)
}
