package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeTMDB(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/search/movie":
			switch strings.ToLower(r.URL.Query().Get("query")) {
			case "heat":
				fmt.Fprint(w, `{"page":1,"results":[{"id":949,"title":"Heat","release_date":"1995-12-15"}],"total_results":1,"total_pages":1}`)
			default:
				fmt.Fprint(w, `{"page":1,"results":[],"total_results":0,"total_pages":0}`)
			}
		case "/movie/949":
			fmt.Fprint(w, `{"id":949,"title":"Heat","release_date":"1995-12-15","runtime":170,"poster_path":"/heat.jpg","genres":[{"id":80,"name":"Crime"}]}`)
		case "/movie/949/credits":
			fmt.Fprint(w, `{"id":949,"cast":[],"crew":[{"name":"Michael Mann","job":"Director"}]}`)
		case "/movie/popular":
			fmt.Fprint(w, `{"page":1,"results":[{"id":949,"title":"Heat","release_date":"1995-12-15","vote_average":7.9}],"total_results":1,"total_pages":1}`)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func writeConfig(t *testing.T, baseURL string) string {
	t.Helper()
	dir := t.TempDir()
	cfg := fmt.Sprintf(`
tmdb:
  api_key: test-key
  base_url: %s
  max_retries: 0
storage:
  path: %s
logging:
  file: %s
collection:
  default_sort: title
  default_direction: asc
`, baseURL, filepath.Join(dir, "movietracker.db"), filepath.Join(dir, "movietracker.log"))
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0644))
	return path
}

func runCmd(t *testing.T, configPath string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := run(context.Background(), configPath, args, &out)
	return out.String(), err
}

func TestCollectionWorkflow(t *testing.T) {
	timeNow = func() time.Time { return time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC) }
	t.Cleanup(func() { timeNow = time.Now })

	srv := fakeTMDB(t)
	cfg := writeConfig(t, srv.URL)

	out, err := runCmd(t, cfg, "search", "Heat")
	require.NoError(t, err)
	assert.Contains(t, out, "949")
	assert.Contains(t, out, "page 1 of 1")

	out, err = runCmd(t, cfg, "add", "949", "-rating", "4", "-watched", "today", "-theaters")
	require.NoError(t, err)
	assert.Contains(t, out, "Added Heat (1995)")

	_, err = runCmd(t, cfg, "add", "949")
	assert.Error(t, err, "duplicate add is rejected")

	out, err = runCmd(t, cfg, "show", "949")
	require.NoError(t, err)
	assert.Contains(t, out, "Michael Mann")
	assert.Contains(t, out, "2h 50m")
	assert.Contains(t, out, "Watched:   2024-04-01")
	assert.Contains(t, out, "Seen in theaters")
	assert.Contains(t, out, "https://image.tmdb.org/t/p/w500/heat.jpg")

	_, err = runCmd(t, cfg, "rate", "949", "5")
	require.NoError(t, err)

	out, err = runCmd(t, cfg, "list-create", "Crime", "Classics", "-description", "the good stuff")
	require.NoError(t, err)
	assert.Contains(t, out, "Created list Crime Classics")

	_, err = runCmd(t, cfg, "list-add", "949", "crime classics")
	require.NoError(t, err)

	out, err = runCmd(t, cfg, "list-show", "crime")
	require.NoError(t, err)
	assert.Contains(t, out, "Crime Classics (")
	assert.Contains(t, out, "the good stuff")
	assert.Contains(t, out, "949")
	assert.Contains(t, out, "Heat")

	out, err = runCmd(t, cfg, "movies", "-filter", "Crime Classics")
	require.NoError(t, err)
	assert.Contains(t, out, "Heat")
	assert.Contains(t, out, "★★★★★")

	out, err = runCmd(t, cfg, "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "2h 50m")
	assert.Contains(t, out, "5.0")

	out, err = runCmd(t, cfg, "find", "het")
	require.NoError(t, err)
	assert.Contains(t, out, "Heat")

	_, err = runCmd(t, cfg, "remove", "949")
	require.NoError(t, err)

	out, err = runCmd(t, cfg, "lists")
	require.NoError(t, err)
	assert.Contains(t, out, "0 movies")

	out, err = runCmd(t, cfg, "check")
	require.NoError(t, err)
	assert.Equal(t, "ok\n", out)
}

func TestImportCommand(t *testing.T) {
	srv := fakeTMDB(t)
	cfg := writeConfig(t, srv.URL)

	csvPath := filepath.Join(t.TempDir(), "movies.csv")
	csv := "title,watchDate,sawInTheaters,recommendedBy\nHeat,2023-01-01,true,Sam\nNo Such Movie,,,\n"
	require.NoError(t, os.WriteFile(csvPath, []byte(csv), 0644))

	out, err := runCmd(t, cfg, "import", csvPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported: 1 movies")
	assert.Contains(t, out, `No match for "No Such Movie"`)

	out, err = runCmd(t, cfg, "import", csvPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported: 0 movies")
	assert.Contains(t, out, "Skipped: 1 already in collection")
}

func TestImportCancelledBeforeAnySuccessReportsErrors(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("query") == "interrupt" {
			cancel()
		}
		fmt.Fprint(w, `{"page":1,"results":[],"total_results":0,"total_pages":0}`)
	}))
	t.Cleanup(srv.Close)
	cfg := writeConfig(t, srv.URL)

	csvPath := filepath.Join(t.TempDir(), "movies.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("title\nNo Such Movie\ninterrupt\nHeat\n"), 0644))

	var out bytes.Buffer
	err := run(ctx, cfg, []string{"import", csvPath}, &out)
	require.ErrorIs(t, err, context.Canceled)
	assert.Contains(t, out.String(), "Errors: ")
	assert.Contains(t, out.String(), `No match for "No Such Movie"`)
}

func TestDiscoverAndClearCache(t *testing.T) {
	srv := fakeTMDB(t)
	cfg := writeConfig(t, srv.URL)

	out, err := runCmd(t, cfg, "discover", "popular")
	require.NoError(t, err)
	assert.Contains(t, out, "Heat")

	out, err = runCmd(t, cfg, "clear", "-cache")
	require.NoError(t, err)
	assert.Contains(t, out, "Cleared api cache")

	_, err = runCmd(t, cfg, "discover", "weekly")
	assert.ErrorIs(t, err, errUsage)
}

func TestUsageErrors(t *testing.T) {
	srv := fakeTMDB(t)
	cfg := writeConfig(t, srv.URL)

	_, err := runCmd(t, cfg)
	assert.ErrorIs(t, err, errUsage)
	_, err = runCmd(t, cfg, "bogus")
	assert.ErrorIs(t, err, errUsage)
	_, err = runCmd(t, cfg, "rate", "949")
	assert.ErrorIs(t, err, errUsage)
	_, err = runCmd(t, cfg, "show", "abc")
	assert.ErrorIs(t, err, errUsage)
}

func TestParseInterleaved(t *testing.T) {
	fs := flag.NewFlagSet("t", flag.ContinueOnError)
	page := fs.Int("page", 1, "")
	desc := fs.String("description", "", "")

	pos, err := parseInterleaved(fs, []string{"the", "-page", "3", "matrix", "-description=x"})
	require.NoError(t, err)
	assert.Equal(t, []string{"the", "matrix"}, pos)
	assert.Equal(t, 3, *page)
	assert.Equal(t, "x", *desc)
}
