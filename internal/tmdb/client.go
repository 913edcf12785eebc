// Package tmdb talks to The Movie Database REST API.
package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/Rob-Bauman/movie-tracker/internal/domain"
	"github.com/avast/retry-go/v4"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL      = "https://api.themoviedb.org/3"
	DefaultImageBaseURL = "https://image.tmdb.org/t/p"
	defaultTimeout      = 10 * time.Second
	defaultRPS          = 20
	defaultBurst        = 5
	defaultRetries      = 2
	defaultRetryDelay   = 500 * time.Millisecond
	userAgent           = "MovieTracker/1.0"
)

// Options configures a Client. Zero values use the defaults above.
type Options struct {
	BaseURL           string
	APIKey            string
	Language          string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
	MaxRetries        int
	RetryDelay        time.Duration
	HTTPClient        *http.Client
}

// StatusError is a non-2xx response from the API
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code: %d", e.StatusCode)
}

// Client implements domain.Catalog and domain.Discovery without caching.
type Client struct {
	baseURL    string
	apiKey     string
	language   string
	httpClient *http.Client
	limiter    *rate.Limiter
	retries    int
	retryDelay time.Duration
	logger     *slog.Logger
}

// NewClient creates a new TMDB API client
func NewClient(opts Options, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.RequestsPerSecond <= 0 {
		opts.RequestsPerSecond = defaultRPS
	}
	if opts.Burst <= 0 {
		opts.Burst = defaultBurst
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = defaultRetryDelay
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}

	return &Client{
		baseURL:    opts.BaseURL,
		apiKey:     opts.APIKey,
		language:   opts.Language,
		httpClient: httpClient,
		limiter:    rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), opts.Burst),
		retries:    opts.MaxRetries,
		retryDelay: opts.RetryDelay,
		logger:     logger,
	}
}

// isTransient reports whether a failed request is worth repeating
func isTransient(err error) bool {
	if errors.Is(err, domain.ErrRemoteUnavailable) {
		return true
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode == http.StatusTooManyRequests || se.StatusCode >= 500
	}
	return false
}

// doRequest performs a rate-limited GET, retrying transient failures
func (c *Client) doRequest(ctx context.Context, path string, query url.Values) ([]byte, error) {
	if c.apiKey == "" {
		return nil, domain.ErrMissingAPIKey
	}

	if query == nil {
		query = url.Values{}
	}
	query.Set("api_key", c.apiKey)
	if c.language != "" {
		query.Set("language", c.language)
	}
	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, query.Encode())

	return retry.DoWithData(
		func() ([]byte, error) {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, err
			}
			return c.get(ctx, path, reqURL)
		},
		retry.Context(ctx),
		retry.Attempts(uint(c.retries+1)),
		retry.Delay(c.retryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(isTransient),
		retry.OnRetry(func(n uint, err error) {
			c.logger.Warn("retrying tmdb request", "path", path, "attempt", n+1, "error", err)
		}),
	)
}

func (c *Client) get(ctx context.Context, path, reqURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	// path only; the query carries the api key
	c.logger.Debug("tmdb request", "path", path)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		c.logger.Error("tmdb request failed", "path", path, "error", err)
		return nil, fmt.Errorf("%w: %v", domain.ErrRemoteUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, domain.ErrUnauthorized
	}
	if resp.StatusCode != http.StatusOK {
		c.logger.Error("tmdb request error", "path", path, "status", resp.StatusCode, "body", string(body))
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}

// getJSON requests path and decodes the body into a new T
func getJSON[T any](ctx context.Context, c *Client, path string, query url.Values) (*T, error) {
	body, err := c.doRequest(ctx, path, query)
	if err != nil {
		return nil, err
	}
	var out T
	if err := json.Unmarshal(body, &out); err != nil {
		c.logger.Error("JSON parse error", "path", path, "error", err, "bodyLen", len(body))
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return &out, nil
}

func pageQuery(page int) url.Values {
	if page < 1 {
		page = 1
	}
	return url.Values{"page": {strconv.Itoa(page)}}
}

// SearchMovies searches movies by title
func (c *Client) SearchMovies(ctx context.Context, query string, page int) (*domain.SearchResponse, error) {
	q := pageQuery(page)
	q.Set("query", query)
	q.Set("include_adult", "false")
	return getJSON[domain.SearchResponse](ctx, c, "/search/movie", q)
}

// GetMovieDetails returns the full movie record
func (c *Client) GetMovieDetails(ctx context.Context, movieID int) (*domain.Movie, error) {
	q := url.Values{"append_to_response": {"videos,images"}}
	return getJSON[domain.Movie](ctx, c, fmt.Sprintf("/movie/%d", movieID), q)
}

// GetMovieCredits returns cast and crew
func (c *Client) GetMovieCredits(ctx context.Context, movieID int) (*domain.Credits, error) {
	return getJSON[domain.Credits](ctx, c, fmt.Sprintf("/movie/%d/credits", movieID), nil)
}

// GetPopularMovies returns a page of popular movies
func (c *Client) GetPopularMovies(ctx context.Context, page int) (*domain.SearchResponse, error) {
	return getJSON[domain.SearchResponse](ctx, c, "/movie/popular", pageQuery(page))
}

// GetTrendingMovies returns this week's trending movies
func (c *Client) GetTrendingMovies(ctx context.Context, page int) (*domain.SearchResponse, error) {
	return getJSON[domain.SearchResponse](ctx, c, "/trending/movie/week", pageQuery(page))
}

// GetTopRatedMovies returns a page of top rated movies
func (c *Client) GetTopRatedMovies(ctx context.Context, page int) (*domain.SearchResponse, error) {
	return getJSON[domain.SearchResponse](ctx, c, "/movie/top_rated", pageQuery(page))
}

// GetUpcomingMovies returns a page of upcoming releases
func (c *Client) GetUpcomingMovies(ctx context.Context, page int) (*domain.SearchResponse, error) {
	return getJSON[domain.SearchResponse](ctx, c, "/movie/upcoming", pageQuery(page))
}
