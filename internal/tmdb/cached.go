package tmdb

import (
	"context"
	"strings"

	"github.com/Rob-Bauman/movie-tracker/internal/cache"
	"github.com/Rob-Bauman/movie-tracker/internal/domain"
)

// KeyPrefix namespaces every api cache entry
const KeyPrefix = "@MovieTracker:api:"

// Cache namespaces, one per operation
const (
	nsSearch   = "searchMovies"
	nsDetails  = "movieDetails"
	nsCredits  = "movieCredits"
	nsPopular  = "popularMovies"
	nsTrending = "trendingMovies"
	nsTopRated = "topRatedMovies"
	nsUpcoming = "upcomingMovies"
)

// Upstream is the uncached API surface wrapped by CachedClient
type Upstream interface {
	domain.Catalog
	domain.Discovery
}

// CachedClient serves idempotent reads through the api cache.
type CachedClient struct {
	upstream Upstream
	cache    *cache.Cache
}

// NewCachedClient wraps upstream. The cache should be created with KeyPrefix.
func NewCachedClient(upstream Upstream, c *cache.Cache) *CachedClient {
	return &CachedClient{upstream: upstream, cache: c}
}

func normalizePage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}

// SearchMovies is cached per lowercased query and page
func (c *CachedClient) SearchMovies(ctx context.Context, query string, page int) (*domain.SearchResponse, error) {
	page = normalizePage(page)
	key := c.cache.Key(nsSearch, strings.ToLower(query), page)
	return cache.GetOrFetch(ctx, c.cache, key, 0, func(ctx context.Context) (*domain.SearchResponse, error) {
		return c.upstream.SearchMovies(ctx, query, page)
	})
}

func (c *CachedClient) GetMovieDetails(ctx context.Context, movieID int) (*domain.Movie, error) {
	return cache.GetOrFetch(ctx, c.cache, c.cache.Key(nsDetails, movieID), 0, func(ctx context.Context) (*domain.Movie, error) {
		return c.upstream.GetMovieDetails(ctx, movieID)
	})
}

func (c *CachedClient) GetMovieCredits(ctx context.Context, movieID int) (*domain.Credits, error) {
	return cache.GetOrFetch(ctx, c.cache, c.cache.Key(nsCredits, movieID), 0, func(ctx context.Context) (*domain.Credits, error) {
		return c.upstream.GetMovieCredits(ctx, movieID)
	})
}

func (c *CachedClient) GetPopularMovies(ctx context.Context, page int) (*domain.SearchResponse, error) {
	return c.page(ctx, nsPopular, page, c.upstream.GetPopularMovies)
}

func (c *CachedClient) GetTrendingMovies(ctx context.Context, page int) (*domain.SearchResponse, error) {
	return c.page(ctx, nsTrending, page, c.upstream.GetTrendingMovies)
}

func (c *CachedClient) GetTopRatedMovies(ctx context.Context, page int) (*domain.SearchResponse, error) {
	return c.page(ctx, nsTopRated, page, c.upstream.GetTopRatedMovies)
}

func (c *CachedClient) GetUpcomingMovies(ctx context.Context, page int) (*domain.SearchResponse, error) {
	return c.page(ctx, nsUpcoming, page, c.upstream.GetUpcomingMovies)
}

// page caches one of the paged discovery endpoints
func (c *CachedClient) page(
	ctx context.Context,
	namespace string,
	page int,
	fetch func(context.Context, int) (*domain.SearchResponse, error),
) (*domain.SearchResponse, error) {
	page = normalizePage(page)
	return cache.GetOrFetch(ctx, c.cache, c.cache.Key(namespace, page), 0, func(ctx context.Context) (*domain.SearchResponse, error) {
		return fetch(ctx, page)
	})
}

// Purge drops every cached api response
func (c *CachedClient) Purge(ctx context.Context) error {
	return c.cache.Purge(ctx)
}
