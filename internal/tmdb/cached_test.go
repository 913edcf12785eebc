package tmdb

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Rob-Bauman/movie-tracker/internal/cache"
	"github.com/Rob-Bauman/movie-tracker/internal/domain"
	"github.com/Rob-Bauman/movie-tracker/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockUpstream struct{ mock.Mock }

func (m *mockUpstream) SearchMovies(ctx context.Context, query string, page int) (*domain.SearchResponse, error) {
	args := m.Called(ctx, query, page)
	resp, _ := args.Get(0).(*domain.SearchResponse)
	return resp, args.Error(1)
}

func (m *mockUpstream) GetMovieDetails(ctx context.Context, id int) (*domain.Movie, error) {
	args := m.Called(ctx, id)
	movie, _ := args.Get(0).(*domain.Movie)
	return movie, args.Error(1)
}

func (m *mockUpstream) GetMovieCredits(ctx context.Context, id int) (*domain.Credits, error) {
	args := m.Called(ctx, id)
	credits, _ := args.Get(0).(*domain.Credits)
	return credits, args.Error(1)
}

func (m *mockUpstream) GetPopularMovies(ctx context.Context, page int) (*domain.SearchResponse, error) {
	args := m.Called(ctx, page)
	resp, _ := args.Get(0).(*domain.SearchResponse)
	return resp, args.Error(1)
}

func (m *mockUpstream) GetTrendingMovies(ctx context.Context, page int) (*domain.SearchResponse, error) {
	args := m.Called(ctx, page)
	resp, _ := args.Get(0).(*domain.SearchResponse)
	return resp, args.Error(1)
}

func (m *mockUpstream) GetTopRatedMovies(ctx context.Context, page int) (*domain.SearchResponse, error) {
	args := m.Called(ctx, page)
	resp, _ := args.Get(0).(*domain.SearchResponse)
	return resp, args.Error(1)
}

func (m *mockUpstream) GetUpcomingMovies(ctx context.Context, page int) (*domain.SearchResponse, error) {
	args := m.Called(ctx, page)
	resp, _ := args.Get(0).(*domain.SearchResponse)
	return resp, args.Error(1)
}

var (
	_ domain.Catalog   = (*CachedClient)(nil)
	_ domain.Discovery = (*CachedClient)(nil)
	_ Upstream         = (*Client)(nil)
)

func newCached(t *testing.T, up Upstream) (*CachedClient, *store.Bucket) {
	t.Helper()
	s, err := store.Open("")
	require.NoError(t, err)
	b := s.Bucket(store.BucketAPI)
	c := cache.New(b, KeyPrefix, cache.WithClock(func() time.Time {
		return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	}))
	return NewCachedClient(up, c), b
}

func TestCachedSearchNormalizesQueryCase(t *testing.T) {
	ctx := context.Background()
	up := &mockUpstream{}
	up.On("SearchMovies", mock.Anything, "Heat", 1).
		Return(&domain.SearchResponse{Page: 1, Results: []domain.Movie{{ID: 949, Title: "Heat"}}, TotalResults: 1, TotalPages: 1}, nil).
		Once()

	client, bucket := newCached(t, up)

	first, err := client.SearchMovies(ctx, "Heat", 1)
	require.NoError(t, err)
	second, err := client.SearchMovies(ctx, "HEAT", 0)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	up.AssertNumberOfCalls(t, "SearchMovies", 1)

	_, ok, err := bucket.Get(ctx, "@MovieTracker:api:searchMovies:heat_1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCachedDetailsAndCreditsKeys(t *testing.T) {
	ctx := context.Background()
	runtime := 170
	up := &mockUpstream{}
	up.On("GetMovieDetails", mock.Anything, 949).Return(&domain.Movie{ID: 949, Runtime: &runtime}, nil).Once()
	up.On("GetMovieCredits", mock.Anything, 949).Return(&domain.Credits{ID: 949}, nil).Once()

	client, bucket := newCached(t, up)
	for range 2 {
		_, err := client.GetMovieDetails(ctx, 949)
		require.NoError(t, err)
		_, err = client.GetMovieCredits(ctx, 949)
		require.NoError(t, err)
	}
	up.AssertExpectations(t)

	for _, key := range []string{"@MovieTracker:api:movieDetails:949", "@MovieTracker:api:movieCredits:949"} {
		_, ok, _ := bucket.Get(ctx, key)
		assert.True(t, ok, key)
	}
}

func TestCachedDiscoveryPages(t *testing.T) {
	ctx := context.Background()
	page := &domain.SearchResponse{Page: 2}
	up := &mockUpstream{}
	up.On("GetPopularMovies", mock.Anything, 2).Return(page, nil).Once()
	up.On("GetTrendingMovies", mock.Anything, 2).Return(page, nil).Once()
	up.On("GetTopRatedMovies", mock.Anything, 2).Return(page, nil).Once()
	up.On("GetUpcomingMovies", mock.Anything, 2).Return(page, nil).Once()

	client, bucket := newCached(t, up)
	for range 2 {
		_, err := client.GetPopularMovies(ctx, 2)
		require.NoError(t, err)
		_, err = client.GetTrendingMovies(ctx, 2)
		require.NoError(t, err)
		_, err = client.GetTopRatedMovies(ctx, 2)
		require.NoError(t, err)
		_, err = client.GetUpcomingMovies(ctx, 2)
		require.NoError(t, err)
	}
	up.AssertExpectations(t)

	_, ok, _ := bucket.Get(ctx, "@MovieTracker:api:topRatedMovies:2")
	assert.True(t, ok)
}

func TestCachedErrorsPropagateUncached(t *testing.T) {
	ctx := context.Background()
	up := &mockUpstream{}
	up.On("GetMovieDetails", mock.Anything, 1).Return(nil, domain.ErrRemoteUnavailable).Twice()

	client, _ := newCached(t, up)
	for range 2 {
		_, err := client.GetMovieDetails(ctx, 1)
		assert.True(t, errors.Is(err, domain.ErrRemoteUnavailable))
	}
	up.AssertExpectations(t)
}

func TestCachedPurge(t *testing.T) {
	ctx := context.Background()
	up := &mockUpstream{}
	up.On("GetMovieDetails", mock.Anything, 1).Return(&domain.Movie{ID: 1}, nil).Twice()

	client, _ := newCached(t, up)
	_, err := client.GetMovieDetails(ctx, 1)
	require.NoError(t, err)
	require.NoError(t, client.Purge(ctx))
	_, err = client.GetMovieDetails(ctx, 1)
	require.NoError(t, err)
	up.AssertExpectations(t)
}
