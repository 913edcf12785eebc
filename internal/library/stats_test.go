package library

import (
	"testing"

	"github.com/Rob-Bauman/movie-tracker/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestComputeStats(t *testing.T) {
	stats := ComputeStats([]domain.UserMovie{
		{ID: 1, Runtime: 125, Rating: 5, WatchDate: "2024-01-01"},
		{ID: 2, Runtime: 90, Rating: 4},
		{ID: 3, Rating: 0},
	})

	assert.Equal(t, 3, stats.TotalMovies)
	assert.Equal(t, 1, stats.WatchedMovies)
	assert.Equal(t, 215, stats.TotalWatchTime)
	assert.Equal(t, "3h 35m", stats.FormattedWatchTime)
	assert.Equal(t, "4.5", stats.AverageRating)
}

func TestComputeStatsEmpty(t *testing.T) {
	stats := ComputeStats(nil)
	assert.Equal(t, 0, stats.TotalMovies)
	assert.Equal(t, "0h 0m", stats.FormattedWatchTime)
	assert.Equal(t, "-", stats.AverageRating)
}
