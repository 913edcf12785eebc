package library

import (
	"fmt"

	"github.com/Rob-Bauman/movie-tracker/internal/domain"
)

// Stats summarizes the collection
type Stats struct {
	TotalMovies        int
	WatchedMovies      int
	TotalWatchTime     int    // minutes, summed over every movie with a runtime
	FormattedWatchTime string // "12h 5m"
	AverageRating      string // one decimal over rated movies, "-" if none
}

// ComputeStats aggregates runtime and ratings
func ComputeStats(movies []domain.UserMovie) Stats {
	stats := Stats{TotalMovies: len(movies)}

	totalRating, rated := 0, 0
	for _, m := range movies {
		if m.Runtime > 0 {
			stats.TotalWatchTime += m.Runtime
		}
		if m.IsRated() {
			totalRating += m.Rating
			rated++
		}
		if m.IsWatched() {
			stats.WatchedMovies++
		}
	}

	stats.FormattedWatchTime = fmt.Sprintf("%dh %dm", stats.TotalWatchTime/60, stats.TotalWatchTime%60)
	stats.AverageRating = "-"
	if rated > 0 {
		stats.AverageRating = fmt.Sprintf("%.1f", float64(totalRating)/float64(rated))
	}
	return stats
}
