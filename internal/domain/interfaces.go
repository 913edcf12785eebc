package domain

import "context"

// Catalog is the read side of the remote movie database.
// Implementations are expected to be cache-wrapped.
type Catalog interface {
	// SearchMovies returns one page of title matches (page starts at 1)
	SearchMovies(ctx context.Context, query string, page int) (*SearchResponse, error)

	// GetMovieDetails returns the full record including runtime and genres
	GetMovieDetails(ctx context.Context, movieID int) (*Movie, error)

	// GetMovieCredits returns cast and crew
	GetMovieCredits(ctx context.Context, movieID int) (*Credits, error)
}

// Discovery lists curated movie pages from the remote database.
type Discovery interface {
	GetPopularMovies(ctx context.Context, page int) (*SearchResponse, error)
	GetTrendingMovies(ctx context.Context, page int) (*SearchResponse, error)
	GetTopRatedMovies(ctx context.Context, page int) (*SearchResponse, error)
	GetUpcomingMovies(ctx context.Context, page int) (*SearchResponse, error)
}
