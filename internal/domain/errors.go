package domain

import "errors"

// Sentinel errors for domain operations
var (
	// ErrMovieNotFound indicates the requested movie is not in the collection
	ErrMovieNotFound = errors.New("movie not found")

	// ErrListNotFound indicates the requested list does not exist
	ErrListNotFound = errors.New("list not found")

	// ErrCorruptCollection indicates a persisted collection could not be decoded
	ErrCorruptCollection = errors.New("stored collection is corrupt")

	// ErrRemoteUnavailable indicates the movie database is unreachable
	ErrRemoteUnavailable = errors.New("movie database is unreachable")

	// ErrUnauthorized indicates the movie database rejected the API key
	ErrUnauthorized = errors.New("movie database API key is invalid")

	// ErrMissingAPIKey indicates no API key is configured
	ErrMissingAPIKey = errors.New("movie database API key not configured")

	// ErrInvalidRating indicates a rating outside 0-5
	ErrInvalidRating = errors.New("rating must be between 0 and 5")

	// ErrInvalidSortField indicates an unknown sort field name
	ErrInvalidSortField = errors.New("unknown sort field")
)
