package domain

import (
	"fmt"
	"strings"
)

// SortField names a sortable UserMovie field
type SortField string

const (
	SortByAddedDate SortField = "addedDate"
	SortByWatchDate SortField = "watchDate"
	SortByTitle     SortField = "title"
	SortByYear      SortField = "year"
	SortByRating    SortField = "rating"
	SortByRuntime   SortField = "runtime"
	SortByDirector  SortField = "director"
	SortByID        SortField = "id"
)

// SortFields lists every supported sort field in display order
var SortFields = []SortField{
	SortByAddedDate, SortByWatchDate, SortByTitle, SortByYear,
	SortByRating, SortByRuntime, SortByDirector, SortByID,
}

// ParseSortField matches a field name case-insensitively
func ParseSortField(s string) (SortField, error) {
	for _, f := range SortFields {
		if strings.EqualFold(string(f), strings.TrimSpace(s)) {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidSortField, s)
}

// SortDirection is ascending or descending
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// ParseSortDirection accepts "asc" or "desc"; anything else is an error
func ParseSortDirection(s string) (SortDirection, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "asc":
		return SortAsc, nil
	case "desc":
		return SortDesc, nil
	default:
		return "", fmt.Errorf("unknown sort direction: %q", s)
	}
}

// Toggle flips the direction
func (d SortDirection) Toggle() SortDirection {
	if d == SortAsc {
		return SortDesc
	}
	return SortAsc
}
