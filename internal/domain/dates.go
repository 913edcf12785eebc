package domain

import (
	"fmt"
	"regexp"
	"time"
)

// DateLayout is the persisted date format (YYYY-MM-DD)
const DateLayout = "2006-01-02"

var (
	isoDatePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	yearPattern    = regexp.MustCompile(`\b\d{4}\b`)
)

// FormatDate renders t as YYYY-MM-DD in UTC
func FormatDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// IsValidDate reports whether s is a real YYYY-MM-DD date
func IsValidDate(s string) bool {
	if !isoDatePattern.MatchString(s) {
		return false
	}
	_, err := time.Parse(DateLayout, s)
	return err == nil
}

// ReleaseYear extracts the year from a release date.
// Non-ISO input falls back to the first standalone four-digit number.
func ReleaseYear(date string) string {
	if date == "" {
		return ""
	}
	if !isoDatePattern.MatchString(date) {
		return yearPattern.FindString(date)
	}
	return date[:4]
}

// FormatRuntime renders minutes as "2h 5m", "2h", "45m" or "Unknown"
func FormatRuntime(minutes int) string {
	if minutes <= 0 {
		return "Unknown"
	}
	hours := minutes / 60
	rest := minutes % 60
	switch {
	case hours == 0:
		return fmt.Sprintf("%dm", rest)
	case rest == 0:
		return fmt.Sprintf("%dh", hours)
	default:
		return fmt.Sprintf("%dh %dm", hours, rest)
	}
}
