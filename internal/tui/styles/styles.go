package styles

import "github.com/charmbracelet/lipgloss"

// Color palette
var (
	Marquee   = lipgloss.Color("#E5A00D")
	SlateDark = lipgloss.Color("#1F2937")
	DimGray   = lipgloss.Color("#6B7280")
	LightGray = lipgloss.Color("#9CA3AF")
	White     = lipgloss.Color("#F9FAFB")
	Green     = lipgloss.Color("#10B981")
	Red       = lipgloss.Color("#EF4444")
)

// Text styles
var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(SlateDark).
			Background(Marquee).
			Bold(true).
			Padding(0, 1)

	DimStyle = lipgloss.NewStyle().
			Foreground(DimGray)

	AccentStyle = lipgloss.NewStyle().
			Foreground(Marquee)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(Red)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(Green)
)

// Footer styles
var (
	StatusBarStyle = lipgloss.NewStyle().
			Foreground(LightGray).
			Padding(0, 1)

	BadgeStyle = lipgloss.NewStyle().
			Foreground(SlateDark).
			Background(LightGray).
			Padding(0, 1)
)

// Watch status markers
const (
	WatchedChar   = "✓"
	UnwatchedChar = "●"
)

// RenderWatchStatus returns the styled watch marker
func RenderWatchStatus(watched bool) string {
	if watched {
		return SuccessStyle.Render(WatchedChar)
	}
	return AccentStyle.Render(UnwatchedChar)
}

// Truncate truncates a string to the given display width with ellipsis
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}
