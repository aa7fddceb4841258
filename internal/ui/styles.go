package ui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// Color palette - consistent across all TUI components
var (
	Green = lipgloss.Color("10") // success, enabled
	Red   = lipgloss.Color("9")  // error, disabled
	Grey  = lipgloss.Color("8")  // muted text
	Blue  = lipgloss.Color("4")  // headers, borders
	White = lipgloss.Color("15") // header text

	// Transcript sender colors
	UserBlue = lipgloss.Color("#00AFFF") // "You" header
	BotGreen = lipgloss.Color("#00FF7F") // "YS Bot" header
)

// Status indicators
const (
	EnabledIcon  = "●"
	DisabledIcon = "○"
	SuccessIcon  = "✓"
	FailIcon     = "✗"
)

// Styles returns styled text helpers bound to a renderer
type Styles struct {
	renderer *lipgloss.Renderer

	// Text styles
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Success  lipgloss.Style
	Error    lipgloss.Style
	Muted    lipgloss.Style
	Bold     lipgloss.Style

	// Transcript sender headers
	UserLabel  lipgloss.Style
	BotLabel   lipgloss.Style
	ErrorLabel lipgloss.Style

	// Table styles
	TableHeader lipgloss.Style
	TableCell   lipgloss.Style
}

// NewStyles creates a new Styles instance for the given output
func NewStyles(output *os.File) *Styles {
	r := lipgloss.NewRenderer(output)

	return &Styles{
		renderer: r,

		Title: r.NewStyle().
			Bold(true).
			Foreground(White),

		Subtitle: r.NewStyle().
			Foreground(Grey),

		Success: r.NewStyle().
			Foreground(Green),

		Error: r.NewStyle().
			Foreground(Red),

		Muted: r.NewStyle().
			Foreground(Grey),

		Bold: r.NewStyle().
			Bold(true),

		UserLabel: r.NewStyle().
			Bold(true).
			Foreground(UserBlue),

		BotLabel: r.NewStyle().
			Bold(true).
			Foreground(BotGreen),

		ErrorLabel: r.NewStyle().
			Bold(true).
			Foreground(Red),

		TableHeader: r.NewStyle().
			Bold(true).
			Foreground(White).
			Padding(0, 1),

		TableCell: r.NewStyle().
			Padding(0, 1),
	}
}

// DefaultStyles returns styles for stderr (default TUI output)
func DefaultStyles() *Styles {
	return NewStyles(os.Stderr)
}

// FormatEnabled returns a styled enabled/disabled indicator
func (s *Styles) FormatEnabled(enabled bool) string {
	if enabled {
		return s.Success.Render(EnabledIcon + " ready")
	}
	return s.Muted.Render(DisabledIcon + " no credential")
}

// Truncate shortens a string to maxWidth display cells with ellipsis.
// Width-aware so wide runes do not overflow the line.
func Truncate(s string, maxWidth int) string {
	if runewidth.StringWidth(s) <= maxWidth {
		return s
	}
	if maxWidth <= 3 {
		return runewidth.Truncate(s, maxWidth, "")
	}
	return runewidth.Truncate(s, maxWidth, "...")
}
