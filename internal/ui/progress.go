package ui

import (
	"fmt"
	"strings"
	"time"
)

// StreamingIndicator renders a consistent streaming status line
type StreamingIndicator struct {
	Spinner string // spinner.View() output
	Phase   string // "Thinking", "Streaming", etc.
	Elapsed time.Duration
	Tokens  int // 0 = don't show
	Width   int // terminal cells available, 0 = don't clamp
}

// Render returns the formatted streaming indicator string
func (s StreamingIndicator) Render(styles *Styles) string {
	var b strings.Builder

	b.WriteString(s.Phase)
	b.WriteString("...")

	if s.Tokens > 0 {
		b.WriteString(fmt.Sprintf(" %d tokens |", s.Tokens))
	}

	b.WriteString(fmt.Sprintf(" %.1fs", s.Elapsed.Seconds()))

	line := b.String()
	if s.Width > 0 {
		// Clamp the plain text only; the spinner arrives pre-styled and
		// takes two cells with its separator.
		line = Truncate(line, s.Width-2)
	}

	return styles.Muted.Render(s.Spinner + " " + line)
}
