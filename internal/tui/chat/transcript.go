package chat

import (
	"strings"

	"github.com/muesli/reflow/wordwrap"

	"github.com/yashshri2111/ysbot/internal/ui"
)

// senderName returns the header label shown above a transcript entry.
func (m *Model) senderName(role MessageRole) string {
	switch role {
	case RoleUser:
		return "You"
	case RoleError:
		return "Error"
	default:
		return m.persona.Name
	}
}

// renderTranscript renders the full message log for the viewport.
func (m *Model) renderTranscript() string {
	var b strings.Builder
	for _, msg := range m.session.Messages {
		b.WriteString(m.renderMessage(msg))
	}
	return strings.TrimRight(b.String(), "\n") + "\n"
}

// renderMessage renders one entry as a styled "sender:" header, the body,
// and a blank separator line. A pending reply renders as a bare header so
// fragments stream in directly beneath it.
func (m *Model) renderMessage(msg ChatMessage) string {
	var header string
	switch msg.Role {
	case RoleUser:
		header = m.styles.UserLabel.Render(m.senderName(msg.Role) + ":")
	case RoleError:
		header = m.styles.ErrorLabel.Render(m.senderName(msg.Role) + ":")
	default:
		header = m.styles.BotLabel.Render(m.senderName(msg.Role) + ":")
	}

	body := m.renderBody(msg)
	if body == "" {
		return header + "\n"
	}
	return header + "\n" + body + "\n\n"
}

// renderBody formats an entry's text for display. Bot replies go through
// the markdown renderer unless plain output is forced; user and error text
// is word-wrapped verbatim.
func (m *Model) renderBody(msg ChatMessage) string {
	text := strings.TrimRight(msg.Content, "\n")
	if text == "" {
		return ""
	}

	width := m.contentWidth()
	if msg.Role == RoleAssistant && m.markdown {
		return strings.TrimRight(ui.RenderMarkdown(text, width), "\n")
	}
	return wordwrap.String(text, width)
}

// contentWidth is the usable line width for transcript bodies.
func (m *Model) contentWidth() int {
	w := m.viewport.Width
	if w <= 0 {
		w = 80
	}
	if w > 2 {
		w -= 2
	}
	return w
}
