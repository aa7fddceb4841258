package chat

// Session holds the transcript of the current run. It lives in memory
// only; closing the chat discards it.
type Session struct {
	Provider string
	Model    string
	Messages []ChatMessage
}

// NewSession creates an empty session for the given provider and model.
func NewSession(provider, model string) *Session {
	return &Session{
		Provider: provider,
		Model:    model,
	}
}

// Append adds an entry to the transcript.
func (s *Session) Append(msg ChatMessage) {
	s.Messages = append(s.Messages, msg)
}

// Last returns the most recent transcript entry, or nil when the
// transcript is empty.
func (s *Session) Last() *ChatMessage {
	if len(s.Messages) == 0 {
		return nil
	}
	return &s.Messages[len(s.Messages)-1]
}

// Clear discards the transcript.
func (s *Session) Clear() {
	s.Messages = nil
}
