package llm

import "context"

// Role identifies the author of a conversation message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single conversation turn sent to a provider.
type Message struct {
	Role    Role
	Content string
}

func SystemMessage(text string) Message {
	return Message{Role: RoleSystem, Content: text}
}

func UserMessage(text string) Message {
	return Message{Role: RoleUser, Content: text}
}

func AssistantMessage(text string) Message {
	return Message{Role: RoleAssistant, Content: text}
}

// Request describes one streaming generation call.
type Request struct {
	Model           string // overrides the provider's configured model when set
	Messages        []Message
	MaxOutputTokens int
	Temperature     float32
	Debug           bool
}

// EventType discriminates stream events.
type EventType int

const (
	// EventTextDelta carries an incremental piece of response text.
	EventTextDelta EventType = iota
	// EventUsage carries token accounting, typically once near the end.
	EventUsage
	// EventDone signals normal completion.
	EventDone
	// EventError signals failure; the stream ends after it.
	EventError
)

// Event is a single item produced by a Stream.
type Event struct {
	Type EventType
	Text string
	Use  *Usage
	Err  error
}

// Usage reports token consumption for a completed request.
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// Stream is a lazy, finite, non-restartable sequence of events. Recv blocks
// until the next event is available and returns io.EOF once the stream is
// exhausted. Close releases the underlying request; it is safe to call more
// than once.
type Stream interface {
	Recv() (Event, error)
	Close() error
}

// Provider is a streaming LLM backend.
type Provider interface {
	Name() string
	Stream(ctx context.Context, req Request) (Stream, error)
}

// collectRoleText concatenates the content of all messages with the given
// role, for debug previews and system-prompt extraction.
func collectRoleText(messages []Message, role Role) string {
	var parts []string
	for _, msg := range messages {
		if msg.Role == role && msg.Content != "" {
			parts = append(parts, msg.Content)
		}
	}
	return joinParts(parts)
}
