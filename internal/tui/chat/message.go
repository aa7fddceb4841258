package chat

import (
	"time"
)

// MessageRole identifies who a transcript entry belongs to.
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
	RoleError     MessageRole = "error"
)

// ChatMessage is a single entry in the transcript. Entries are append-only:
// once logged they are never edited or removed, except that an assistant
// entry's Content grows at the tail while its reply streams in.
type ChatMessage struct {
	Role       MessageRole `json:"role"`
	Content    string      `json:"content"`
	Tokens     int         `json:"tokens,omitempty"`      // Token count for assistant messages
	DurationMs int64       `json:"duration_ms,omitempty"` // Response time for assistant messages
	CreatedAt  time.Time   `json:"created_at"`
}

// NewUserMessage creates a transcript entry for submitted user text.
func NewUserMessage(content string) ChatMessage {
	return ChatMessage{
		Role:      RoleUser,
		Content:   content,
		CreatedAt: time.Now(),
	}
}

// NewAssistantMessage creates a transcript entry for a bot reply. Empty
// content is the header of a reply that is still streaming in.
func NewAssistantMessage(content string) ChatMessage {
	return ChatMessage{
		Role:      RoleAssistant,
		Content:   content,
		CreatedAt: time.Now(),
	}
}

// NewErrorMessage creates the transcript entry for a failed request cycle.
func NewErrorMessage(err error) ChatMessage {
	return ChatMessage{
		Role:      RoleError,
		Content:   "Sorry, an error occurred: " + err.Error(),
		CreatedAt: time.Now(),
	}
}
