package chat

import (
	"context"
	"errors"
	"sync"

	"github.com/yashshri2111/ysbot/internal/llm"
	"github.com/yashshri2111/ysbot/internal/persona"
	"github.com/yashshri2111/ysbot/internal/ui"
)

// StreamBackend produces the reply stream for one submitted prompt.
type StreamBackend interface {
	// SendMessage starts one background request for text and returns the
	// channel its events arrive on. The channel closes after the terminal
	// event. A non-nil error means no request was started.
	SendMessage(ctx context.Context, text string) (<-chan ui.StreamEvent, error)
	// CommitTurn records a completed exchange so later requests carry it
	// as context. Failed cycles are never committed.
	CommitTurn(userText, botText string)
	// Reset drops the conversation context.
	Reset()
}

// LocalBackend talks to an LLM provider directly and keeps the
// conversation context in memory.
type LocalBackend struct {
	mu       sync.Mutex
	provider llm.Provider
	model    string
	persona  *persona.Persona
	history  []llm.Message
	buffer   int
}

// NewLocalBackend creates a backend for the given provider. The persona
// supplies the system prompt sent with every request; a non-empty model
// overrides the provider's configured one.
func NewLocalBackend(provider llm.Provider, p *persona.Persona, model string) *LocalBackend {
	return &LocalBackend{
		provider: provider,
		model:    model,
		persona:  p,
	}
}

// SendMessage builds a request from the persona, the committed history and
// text, then streams it. Events arrive on the returned channel in the
// order the provider produced them.
func (b *LocalBackend) SendMessage(ctx context.Context, text string) (<-chan ui.StreamEvent, error) {
	b.mu.Lock()
	provider := b.provider
	req := llm.Request{
		Model:    b.model,
		Messages: b.buildMessages(text),
	}
	buffer := b.buffer
	b.mu.Unlock()

	if provider == nil {
		return nil, errors.New("no provider configured")
	}

	stream, err := provider.Stream(ctx, req)
	if err != nil {
		return nil, err
	}

	adapter := ui.NewStreamAdapter(buffer)
	go adapter.ProcessStream(ctx, stream)
	return adapter.Events(), nil
}

// CommitTurn appends a completed user/bot exchange to the context sent
// with later requests.
func (b *LocalBackend) CommitTurn(userText, botText string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.history = append(b.history, llm.UserMessage(userText), llm.AssistantMessage(botText))
}

// Reset drops the conversation context.
func (b *LocalBackend) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.history = nil
}

// History returns a copy of the committed conversation turns.
func (b *LocalBackend) History() []llm.Message {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]llm.Message(nil), b.history...)
}

// SetProvider switches subsequent requests to a different provider and
// model. The committed context survives the switch.
func (b *LocalBackend) SetProvider(provider llm.Provider, model string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.provider = provider
	b.model = model
}

// buildMessages assembles the request messages. Callers hold b.mu.
func (b *LocalBackend) buildMessages(text string) []llm.Message {
	msgs := make([]llm.Message, 0, len(b.history)+2)
	if b.persona != nil && b.persona.System != "" {
		msgs = append(msgs, llm.SystemMessage(b.persona.System))
	}
	msgs = append(msgs, b.history...)
	msgs = append(msgs, llm.UserMessage(text))
	return msgs
}
