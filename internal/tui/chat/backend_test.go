package chat

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/yashshri2111/ysbot/internal/llm"
	"github.com/yashshri2111/ysbot/internal/persona"
	"github.com/yashshri2111/ysbot/internal/ui"
)

// drainEvents consumes a cycle's channel to the end and returns the
// concatenated reply text and the terminal event.
func drainEvents(t *testing.T, ch <-chan ui.StreamEvent) (string, ui.StreamEvent) {
	t.Helper()
	var text strings.Builder
	var terminal ui.StreamEvent
	for ev := range ch {
		switch ev.Type {
		case ui.StreamEventText:
			text.WriteString(ev.Text)
		case ui.StreamEventDone, ui.StreamEventError:
			terminal = ev
		}
	}
	return text.String(), terminal
}

func TestLocalBackendSendsPersonaAndHistory(t *testing.T) {
	provider := llm.NewMockProvider("mock").AddTextResponse("sure")
	p := &persona.Persona{Name: "YS Bot", System: "You are YS Bot."}
	b := NewLocalBackend(provider, p, "test-model")
	b.CommitTurn("earlier question", "earlier answer")

	ch, err := b.SendMessage(context.Background(), "next question")
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	drainEvents(t, ch)

	req, ok := provider.LastRequest()
	if !ok {
		t.Fatal("provider saw no request")
	}
	want := []llm.Message{
		llm.SystemMessage("You are YS Bot."),
		llm.UserMessage("earlier question"),
		llm.AssistantMessage("earlier answer"),
		llm.UserMessage("next question"),
	}
	if len(req.Messages) != len(want) {
		t.Fatalf("request has %d messages, want %d", len(req.Messages), len(want))
	}
	for i := range want {
		if req.Messages[i] != want[i] {
			t.Fatalf("message[%d] = %+v, want %+v", i, req.Messages[i], want[i])
		}
	}
	if req.Model != "test-model" {
		t.Fatalf("request model = %q, want %q", req.Model, "test-model")
	}
}

func TestLocalBackendStreamsWholeReply(t *testing.T) {
	const reply = "Hello world, this is a streamed reply."
	provider := llm.NewMockProvider("mock").AddTextResponse(reply)
	b := NewLocalBackend(provider, persona.Default(), "")

	ch, err := b.SendMessage(context.Background(), "hi")
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}

	text, terminal := drainEvents(t, ch)
	if text != reply {
		t.Fatalf("streamed text = %q, want %q", text, reply)
	}
	if terminal.Type != ui.StreamEventDone {
		t.Fatalf("terminal event = %v, want done", terminal.Type)
	}
}

func TestLocalBackendErrorArrivesAsTerminalEvent(t *testing.T) {
	provider := llm.NewMockProvider("mock").AddError(errors.New("rate limited"))
	b := NewLocalBackend(provider, persona.Default(), "")

	ch, err := b.SendMessage(context.Background(), "hi")
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}

	text, terminal := drainEvents(t, ch)
	if text != "" {
		t.Fatalf("expected no text before the failure, got %q", text)
	}
	if terminal.Type != ui.StreamEventError {
		t.Fatalf("terminal event = %v, want error", terminal.Type)
	}
	if terminal.Err == nil || !strings.Contains(terminal.Err.Error(), "rate limited") {
		t.Fatalf("terminal error = %v", terminal.Err)
	}
}

func TestLocalBackendResetDropsContext(t *testing.T) {
	provider := llm.NewMockProvider("mock").AddTextResponse("fresh")
	b := NewLocalBackend(provider, persona.Default(), "")
	b.CommitTurn("q1", "a1")

	b.Reset()
	if got := b.History(); len(got) != 0 {
		t.Fatalf("expected empty history after reset, got %v", got)
	}

	ch, err := b.SendMessage(context.Background(), "q2")
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	drainEvents(t, ch)

	req, _ := provider.LastRequest()
	for _, msg := range req.Messages {
		if msg.Content == "q1" || msg.Content == "a1" {
			t.Fatalf("reset context leaked into request: %+v", req.Messages)
		}
	}
}

func TestLocalBackendWithoutProvider(t *testing.T) {
	b := NewLocalBackend(nil, persona.Default(), "")
	if _, err := b.SendMessage(context.Background(), "hi"); err == nil {
		t.Fatal("expected an error when no provider is configured")
	}
}

func TestLocalBackendSetProviderKeepsHistory(t *testing.T) {
	first := llm.NewMockProvider("first").AddTextResponse("a")
	second := llm.NewMockProvider("second").AddTextResponse("b")
	b := NewLocalBackend(first, persona.Default(), "model-a")
	b.CommitTurn("q1", "a1")

	b.SetProvider(second, "model-b")

	ch, err := b.SendMessage(context.Background(), "q2")
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	drainEvents(t, ch)

	if first.RequestCount() != 0 {
		t.Fatal("request went to the replaced provider")
	}
	req, ok := second.LastRequest()
	if !ok {
		t.Fatal("new provider saw no request")
	}
	if req.Model != "model-b" {
		t.Fatalf("request model = %q, want %q", req.Model, "model-b")
	}
	foundTurn := false
	for _, msg := range req.Messages {
		if msg.Role == llm.RoleUser && msg.Content == "q1" {
			foundTurn = true
		}
	}
	if !foundTurn {
		t.Fatalf("committed turn missing after provider switch: %+v", req.Messages)
	}
}
