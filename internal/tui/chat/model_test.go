package chat

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"

	"github.com/yashshri2111/ysbot/internal/config"
	"github.com/yashshri2111/ysbot/internal/persona"
	"github.com/yashshri2111/ysbot/internal/testutil"
	"github.com/yashshri2111/ysbot/internal/ui"
)

// scriptedBackend lets tests hand the model a pre-filled event channel and
// observe every backend interaction.
type scriptedBackend struct {
	sendErr   error
	ch        chan ui.StreamEvent
	sent      []string
	committed [][2]string
	resets    int
}

func (b *scriptedBackend) SendMessage(ctx context.Context, text string) (<-chan ui.StreamEvent, error) {
	if b.sendErr != nil {
		return nil, b.sendErr
	}
	b.sent = append(b.sent, text)
	b.ch = make(chan ui.StreamEvent, 16)
	return b.ch, nil
}

func (b *scriptedBackend) CommitTurn(userText, botText string) {
	b.committed = append(b.committed, [2]string{userText, botText})
}

func (b *scriptedBackend) Reset() {
	b.resets++
}

func newTestModel(t *testing.T, backend StreamBackend) *Model {
	t.Helper()
	cfg := &config.Config{
		DefaultProvider: "mock",
		Providers: map[string]config.ProviderConfig{
			"mock": {Type: config.ProviderTypeOpenAICompat, Model: "test-model"},
		},
	}
	m := NewModel(cfg, persona.Default(), backend, "mock", "test-model")
	m.usage = nil // tests must not write diagnostic files
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	return m
}

func typeAndSubmit(m *Model, text string) {
	m.input.SetValue(text)
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
}

// playStream fills the cycle's channel with events, closes it, and pumps
// deliveries into the model the way the program runner would.
func playStream(t *testing.T, m *Model, b *scriptedBackend, events ...ui.StreamEvent) {
	t.Helper()
	if b.ch == nil {
		t.Fatal("no cycle in flight")
	}
	for _, ev := range events {
		b.ch <- ev
	}
	close(b.ch)
	for m.streaming {
		m.Update(waitForStreamEvent(b.ch)())
	}
}

func TestSubmitAppendsUserMessageAndDisablesInput(t *testing.T) {
	b := &scriptedBackend{}
	m := newTestModel(t, b)
	start := len(m.session.Messages)

	typeAndSubmit(m, "  What is Go?  ")

	msgs := m.session.Messages[start:]
	if len(msgs) != 2 {
		t.Fatalf("expected user entry and bot header, got %d entries", len(msgs))
	}
	if msgs[0].Role != RoleUser || msgs[0].Content != "What is Go?" {
		t.Fatalf("expected trimmed user entry first, got role=%q content=%q", msgs[0].Role, msgs[0].Content)
	}
	if msgs[1].Role != RoleAssistant || msgs[1].Content != "" {
		t.Fatalf("expected empty bot header after user entry, got role=%q content=%q", msgs[1].Role, msgs[1].Content)
	}
	if m.input.Focused() {
		t.Fatal("expected input disabled while the cycle is in flight")
	}
	if !m.streaming {
		t.Fatal("expected the gate to be closed")
	}
	if len(b.sent) != 1 || b.sent[0] != "What is Go?" {
		t.Fatalf("expected backend to receive the trimmed prompt, got %v", b.sent)
	}
}

func TestSubmitIgnoresWhitespaceOnly(t *testing.T) {
	b := &scriptedBackend{}
	m := newTestModel(t, b)
	before := len(m.session.Messages)

	typeAndSubmit(m, "   \t  ")

	if got := len(m.session.Messages) - before; got != 0 {
		t.Fatalf("expected no transcript change, got %d new entries", got)
	}
	if !m.input.Focused() {
		t.Fatal("expected input to stay enabled")
	}
	if m.input.Value() != "   \t  " {
		t.Fatalf("expected input value untouched, got %q", m.input.Value())
	}
	if len(b.sent) != 0 {
		t.Fatalf("expected no request, backend saw %v", b.sent)
	}
}

func TestFragmentsAppendInOrder(t *testing.T) {
	b := &scriptedBackend{}
	m := newTestModel(t, b)

	typeAndSubmit(m, "hi")
	playStream(t, m, b,
		ui.StreamEvent{Type: ui.StreamEventText, Text: "Hel"},
		ui.StreamEvent{Type: ui.StreamEventText, Text: "lo"},
		ui.StreamEvent{Type: ui.StreamEventDone},
	)

	last := m.session.Last()
	if last == nil || last.Role != RoleAssistant {
		t.Fatalf("expected bot entry last, got %+v", last)
	}
	if last.Content != "Hello" {
		t.Fatalf("bot content = %q, want %q", last.Content, "Hello")
	}
	if !m.input.Focused() {
		t.Fatal("expected input re-enabled after the cycle")
	}
	if m.streaming {
		t.Fatal("expected the gate reopened")
	}
}

func TestImmediateFailureAppendsSingleErrorEntry(t *testing.T) {
	b := &scriptedBackend{sendErr: errors.New("timeout")}
	m := newTestModel(t, b)
	start := len(m.session.Messages)

	typeAndSubmit(m, "hi")

	msgs := m.session.Messages[start:]
	if len(msgs) != 2 {
		t.Fatalf("expected user entry and error entry, got %d entries", len(msgs))
	}
	if msgs[1].Role != RoleError {
		t.Fatalf("expected error entry, got role %q", msgs[1].Role)
	}
	if msgs[1].Content != "Sorry, an error occurred: timeout" {
		t.Fatalf("error text = %q", msgs[1].Content)
	}
	for _, msg := range msgs {
		if msg.Role == RoleAssistant {
			t.Fatal("no bot header may appear for a request that never started")
		}
	}
	if !m.input.Focused() {
		t.Fatal("expected input re-enabled after the failed cycle")
	}
	if m.streaming {
		t.Fatal("expected the gate reopened after the failed cycle")
	}
}

func TestFailureAfterPartialKeepsFragments(t *testing.T) {
	b := &scriptedBackend{}
	m := newTestModel(t, b)

	typeAndSubmit(m, "hi")
	playStream(t, m, b,
		ui.StreamEvent{Type: ui.StreamEventText, Text: "partial "},
		ui.StreamEvent{Type: ui.StreamEventText, Text: "answer"},
		ui.ErrorEvent(errors.New("connection reset")),
	)

	n := len(m.session.Messages)
	botEntry := m.session.Messages[n-2]
	errEntry := m.session.Messages[n-1]
	if botEntry.Role != RoleAssistant || botEntry.Content != "partial answer" {
		t.Fatalf("expected partial fragments retained, got role=%q content=%q", botEntry.Role, botEntry.Content)
	}
	if errEntry.Role != RoleError || errEntry.Content != "Sorry, an error occurred: connection reset" {
		t.Fatalf("unexpected error entry: role=%q content=%q", errEntry.Role, errEntry.Content)
	}
	if len(b.committed) != 0 {
		t.Fatalf("a failed cycle must not commit history, got %v", b.committed)
	}
	if !m.input.Focused() {
		t.Fatal("expected input re-enabled after the failed cycle")
	}
}

func TestReenableIsFinalStepAndRunsOnce(t *testing.T) {
	b := &scriptedBackend{}
	m := newTestModel(t, b)

	typeAndSubmit(m, "hi")

	// Deliver events one at a time: the gate stays closed until the
	// channel itself closes.
	b.ch <- ui.StreamEvent{Type: ui.StreamEventText, Text: "x"}
	m.Update(waitForStreamEvent(b.ch)())
	if m.input.Focused() {
		t.Fatal("input re-enabled before the cycle finished")
	}

	b.ch <- ui.StreamEvent{Type: ui.StreamEventDone}
	m.Update(waitForStreamEvent(b.ch)())
	if m.input.Focused() {
		t.Fatal("input re-enabled before the final scheduled step")
	}

	ch := b.ch
	close(ch)
	m.Update(waitForStreamEvent(ch)())
	if !m.input.Focused() {
		t.Fatal("expected input re-enabled at the final step")
	}
	if m.streaming {
		t.Fatal("expected the gate reopened at the final step")
	}

	// A stale delivery from the finished cycle must not disturb state.
	m.Update(streamEventMsg{ch: ch, ok: false})
	if !m.input.Focused() || m.streaming {
		t.Fatal("stale delivery changed cycle state")
	}
}

func TestSubmitWhileStreamingIsDropped(t *testing.T) {
	b := &scriptedBackend{}
	m := newTestModel(t, b)

	typeAndSubmit(m, "first")
	before := len(m.session.Messages)

	m.input.SetValue("second")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	if len(m.session.Messages) != before {
		t.Fatal("expected no transcript change while a cycle is in flight")
	}
	if len(b.sent) != 1 {
		t.Fatalf("expected a single request, backend saw %v", b.sent)
	}
}

func TestSuccessfulCycleCommitsTurn(t *testing.T) {
	b := &scriptedBackend{}
	m := newTestModel(t, b)

	typeAndSubmit(m, "hi")
	playStream(t, m, b,
		ui.StreamEvent{Type: ui.StreamEventText, Text: "Hello"},
		ui.StreamEvent{Type: ui.StreamEventDone},
	)

	if len(b.committed) != 1 {
		t.Fatalf("expected one committed turn, got %d", len(b.committed))
	}
	if b.committed[0] != [2]string{"hi", "Hello"} {
		t.Fatalf("committed turn = %v", b.committed[0])
	}
}

func TestUsageEventStampsReply(t *testing.T) {
	b := &scriptedBackend{}
	m := newTestModel(t, b)

	typeAndSubmit(m, "hi")
	playStream(t, m, b,
		ui.StreamEvent{Type: ui.StreamEventText, Text: "Hello"},
		ui.StreamEvent{Type: ui.StreamEventUsage, InputTokens: 12, OutputTokens: 34},
		ui.StreamEvent{Type: ui.StreamEventDone},
	)

	last := m.session.Last()
	if last.Tokens != 34 {
		t.Fatalf("reply tokens = %d, want 34", last.Tokens)
	}
}

func TestStatusLineClampedToTerminalWidth(t *testing.T) {
	b := &scriptedBackend{}
	m := newTestModel(t, b)
	m.Update(tea.WindowSizeMsg{Width: 24, Height: 24})

	typeAndSubmit(m, "hi")
	b.ch <- ui.StreamEvent{Type: ui.StreamEventUsage, InputTokens: 9000, OutputTokens: 123456}
	m.Update(waitForStreamEvent(b.ch)())

	line := testutil.StripANSI(m.statusLine())
	if w := runewidth.StringWidth(line); w > 24 {
		t.Fatalf("status line is %d cells wide, want at most 24: %q", w, line)
	}
	if !strings.Contains(line, "Thinking") {
		t.Fatalf("expected the phase in the status line, got %q", line)
	}
}

func TestWelcomeMessagePostedAtStartup(t *testing.T) {
	m := newTestModel(t, &scriptedBackend{})

	if len(m.session.Messages) == 0 {
		t.Fatal("expected a welcome entry")
	}
	first := m.session.Messages[0]
	if first.Role != RoleAssistant {
		t.Fatalf("welcome role = %q, want %q", first.Role, RoleAssistant)
	}
	if first.Content != persona.Default().Welcome {
		t.Fatalf("welcome text = %q", first.Content)
	}
}

func TestQuitMidStreamCancelsRequest(t *testing.T) {
	b := &scriptedBackend{}
	m := newTestModel(t, b)

	typeAndSubmit(m, "hi")
	cancelCalls := 0
	m.cancelReq = func() {
		cancelCalls++
	}

	m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})

	if cancelCalls != 1 {
		t.Fatalf("expected ctrl+c to cancel the request once, got %d", cancelCalls)
	}
	if !m.quitting {
		t.Fatal("expected quitting state")
	}
}

func TestCtrlKClearsConversation(t *testing.T) {
	b := &scriptedBackend{}
	m := newTestModel(t, b)
	m.session.Append(NewUserMessage("old"))
	m.session.Append(NewAssistantMessage("old reply"))

	m.Update(tea.KeyMsg{Type: tea.KeyCtrlK})

	if b.resets != 1 {
		t.Fatalf("expected one backend reset, got %d", b.resets)
	}
	if len(m.session.Messages) != 1 {
		t.Fatalf("expected transcript reset to the welcome entry, got %d entries", len(m.session.Messages))
	}
}
