package chat

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/yashshri2111/ysbot/internal/config"
	"github.com/yashshri2111/ysbot/internal/llm"
	"github.com/yashshri2111/ysbot/internal/persona"
	"github.com/yashshri2111/ysbot/internal/ui"
	"github.com/yashshri2111/ysbot/internal/usage"
)

// streamEventMsg delivers one stream event to the update loop. ch
// identifies the cycle it belongs to; deliveries from a finished cycle
// are dropped.
type streamEventMsg struct {
	ch    <-chan ui.StreamEvent
	event ui.StreamEvent
	ok    bool
}

// Model is the chat widget: a scrollable read-only transcript above a
// single-line prompt. At most one request cycle is in flight at a time;
// the input stays disabled from the moment a submission is accepted until
// the cycle's final step re-enables it, so submissions cannot overlap.
type Model struct {
	config  *config.Config
	persona *persona.Persona
	styles  *ui.Styles
	backend StreamBackend
	session *Session
	usage   *usage.Logger

	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model
	dialog   *DialogModel

	providerName string
	modelName    string
	markdown     bool

	width  int
	height int
	ready  bool

	// In-flight cycle state. streaming doubles as the input gate.
	streaming        bool
	streamCh         <-chan ui.StreamEvent
	cancelReq        context.CancelFunc
	pendingUser      string
	replyStart       time.Time
	replyInputTokens int
	replyTokens      int
	cycleErr         error

	quitting bool
}

// NewModel assembles the chat widget.
func NewModel(cfg *config.Config, p *persona.Persona, backend StreamBackend, providerName, modelName string) *Model {
	styles := ui.DefaultStyles()

	input := textinput.New()
	input.Placeholder = p.Placeholder
	input.Prompt = "> "
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = styles.Muted

	m := &Model{
		config:       cfg,
		persona:      p,
		styles:       styles,
		backend:      backend,
		session:      NewSession(providerName, modelName),
		usage:        usage.DefaultLogger(),
		input:        input,
		spinner:      sp,
		dialog:       NewDialogModel(styles),
		providerName: providerName,
		modelName:    modelName,
		markdown:     !ui.ParseBoolDefault(os.Getenv("YSBOT_PLAIN"), false),
	}
	m.appendWelcome()
	return m
}

// appendWelcome posts the persona greeting. It is display-only and never
// part of the context sent to the provider.
func (m *Model) appendWelcome() {
	if m.persona.Welcome != "" {
		m.session.Append(NewAssistantMessage(m.persona.Welcome))
	}
}

func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	case streamEventMsg:
		return m.handleStreamEvent(msg)
	case spinner.TickMsg:
		if !m.streaming {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height

	// Status line, input line, and a separator.
	vpHeight := msg.Height - 3
	if vpHeight < 3 {
		vpHeight = 3
	}

	if !m.ready {
		m.viewport = viewport.New(msg.Width, vpHeight)
		m.ready = true
	} else {
		m.viewport.Width = msg.Width
		m.viewport.Height = vpHeight
	}

	m.input.Width = msg.Width - len(m.input.Prompt) - 2
	m.dialog.SetSize(msg.Width, msg.Height)
	m.refreshViewport(true)
	return m, nil
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.dialog.IsOpen() {
		return m.handleDialogKey(msg)
	}

	switch msg.Type {
	case tea.KeyCtrlC:
		return m.quit()
	case tea.KeyEnter:
		return m.submit()
	case tea.KeyCtrlL:
		if !m.streaming {
			m.dialog.ShowModelPicker(m.modelName, m.availableProviders())
		}
		return m, nil
	case tea.KeyCtrlK:
		if !m.streaming {
			return m.cmdClear()
		}
		return m, nil
	case tea.KeyUp, tea.KeyDown, tea.KeyPgUp, tea.KeyPgDown:
		// Scrolling the transcript works even while a reply streams.
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleDialogKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		item := m.dialog.Selected()
		m.dialog.Close()
		if item != nil {
			return m.switchModel(item.ID)
		}
		return m, nil
	case tea.KeyBackspace:
		if q := []rune(m.dialog.Query()); len(q) > 0 {
			m.dialog.SetQuery(string(q[:len(q)-1]))
		}
		return m, nil
	case tea.KeyRunes:
		m.dialog.SetQuery(m.dialog.Query() + string(msg.Runes))
		return m, nil
	}

	var cmd tea.Cmd
	m.dialog, cmd = m.dialog.Update(msg)
	return m, cmd
}

// submit accepts the typed prompt and starts a request cycle. Submissions
// that trim to nothing change no state at all. While a cycle is in flight
// the gate is closed and the submission is dropped.
func (m *Model) submit() (tea.Model, tea.Cmd) {
	if m.streaming {
		return m, nil
	}

	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		return m, nil
	}

	if strings.HasPrefix(text, "/") {
		return m.ExecuteCommand(text)
	}

	return m.startCycle(text)
}

// startCycle runs one submission: log the user entry, close the input
// gate, start the background request, and post the bot header once the
// stream is obtained. The gate reopens only in finishCycle.
func (m *Model) startCycle(text string) (tea.Model, tea.Cmd) {
	m.session.Append(NewUserMessage(text))
	m.input.SetValue("")
	m.input.Blur()
	m.streaming = true
	m.pendingUser = text
	m.replyStart = time.Now()
	m.replyInputTokens = 0
	m.replyTokens = 0
	m.cycleErr = nil

	ctx, cancel := context.WithCancel(context.Background())
	ch, err := m.backend.SendMessage(ctx, text)
	if err != nil {
		// The request never started, so there is no bot header: just the
		// error entry, then the unconditional re-enable.
		cancel()
		m.cycleErr = err
		m.session.Append(NewErrorMessage(err))
		m.finishCycle()
		m.refreshViewport(true)
		return m, nil
	}

	m.cancelReq = cancel
	m.streamCh = ch
	// The empty header goes up before any fragment is consumed.
	m.session.Append(NewAssistantMessage(""))
	m.refreshViewport(true)
	return m, tea.Batch(m.spinner.Tick, waitForStreamEvent(ch))
}

// waitForStreamEvent blocks on the cycle's event channel and feeds the
// next event back into the update loop. Rescheduling one event at a time
// keeps delivery in channel order.
func waitForStreamEvent(ch <-chan ui.StreamEvent) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-ch
		return streamEventMsg{ch: ch, event: event, ok: ok}
	}
}

func (m *Model) handleStreamEvent(msg streamEventMsg) (tea.Model, tea.Cmd) {
	if msg.ch != m.streamCh {
		// Leftover delivery from a cycle that already finished.
		return m, nil
	}

	if !msg.ok {
		// Channel closed: every event of the cycle has been applied, so
		// this is the cycle's final step.
		m.finishCycle()
		m.refreshViewport(true)
		return m, nil
	}

	switch msg.event.Type {
	case ui.StreamEventText:
		m.appendFragment(msg.event.Text)
	case ui.StreamEventUsage:
		m.replyInputTokens = msg.event.InputTokens
		m.replyTokens = msg.event.OutputTokens
	case ui.StreamEventDone:
		m.completeReply()
	case ui.StreamEventError:
		m.failReply(msg.event.Err)
	}

	m.refreshViewport(true)
	return m, waitForStreamEvent(msg.ch)
}

// appendFragment grows the pending bot entry by one fragment.
func (m *Model) appendFragment(text string) {
	last := m.session.Last()
	if last == nil || last.Role != RoleAssistant {
		return
	}
	last.Content += text
}

// completeReply finalizes a successful cycle: stamp the reply entry and
// commit the exchange so the next request carries it as context.
func (m *Model) completeReply() {
	last := m.session.Last()
	if last == nil || last.Role != RoleAssistant {
		return
	}
	last.Tokens = m.replyTokens
	last.DurationMs = time.Since(m.replyStart).Milliseconds()
	m.backend.CommitTurn(m.pendingUser, last.Content)
}

// failReply appends the error entry. Fragments already shown stay in the
// transcript unmodified; the exchange is not committed.
func (m *Model) failReply(err error) {
	m.cycleErr = err
	m.session.Append(NewErrorMessage(err))
}

// finishCycle is the cycle's single terminal step: record the diagnostic
// entry, release the request, and reopen the input gate. It runs exactly
// once per cycle, after every other transcript mutation the cycle made.
func (m *Model) finishCycle() {
	m.logCycle()

	if m.cancelReq != nil {
		m.cancelReq()
		m.cancelReq = nil
	}
	m.streamCh = nil
	m.pendingUser = ""
	m.streaming = false
	m.input.Focus()
}

func (m *Model) logCycle() {
	if m.usage == nil {
		return
	}
	entry := usage.LogEntry{
		Timestamp:    time.Now(),
		Provider:     m.providerName,
		Model:        m.modelName,
		InputTokens:  m.replyInputTokens,
		OutputTokens: m.replyTokens,
		DurationMs:   time.Since(m.replyStart).Milliseconds(),
	}
	if m.cycleErr != nil {
		entry.Error = m.cycleErr.Error()
	}
	_ = m.usage.Log(entry)
}

func (m *Model) quit() (tea.Model, tea.Cmd) {
	m.quitting = true
	if m.cancelReq != nil {
		// Tear down the in-flight request; the adapter discards events
		// that no longer have a consumer.
		m.cancelReq()
		m.cancelReq = nil
	}
	return m, tea.Quit
}

// switchModel changes the provider and model used for subsequent requests.
// The argument is "provider" or "provider:model". The conversation context
// carries over.
func (m *Model) switchModel(arg string) (tea.Model, tea.Cmd) {
	providerName, modelName, err := llm.ParseProviderModel(arg, m.config)
	if err != nil {
		return m.showSystemMessage(err.Error())
	}

	provider, err := llm.NewProviderFor(providerName, modelName, m.config)
	if err != nil {
		return m.showSystemMessage(fmt.Sprintf("Could not switch model: %v", err))
	}

	if modelName == "" {
		modelName = m.config.Provider(providerName).Model
	}

	if lb, ok := m.backend.(*LocalBackend); ok {
		lb.SetProvider(provider, modelName)
	}
	m.providerName = providerName
	m.modelName = modelName
	m.session.Provider = providerName
	m.session.Model = modelName

	label := providerName
	if modelName != "" {
		label += ":" + modelName
	}
	return m.showSystemMessage(fmt.Sprintf("Now talking to **%s**.", label))
}

// refreshViewport re-renders the transcript. toBottom pins the view to
// the newest entry.
func (m *Model) refreshViewport(toBottom bool) {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderTranscript())
	if toBottom {
		m.viewport.GotoBottom()
	}
}

func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "\n  Starting chat..."
	}

	var b strings.Builder
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	if m.dialog.IsOpen() {
		b.WriteString(m.dialog.View())
	} else {
		b.WriteString(m.statusLine())
	}
	b.WriteString("\n")
	b.WriteString(m.input.View())
	return b.String()
}

// statusLine shows streaming progress while a cycle runs and a key hint
// otherwise.
func (m *Model) statusLine() string {
	if m.streaming {
		return ui.StreamingIndicator{
			Spinner: m.spinner.View(),
			Phase:   m.statusPhase(),
			Elapsed: time.Since(m.replyStart),
			Tokens:  m.replyTokens,
			Width:   m.width,
		}.Render(m.styles)
	}
	return m.styles.Muted.Render("enter send · /help commands · ctrl+c quit")
}

// statusPhase reads the cycle's progress off the transcript: a bot entry
// with content means fragments are arriving.
func (m *Model) statusPhase() string {
	if last := m.session.Last(); last != nil && last.Role == RoleAssistant && last.Content != "" {
		return "Streaming"
	}
	return "Thinking"
}

// Run starts the chat UI and blocks until it exits.
func Run(cfg *config.Config, p *persona.Persona) error {
	providerName := cfg.DefaultProvider
	provider, err := llm.NewProviderFor(providerName, "", cfg)
	if err != nil {
		return err
	}

	modelName := cfg.Provider(providerName).Model
	if modelName == "" && config.InferProviderType(providerName, cfg.Provider(providerName).Type) == config.ProviderTypeGemini {
		modelName = config.DefaultGeminiModel
	}

	backend := NewLocalBackend(provider, p, modelName)
	model := NewModel(cfg, p, backend, providerName, modelName)

	_, err = tea.NewProgram(model).Run()
	return err
}
