package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/yashshri2111/ysbot/internal/config"
	"github.com/yashshri2111/ysbot/internal/exitcode"
	"github.com/yashshri2111/ysbot/internal/llm"
	"github.com/yashshri2111/ysbot/internal/persona"
	"github.com/yashshri2111/ysbot/internal/ui"
	"github.com/yashshri2111/ysbot/internal/usage"
)

var (
	askProvider string
	askDebug    bool
	askText     bool
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask a one-shot question and stream the answer",
	Long: `Ask a single question and stream the answer to stdout, without
entering the chat.

Examples:
  ysbot ask "What is the capital of France?"
  ysbot ask "How do I reverse a string in Go?"
  ysbot ask "List 5 programming languages" --text
  ysbot ask "Explain TCP slow start" --provider anthropic`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVar(&askProvider, "provider", "", "Override provider, optionally with model (e.g., openai:gpt-5.2)")
	askCmd.Flags().BoolVarP(&askDebug, "debug", "d", false, "Show debug information")
	askCmd.Flags().BoolVarP(&askText, "text", "t", false, "Output plain text instead of rendered markdown")
	if err := askCmd.RegisterFlagCompletionFunc("provider", ProviderFlagCompletion); err != nil {
		panic(fmt.Sprintf("failed to register provider completion: %v", err))
	}
	rootCmd.AddCommand(askCmd)
}

// askResult carries what one answer produced, for diagnostics.
type askResult struct {
	text         string
	inputTokens  int
	outputTokens int
	err          error
	aborted      bool // ctrl+c before the stream finished
}

func runAsk(cmd *cobra.Command, args []string) error {
	question := strings.Join(args, " ")

	cfg, err := loadConfigWithSetup()
	if err != nil {
		return err
	}
	if err := applyProviderOverrides(cfg, askProvider); err != nil {
		return err
	}

	p, err := persona.Resolve(cfg.Persona)
	if err != nil {
		return err
	}

	provider, err := llm.NewProvider(cfg)
	if err != nil {
		return err
	}

	var messages []llm.Message
	if p.System != "" {
		messages = append(messages, llm.SystemMessage(p.System))
	}
	messages = append(messages, llm.UserMessage(question))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	start := time.Now()
	stream, err := provider.Stream(ctx, llm.Request{Messages: messages, Debug: askDebug})
	if err != nil {
		return err
	}

	adapter := ui.NewStreamAdapter(0)
	go adapter.ProcessStream(ctx, stream)

	var result askResult
	if !askText && term.IsTerminal(int(os.Stdout.Fd())) {
		result, err = streamWithSpinner(adapter.Events())
	} else {
		result, err = streamPlain(adapter.Events())
	}
	if err != nil {
		return err
	}

	logAskCycle(cfg, result, time.Since(start))

	if result.aborted {
		// Exit 130 so scripts can tell an interrupt from a failure.
		return exitcode.Cancel()
	}
	return result.err
}

// streamPlain prints chunks as they arrive, for pipes and --text.
func streamPlain(events <-chan ui.StreamEvent) (askResult, error) {
	var res askResult
	var b strings.Builder
	for ev := range events {
		switch ev.Type {
		case ui.StreamEventText:
			fmt.Print(ev.Text)
			b.WriteString(ev.Text)
		case ui.StreamEventUsage:
			res.inputTokens = ev.InputTokens
			res.outputTokens = ev.OutputTokens
		case ui.StreamEventError:
			res.err = ev.Err
		}
	}
	if b.Len() > 0 {
		fmt.Println()
	}
	res.text = b.String()
	return res, nil
}

// askEventMsg carries one stream event into the ask program.
type askEventMsg struct {
	event ui.StreamEvent
	ok    bool
}

// askModel shows a spinner until the first fragment, then the answer as it
// streams, and finally the markdown-rendered result.
type askModel struct {
	spinner      spinner.Model
	content      *strings.Builder
	events       <-chan ui.StreamEvent
	inputTokens  int
	outputTokens int
	err          error
	aborted      bool
	done         bool
	finalView    string
}

func newAskModel(events <-chan ui.StreamEvent) askModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	return askModel{
		spinner: s,
		content: &strings.Builder{},
		events:  events,
	}
}

func (m askModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, waitForAskEvent(m.events))
}

func waitForAskEvent(events <-chan ui.StreamEvent) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-events
		return askEventMsg{event: event, ok: ok}
	}
}

func (m askModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.aborted = true
			return m, tea.Quit
		}

	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case askEventMsg:
		if !msg.ok {
			m.done = true
			if m.content.Len() > 0 {
				m.finalView = strings.TrimRight(ui.RenderMarkdown(m.content.String(), 0), "\n") + "\n"
			}
			return m, tea.Quit
		}
		switch msg.event.Type {
		case ui.StreamEventText:
			m.content.WriteString(msg.event.Text)
		case ui.StreamEventUsage:
			m.inputTokens = msg.event.InputTokens
			m.outputTokens = msg.event.OutputTokens
		case ui.StreamEventError:
			m.err = msg.event.Err
		}
		return m, waitForAskEvent(m.events)
	}

	return m, nil
}

func (m askModel) View() string {
	if m.done {
		return m.finalView
	}

	if m.content.Len() == 0 {
		return m.spinner.View() + " Thinking..."
	}

	return ui.RenderMarkdown(m.content.String(), 0)
}

// streamWithSpinner runs the streaming TUI. Input comes from the terminal
// directly so the answer can still be piped.
func streamWithSpinner(events <-chan ui.StreamEvent) (askResult, error) {
	tty, err := os.OpenFile("/dev/tty", os.O_RDWR, 0)
	if err != nil {
		// No controlling terminal after all
		return streamPlain(events)
	}
	defer tty.Close()

	model := newAskModel(events)
	p := tea.NewProgram(model, tea.WithInput(tty), tea.WithOutput(os.Stdout))

	finalModel, err := p.Run()
	if err != nil {
		return askResult{}, err
	}

	am := finalModel.(askModel)
	return askResult{
		text:         am.content.String(),
		inputTokens:  am.inputTokens,
		outputTokens: am.outputTokens,
		err:          am.err,
		aborted:      am.aborted,
	}, nil
}

func logAskCycle(cfg *config.Config, res askResult, elapsed time.Duration) {
	entry := usage.LogEntry{
		Timestamp:    time.Now(),
		Provider:     cfg.DefaultProvider,
		Model:        cfg.Provider(cfg.DefaultProvider).Model,
		InputTokens:  res.inputTokens,
		OutputTokens: res.outputTokens,
		DurationMs:   elapsed.Milliseconds(),
	}
	if res.err != nil {
		entry.Error = res.err.Error()
	}
	_ = usage.DefaultLogger().Log(entry)
}
