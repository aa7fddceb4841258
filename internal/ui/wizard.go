package ui

import (
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/yashshri2111/ysbot/internal/config"
)

// providerOption represents a provider choice in the setup wizard
type providerOption struct {
	name      string
	value     string
	available bool
	hint      string // Shows how to enable if not available
}

// detectAvailableProviders checks which providers have credentials configured
func detectAvailableProviders() []providerOption {
	return []providerOption{
		{
			name:      "Gemini - GEMINI_API_KEY (recommended)",
			value:     "gemini",
			available: os.Getenv("GEMINI_API_KEY") != "",
			hint:      "set GEMINI_API_KEY",
		},
		{
			name:      "OpenAI - OPENAI_API_KEY",
			value:     "openai",
			available: os.Getenv("OPENAI_API_KEY") != "",
			hint:      "set OPENAI_API_KEY",
		},
		{
			name:      "Anthropic - ANTHROPIC_API_KEY",
			value:     "anthropic",
			available: os.Getenv("ANTHROPIC_API_KEY") != "",
			hint:      "set ANTHROPIC_API_KEY",
		},
		{
			name:      "OpenRouter - OPENROUTER_API_KEY",
			value:     "openrouter",
			available: os.Getenv("OPENROUTER_API_KEY") != "",
			hint:      "set OPENROUTER_API_KEY",
		},
	}
}

// getTTY opens the controlling terminal so the wizard works under
// redirected stdio.
func getTTY() (*os.File, error) {
	return os.OpenFile("/dev/tty", os.O_RDWR, 0)
}

// buildProviderForm assembles the provider selection form. A nil tty
// leaves the form on default stdio.
func buildProviderForm(options []huh.Option[string], provider *string, tty *os.File) *huh.Form {
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Which LLM provider should YS Bot use?").
				Description("Providers marked ✓ are ready to use").
				Options(options...).
				Value(provider),
		),
	)
	if tty != nil {
		form = form.WithInput(tty).WithOutput(tty)
	}
	return form
}

// RunSetupWizard runs the first-time setup wizard and returns the config
func RunSetupWizard() (*config.Config, error) {
	// Use /dev/tty for output to bypass redirections
	tty, ttyErr := getTTY()
	if ttyErr == nil {
		defer tty.Close()
		fmt.Fprint(tty, "Welcome to ysbot! Let's get you set up.\n\n")
	} else {
		fmt.Fprint(os.Stderr, "Welcome to ysbot! Let's get you set up.\n\n")
	}

	// Detect available providers
	providers := detectAvailableProviders()

	// Build provider options - available first, then unavailable
	var options []huh.Option[string]
	var availableOptions []huh.Option[string]
	var unavailableOptions []huh.Option[string]

	for _, p := range providers {
		if p.available {
			availableOptions = append(availableOptions, huh.NewOption(p.name+" ✓", p.value))
		} else {
			unavailableOptions = append(unavailableOptions, huh.NewOption(p.name+" (not set)", p.value))
		}
	}
	options = append(options, availableOptions...)
	options = append(options, unavailableOptions...)

	// Reuse the handle opened above; it is nil when no terminal exists.
	var provider string
	form := buildProviderForm(options, &provider, tty)

	if err := form.Run(); err != nil {
		return nil, err
	}

	// Validate the selection
	var selected *providerOption
	for i := range providers {
		if providers[i].value == provider {
			selected = &providers[i]
			break
		}
	}
	if selected != nil && !selected.available {
		return nil, fmt.Errorf("provider %s is not configured\n\n%s", selected.name, selected.hint)
	}

	cfg := &config.Config{
		DefaultProvider: provider,
		Providers: map[string]config.ProviderConfig{
			"gemini": {
				Model: config.DefaultGeminiModel,
			},
			"openai": {
				Model: "gpt-5.2",
			},
			"anthropic": {
				Model: "claude-sonnet-4-5",
			},
			"openrouter": {
				Model: "x-ai/grok-code-fast-1",
			},
		},
	}

	// Save the config
	if err := config.Save(cfg); err != nil {
		return nil, fmt.Errorf("failed to save config: %w", err)
	}

	path, _ := config.GetConfigPath()
	if tty3, err := getTTY(); err == nil {
		fmt.Fprintf(tty3, "Config saved to %s\n\n", path)
		tty3.Close()
	} else {
		fmt.Fprintf(os.Stderr, "Config saved to %s\n\n", path)
	}

	// Reload to pick up defaults
	return config.Load()
}
