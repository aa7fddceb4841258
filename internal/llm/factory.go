package llm

import (
	"fmt"
	"strings"

	"github.com/yashshri2111/ysbot/internal/config"
)

// OpenRouter attribution headers.
const (
	appURL   = "https://github.com/yashshri2111/ysbot"
	appTitle = "YS Bot"
)

// NewProvider builds the provider selected by cfg.DefaultProvider.
func NewProvider(cfg *config.Config) (Provider, error) {
	return NewProviderFor(cfg.DefaultProvider, "", cfg)
}

// NewProviderFor builds the named provider. A non-empty model overrides the
// configured one. A missing credential is reported here, at startup, naming
// the environment variable that would supply it.
func NewProviderFor(name, model string, cfg *config.Config) (Provider, error) {
	if name == "" {
		return nil, fmt.Errorf("no provider configured")
	}

	pc := cfg.Provider(name)
	ptype := config.InferProviderType(name, pc.Type)
	if model == "" {
		model = pc.Model
	}

	apiKey, err := cfg.ResolveAPIKey(name)
	if err != nil {
		return nil, err
	}

	switch ptype {
	case config.ProviderTypeGemini:
		if err := requireKey(apiKey, name, ptype); err != nil {
			return nil, err
		}
		if model == "" {
			model = config.DefaultGeminiModel
		}
		return NewGeminiProvider(apiKey, model)

	case config.ProviderTypeOpenAI:
		if err := requireKey(apiKey, name, ptype); err != nil {
			return nil, err
		}
		return NewOpenAIProvider(apiKey, model), nil

	case config.ProviderTypeAnthropic:
		if err := requireKey(apiKey, name, ptype); err != nil {
			return nil, err
		}
		return NewAnthropicProvider(apiKey, model), nil

	case config.ProviderTypeOpenRouter:
		if err := requireKey(apiKey, name, ptype); err != nil {
			return nil, err
		}
		return NewOpenRouterProvider(apiKey, model, appURL, appTitle), nil

	case config.ProviderTypeOpenAICompat:
		if pc.BaseURL == "" {
			return nil, fmt.Errorf("provider %s: base_url is required for openai-compat providers", name)
		}
		baseURL, err := config.ResolveValue(pc.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("provider %s: %w", name, err)
		}
		return NewOpenAICompatProvider(baseURL, apiKey, model, name), nil

	default:
		return nil, fmt.Errorf("unknown provider type %q for provider %s", ptype, name)
	}
}

func requireKey(apiKey, name string, ptype config.ProviderType) error {
	if apiKey != "" {
		return nil
	}
	envVar := config.EnvKeyVar(ptype)
	if envVar == "" {
		return fmt.Errorf("provider %s: no API key configured", name)
	}
	return fmt.Errorf("%s not set (export it, or set providers.%s.api_key in the config)", envVar, name)
}

// ParseProviderModel splits a "provider" or "provider:model" argument and
// validates the provider name against the config.
func ParseProviderModel(input string, cfg *config.Config) (string, string, error) {
	provider := input
	model := ""
	if idx := strings.Index(input, ":"); idx >= 0 {
		provider, model = input[:idx], input[idx+1:]
	}

	for _, name := range cfg.ProviderNames() {
		if name == provider {
			return provider, model, nil
		}
	}
	return "", "", fmt.Errorf("unknown provider %q (known: %s)", provider, strings.Join(cfg.ProviderNames(), ", "))
}

// GetProviderCompletions returns shell-completion candidates for a
// --provider flag value, including provider:model pairs once a provider
// has been typed.
func GetProviderCompletions(toComplete string, cfg *config.Config) []string {
	var completions []string

	if idx := strings.Index(toComplete, ":"); idx >= 0 {
		provider := toComplete[:idx]
		for _, model := range KnownModels(provider) {
			candidate := provider + ":" + model
			if strings.HasPrefix(candidate, toComplete) {
				completions = append(completions, candidate)
			}
		}
		return completions
	}

	for _, name := range cfg.ProviderNames() {
		if strings.HasPrefix(name, toComplete) {
			completions = append(completions, name)
		}
	}
	return completions
}
