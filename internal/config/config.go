package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/viper"
)

// ProviderType identifies which client implementation backs a provider entry.
type ProviderType string

const (
	ProviderTypeGemini       ProviderType = "gemini"
	ProviderTypeOpenAI       ProviderType = "openai"
	ProviderTypeAnthropic    ProviderType = "anthropic"
	ProviderTypeOpenRouter   ProviderType = "openrouter"
	ProviderTypeOpenAICompat ProviderType = "openai-compat"
)

// DefaultGeminiModel is the model used when a gemini entry names none.
const DefaultGeminiModel = "gemini-2.5-flash-preview-09-2025"

type Config struct {
	DefaultProvider string                    `mapstructure:"default_provider"`
	Providers       map[string]ProviderConfig `mapstructure:"providers"`
	Persona         string                    `mapstructure:"persona"`
}

type ProviderConfig struct {
	Type    ProviderType `mapstructure:"type"`
	Model   string       `mapstructure:"model"`
	APIKey  string       `mapstructure:"api_key"`
	BaseURL string       `mapstructure:"base_url"`
}

func Load() (*Config, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get config dir: %w", err)
	}

	configPath := filepath.Join(configDir, "ysbot")

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.AddConfigPath(".")

	// Set defaults
	v.SetDefault("default_provider", "gemini")
	v.SetDefault("providers.gemini.model", DefaultGeminiModel)
	v.SetDefault("providers.openai.model", "gpt-5.2")
	v.SetDefault("providers.anthropic.model", "claude-sonnet-4-5")

	// Read config file (optional - won't error if missing)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if cfg.Providers == nil {
		cfg.Providers = map[string]ProviderConfig{}
	}

	return &cfg, nil
}

// ApplyOverrides applies command-line provider/model overrides on top of the
// loaded config. Empty arguments leave the corresponding value untouched.
func (c *Config) ApplyOverrides(provider, model string) {
	if provider != "" {
		c.DefaultProvider = provider
	}
	if model != "" {
		if c.Providers == nil {
			c.Providers = map[string]ProviderConfig{}
		}
		pc := c.Providers[c.DefaultProvider]
		pc.Model = model
		c.Providers[c.DefaultProvider] = pc
	}
}

// Provider returns the config entry for the named provider. A missing entry
// yields the zero value so defaults and type inference still apply.
func (c *Config) Provider(name string) ProviderConfig {
	return c.Providers[name]
}

// ProviderNames returns the configured provider names plus the built-in
// ones, sorted for stable completion output.
func (c *Config) ProviderNames() []string {
	seen := map[string]bool{
		"gemini":     true,
		"openai":     true,
		"anthropic":  true,
		"openrouter": true,
	}
	for name := range c.Providers {
		seen[name] = true
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// InferProviderType maps a provider name to its client type. Entries with an
// explicit type keep it; unknown names fall back to OpenAI-compatible, which
// covers self-hosted and aggregator endpoints that only need a base URL.
func InferProviderType(name string, explicit ProviderType) ProviderType {
	if explicit != "" {
		return explicit
	}
	switch name {
	case "gemini", "google":
		return ProviderTypeGemini
	case "openai":
		return ProviderTypeOpenAI
	case "anthropic":
		return ProviderTypeAnthropic
	case "openrouter":
		return ProviderTypeOpenRouter
	default:
		return ProviderTypeOpenAICompat
	}
}

// envKeyVars lists the environment fallback for each provider type's API key.
var envKeyVars = map[ProviderType]string{
	ProviderTypeGemini:     "GEMINI_API_KEY",
	ProviderTypeOpenAI:     "OPENAI_API_KEY",
	ProviderTypeAnthropic:  "ANTHROPIC_API_KEY",
	ProviderTypeOpenRouter: "OPENROUTER_API_KEY",
}

// EnvKeyVar returns the environment variable consulted for the given
// provider type's credential, or "" when none applies.
func EnvKeyVar(t ProviderType) string {
	return envKeyVars[t]
}

// ResolveAPIKey resolves the credential for the named provider: the
// configured api_key (after magic-value resolution) first, then the
// type-specific environment variable.
func (c *Config) ResolveAPIKey(name string) (string, error) {
	pc := c.Provider(name)
	if pc.APIKey != "" {
		key, err := ResolveValue(pc.APIKey)
		if err != nil {
			return "", fmt.Errorf("provider %s: %w", name, err)
		}
		if key != "" {
			return key, nil
		}
	}

	if envVar := EnvKeyVar(InferProviderType(name, pc.Type)); envVar != "" {
		return os.Getenv(envVar), nil
	}
	return "", nil
}

// expandEnv expands ${VAR} or $VAR in a string
func expandEnv(s string) string {
	if strings.HasPrefix(s, "${") && strings.HasSuffix(s, "}") {
		varName := s[2 : len(s)-1]
		return os.Getenv(varName)
	}
	if strings.HasPrefix(s, "$") {
		return os.Getenv(s[1:])
	}
	return s
}

// GetConfigPath returns the path where the config file should be located
func GetConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "ysbot", "config.yaml"), nil
}

// Exists returns true if a config file exists
func Exists() bool {
	path, err := GetConfigPath()
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

// NeedsSetup returns true if config file doesn't exist
func NeedsSetup() bool {
	return !Exists()
}

// Save writes the config to disk
func Save(cfg *Config) error {
	path, err := GetConfigPath()
	if err != nil {
		return err
	}

	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "default_provider: %s\n", cfg.DefaultProvider)
	if cfg.Persona != "" {
		fmt.Fprintf(&b, "persona: %s\n", cfg.Persona)
	}
	b.WriteString("\nproviders:\n")

	names := make([]string, 0, len(cfg.Providers))
	for name := range cfg.Providers {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		pc := cfg.Providers[name]
		fmt.Fprintf(&b, "  %s:\n", name)
		if pc.Type != "" {
			fmt.Fprintf(&b, "    type: %s\n", pc.Type)
		}
		if pc.Model != "" {
			fmt.Fprintf(&b, "    model: %s\n", pc.Model)
		}
		if pc.APIKey != "" {
			fmt.Fprintf(&b, "    api_key: %s\n", pc.APIKey)
		}
		if pc.BaseURL != "" {
			fmt.Fprintf(&b, "    base_url: %s\n", pc.BaseURL)
		}
	}

	return os.WriteFile(path, []byte(b.String()), 0600)
}
