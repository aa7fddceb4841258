package llm

import "github.com/yashshri2111/ysbot/internal/config"

// knownModels lists commonly used models per built-in provider, for shell
// completion and the in-chat model picker. Not exhaustive; any model name a
// provider accepts can still be configured directly.
var knownModels = map[string][]string{
	"gemini": {
		config.DefaultGeminiModel,
		"gemini-3-pro-preview",
		"gemini-3-flash-preview",
		"gemini-2.5-flash",
	},
	"openai": {
		"gpt-5.2",
		"gpt-5.2-high",
		"gpt-5.2-codex",
		"gpt-4.1",
	},
	"anthropic": {
		"claude-sonnet-4-5",
		"claude-opus-4-5",
		"claude-haiku-4-5",
	},
	"openrouter": {
		"x-ai/grok-code-fast-1",
		"deepseek/deepseek-chat",
		"meta-llama/llama-3.3-70b-instruct",
	},
}

// KnownModels returns the known model names for a provider, or nil for
// providers with no built-in list.
func KnownModels(provider string) []string {
	return knownModels[provider]
}
