package llm

import (
	"context"
	"fmt"
	"os"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAICompatProvider implements Provider against any endpoint speaking the
// OpenAI chat-completions protocol (OpenRouter, Ollama, LM Studio, vLLM).
type OpenAICompatProvider struct {
	client      *openai.Client
	model       string
	displayName string
}

func NewOpenAICompatProvider(baseURL, apiKey, model, displayName string) *OpenAICompatProvider {
	return NewOpenAICompatProviderWithHeaders(baseURL, apiKey, model, displayName, nil)
}

// NewOpenAICompatProviderWithHeaders is like NewOpenAICompatProvider but adds
// extra HTTP headers to every request (used by OpenRouter attribution).
func NewOpenAICompatProviderWithHeaders(baseURL, apiKey, model, displayName string, headers map[string]string) *OpenAICompatProvider {
	opts := []option.RequestOption{option.WithBaseURL(baseURL)}
	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	}
	for k, v := range headers {
		opts = append(opts, option.WithHeader(k, v))
	}
	client := openai.NewClient(opts...)
	return &OpenAICompatProvider{
		client:      &client,
		model:       model,
		displayName: displayName,
	}
}

func (p *OpenAICompatProvider) Name() string {
	return fmt.Sprintf("%s (%s)", p.displayName, p.model)
}

func (p *OpenAICompatProvider) Stream(ctx context.Context, req Request) (Stream, error) {
	return newEventStream(ctx, func(ctx context.Context, events chan<- Event) error {
		messages := buildChatMessages(req.Messages)
		if len(messages) == 0 {
			return fmt.Errorf("no user content provided")
		}

		params := openai.ChatCompletionNewParams{
			Model:    openai.ChatModel(chooseModel(req.Model, p.model)),
			Messages: messages,
		}
		if req.MaxOutputTokens > 0 {
			params.MaxCompletionTokens = openai.Int(int64(req.MaxOutputTokens))
		}
		if req.Temperature > 0 {
			params.Temperature = openai.Float(float64(req.Temperature))
		}

		if req.Debug {
			fmt.Fprintln(os.Stderr, "=== DEBUG: Chat Completions Stream Request ===")
			fmt.Fprintf(os.Stderr, "Provider: %s\n", p.Name())
			fmt.Fprintf(os.Stderr, "Messages: %d\n", len(messages))
			fmt.Fprintln(os.Stderr, "=============================================")
		}

		stream := p.client.Chat.Completions.NewStreaming(ctx, params)
		acc := openai.ChatCompletionAccumulator{}
		for stream.Next() {
			chunk := stream.Current()
			acc.AddChunk(chunk)
			if len(chunk.Choices) > 0 {
				if delta := chunk.Choices[0].Delta.Content; delta != "" {
					events <- Event{Type: EventTextDelta, Text: delta}
				}
			}
		}
		if err := stream.Err(); err != nil {
			return fmt.Errorf("%s streaming error: %w", p.displayName, err)
		}
		if acc.Usage.PromptTokens > 0 || acc.Usage.CompletionTokens > 0 {
			events <- Event{Type: EventUsage, Use: &Usage{
				InputTokens:  int(acc.Usage.PromptTokens),
				OutputTokens: int(acc.Usage.CompletionTokens),
			}}
		}
		events <- Event{Type: EventDone}
		return nil
	}), nil
}

func buildChatMessages(messages []Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, msg := range messages {
		if msg.Content == "" {
			continue
		}
		switch msg.Role {
		case RoleSystem:
			out = append(out, openai.SystemMessage(msg.Content))
		case RoleUser:
			out = append(out, openai.UserMessage(msg.Content))
		case RoleAssistant:
			out = append(out, openai.AssistantMessage(msg.Content))
		}
	}
	return out
}
