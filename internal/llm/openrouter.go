package llm

// openRouterBaseURL is the OpenRouter chat-completions endpoint.
const openRouterBaseURL = "https://openrouter.ai/api/v1"

// NewOpenRouterProvider builds an OpenRouter-backed provider. OpenRouter
// speaks the OpenAI chat-completions protocol; the optional appURL and
// appTitle become the HTTP-Referer and X-Title attribution headers.
func NewOpenRouterProvider(apiKey, model, appURL, appTitle string) *OpenAICompatProvider {
	var headers map[string]string
	if appURL != "" || appTitle != "" {
		headers = make(map[string]string, 2)
		if appURL != "" {
			headers["HTTP-Referer"] = appURL
		}
		if appTitle != "" {
			headers["X-Title"] = appTitle
		}
	}
	return NewOpenAICompatProviderWithHeaders(openRouterBaseURL, apiKey, model, "OpenRouter", headers)
}
