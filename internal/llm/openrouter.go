package llm

import (
	"fmt"
	"net/http"

	openai "github.com/sashabaranov/go-openai"
)

const (
	defaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"

	// OpenRouter attributes traffic to an app by these headers.
	openRouterReferer = "https://github.com/abhisek/goalpath"
	openRouterTitle   = "goalpath"
)

// openRouterModels maps the friendly names used by the other providers to
// OpenRouter ids, so GOALPATH_OPENROUTER_MODEL=gemini-flash works too.
var openRouterModels = map[string]string{
	"gemini-flash": "google/gemini-2.5-flash",
	"gemini-pro":   "google/gemini-2.5-pro",
	"gemini-lite":  "google/gemini-2.5-flash-lite",
	"gpt-4o":       "openai/gpt-4o",
	"gpt-4o-mini":  "openai/gpt-4o-mini",
}

// OpenRouterProvider talks to OpenRouter through its OpenAI-compatible API.
type OpenRouterProvider struct {
	*OpenAIProvider
}

// NewOpenRouterProvider creates a provider targeting the OpenRouter API.
func NewOpenRouterProvider(cfg OpenRouterConfig) (*OpenRouterProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openrouter API key is required")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultOpenRouterBaseURL
	}

	inner, err := newOpenAIProviderRaw(OpenAIConfig{
		APIKey:  cfg.APIKey,
		Model:   resolveModel(cfg.Model, openRouterModels),
		BaseURL: baseURL,
	}, func(c *openai.ClientConfig) {
		c.HTTPClient = &http.Client{Transport: attribution{base: http.DefaultTransport}}
	})
	if err != nil {
		return nil, err
	}
	return &OpenRouterProvider{OpenAIProvider: inner}, nil
}

// attribution adds OpenRouter's app headers to every request.
type attribution struct {
	base http.RoundTripper
}

func (a attribution) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("HTTP-Referer", openRouterReferer)
	req.Header.Set("X-Title", openRouterTitle)
	return a.base.RoundTrip(req)
}
