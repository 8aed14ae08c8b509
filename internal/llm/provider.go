package llm

import (
	"context"
	"encoding/json"
)

// Provider generates structured output for the planner. Adapters exist for
// Anthropic, OpenAI, OpenRouter and Gemini; decorators add logging, retries
// and a timeout on top.
type Provider interface {
	// Generate runs one request. With req.Schema set, Content is JSON
	// already validated against it.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID is the configured model, after friendly-name resolution.
	ModelID() string
}

// Request is one single-turn planner prompt.
type Request struct {
	// System carries the coach persona.
	System   string
	Messages []Message

	// Schema selects the provider's native structured output. Nil means
	// free text, returned as-is in Response.Content.
	Schema *Schema

	MaxTokens int

	// Temperature in [0, 1]. Zero leaves the provider default.
	Temperature float64
}

// NewRequest builds the common shape: a system prompt and one user turn.
func NewRequest(system, user string, schema *Schema, maxTokens int) Request {
	return Request{
		System:    system,
		Messages:  []Message{{Role: RoleUser, Content: user}},
		Schema:    schema,
		MaxTokens: maxTokens,
	}
}

// Message is one conversation turn.
type Message struct {
	Role    Role
	Content string
}

// Role is the message sender role.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema is a named JSON Schema for structured output.
type Schema struct {
	// Name is kebab-case, e.g. "action-plan". Anthropic and OpenAI send it
	// along; the validator caches compiled schemas under it.
	Name        string
	Description string
	Definition  map[string]any
}

// Response is a provider's answer.
type Response struct {
	Content json.RawMessage
	Usage   Usage

	// Model is the model that served the request, which may be a dated
	// snapshot of ModelID.
	Model string

	// StopReason is "end" or "max_tokens".
	StopReason string
}

// Usage is the token count of one request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}
