package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAnthropicProvider(t *testing.T, handler http.HandlerFunc) *AnthropicProvider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := anthropic.NewClient(
		option.WithAPIKey("test-key"),
		option.WithBaseURL(server.URL),
		option.WithMaxRetries(0),
	)
	return &AnthropicProvider{
		client: &client,
		model:  anthropicModels["claude-sonnet"],
	}
}

func anthropicMessage(text, stop string) map[string]any {
	return map[string]any{
		"id":          "msg_test",
		"type":        "message",
		"role":        "assistant",
		"content":     []map[string]any{{"type": "text", "text": text}},
		"model":       "claude-sonnet-4-5-20250929",
		"stop_reason": stop,
		"usage":       map[string]any{"input_tokens": 50, "output_tokens": 30},
	}
}

func anthropicError(w http.ResponseWriter, status int, kind string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"type":  "error",
		"error": map[string]any{"type": kind, "message": kind},
	})
}

func TestAnthropicProvider_SubSteps(t *testing.T) {
	var sent map[string]any
	p := newTestAnthropicProvider(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&sent)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(anthropicMessage(subStepsJSON, "end_turn"))
	})

	req := subStepsRequest()
	req.Temperature = 0.7
	resp, err := p.Generate(context.Background(), req)
	require.NoError(t, err)
	assert.JSONEq(t, subStepsJSON, string(resp.Content))
	assert.Equal(t, "end", resp.StopReason)
	assert.Equal(t, Usage{InputTokens: 50, OutputTokens: 30, TotalTokens: 80}, resp.Usage)

	assert.Equal(t, "claude-sonnet-4-5-20250929", sent["model"])
	assert.EqualValues(t, 1024, sent["max_tokens"])
	assert.InDelta(t, 0.7, sent["temperature"], 1e-9)
	assert.Contains(t, sent, "output_config", "schema goes out as structured output")
}

func TestAnthropicProvider_TruncatedPlan(t *testing.T) {
	p := newTestAnthropicProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(anthropicMessage(`{"subSteps":[{"title":"Lay`, "max_tokens"))
	})

	_, err := p.Generate(context.Background(), subStepsRequest())
	var maxTok *ErrMaxTokensExceeded
	require.ErrorAs(t, err, &maxTok)
	assert.Equal(t, 1024, maxTok.Limit)
}

func TestAnthropicProvider_OffSchemaOutput(t *testing.T) {
	p := newTestAnthropicProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(anthropicMessage(`{"steps":[]}`, "end_turn"))
	})

	_, err := p.Generate(context.Background(), subStepsRequest())
	var inv *ErrInvalidResponse
	require.ErrorAs(t, err, &inv)
	assert.Equal(t, "sub-steps", inv.Schema)
}

func TestAnthropicProvider_RateLimitRetryAfter(t *testing.T) {
	calls := 0
	p := newTestAnthropicProvider(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Retry-After", "7")
		anthropicError(w, http.StatusTooManyRequests, "rate_limit_error")
	})

	_, err := p.Generate(context.Background(), subStepsRequest())
	var rl *ErrRateLimit
	require.ErrorAs(t, err, &rl)
	assert.Equal(t, 7*time.Second, rl.RetryAfter)
	assert.Equal(t, 1, calls, "the SDK does not retry on its own")
}

func TestAnthropicProvider_ServerError(t *testing.T) {
	p := newTestAnthropicProvider(t, func(w http.ResponseWriter, r *http.Request) {
		anthropicError(w, http.StatusServiceUnavailable, "overloaded_error")
	})

	_, err := p.Generate(context.Background(), subStepsRequest())
	var unavail *ErrProviderUnavailable
	assert.ErrorAs(t, err, &unavail)
}

func TestRetryAfter(t *testing.T) {
	tests := []struct {
		header string
		want   time.Duration
	}{
		{"12", 12 * time.Second},
		{" 3 ", 3 * time.Second},
		{"", 0},
		{"0", 0},
		{"-4", 0},
		{"Wed, 21 Oct 2026 07:28:00 GMT", 0},
	}
	for _, tt := range tests {
		h := http.Header{}
		h.Set("Retry-After", tt.header)
		assert.Equal(t, tt.want, retryAfter(h), "Retry-After %q", tt.header)
	}
}

func TestAnthropicModelMapping(t *testing.T) {
	assert.Equal(t, "claude-sonnet-4-5-20250929", resolveModel("claude-sonnet", anthropicModels))
	assert.Equal(t, "claude-haiku-4-5-20251001", resolveModel("claude-haiku", anthropicModels))
	assert.Equal(t, "claude-opus-4-5-20251101", resolveModel("claude-opus", anthropicModels))
	assert.Equal(t, "claude-sonnet-4-20250514", resolveModel("claude-sonnet-4-20250514", anthropicModels), "ids pass through")
}
