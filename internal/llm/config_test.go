package llm

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearLLMEnv blanks every variable ConfigFromEnv and DiscoverConfig read.
func clearLLMEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"GOALPATH_LLM_PROVIDER", "GOALPATH_LLM_TIMEOUT",
		"GOALPATH_ANTHROPIC_API_KEY", "GOALPATH_ANTHROPIC_MODEL",
		"GOALPATH_OPENAI_API_KEY", "GOALPATH_OPENAI_MODEL", "GOALPATH_OPENAI_BASE_URL",
		"GOALPATH_GEMINI_API_KEY", "GOALPATH_GEMINI_MODEL",
		"GOALPATH_OPENROUTER_API_KEY", "GOALPATH_OPENROUTER_MODEL", "GOALPATH_OPENROUTER_BASE_URL",
		"GEMINI_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY", "OPENROUTER_API_KEY",
	} {
		t.Setenv(k, "")
	}
}

func TestConfigFromEnv_Defaults(t *testing.T) {
	clearLLMEnv(t)
	cfg := ConfigFromEnv()
	assert.Equal(t, "gemini", cfg.Provider)
	assert.Equal(t, "gemini-flash", cfg.Gemini.Model)
	assert.Equal(t, 90*time.Second, cfg.Timeout)
	assert.Equal(t, 3, cfg.Retry.MaxAttempts)
}

func TestConfigFromEnv_Overrides(t *testing.T) {
	clearLLMEnv(t)
	t.Setenv("GOALPATH_LLM_PROVIDER", "openrouter")
	t.Setenv("GOALPATH_OPENROUTER_API_KEY", "sk-or")
	t.Setenv("GOALPATH_OPENROUTER_MODEL", "anthropic/claude-3-haiku")
	t.Setenv("GOALPATH_LLM_TIMEOUT", "2m")

	cfg := ConfigFromEnv()
	assert.Equal(t, "openrouter", cfg.Provider)
	assert.Equal(t, "sk-or", cfg.OpenRouter.APIKey)
	assert.Equal(t, "anthropic/claude-3-haiku", cfg.OpenRouter.Model)
	assert.Equal(t, 2*time.Minute, cfg.Timeout)
	assert.NoError(t, cfg.Validate())
}

func TestConfigFromEnv_BadTimeoutIgnored(t *testing.T) {
	clearLLMEnv(t)
	t.Setenv("GOALPATH_LLM_TIMEOUT", "soon")
	assert.Equal(t, 90*time.Second, ConfigFromEnv().Timeout)
}

func TestResolve(t *testing.T) {
	t.Run("explicit config wins", func(t *testing.T) {
		clearLLMEnv(t)
		t.Setenv("GOALPATH_GEMINI_API_KEY", "g-key")
		t.Setenv("OPENAI_API_KEY", "o-key")

		cfg, err := Resolve()
		require.NoError(t, err)
		assert.Equal(t, "gemini", cfg.Provider)
		assert.Equal(t, "g-key", cfg.Gemini.APIKey)
	})

	t.Run("falls back to discovery", func(t *testing.T) {
		clearLLMEnv(t)
		t.Setenv("ANTHROPIC_API_KEY", "a-key")
		t.Setenv("GOALPATH_LLM_TIMEOUT", "5s")

		cfg, err := Resolve()
		require.NoError(t, err)
		assert.Equal(t, "anthropic", cfg.Provider)
		assert.Equal(t, 5*time.Second, cfg.Timeout)
	})

	t.Run("explicit provider is not overridden", func(t *testing.T) {
		clearLLMEnv(t)
		t.Setenv("GOALPATH_LLM_PROVIDER", "openai")
		t.Setenv("GEMINI_API_KEY", "g-key")

		_, err := Resolve()
		assert.ErrorContains(t, err, "GOALPATH_OPENAI_API_KEY")
	})

	t.Run("nothing configured", func(t *testing.T) {
		clearLLMEnv(t)
		_, err := Resolve()
		assert.Error(t, err)
	})
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"anthropic without key", Config{Provider: "anthropic"}, "GOALPATH_ANTHROPIC_API_KEY"},
		{"anthropic with key", Config{Provider: "anthropic", Anthropic: AnthropicConfig{APIKey: "sk-test"}}, ""},
		{"openai without key", Config{Provider: "openai"}, "GOALPATH_OPENAI_API_KEY"},
		{"gemini without key", Config{Provider: "gemini"}, "GOALPATH_GEMINI_API_KEY"},
		{"openrouter with key", Config{Provider: "openrouter", OpenRouter: OpenRouterConfig{APIKey: "sk-or"}}, ""},
		{"mock needs no key", Config{Provider: "mock"}, ""},
		{"unknown provider", Config{Provider: "carrier-pigeon"}, "unknown LLM provider"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

// The worst case is every attempt failing late, with the longest jittered
// wait between them. Each attempt still gets MinAttempt.
func TestDefaultConfig_RetriesFitTimeout(t *testing.T) {
	cfg := DefaultConfig()
	r := cfg.Retry

	var waits time.Duration
	wait := r.InitialWait
	for range r.MaxAttempts - 1 {
		waits += time.Duration(float64(min(wait, r.MaxWait)) * 1.2)
		wait = time.Duration(float64(wait) * r.Multiplier)
	}
	assert.LessOrEqual(t, waits+time.Duration(r.MaxAttempts)*r.MinAttempt, cfg.Timeout)
	assert.LessOrEqual(t, r.MaxWait, cfg.Timeout/10)
}
