package llm

import (
	"fmt"
	"os"
	"time"
)

// Config holds all LLM provider configuration.
type Config struct {
	// Provider selects which LLM provider to use.
	// Values: "gemini", "anthropic", "openai", "openrouter", "mock"
	Provider string

	Anthropic  AnthropicConfig
	OpenAI     OpenAIConfig
	Gemini     GeminiConfig
	OpenRouter OpenRouterConfig
	Retry      RetryConfig

	// Timeout bounds a single planner call, retries included. Action plans
	// are long, so the default is generous: 90s.
	Timeout time.Duration
}

// AnthropicConfig holds Anthropic-specific configuration.
type AnthropicConfig struct {
	APIKey string
	Model  string // Default: "claude-sonnet"
}

// OpenAIConfig holds OpenAI-specific configuration.
type OpenAIConfig struct {
	APIKey  string
	Model   string // Default: "gpt-4o-mini"
	BaseURL string // Optional. Override for compatible APIs.
}

// GeminiConfig holds Gemini-specific configuration.
type GeminiConfig struct {
	APIKey string
	Model  string // Default: "gemini-flash"
}

// OpenRouterConfig holds OpenRouter-specific configuration.
type OpenRouterConfig struct {
	APIKey  string
	Model   string // Default: "google/gemini-2.5-flash"
	BaseURL string // Default: "https://openrouter.ai/api/v1"
}

// RetryConfig configures retry behavior for transient failures. All
// attempts and waits share the call's Timeout.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
	// MinAttempt is the least time worth giving another attempt. Retries
	// stop once less than this would remain after the wait.
	MinAttempt time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Provider: "gemini",
		Anthropic: AnthropicConfig{
			Model: "claude-sonnet",
		},
		OpenAI: OpenAIConfig{
			Model: "gpt-4o-mini",
		},
		Gemini: GeminiConfig{
			Model: "gemini-flash",
		},
		OpenRouter: OpenRouterConfig{
			Model: "google/gemini-2.5-flash",
		},
		// Three attempts with 2s and 4s waits fit the 90s budget when a
		// plan takes around 25s to generate.
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: 2 * time.Second,
			MaxWait:     8 * time.Second,
			Multiplier:  2.0,
			MinAttempt:  20 * time.Second,
		},
		Timeout: 90 * time.Second,
	}
}

// ConfigFromEnv builds a Config from GOALPATH_* environment variables,
// falling back to defaults for unset values.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()

	setIf(&cfg.Provider, "GOALPATH_LLM_PROVIDER")

	setIf(&cfg.Anthropic.APIKey, "GOALPATH_ANTHROPIC_API_KEY")
	setIf(&cfg.Anthropic.Model, "GOALPATH_ANTHROPIC_MODEL")

	setIf(&cfg.OpenAI.APIKey, "GOALPATH_OPENAI_API_KEY")
	setIf(&cfg.OpenAI.Model, "GOALPATH_OPENAI_MODEL")
	setIf(&cfg.OpenAI.BaseURL, "GOALPATH_OPENAI_BASE_URL")

	setIf(&cfg.Gemini.APIKey, "GOALPATH_GEMINI_API_KEY")
	setIf(&cfg.Gemini.Model, "GOALPATH_GEMINI_MODEL")

	setIf(&cfg.OpenRouter.APIKey, "GOALPATH_OPENROUTER_API_KEY")
	setIf(&cfg.OpenRouter.Model, "GOALPATH_OPENROUTER_MODEL")
	setIf(&cfg.OpenRouter.BaseURL, "GOALPATH_OPENROUTER_BASE_URL")

	if v := os.Getenv("GOALPATH_LLM_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.Timeout = d
		}
	}

	return cfg
}

func setIf(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// DiscoverConfig checks standard API key env vars in priority order
// (Gemini → OpenAI → Anthropic → OpenRouter) and returns a Config for the
// first provider whose key is found. Returns (Config{}, false) if none found.
func DiscoverConfig() (Config, bool) {
	cfg := DefaultConfig()

	if k := os.Getenv("GEMINI_API_KEY"); k != "" {
		cfg.Provider = "gemini"
		cfg.Gemini.APIKey = k
		return cfg, true
	}
	if k := os.Getenv("OPENAI_API_KEY"); k != "" {
		cfg.Provider = "openai"
		cfg.OpenAI.APIKey = k
		return cfg, true
	}
	if k := os.Getenv("ANTHROPIC_API_KEY"); k != "" {
		cfg.Provider = "anthropic"
		cfg.Anthropic.APIKey = k
		return cfg, true
	}
	if k := os.Getenv("OPENROUTER_API_KEY"); k != "" {
		cfg.Provider = "openrouter"
		cfg.OpenRouter.APIKey = k
		return cfg, true
	}

	return Config{}, false
}

// Resolve returns the explicit GOALPATH_* configuration when it validates,
// then a discovered one, then the explicit one with its validation error.
func Resolve() (Config, error) {
	cfg := ConfigFromEnv()
	err := cfg.Validate()
	if err == nil {
		return cfg, nil
	}
	if os.Getenv("GOALPATH_LLM_PROVIDER") == "" {
		if found, ok := DiscoverConfig(); ok {
			found.Timeout = cfg.Timeout
			return found, nil
		}
	}
	return cfg, err
}

// Validate checks that the selected provider has its required API key set.
func (c Config) Validate() error {
	switch c.Provider {
	case "anthropic":
		if c.Anthropic.APIKey == "" {
			return fmt.Errorf("GOALPATH_ANTHROPIC_API_KEY is required for the anthropic provider")
		}
	case "openai":
		if c.OpenAI.APIKey == "" {
			return fmt.Errorf("GOALPATH_OPENAI_API_KEY is required for the openai provider")
		}
	case "gemini":
		if c.Gemini.APIKey == "" {
			return fmt.Errorf("GOALPATH_GEMINI_API_KEY is required for the gemini provider")
		}
	case "openrouter":
		if c.OpenRouter.APIKey == "" {
			return fmt.Errorf("GOALPATH_OPENROUTER_API_KEY is required for the openrouter provider")
		}
	case "mock":
		// No API key needed.
	default:
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	return nil
}
