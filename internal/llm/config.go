package llm

import (
	"fmt"
	"time"
)

// Provider names accepted in Config.Provider.
const (
	ProviderGroq       = "groq"
	ProviderOpenAI     = "openai"
	ProviderOpenRouter = "openrouter"
	ProviderAnthropic  = "anthropic"
	ProviderGemini     = "gemini"
	ProviderMock       = "mock"
)

// Config holds all LLM provider configuration. API keys are not part of
// it; they come from a KeySource at request time.
type Config struct {
	// Provider selects which LLM provider to use.
	// Values: "groq", "openai", "openrouter", "anthropic", "gemini", "mock"
	Provider string

	Groq       GroqConfig
	OpenAI     OpenAIConfig
	OpenRouter OpenRouterConfig
	Anthropic  AnthropicConfig
	Gemini     GeminiConfig
	Retry      RetryConfig

	// Temperature is applied to every request. Default: 0.5.
	Temperature float64

	// MaxTokens bounds each reply. Default: 4096.
	MaxTokens int

	// Timeout bounds a single Generate call including retries.
	// Zero means no limit beyond the caller's context.
	Timeout time.Duration
}

// GroqConfig holds Groq-specific configuration.
type GroqConfig struct {
	Model   string // Default: "llama-3.3-70b-versatile"
	BaseURL string // Default: "https://api.groq.com/openai/v1"
}

// OpenAIConfig holds OpenAI-specific configuration.
type OpenAIConfig struct {
	Model   string // Default: "gpt-4o-mini"
	BaseURL string // Optional. Override for compatible APIs.
}

// OpenRouterConfig holds OpenRouter-specific configuration.
type OpenRouterConfig struct {
	Model   string // Default: "meta-llama/llama-3.3-70b-instruct"
	BaseURL string // Default: "https://openrouter.ai/api/v1"
}

// AnthropicConfig holds Anthropic-specific configuration.
type AnthropicConfig struct {
	Model   string // Default: "claude-haiku"
	BaseURL string
}

// GeminiConfig holds Gemini-specific configuration.
type GeminiConfig struct {
	Model   string // Default: "gemini-flash"
	BaseURL string
}

// RetryConfig configures retry behavior for transient failures.
// MaxAttempts of 1 disables retries.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultConfig returns a Config targeting Groq with retries disabled.
func DefaultConfig() Config {
	return Config{
		Provider: ProviderGroq,
		Groq: GroqConfig{
			Model:   "llama-3.3-70b-versatile",
			BaseURL: defaultGroqBaseURL,
		},
		OpenAI: OpenAIConfig{
			Model: "gpt-4o-mini",
		},
		OpenRouter: OpenRouterConfig{
			Model:   "meta-llama/llama-3.3-70b-instruct",
			BaseURL: defaultOpenRouterBaseURL,
		},
		Anthropic: AnthropicConfig{
			Model: "claude-haiku",
		},
		Gemini: GeminiConfig{
			Model: "gemini-flash",
		},
		Retry: RetryConfig{
			MaxAttempts: 1,
			InitialWait: 1 * time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2.0,
		},
		Temperature: 0.5,
		MaxTokens:   4096,
	}
}

// Override sets the model and base URL of the selected provider.
// Empty values keep the defaults.
func (c *Config) Override(model, baseURL string) {
	switch c.Provider {
	case ProviderGroq:
		setIf(&c.Groq.Model, model)
		setIf(&c.Groq.BaseURL, baseURL)
	case ProviderOpenAI:
		setIf(&c.OpenAI.Model, model)
		setIf(&c.OpenAI.BaseURL, baseURL)
	case ProviderOpenRouter:
		setIf(&c.OpenRouter.Model, model)
		setIf(&c.OpenRouter.BaseURL, baseURL)
	case ProviderAnthropic:
		setIf(&c.Anthropic.Model, model)
		setIf(&c.Anthropic.BaseURL, baseURL)
	case ProviderGemini:
		setIf(&c.Gemini.Model, model)
		setIf(&c.Gemini.BaseURL, baseURL)
	}
}

func setIf(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// Validate checks the provider name and request parameters.
func (c Config) Validate() error {
	switch c.Provider {
	case ProviderGroq, ProviderOpenAI, ProviderOpenRouter, ProviderAnthropic, ProviderGemini, ProviderMock:
	default:
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("temperature %.2f out of range [0, 2]", c.Temperature)
	}
	if c.MaxTokens < 0 {
		return fmt.Errorf("max tokens must not be negative")
	}
	if c.Retry.MaxAttempts < 1 {
		return fmt.Errorf("retry max attempts must be at least 1")
	}
	return nil
}
