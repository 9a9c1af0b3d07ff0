package llm

import (
	"context"
	"fmt"

	"github.com/eadteachers/teachkit/internal/logger"
	"github.com/eadteachers/teachkit/internal/store"
)

// NewProvider creates a Provider from configuration.
// The returned provider is wrapped with timeout, retry, and logging
// middleware. keys is consulted on every request; it may be nil only for
// the mock provider.
func NewProvider(ctx context.Context, cfg Config, keys KeySource, events store.EventRepo, log *logger.Logger) (Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.Nop()
	}

	var base Provider
	var err error

	switch cfg.Provider {
	case ProviderGroq:
		base, err = NewGroqProvider(cfg.Groq, keys)
	case ProviderOpenAI:
		base, err = NewOpenAIProvider(cfg.OpenAI, keys)
	case ProviderOpenRouter:
		base, err = NewOpenRouterProvider(cfg.OpenRouter, keys)
	case ProviderAnthropic:
		base, err = NewAnthropicProvider(cfg.Anthropic, keys)
	case ProviderGemini:
		base, err = NewGeminiProvider(cfg.Gemini, keys)
	case ProviderMock:
		base = NewMockProvider()
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	// caller → timeout → retry → logging → base
	var p Provider = base
	if events != nil {
		p = WithLogging(p, cfg.Provider, events, log)
	}
	p = WithRetry(p, cfg.Retry, log)
	if cfg.Timeout > 0 {
		p = WithTimeout(p, cfg.Timeout)
	}

	return p, nil
}
