package llm

import (
	"context"
)

// Provider is the core abstraction for LLM interaction.
// Consumers call Generate with a Request and receive the model's free text.
type Provider interface {
	// Generate sends a prompt to the LLM and returns its reply. The reply is
	// untrusted text; callers extract and validate any structure themselves.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the model identifier this provider is configured to use.
	ModelID() string
}

// KeySource supplies the API key for a single request. Adapters call it on
// every Generate so key changes apply without rebuilding the provider.
type KeySource interface {
	APIKey(ctx context.Context) (string, error)
}

// Request describes what to send to the LLM.
type Request struct {
	// System is the system prompt. Generation and grading prompts are sent
	// here in full, with a short instruction as the user message.
	System string

	// Messages is the conversation history. Every call in teachkit is
	// single-turn, so this holds one user message.
	Messages []Message

	// MaxTokens is the maximum number of tokens in the response.
	MaxTokens int

	// Temperature controls randomness. Range: 0.0 - 1.0.
	Temperature float64
}

// Message represents a single message in the conversation.
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

// Response holds the LLM's output.
type Response struct {
	// Text is the generated reply, verbatim.
	Text string

	// Usage reports token consumption for this request.
	Usage Usage

	// Model is the actual model that served the request.
	Model string

	// StopReason indicates why generation stopped.
	// Normalized to: "end", "max_tokens", "error"
	StopReason string
}

// Usage tracks token consumption for a single request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// SingleTurn builds the common system-plus-one-user-message request.
func SingleTurn(system, user string, temperature float64, maxTokens int) Request {
	return Request{
		System:      system,
		Messages:    []Message{{Role: RoleUser, Content: user}},
		Temperature: temperature,
		MaxTokens:   maxTokens,
	}
}
