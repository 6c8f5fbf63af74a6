package sidekick

import "context"

// ChatProvider is the opaque reasoning capability consumed by the loop.
// Both the Worker's reasoning invocation and the Evaluator's grading
// invocation go through this interface; the loop awaits each call to
// completion before proceeding.
type ChatProvider interface {
	// Chat sends a conversation and returns a complete response.
	Chat(ctx context.Context, messages []Message, opts ...Option) (*Response, error)
}

// Provider identifies an AI provider.
type Provider string

// String returns the provider identifier.
func (p Provider) String() string { return string(p) }

// Supported providers.
const (
	ProviderAnthropic Provider = "anthropic"
	ProviderOpenAI    Provider = "openai"
	ProviderGoogle    Provider = "google"
)
