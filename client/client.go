package client

import (
	"context"
	"fmt"
	"sync"

	ai "github.com/codypharm/pharma-sidekick"
	"github.com/codypharm/pharma-sidekick/provider/anthropic"
	"github.com/codypharm/pharma-sidekick/provider/google"
	"github.com/codypharm/pharma-sidekick/provider/openai"
)

// APIKeys holds API keys for different providers.
// Only configure keys for providers you intend to use.
type APIKeys struct {
	Anthropic string
	OpenAI    string
	Google    string
}

// Models holds the default chat model per provider. Empty fields fall
// back to each provider's built-in default.
type Models struct {
	Anthropic string
	OpenAI    string
	Google    string
}

// Config holds configuration for creating a unified client.
type Config struct {
	APIKeys APIKeys
	Models  Models
}

// ErrMissingAPIKey is returned when a provider is requested but no API
// key is configured for it.
type ErrMissingAPIKey struct {
	Provider string
}

func (e *ErrMissingAPIKey) Error() string {
	return fmt.Sprintf("no API key configured for %s", e.Provider)
}

// ErrUnknownProvider is returned for provider names the client does not
// recognize.
type ErrUnknownProvider struct {
	Provider string
}

func (e *ErrUnknownProvider) Error() string {
	return fmt.Sprintf("unknown provider %q", e.Provider)
}

// Client constructs and caches chat providers. Provider clients are
// lazily initialized when first requested.
type Client struct {
	apiKeys APIKeys
	models  Models

	mu              sync.Mutex
	anthropicClient *anthropic.Client
	openaiClient    *openai.Client
	googleClient    *google.Client
}

// New creates a unified client with the given configuration.
func New(cfg Config) *Client {
	return &Client{
		apiKeys: cfg.APIKeys,
		models:  cfg.Models,
	}
}

// ChatProvider returns the chat provider for the given provider name,
// initializing it on first use.
func (c *Client) ChatProvider(ctx context.Context, provider ai.Provider) (ai.ChatProvider, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch provider {
	case ai.ProviderAnthropic:
		if c.anthropicClient == nil {
			if c.apiKeys.Anthropic == "" {
				return nil, &ErrMissingAPIKey{Provider: provider.String()}
			}
			var opts []anthropic.ClientOption
			if c.models.Anthropic != "" {
				opts = append(opts, anthropic.WithModel(c.models.Anthropic))
			}
			c.anthropicClient = anthropic.New(c.apiKeys.Anthropic, opts...)
		}
		return c.anthropicClient, nil

	case ai.ProviderOpenAI:
		if c.openaiClient == nil {
			if c.apiKeys.OpenAI == "" {
				return nil, &ErrMissingAPIKey{Provider: provider.String()}
			}
			var opts []openai.ClientOption
			if c.models.OpenAI != "" {
				opts = append(opts, openai.WithModel(c.models.OpenAI))
			}
			c.openaiClient = openai.New(c.apiKeys.OpenAI, opts...)
		}
		return c.openaiClient, nil

	case ai.ProviderGoogle:
		if c.googleClient == nil {
			if c.apiKeys.Google == "" {
				return nil, &ErrMissingAPIKey{Provider: provider.String()}
			}
			var opts []google.ClientOption
			if c.models.Google != "" {
				opts = append(opts, google.WithModel(c.models.Google))
			}
			client, err := google.New(ctx, c.apiKeys.Google, opts...)
			if err != nil {
				return nil, fmt.Errorf("failed to initialize Google client: %w", err)
			}
			c.googleClient = client
		}
		return c.googleClient, nil

	default:
		return nil, &ErrUnknownProvider{Provider: provider.String()}
	}
}
