// Package perception turns raw LLM output into typed game artifacts.
// The model is never trusted to emit clean JSON: every entry point here
// assumes prose, markdown fences, partial objects, or nothing usable at all,
// and recovers what it can through an ordered cascade of strategies.
package perception

import (
	"context"
	"time"
)

// LLMClient is the provider boundary: given a prompt, produce raw text or
// fail. Network transport, authentication, rate limiting, and provider
// selection all live behind this interface and are not this package's
// concern. Everything downstream operates on the returned text only.
type LLMClient interface {
	Complete(ctx context.Context, prompt string) (string, error)
	CompleteWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// ProviderConfig carries the credentials and endpoint for a provider
// implementation. Constructors take this struct explicitly; nothing in this
// package reads ambient process state.
type ProviderConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// DefaultProviderConfig returns sensible defaults for the given key.
func DefaultProviderConfig(apiKey string) ProviderConfig {
	return ProviderConfig{
		APIKey:  apiKey,
		BaseURL: "https://openrouter.ai/api/v1",
		Model:   "openai/gpt-4o",
		Timeout: 120 * time.Second,
	}
}
