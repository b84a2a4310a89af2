package perception

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Advisor drives a prompt through the provider boundary and recovers the
// proposed payload from whatever text comes back. It owns the only
// I/O-bound suspension in this package; everything downstream of the raw
// response is the pure extraction cascade.
type Advisor struct {
	client LLMClient
	cfg    ProviderConfig
	ex     *Extractor
	log    *zap.Logger
}

// NewAdvisor wraps client with the extraction cascade. A nil logger is
// replaced with a no-op logger.
func NewAdvisor(client LLMClient, cfg ProviderConfig, log *zap.Logger) *Advisor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Advisor{client: client, cfg: cfg, ex: NewExtractor(log), log: log}
}

// ProposeOrders obtains a completion for prompt and extracts the proposed
// order strings. ok is false when the provider answered but nothing
// parsable came back, which callers resolve to a full fallback. An error
// means the provider call itself failed.
func (a *Advisor) ProposeOrders(ctx context.Context, systemPrompt, prompt string) ([]string, bool, error) {
	raw, err := a.complete(ctx, systemPrompt, prompt)
	if err != nil {
		return nil, false, fmt.Errorf("order proposal: %w", err)
	}
	orders, ok := a.ex.Orders(raw)
	return orders, ok, nil
}

// ProposeMessages obtains a completion for prompt and extracts message
// candidates. An empty slice is a normal outcome, not an error.
func (a *Advisor) ProposeMessages(ctx context.Context, systemPrompt, prompt string) ([]MessageCandidate, error) {
	raw, err := a.complete(ctx, systemPrompt, prompt)
	if err != nil {
		return nil, fmt.Errorf("message proposal: %w", err)
	}
	return a.ex.Messages(raw), nil
}

func (a *Advisor) complete(ctx context.Context, systemPrompt, prompt string) (string, error) {
	if a.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.cfg.Timeout)
		defer cancel()
	}
	if systemPrompt != "" {
		return a.client.CompleteWithSystem(ctx, systemPrompt, prompt)
	}
	return a.client.Complete(ctx, prompt)
}
