package perception

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockClient returns a canned response and records how it was called.
type mockClient struct {
	response string
	err      error

	lastSystem  string
	lastPrompt  string
	usedSystem  bool
	hadDeadline bool
}

func (m *mockClient) Complete(ctx context.Context, prompt string) (string, error) {
	_, m.hadDeadline = ctx.Deadline()
	m.lastPrompt = prompt
	m.usedSystem = false
	return m.response, m.err
}

func (m *mockClient) CompleteWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	_, m.hadDeadline = ctx.Deadline()
	m.lastSystem = systemPrompt
	m.lastPrompt = userPrompt
	m.usedSystem = true
	return m.response, m.err
}

func TestAdvisor_ProposeOrdersExtractsFromResponse(t *testing.T) {
	client := &mockClient{response: "Reasoning first.\n\nPARSABLE OUTPUT:\n{\"orders\": [\"A PAR - BUR\", \"F BRE H\"]}\n"}
	adv := NewAdvisor(client, DefaultProviderConfig("test-key"), nil)

	orders, ok, err := adv.ProposeOrders(context.Background(), "", "your orders?")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"A PAR - BUR", "F BRE H"}, orders)
	assert.Equal(t, "your orders?", client.lastPrompt)
	assert.False(t, client.usedSystem)
}

func TestAdvisor_ProposeOrdersUnparsableResponseIsAMiss(t *testing.T) {
	client := &mockClient{response: "I refuse to commit to anything this turn."}
	adv := NewAdvisor(client, DefaultProviderConfig("test-key"), nil)

	orders, ok, err := adv.ProposeOrders(context.Background(), "", "your orders?")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, orders)
}

func TestAdvisor_ProposeOrdersProviderErrorPropagates(t *testing.T) {
	provErr := errors.New("rate limited")
	client := &mockClient{err: provErr}
	adv := NewAdvisor(client, DefaultProviderConfig("test-key"), nil)

	_, _, err := adv.ProposeOrders(context.Background(), "", "your orders?")
	require.Error(t, err)
	assert.ErrorIs(t, err, provErr)
}

func TestAdvisor_SystemPromptRoutesToCompleteWithSystem(t *testing.T) {
	client := &mockClient{response: "PARSABLE OUTPUT:\n{\"orders\": [\"A MUN H\"]}"}
	adv := NewAdvisor(client, DefaultProviderConfig("test-key"), nil)

	orders, ok, err := adv.ProposeOrders(context.Background(), "You are Germany.", "your orders?")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"A MUN H"}, orders)
	assert.True(t, client.usedSystem)
	assert.Equal(t, "You are Germany.", client.lastSystem)
}

func TestAdvisor_ConfigTimeoutBoundsTheCall(t *testing.T) {
	client := &mockClient{response: "PARSABLE OUTPUT:\n{\"orders\": []}"}
	adv := NewAdvisor(client, ProviderConfig{Timeout: time.Minute}, nil)

	_, _, err := adv.ProposeOrders(context.Background(), "", "your orders?")
	require.NoError(t, err)
	assert.True(t, client.hadDeadline)
}

func TestAdvisor_ZeroTimeoutLeavesContextUnbounded(t *testing.T) {
	client := &mockClient{response: "PARSABLE OUTPUT:\n{\"orders\": []}"}
	adv := NewAdvisor(client, ProviderConfig{}, nil)

	_, _, err := adv.ProposeOrders(context.Background(), "", "your orders?")
	require.NoError(t, err)
	assert.False(t, client.hadDeadline)
}

func TestAdvisor_ProposeMessagesExtractsCandidates(t *testing.T) {
	client := &mockClient{response: `Here is my reply:
{{"message_type": "private", "recipient": "FRANCE", "content": "Truce in Burgundy?"}}`}
	adv := NewAdvisor(client, DefaultProviderConfig("test-key"), nil)

	cands, err := adv.ProposeMessages(context.Background(), "", "anything to say?")
	require.NoError(t, err)
	require.Len(t, cands, 1)
	assert.Equal(t, "private", *cands[0].MessageType)
	assert.Equal(t, "FRANCE", *cands[0].Recipient)
	assert.Equal(t, "Truce in Burgundy?", *cands[0].Content)
}

func TestDefaultProviderConfig(t *testing.T) {
	cfg := DefaultProviderConfig("test-key")

	assert.Equal(t, "test-key", cfg.APIKey)
	assert.Equal(t, "https://openrouter.ai/api/v1", cfg.BaseURL)
	assert.Equal(t, "openai/gpt-4o", cfg.Model)
	assert.Equal(t, 120*time.Second, cfg.Timeout)
}
