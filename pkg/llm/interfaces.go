// Package llm provides the OpenAI-compatible reasoning-engine client used
// by the analysis orchestrator.
package llm

import "context"

// ReasoningClient is the contract the orchestrator depends on. The
// concrete client is constructor-injected so tests can substitute a
// deterministic stub; the core never instantiates transport clients
// internally.
type ReasoningClient interface {
	// Complete generates a single chat completion from a system prompt and
	// a user prompt at the given sampling temperature.
	Complete(ctx context.Context, systemPrompt, userPrompt string, temperature float64) (string, error)

	// GetModel returns the configured model name, for response metadata.
	GetModel() string
}

// Ensure Client implements ReasoningClient at compile time.
var _ ReasoningClient = (*Client)(nil)
