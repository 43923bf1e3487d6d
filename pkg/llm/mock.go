package llm

import "context"

// MockReasoningClient is a configurable mock for testing analysis
// orchestration. Set CompleteFunc to control behavior in tests.
type MockReasoningClient struct {
	// CompleteFunc is called when Complete is invoked. If nil, Complete
	// returns an empty string and nil error.
	CompleteFunc func(ctx context.Context, systemPrompt, userPrompt string, temperature float64) (string, error)

	// Model is returned by GetModel. Defaults to "mock-model".
	Model string

	// CompleteCalls counts invocations, for verification.
	CompleteCalls int
	// Temperatures records the temperature of each invocation in order.
	Temperatures []float64
}

// NewMockReasoningClient creates a new mock with sensible defaults.
func NewMockReasoningClient() *MockReasoningClient {
	return &MockReasoningClient{Model: "mock-model"}
}

// Complete implements ReasoningClient.
func (m *MockReasoningClient) Complete(ctx context.Context, systemPrompt, userPrompt string, temperature float64) (string, error) {
	m.CompleteCalls++
	m.Temperatures = append(m.Temperatures, temperature)
	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, systemPrompt, userPrompt, temperature)
	}
	return "", nil
}

// GetModel implements ReasoningClient.
func (m *MockReasoningClient) GetModel() string {
	if m.Model == "" {
		return "mock-model"
	}
	return m.Model
}

var _ ReasoningClient = (*MockReasoningClient)(nil)
