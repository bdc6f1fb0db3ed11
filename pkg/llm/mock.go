package llm

import "context"

// MockClient is a configurable mock for testing LLM functionality.
// Set the function fields to control behavior in tests.
type MockClient struct {
	// GenerateSQLFunc is called when GenerateSQL is invoked.
	// If nil, returns an empty string and nil error.
	GenerateSQLFunc func(ctx context.Context, prompt string, systemMessage string) (string, error)

	// ModelName is returned by Model. Defaults to "mock-model".
	ModelName string

	// Call tracking for verification
	GenerateSQLCalls int
}

// NewMockClient creates a new mock with sensible defaults.
func NewMockClient() *MockClient {
	return &MockClient{ModelName: "mock-model"}
}

// GenerateSQL implements SQLGenerator.
func (m *MockClient) GenerateSQL(ctx context.Context, prompt string, systemMessage string) (string, error) {
	m.GenerateSQLCalls++
	if m.GenerateSQLFunc != nil {
		return m.GenerateSQLFunc(ctx, prompt, systemMessage)
	}
	return "", nil
}

// Model implements SQLGenerator.
func (m *MockClient) Model() string {
	if m.ModelName == "" {
		return "mock-model"
	}
	return m.ModelName
}
