// Package llm provides clients for the optional LLM SQL-generation path.
package llm

import "context"

// SQLGenerator defines the interface for LLM-backed SQL generation.
// Use this interface for dependency injection to enable mocking in tests.
// The heuristic synthesizer must produce an equally well-formed plan when
// no generator is configured or when a call fails.
type SQLGenerator interface {
	// GenerateSQL sends a schema-grounded prompt and returns the raw model
	// response (which may include code fences around the SQL).
	GenerateSQL(ctx context.Context, prompt string, systemMessage string) (string, error)

	// Model returns the configured model name.
	Model() string
}

// Ensure implementations satisfy SQLGenerator at compile time.
var (
	_ SQLGenerator = (*Client)(nil)
	_ SQLGenerator = (*AnthropicClient)(nil)
	_ SQLGenerator = (*MockClient)(nil)
)
