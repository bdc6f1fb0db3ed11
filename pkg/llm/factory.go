package llm

import (
	"fmt"

	"go.uber.org/zap"
)

// NewFromConfig builds the SQL generator selected by configuration.
// Returns (nil, nil) when no API key is configured: the caller then runs
// on the heuristic path only and tags plans with a bypass assumption.
func NewFromConfig(cfg *Config, logger *zap.Logger) (SQLGenerator, error) {
	if cfg == nil || cfg.APIKey == "" {
		logger.Info("no LLM credential configured, using rule-based SQL generation only")
		return nil, nil
	}

	switch cfg.Provider {
	case "", "openai":
		return NewClient(cfg, logger)
	case "anthropic":
		return NewAnthropicClient(cfg, logger)
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}
