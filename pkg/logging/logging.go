// Package logging builds the application logger and sanitizes values before
// they reach log output.
package logging

import (
	"go.uber.org/zap"
)

// MaxQueryLogLength is the maximum length of a SQL query to log.
const MaxQueryLogLength = 200

// New constructs the root logger. Production config everywhere except the
// local environment, which gets the human-readable development encoder.
func New(env string) (*zap.Logger, error) {
	if env == "local" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// SanitizeQuery truncates a SQL query for logging. Synthesized queries can
// embed user-provided filter values, so full statements stay out of logs.
func SanitizeQuery(query string) string {
	if len(query) > MaxQueryLogLength {
		return query[:MaxQueryLogLength] + "..."
	}
	return query
}
