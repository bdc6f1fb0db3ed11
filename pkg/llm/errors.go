package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrorType classifies LLM failures for logging and retry decisions.
type ErrorType string

const (
	ErrorTypeTimeout     ErrorType = "timeout"
	ErrorTypeAuth        ErrorType = "auth"
	ErrorTypeRateLimited ErrorType = "rate_limited"
	ErrorTypeUnavailable ErrorType = "unavailable"
	ErrorTypeUnknown     ErrorType = "unknown"
)

// Error represents a structured LLM error with classification.
type Error struct {
	Type      ErrorType
	Message   string
	Retryable bool
	Cause     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// ClassifyError categorizes an error and returns a structured Error.
// Classification is string-based because both provider SDKs surface HTTP
// failures as formatted messages.
func ClassifyError(err error) *Error {
	if err == nil {
		return nil
	}

	var llmErr *Error
	if errors.As(err, &llmErr) {
		return llmErr
	}

	lower := strings.ToLower(err.Error())

	switch {
	case errors.Is(err, context.DeadlineExceeded) || strings.Contains(lower, "timeout") || strings.Contains(lower, "deadline"):
		return &Error{Type: ErrorTypeTimeout, Message: "request timed out", Retryable: true, Cause: err}
	case strings.Contains(lower, "401") || strings.Contains(lower, "unauthorized") || strings.Contains(lower, "invalid api key") || strings.Contains(lower, "authentication"):
		return &Error{Type: ErrorTypeAuth, Message: "authentication failed", Retryable: false, Cause: err}
	case strings.Contains(lower, "429") || strings.Contains(lower, "rate limit"):
		return &Error{Type: ErrorTypeRateLimited, Message: "rate limited", Retryable: true, Cause: err}
	case strings.Contains(lower, "502") || strings.Contains(lower, "503") || strings.Contains(lower, "connection refused"):
		return &Error{Type: ErrorTypeUnavailable, Message: "service unavailable", Retryable: true, Cause: err}
	default:
		return &Error{Type: ErrorTypeUnknown, Message: "llm request failed", Retryable: false, Cause: err}
	}
}
