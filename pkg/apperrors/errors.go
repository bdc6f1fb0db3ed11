// Package apperrors defines the error taxonomy shared across the pipeline.
package apperrors

import (
	"errors"
	"fmt"
)

var (
	ErrTableNotFound = errors.New("table not found")
	ErrNoTables      = errors.New("no tables available; upload data first")
)

// ValidationError indicates the synthesized SQL contained a forbidden
// construct. The plan is discarded and never executed.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("sql validation failed: %s", e.Reason)
}

// ExecutionError indicates delegated execution failed after the single
// repair attempt. SQL is attached for diagnosability.
type ExecutionError struct {
	SQL string
	Err error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("query execution failed: %v", e.Err)
}

func (e *ExecutionError) Unwrap() error { return e.Err }

// GenerationError indicates a synthesis path could not proceed (trend with
// no date column, distribution/comparison with no numeric column). It is
// surfaced explicitly rather than silently degraded.
type GenerationError struct {
	Reason      string
	Assumptions []string
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("query generation failed: %s", e.Reason)
}
