// Package textgen provides the generative text/vision client used to
// turn task descriptions into plan text. The only automatic retry is a
// single attempt with a reduced image payload when the backend rejects
// an oversized request; every other failure is terminal for that
// request.
package textgen

import (
	"context"
	"errors"
)

// Options tune a single generation request.
type Options struct {
	MaxOutputTokens int32
	Temperature     float32
	TopP            float32
	TopK            float32
}

// DefaultOptions returns the generation settings the planning flow
// uses.
func DefaultOptions() Options {
	return Options{
		MaxOutputTokens: 1024,
		Temperature:     0.7,
		TopP:            0.95,
		TopK:            40,
	}
}

// Generator is the text/vision generation contract. image may be nil
// for text-only prompts.
type Generator interface {
	Generate(ctx context.Context, prompt string, opts Options, image []byte) (string, error)
}

// RecoverableError marks a failure the caller may retry once with a
// reduced payload.
type RecoverableError struct {
	err error
}

func (e *RecoverableError) Error() string { return e.err.Error() }
func (e *RecoverableError) Unwrap() error { return e.err }

// NewRecoverableError wraps an error as recoverable.
func NewRecoverableError(err error) error {
	return &RecoverableError{err: err}
}

// TerminalError marks a failure that must not be retried.
type TerminalError struct {
	err error
}

func (e *TerminalError) Error() string { return e.err.Error() }
func (e *TerminalError) Unwrap() error { return e.err }

// NewTerminalError wraps an error as terminal.
func NewTerminalError(err error) error {
	return &TerminalError{err: err}
}

// IsRecoverable reports whether the error allows the one bounded
// retry.
func IsRecoverable(err error) bool {
	var recoverable *RecoverableError
	return errors.As(err, &recoverable)
}
