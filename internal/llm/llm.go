// Package llm wraps hosted language model calls behind a small interface
// with structured error classification.
package llm

import "context"

// Client generates text from a prompt.
type Client interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Close() error
}

// Kind classifies a generation failure. Callers branch on the kind instead
// of inspecting error message text.
type Kind string

const (
	// KindTransient covers 5xx-like failures worth retrying later.
	KindTransient Kind = "transient"
	// KindPermanent covers 4xx-like failures that will not succeed on retry.
	KindPermanent Kind = "permanent"
	// KindConnectivity covers transport failures before any HTTP status.
	KindConnectivity Kind = "connectivity"
)

// Error is a classified generation failure.
type Error struct {
	Kind Kind
	Code int
	Err  error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return string(e.Kind) + ": " + e.Err.Error()
	}
	return string(e.Kind)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the classification of err, or KindConnectivity for
// unclassified errors.
func KindOf(err error) Kind {
	if e, ok := err.(*Error); ok {
		return e.Kind
	}
	return KindConnectivity
}
