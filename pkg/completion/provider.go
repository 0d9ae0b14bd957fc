// Package completion abstracts the text-completion service the workflow
// steps delegate to. Providers are constructed explicitly and injected;
// every step that consumes one carries a deterministic fallback for when the
// provider fails, so the drafting flow never hard-fails on a model outage.
package completion

import (
	"context"
	"errors"
)

var (
	// ErrEmptyCompletion means the provider exhausted its retries without
	// producing any text.
	ErrEmptyCompletion = errors.New("completion service returned no text")

	// ErrMalformedOutput means the provider's output could not be parsed as
	// structured data even after a stricter retry. Callers fall back to
	// their deterministic defaults.
	ErrMalformedOutput = errors.New("completion service returned malformed structured output")
)

// Request carries one completion call.
type Request struct {
	Prompt      string
	System      string
	Temperature float64
}

// Provider is the completion service contract. CompleteJSON decodes the
// model's output into out after stripping surrounding prose and markup; a
// final parse failure surfaces as ErrMalformedOutput, never a panic or a
// half-filled out.
type Provider interface {
	CompleteText(ctx context.Context, req Request) (string, error)
	CompleteJSON(ctx context.Context, req Request, out any) error
}
