// Package provider defines the text-generation backend contract and its
// implementations. Backends fail closed: network errors, timeouts and empty
// completions come back as errors, never as answers.
package provider

import (
	"context"
	"errors"
)

// Generator produces a completion for a prompt. Implementations honor the
// context deadline and apply their own request timeout.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// ErrEmptyCompletion marks a backend that answered with nothing usable.
var ErrEmptyCompletion = errors.New("backend returned empty completion")
