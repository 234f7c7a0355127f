package llm

import (
	"context"
	"errors"
)

// DefaultSystemMessage is used when a caller passes an empty one.
const DefaultSystemMessage = "You are a helpful assistant."

// ErrDisabled is returned by Disabled.
var ErrDisabled = errors.New("llm: no API key configured")

// Completer sends one prompt with a system message and returns the raw
// reply text.
type Completer interface {
	Complete(ctx context.Context, prompt, systemMessage string) (string, error)
}

// CompleterFunc adapts a function to Completer.
type CompleterFunc func(ctx context.Context, prompt, systemMessage string) (string, error)

func (f CompleterFunc) Complete(ctx context.Context, prompt, systemMessage string) (string, error) {
	return f(ctx, prompt, systemMessage)
}

// Disabled fails every call, which pushes callers onto their fallbacks.
type Disabled struct{}

func (Disabled) Complete(context.Context, string, string) (string, error) {
	return "", ErrDisabled
}
