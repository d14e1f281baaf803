// Package ai defines the generative model port used by identification and
// chat, and its provider implementations.
package ai

import (
	"context"
	"errors"
)

// ErrEmptyResponse is returned when a model produces no text.
var ErrEmptyResponse = errors.New("model returned empty response")

// Image is an inline image attached to a request.
type Image struct {
	Data     []byte
	MIMEType string
}

// Request is a single-turn generation request. Zero sampling values leave
// the provider default in place.
type Request struct {
	Prompt          string
	Image           *Image
	Temperature     float32
	TopP            float32
	MaxOutputTokens int
}

// Model generates text from a prompt and optional image.
type Model interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// ModelFunc adapts a function to the Model interface.
type ModelFunc func(ctx context.Context, req Request) (string, error)

// Generate calls f(ctx, req).
func (f ModelFunc) Generate(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}
