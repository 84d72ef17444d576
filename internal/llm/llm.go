// Package llm abstracts the chat-completion providers used for resume analysis.
package llm

import (
	"context"
	"errors"
)

// Request is a single system+user exchange.
type Request struct {
	System string
	User   string
	// Temperature is left to the provider default when nil.
	Temperature *float32
	// JSON asks the provider to answer with a single JSON object.
	JSON bool
}

// Usage reports token accounting when the provider returns it.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Response is the raw text answer of a provider.
type Response struct {
	Content string
	Model   string
	Usage   *Usage
}

// Client is implemented by every provider.
type Client interface {
	Complete(ctx context.Context, req Request) (Response, error)
	Model() string
}

// ErrDisabled is returned by DisabledClient.
var ErrDisabled = errors.New("llm provider disabled")

// DisabledClient always fails, which makes callers use their fallback path.
type DisabledClient struct{}

// Complete returns ErrDisabled.
func (DisabledClient) Complete(ctx context.Context, req Request) (Response, error) {
	_ = req
	if err := ctx.Err(); err != nil {
		return Response{}, err
	}
	return Response{}, ErrDisabled
}

// Model returns "none".
func (DisabledClient) Model() string { return "none" }

// Float32 returns a pointer to v, for Request.Temperature.
func Float32(v float32) *float32 { return &v }
