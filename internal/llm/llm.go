package llm

import (
	"context"
	"errors"
)

// CompletionRequest is a single chat-completion exchange: a system instruction,
// a user message, and a cap on the generated length.
type CompletionRequest struct {
	System    string
	User      string
	MaxTokens int
}

// Client abstracts the completion-API provider.
type Client interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// ErrNotConfigured is returned when no provider credentials are present.
var ErrNotConfigured = errors.New("completion client not configured")

// DisabledClient is used when no provider is wired; every call fails fast.
type DisabledClient struct{}

// Complete returns ErrNotConfigured.
func (DisabledClient) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	_ = ctx
	_ = req
	return "", ErrNotConfigured
}
