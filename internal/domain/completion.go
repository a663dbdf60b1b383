package domain

import "context"

// CompletionRequest is a single-turn chat completion call.
type CompletionRequest struct {
	SystemPrompt string
	UserPrompt   string
	Temperature  float32
	MaxTokens    int
}

// Completer produces free text from a prompt pair.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}
