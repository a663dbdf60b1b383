package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrInvalidRequest signals malformed caller input.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrVectorDimMismatch signals a vector dimension mismatch.
	ErrVectorDimMismatch = errors.New("vector dimension mismatch")

	// ErrRateLimited signals a rate limit hit.
	ErrRateLimited = errors.New("rate limited")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrCompletionProviderError signals a completion provider failure.
	ErrCompletionProviderError = errors.New("completion provider error")
	// ErrIndexUnavailable signals that the vector index does not exist or cannot be reached.
	ErrIndexUnavailable = errors.New("vector index unavailable")
)

// ProviderStatusError carries the HTTP status returned by an upstream model provider.
type ProviderStatusError struct {
	Status  int
	Message string
	Kind    error
}

func (e *ProviderStatusError) Error() string {
	return fmt.Sprintf("%s: status %d: %s", e.Kind.Error(), e.Status, e.Message)
}

func (e *ProviderStatusError) Unwrap() []error {
	if e.Status == 429 {
		return []error{e.Kind, ErrRateLimited}
	}
	return []error{e.Kind}
}

// NewProviderStatusError builds a provider error; a 429 also matches ErrRateLimited.
func NewProviderStatusError(kind error, status int, message string) error {
	return &ProviderStatusError{Status: status, Message: message, Kind: kind}
}
