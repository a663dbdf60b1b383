// Package openai adapts OpenAI-compatible embedding and chat completion APIs
// to the domain Embedder and Completer contracts.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/kailas-cloud/matsearch/internal/domain"
)

func newClient(apiKey, baseURL string) *openai.Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return openai.NewClientWithConfig(cfg)
}

// classifyError maps a client error onto kind. Replies with an HTTP status become a
// domain.ProviderStatusError, so a 429 also matches domain.ErrRateLimited.
func classifyError(api string, kind, err error) error {
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		detail := extractDetail(reqErr.Body)
		if detail == "" {
			detail = string(reqErr.Body)
		}
		return fmt.Errorf("%s API: %w", api, domain.NewProviderStatusError(kind, reqErr.HTTPStatusCode, detail))
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%s API: %w", api, domain.NewProviderStatusError(kind, apiErr.HTTPStatusCode, apiErr.Message))
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s request: %w: %w", api, kind, err)
	}
	return fmt.Errorf("%s request failed: %w", api, kind)
}

// extractDetail reads the message of a JSON error body, either {"detail": "..."}
// or {"error": {"message": "..."}}.
func extractDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
		Error  struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(body, &parsed) != nil {
		return ""
	}
	if parsed.Detail != "" {
		return parsed.Detail
	}
	return parsed.Error.Message
}
