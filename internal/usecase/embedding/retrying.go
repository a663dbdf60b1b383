package embedding

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"

	"github.com/kailas-cloud/matsearch/internal/domain"
	"github.com/kailas-cloud/matsearch/internal/metrics"
)

// Retry defaults for rate-limited provider calls.
const (
	DefaultRetryAttempts = 3
	DefaultRetryWait     = 60 * time.Second
)

// RetryConfig controls the rate-limit retry policy.
type RetryConfig struct {
	Attempts int
	Wait     time.Duration
}

// RetryingEmbedder retries calls that fail with domain.ErrRateLimited using a constant backoff.
// Any other error is returned immediately.
type RetryingEmbedder struct {
	inner    domain.Embedder
	provider string
	cfg      RetryConfig
	logger   *zap.Logger
}

// NewRetryingEmbedder wraps inner with the rate-limit retry policy.
func NewRetryingEmbedder(inner domain.Embedder, provider string, cfg RetryConfig, logger *zap.Logger) *RetryingEmbedder {
	if cfg.Attempts <= 0 {
		cfg.Attempts = DefaultRetryAttempts
	}
	if cfg.Wait < 0 {
		cfg.Wait = DefaultRetryWait
	}
	return &RetryingEmbedder{inner: inner, provider: provider, cfg: cfg, logger: logger}
}

// Embed implements domain.Embedder.
func (r *RetryingEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	return retry(ctx, r, "embed", func() (domain.EmbeddingResult, error) {
		return r.inner.Embed(ctx, text)
	})
}

// BatchEmbed implements domain.BatchEmbedder; the whole batch is retried as a unit.
func (r *RetryingEmbedder) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	if len(texts) == 0 {
		return domain.BatchEmbeddingResult{}, nil
	}
	return retry(ctx, r, "batch embed", func() (domain.BatchEmbeddingResult, error) {
		return domain.EmbedBatch(ctx, r.inner, texts)
	})
}

func retry[T any](ctx context.Context, r *RetryingEmbedder, op string, call func() (T, error)) (T, error) {
	attempt := 0
	res, err := backoff.Retry(ctx, func() (T, error) {
		attempt++
		v, err := call()
		if err == nil {
			return v, nil
		}
		if !errors.Is(err, domain.ErrRateLimited) {
			return v, backoff.Permanent(err)
		}
		if attempt < r.cfg.Attempts {
			metrics.EmbeddingRetriesTotal.WithLabelValues(r.provider).Inc()
			r.logger.Warn("Embedding rate limited, retrying",
				zap.String("provider", r.provider),
				zap.String("op", op),
				zap.Int("attempt", attempt),
				zap.Duration("wait", r.cfg.Wait),
			)
		}
		return v, err
	},
		backoff.WithBackOff(backoff.NewConstantBackOff(r.cfg.Wait)),
		backoff.WithMaxTries(uint(r.cfg.Attempts)),
	)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("%s after %d attempt(s): %w", op, attempt, err)
	}
	return res, nil
}
