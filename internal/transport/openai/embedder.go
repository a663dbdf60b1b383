package openai

import (
	"context"
	"fmt"
	"slices"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/matsearch/internal/domain"
	"github.com/kailas-cloud/matsearch/internal/logger"
	"github.com/kailas-cloud/matsearch/internal/metrics"
)

// Config holds the embedding provider settings.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	// Dimensions asks the provider to shorten vectors; zero keeps the model default.
	Dimensions int
	User       string
	// Provider labels metrics and logs.
	Provider string
	Logger   *zap.Logger
}

// Embedder calls the /embeddings endpoint.
type Embedder struct {
	client *openai.Client
	cfg    Config
}

// NewEmbedder creates an embedding provider.
func NewEmbedder(cfg *Config) *Embedder {
	return &Embedder{client: newClient(cfg.APIKey, cfg.BaseURL), cfg: *cfg}
}

// Embed vectorises one text.
func (e *Embedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	resp, err := e.create(ctx, []string{text})
	if err != nil {
		return domain.EmbeddingResult{}, err
	}
	return domain.EmbeddingResult{
		Embedding:    resp.Data[0].Embedding,
		PromptTokens: resp.Usage.PromptTokens,
		TotalTokens:  resp.Usage.TotalTokens,
	}, nil
}

// BatchEmbed vectorises texts in one request. Results follow the input order
// whatever order the provider answers in.
func (e *Embedder) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	if len(texts) == 0 {
		return domain.BatchEmbeddingResult{}, nil
	}
	resp, err := e.create(ctx, texts)
	if err != nil {
		return domain.BatchEmbeddingResult{}, err
	}
	if len(resp.Data) != len(texts) {
		e.failed("count_mismatch")
		return domain.BatchEmbeddingResult{}, fmt.Errorf("got %d embeddings for %d texts: %w",
			len(resp.Data), len(texts), domain.ErrEmbeddingProviderError)
	}

	slices.SortFunc(resp.Data, func(a, b openai.Embedding) int { return a.Index - b.Index })
	out := domain.BatchEmbeddingResult{
		Embeddings:   make([][]float32, len(resp.Data)),
		PromptTokens: resp.Usage.PromptTokens,
		TotalTokens:  resp.Usage.TotalTokens,
	}
	for i := range resp.Data {
		out.Embeddings[i] = resp.Data[i].Embedding
	}
	return out, nil
}

// HealthCheck lists models, which costs no tokens.
func (e *Embedder) HealthCheck(ctx context.Context) error {
	if _, err := e.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

func (e *Embedder) create(ctx context.Context, input []string) (openai.EmbeddingResponse, error) {
	req := openai.EmbeddingRequest{
		Input:          input,
		Model:          openai.EmbeddingModel(e.cfg.Model),
		EncodingFormat: openai.EmbeddingEncodingFormatFloat,
		User:           e.cfg.User,
		Dimensions:     max(e.cfg.Dimensions, 0),
	}

	start := time.Now()
	resp, err := e.client.CreateEmbeddings(ctx, req)
	elapsed := time.Since(start)
	if err != nil {
		e.failed("api_error")
		logger.FromContextOr(ctx, e.cfg.Logger).Warn("Embedding API call failed",
			zap.String("provider", e.cfg.Provider),
			zap.Int("inputs", len(input)),
			zap.Duration("duration", elapsed),
			zap.Error(err),
		)
		return openai.EmbeddingResponse{}, classifyError("embedding", domain.ErrEmbeddingProviderError, err)
	}
	if len(resp.Data) == 0 {
		e.failed("empty_response")
		return openai.EmbeddingResponse{}, fmt.Errorf("empty embedding response: %w", domain.ErrEmbeddingProviderError)
	}

	provider, model := e.cfg.Provider, e.cfg.Model
	metrics.EmbeddingRequestsTotal.WithLabelValues(provider, model, "success").Inc()
	metrics.EmbeddingRequestDuration.WithLabelValues(provider, model).Observe(elapsed.Seconds())
	if resp.Usage.TotalTokens > 0 {
		metrics.EmbeddingTokensTotal.WithLabelValues(provider, model, "prompt").Add(float64(resp.Usage.PromptTokens))
		metrics.EmbeddingTokensTotal.WithLabelValues(provider, model, "total").Add(float64(resp.Usage.TotalTokens))
	}
	return resp, nil
}

func (e *Embedder) failed(kind string) {
	metrics.EmbeddingRequestsTotal.WithLabelValues(e.cfg.Provider, e.cfg.Model, "error").Inc()
	metrics.EmbeddingErrorsTotal.WithLabelValues(e.cfg.Provider, e.cfg.Model, kind).Inc()
}
