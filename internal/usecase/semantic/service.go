// Package semantic finds products whose embedding is close to a query.
package semantic

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/matsearch/internal/domain/material"
	"github.com/kailas-cloud/matsearch/internal/logger"
)

// Defaults for Config.
const (
	DefaultTopK    = 10
	DefaultTimeout = 15 * time.Second
)

// Config tunes the semantic executor.
type Config struct {
	TopK    int
	Timeout time.Duration
}

// Hit is one resolved neighbor.
type Hit struct {
	ID      uint64
	Score   float64
	Product material.Product
}

// Service is the semantic search executor.
type Service struct {
	embed  Embedder
	index  Index
	cfg    Config
	logger *zap.Logger
}

// New creates a semantic search executor.
func New(embed Embedder, index Index, cfg Config, logger *zap.Logger) *Service {
	if cfg.TopK <= 0 {
		cfg.TopK = DefaultTopK
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Service{embed: embed, index: index, cfg: cfg, logger: logger}
}

// TopK is the configured default neighbor count.
func (s *Service) TopK() int { return s.cfg.TopK }

// SearchSimilar embeds text and returns the nearest products, best first.
// A failure at any stage is logged and yields an empty slice.
func (s *Service) SearchSimilar(ctx context.Context, text string, topK int) []Hit {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if topK <= 0 {
		topK = s.cfg.TopK
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()
	log := logger.FromContextOr(ctx, s.logger)

	emb, err := s.embed.Embed(ctx, text)
	if err != nil {
		log.Warn("Query embedding failed", zap.Error(err))
		return nil
	}
	if len(emb.Embedding) == 0 {
		log.Warn("Query embedding is empty")
		return nil
	}

	neighbors, err := s.index.Search(ctx, emb.Embedding, topK)
	if err != nil {
		log.Warn("Vector search failed", zap.Int("top_k", topK), zap.Error(err))
		return nil
	}
	if len(neighbors) == 0 {
		return nil
	}

	ids := make([]uint64, len(neighbors))
	for i, n := range neighbors {
		ids[i] = n.ID
	}
	products, err := s.index.Resolve(ctx, ids)
	if err != nil {
		log.Warn("Vector id resolution failed", zap.Int("ids", len(ids)), zap.Error(err))
		return nil
	}

	hits := make([]Hit, 0, len(neighbors))
	for _, n := range neighbors {
		p, ok := products[n.ID]
		if !ok {
			log.Debug("Vector id has no product", zap.Uint64("id", n.ID))
			continue
		}
		hits = append(hits, Hit{ID: n.ID, Score: n.Score, Product: p})
	}
	return hits
}
