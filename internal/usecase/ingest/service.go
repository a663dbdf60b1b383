// Package ingest embeds the product master and populates the vector index.
package ingest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/kailas-cloud/matsearch/internal/domain"
	dombatch "github.com/kailas-cloud/matsearch/internal/domain/batch"
	"github.com/kailas-cloud/matsearch/internal/domain/material"
	"github.com/kailas-cloud/matsearch/internal/logger"
	"github.com/kailas-cloud/matsearch/internal/metrics"
)

// Defaults for Config.
const (
	DefaultPageSize        = 100
	DefaultChunkSize       = 10
	DefaultParallelism     = 2
	DefaultChunksPerSecond = 1.0
)

// Config tunes a run.
type Config struct {
	// PageSize is the number of products read from the catalog at a time.
	PageSize int
	// ChunkSize is the number of texts per embedding call.
	ChunkSize       int
	Parallelism     int
	ChunksPerSecond float64
	// Dimensions is the expected vector size; zero takes it from the first embedding.
	Dimensions int
}

// Options override Config for a single run.
type Options struct {
	PageSize int
	// Force re-embeds products whose text hash is unchanged.
	Force bool
}

// Service runs vector ingest.
type Service struct {
	catalog Catalog
	index   Index
	embed   Embedder
	cfg     Config
	logger  *zap.Logger

	mu         sync.Mutex
	indexReady bool
}

// New creates an ingest service.
func New(catalog Catalog, index Index, embed Embedder, cfg Config, logger *zap.Logger) *Service {
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = DefaultChunkSize
	}
	if cfg.Parallelism <= 0 {
		cfg.Parallelism = DefaultParallelism
	}
	if cfg.ChunksPerSecond <= 0 {
		cfg.ChunksPerSecond = DefaultChunksPerSecond
	}
	return &Service{catalog: catalog, index: index, embed: embed, cfg: cfg, logger: logger}
}

// Run refreshes the product master from transactions, then embeds and stores every product.
// Chunks succeed or fail independently; only catalog and index setup failures abort the run.
func (s *Service) Run(ctx context.Context, opts Options) (dombatch.Summary, error) {
	log := logger.FromContextOr(ctx, s.logger)
	start := time.Now()

	derived, err := s.catalog.DeriveProducts(ctx)
	if err != nil {
		return dombatch.Summary{}, fmt.Errorf("derive products: %w", err)
	}
	log.Info("Product master refreshed", zap.Int64("products", derived))

	if s.cfg.Dimensions > 0 {
		if err := s.ensureIndex(ctx, s.cfg.Dimensions); err != nil {
			return dombatch.Summary{}, err
		}
	}

	pageSize := s.cfg.PageSize
	if opts.PageSize > 0 {
		pageSize = opts.PageSize
	}
	limiter := rate.NewLimiter(rate.Limit(s.cfg.ChunksPerSecond), 1)

	var summary dombatch.Summary
	for offset := 0; ; offset += pageSize {
		products, err := s.catalog.ListProducts(ctx, offset, pageSize)
		if err != nil {
			return summary, fmt.Errorf("list products at %d: %w", offset, err)
		}
		if len(products) == 0 {
			break
		}

		summary.Add(s.processPage(ctx, limiter, products, opts.Force)...)
		log.Info("Ingest page done",
			zap.Int("offset", offset),
			zap.Int("processed", summary.TotalProcessed),
			zap.Int("stored", summary.TotalStored),
			zap.Int("skipped", summary.TotalSkipped),
		)

		if len(products) < pageSize {
			break
		}
	}

	log.Info("Ingest finished",
		zap.Int("processed", summary.TotalProcessed),
		zap.Int("stored", summary.TotalStored),
		zap.Int("skipped", summary.TotalSkipped),
		zap.Duration("elapsed", time.Since(start)),
	)
	return summary, nil
}

// processPage embeds the chunks of one page with bounded parallelism.
func (s *Service) processPage(
	ctx context.Context, limiter *rate.Limiter, products []material.Product, force bool,
) []dombatch.Result {
	chunks := split(products, s.cfg.ChunkSize)
	out := make([][]dombatch.Result, len(chunks))

	var g errgroup.Group
	g.SetLimit(s.cfg.Parallelism)
	for i, chunk := range chunks {
		if err := limiter.Wait(ctx); err != nil {
			for j := i; j < len(chunks); j++ {
				out[j] = skipAll(chunks[j], err)
			}
			break
		}
		g.Go(func() error {
			out[i] = s.processChunk(ctx, chunk, force)
			return nil
		})
	}
	_ = g.Wait()

	var results []dombatch.Result
	for _, r := range out {
		results = append(results, r...)
	}
	return results
}

func (s *Service) processChunk(ctx context.Context, products []material.Product, force bool) []dombatch.Result {
	start := time.Now()
	defer func() { metrics.IngestChunkDuration.Observe(time.Since(start).Seconds()) }()
	log := logger.FromContextOr(ctx, s.logger)

	results := make([]dombatch.Result, len(products))
	var (
		texts  []string
		hashes []string
		idx    []int
	)
	for i := range products {
		p := &products[i]
		text := EmbeddingText(p)
		if text == "" {
			results[i] = dombatch.NewSkipped(p.UID, nil)
			continue
		}
		hash := TextHash(text)
		if !force && hash == p.EmbeddingHash {
			results[i] = dombatch.NewSkipped(p.UID, nil)
			continue
		}
		texts = append(texts, text)
		hashes = append(hashes, hash)
		idx = append(idx, i)
	}

	if len(texts) > 0 {
		s.storeChunk(ctx, log, products, texts, hashes, idx, results)
	}

	for _, r := range results {
		metrics.IngestProductsTotal.WithLabelValues(string(r.Status())).Inc()
	}
	return results
}

func (s *Service) storeChunk(
	ctx context.Context, log *zap.Logger, products []material.Product,
	texts, hashes []string, idx []int, results []dombatch.Result,
) {
	emb, err := s.embed.BatchEmbed(ctx, texts)
	if err != nil {
		log.Warn("Chunk embedding failed, skipping chunk",
			zap.Int("texts", len(texts)),
			zap.String("first_uid", products[idx[0]].UID),
			zap.Error(err),
		)
		for _, i := range idx {
			results[i] = dombatch.NewSkipped(products[i].UID, err)
		}
		return
	}
	if len(emb.Embeddings) != len(texts) {
		err := fmt.Errorf("%w: got %d embeddings for %d texts",
			domain.ErrEmbeddingProviderError, len(emb.Embeddings), len(texts))
		for _, i := range idx {
			results[i] = dombatch.NewError(products[i].UID, err)
		}
		return
	}

	for k, i := range idx {
		p := &products[i]
		if err := s.store(ctx, p, emb.Embeddings[k], hashes[k]); err != nil {
			log.Warn("Product vector not stored", zap.String("product_uid", p.UID), zap.Error(err))
			results[i] = dombatch.NewError(p.UID, err)
			continue
		}
		results[i] = dombatch.NewOK(p.UID)
	}
}

// store writes one vector. A failed hash update only means the product is embedded again next run.
func (s *Service) store(ctx context.Context, p *material.Product, vector []float32, hash string) error {
	if s.cfg.Dimensions > 0 && len(vector) != s.cfg.Dimensions {
		return fmt.Errorf("%w: expected %d, got %d", domain.ErrVectorDimMismatch, s.cfg.Dimensions, len(vector))
	}
	if err := s.ensureIndex(ctx, len(vector)); err != nil {
		return err
	}

	id, err := s.index.AssignID(ctx, p.UID)
	if err != nil {
		return fmt.Errorf("assign id: %w", err)
	}
	p.EmbeddingHash = hash
	if err := s.index.Upsert(ctx, id, vector, p); err != nil {
		return fmt.Errorf("upsert vector %d: %w", id, err)
	}
	if err := s.catalog.SetEmbeddingHash(ctx, p.UID, hash); err != nil {
		logger.FromContextOr(ctx, s.logger).Warn("Embedding hash not saved",
			zap.String("product_uid", p.UID), zap.Error(err))
	}
	return nil
}

// ensureIndex creates the vector index once per service.
func (s *Service) ensureIndex(ctx context.Context, dim int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexReady {
		return nil
	}

	exists, err := s.index.CollectionExists(ctx)
	if err != nil {
		return fmt.Errorf("check vector index: %w", err)
	}
	if !exists {
		if err := s.index.CreateCollection(ctx, dim); err != nil {
			return fmt.Errorf("create vector index: %w", err)
		}
		logger.FromContextOr(ctx, s.logger).Info("Vector index created", zap.Int("dimensions", dim))
	}
	s.indexReady = true
	return nil
}

func split(products []material.Product, size int) [][]material.Product {
	var out [][]material.Product
	for start := 0; start < len(products); start += size {
		out = append(out, products[start:min(start+size, len(products))])
	}
	return out
}

func skipAll(products []material.Product, err error) []dombatch.Result {
	out := make([]dombatch.Result, len(products))
	for i := range products {
		out[i] = dombatch.NewSkipped(products[i].UID, err)
	}
	return out
}
