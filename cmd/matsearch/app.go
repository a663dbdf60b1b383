package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/matsearch/internal/config"
	"github.com/kailas-cloud/matsearch/internal/db"
	dbRedis "github.com/kailas-cloud/matsearch/internal/db/redis"
	"github.com/kailas-cloud/matsearch/internal/domain"
	logpkg "github.com/kailas-cloud/matsearch/internal/logger"
	"github.com/kailas-cloud/matsearch/internal/metrics"
	"github.com/kailas-cloud/matsearch/internal/repository/catalog"
	"github.com/kailas-cloud/matsearch/internal/repository/embcache"
	"github.com/kailas-cloud/matsearch/internal/repository/vectorindex"
	openaiTransport "github.com/kailas-cloud/matsearch/internal/transport/openai"
	"github.com/kailas-cloud/matsearch/internal/usecase/chat"
	embeddinguc "github.com/kailas-cloud/matsearch/internal/usecase/embedding"
	"github.com/kailas-cloud/matsearch/internal/usecase/extract"
	"github.com/kailas-cloud/matsearch/internal/usecase/health"
	"github.com/kailas-cloud/matsearch/internal/usecase/ingest"
	"github.com/kailas-cloud/matsearch/internal/usecase/interpret"
	"github.com/kailas-cloud/matsearch/internal/usecase/orchestrator"
	"github.com/kailas-cloud/matsearch/internal/usecase/semantic"
	"github.com/kailas-cloud/matsearch/internal/usecase/structured"
)

// app is the composition root shared by every subcommand.
type app struct {
	env    string
	cfg    config.Config
	logger *zap.Logger

	store   *dbRedis.Store
	catalog *catalog.Store

	structured   *structured.Service
	semantic     *semantic.Service
	orchestrator *orchestrator.Service
	chat         *chat.Service
	ingest       *ingest.Service
	health       *health.Service
}

func newApp(ctx context.Context, env string) (*app, error) {
	cfg, err := config.Load(env)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	registerMetrics()

	a := &app{env: env, cfg: cfg, logger: logger}
	if err := a.build(ctx); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func registerMetrics() {
	metrics.RegisterHTTPMetrics()
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterCompletionMetrics()
	metrics.RegisterSearchMetrics()
	metrics.RegisterIngestMetrics()
}

func (a *app) build(ctx context.Context) error {
	cfg := a.cfg

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Username: cfg.Database.Username,
		Password: cfg.Database.Password,
		DB:       cfg.Database.DB,
	})
	if err != nil {
		return fmt.Errorf("create redis store: %w", err)
	}
	a.store = store
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		return fmt.Errorf("redis not ready: %w", err)
	}
	a.logger.Info("Connected to redis", zap.Strings("addrs", cfg.Database.Addrs))

	cat, err := catalog.New(catalog.Config{Path: cfg.Catalog.Path})
	if err != nil {
		return fmt.Errorf("open catalog: %w", err)
	}
	a.catalog = cat
	a.logger.Info("Opened catalog", zap.String("path", cfg.Catalog.Path))

	base := openaiTransport.NewEmbedder(&openaiTransport.Config{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Provider:   cfg.Embedding.Provider,
		Logger:     a.logger,
	})
	queryEmbedder, docEmbedder := buildEmbedders(base, store, &cfg, a.logger)

	index := vectorindex.New(store, vectorindex.Config{
		IndexName:    cfg.Index.Name,
		KeyPrefix:    cfg.Index.KeyPrefix,
		Algorithm:    db.VectorHNSW,
		Distance:     db.DistanceCosine,
		HNSWM:        cfg.Index.HNSWM,
		HNSWEFConstr: cfg.Index.HNSWEFConstruct,
	})

	a.structured = structured.New(cat, structured.Config{
		MaxResults: cfg.Search.MaxResults,
		WordLimit:  cfg.Search.WordLimit,
		Timeout:    time.Duration(cfg.Catalog.TimeoutSec) * time.Second,
	}, a.logger)
	a.semantic = semantic.New(queryEmbedder, index, semantic.Config{
		TopK:    cfg.Search.SemanticTopK,
		Timeout: time.Duration(cfg.Embedding.TimeoutSec) * time.Second,
	}, a.logger)

	extractor, err := extract.NewCached(extract.New(), cfg.Search.ExtractorCacheSize)
	if err != nil {
		return fmt.Errorf("create extractor: %w", err)
	}

	a.orchestrator = orchestrator.New(
		extractor, a.structured, a.semantic, a.buildInterpreter(), cfg.Search.SemanticTopK, a.logger,
	)
	a.chat = chat.New(a.orchestrator, a.logger)
	a.ingest = ingest.New(cat, index, docEmbedder, ingest.Config{
		PageSize:        cfg.Ingest.PageSize,
		ChunkSize:       cfg.Ingest.ChunkSize,
		Parallelism:     cfg.Ingest.Parallelism,
		ChunksPerSecond: cfg.Ingest.ChunksPerSecond,
		Dimensions:      cfg.Embedding.Dimensions,
	}, a.logger)
	a.health = health.New(health.DefaultCheckTimeout, a.logger,
		health.Component{Name: "redis", Pinger: store},
		health.Component{Name: "catalog", Pinger: cat},
		health.Component{Name: "embedding", Pinger: health.PingFunc(base.HealthCheck)},
	)
	return nil
}

// buildEmbedders assembles the two decorator chains over one provider:
// queries are OpenAI -> Instrumented -> Cached -> Instruction,
// catalog texts are OpenAI -> Instrumented -> Retrying -> Cached.
// Only ingest waits out rate limits; queries degrade instead.
func buildEmbedders(
	base *openaiTransport.Embedder,
	store *dbRedis.Store,
	cfg *config.Config,
	logger *zap.Logger,
) (query domain.Embedder, doc *embcache.CachedEmbedder) {
	provider, model := cfg.Embedding.Provider, cfg.Embedding.Model
	cacheCfg := embcache.Config{
		KeyPrefix: cfg.Index.KeyPrefix + model + ":",
		TTL:       time.Duration(cfg.Embedding.CacheTTLHours) * time.Hour,
	}

	instrumented := embeddinguc.NewInstrumentedEmbedder(base, provider, model, logger)

	query = embcache.New(instrumented, store, cacheCfg, metrics.EmbeddingCacheTotal, logger)
	if cfg.Embedding.QueryInstruction != "" {
		query = domain.NewInstructionEmbedder(query, cfg.Embedding.QueryInstruction)
	}

	retrying := embeddinguc.NewRetryingEmbedder(instrumented, provider, embeddinguc.RetryConfig{
		Attempts: cfg.Embedding.RetryAttempts,
		Wait:     time.Duration(cfg.Embedding.RetryWaitSec) * time.Second,
	}, logger)
	doc = embcache.New(retrying, store, cacheCfg, metrics.EmbeddingCacheTotal, logger)
	return query, doc
}

func (a *app) buildInterpreter() orchestrator.Interpreter {
	cc := a.cfg.Completion
	if !cc.Enabled {
		a.logger.Info("Completion disabled, model-backed fallbacks are off")
		return interpret.Noop{}
	}
	completer := openaiTransport.NewCompleter(&openaiTransport.CompleterConfig{
		APIKey:  cc.APIKey,
		BaseURL: cc.BaseURL,
		Model:   cc.Model,
		Logger:  a.logger,
	})
	a.logger.Info("Completion enabled", zap.String("model", cc.Model))
	return interpret.New(completer, time.Duration(cc.TimeoutSec)*time.Second, a.logger)
}

// Close releases connections and flushes the logger.
func (a *app) Close() {
	if a.catalog != nil {
		if err := a.catalog.Close(); err != nil {
			a.logger.Warn("Failed to close catalog", zap.Error(err))
		}
	}
	if a.store != nil {
		a.store.Close()
	}
	_ = a.logger.Sync()
}
