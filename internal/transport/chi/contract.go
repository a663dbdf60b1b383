package chi

import (
	"context"

	dombatch "github.com/kailas-cloud/matsearch/internal/domain/batch"
	"github.com/kailas-cloud/matsearch/internal/domain/material"
	chatuc "github.com/kailas-cloud/matsearch/internal/usecase/chat"
	healthuc "github.com/kailas-cloud/matsearch/internal/usecase/health"
	ingestuc "github.com/kailas-cloud/matsearch/internal/usecase/ingest"
	semanticuc "github.com/kailas-cloud/matsearch/internal/usecase/semantic"
)

// ChatService answers chat messages.
type ChatService interface {
	Reply(ctx context.Context, req chatuc.Request) (chatuc.Response, error)
}

// MaterialService serves catalog lookups.
type MaterialService interface {
	History(ctx context.Context, itemCode string) (material.HistoryStats, error)
	Categories(ctx context.Context) ([]string, error)
}

// IngestService runs vector ingest.
type IngestService interface {
	Run(ctx context.Context, opts ingestuc.Options) (dombatch.Summary, error)
}

// SemanticService runs nearest-neighbor search.
type SemanticService interface {
	SearchSimilar(ctx context.Context, text string, topK int) []semanticuc.Hit
	TopK() int
}

// HealthService aggregates component health.
type HealthService interface {
	Check(ctx context.Context) healthuc.Report
}
