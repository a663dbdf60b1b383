package orchestrator

import (
	"context"

	"github.com/kailas-cloud/matsearch/internal/domain/material"
	"github.com/kailas-cloud/matsearch/internal/usecase/semantic"
	"github.com/kailas-cloud/matsearch/internal/usecase/structured"
)

// Extractor turns query text into criteria without external calls.
type Extractor interface {
	Extract(text string) material.Criteria
}

// StructuredSearcher runs catalog searches.
type StructuredSearcher interface {
	Search(ctx context.Context, c *material.Criteria) structured.Result
	History(ctx context.Context, itemCode string) (material.HistoryStats, error)
}

// SemanticSearcher finds products by embedding similarity.
type SemanticSearcher interface {
	SearchSimilar(ctx context.Context, text string, topK int) []semantic.Hit
}

// Interpreter is the best-effort model-backed helper. Every method reports ok=false
// instead of failing.
type Interpreter interface {
	Reinterpret(ctx context.Context, text string) (material.Criteria, bool)
	ExplainNoResults(ctx context.Context, text string, original, reinterpreted *material.Criteria) (string, bool)
	Summarize(ctx context.Context, query string, records []material.Record, products []material.Product) (string, bool)
}
