package chat

import (
	"context"

	"github.com/kailas-cloud/matsearch/internal/usecase/orchestrator"
)

// Searcher runs the search pipeline for one message.
type Searcher interface {
	RunSearch(ctx context.Context, query string) orchestrator.Result
}
