package semantic

import (
	"context"

	"github.com/kailas-cloud/matsearch/internal/domain"
	"github.com/kailas-cloud/matsearch/internal/domain/material"
)

// Index is the vector index plus its persisted id mapping.
type Index interface {
	Search(ctx context.Context, vector []float32, topK int) ([]material.Neighbor, error)
	Resolve(ctx context.Context, ids []uint64) (map[uint64]material.Product, error)
}

// Embedder vectorizes the query text.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
