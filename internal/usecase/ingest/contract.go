package ingest

import (
	"context"

	"github.com/kailas-cloud/matsearch/internal/domain"
	"github.com/kailas-cloud/matsearch/internal/domain/material"
)

// Catalog is the product master source.
type Catalog interface {
	DeriveProducts(ctx context.Context) (int64, error)
	ListProducts(ctx context.Context, offset, limit int) ([]material.Product, error)
	SetEmbeddingHash(ctx context.Context, uid, hash string) error
}

// Index stores product vectors under persisted numeric ids.
type Index interface {
	CollectionExists(ctx context.Context) (bool, error)
	CreateCollection(ctx context.Context, dim int) error
	AssignID(ctx context.Context, productUID string) (uint64, error)
	Upsert(ctx context.Context, id uint64, vector []float32, product *material.Product) error
}

// Embedder vectorizes a chunk of product texts in one call.
type Embedder interface {
	BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error)
}
