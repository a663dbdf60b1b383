package structured

import (
	"context"

	"github.com/kailas-cloud/matsearch/internal/domain/material"
)

// Catalog defines the read contract of the catalog store.
type Catalog interface {
	FindByItemCode(ctx context.Context, itemCode string) ([]material.Record, error)
	SearchItemName(ctx context.Context, keyword string, limit int) ([]material.Record, error)
	FindByCategory(ctx context.Context, category string, limit int) ([]material.Record, error)
	FindByFunction(ctx context.Context, function string, limit int) ([]material.Record, error)
	FindByBrand(ctx context.Context, brand string, limit int) ([]material.Record, error)
	SearchCombined(ctx context.Context, c *material.Criteria, limit int) ([]material.Record, error)
	SearchAllKeywords(ctx context.Context, keywords []string, limit int) ([]material.Record, error)
	FullText(ctx context.Context, term string, limit int) ([]material.Record, error)
	DistinctCategories(ctx context.Context) ([]string, error)
}
