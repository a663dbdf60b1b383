package vectorindex

import (
	"github.com/kailas-cloud/matsearch/internal/db"
	"github.com/kailas-cloud/matsearch/internal/domain/material"
)

const (
	fieldVector        = "vector"
	fieldProductUID    = "product_uid"
	fieldItemCode      = "item_code"
	fieldItemName      = "item_name"
	fieldCategory      = "category"
	fieldFunction      = "function"
	fieldItemType      = "item_type"
	fieldModel         = "model"
	fieldPerformance   = "performance"
	fieldPerformance1  = "performance1"
	fieldMaterial      = "material"
	fieldBrandCode     = "brand_code"
	fieldUOM           = "uom"
	fieldEmbeddingHash = "embedding_hash"
)

// productFields are returned by KNN queries and read back by Resolve.
var productFields = []string{
	fieldProductUID, fieldItemCode, fieldItemName, fieldCategory, fieldFunction, fieldItemType,
	fieldModel, fieldPerformance, fieldPerformance1, fieldMaterial, fieldBrandCode, fieldUOM,
	fieldEmbeddingHash,
}

// buildHashFields flattens a product and its vector for HSET.
func buildHashFields(vector []float32, p *material.Product) map[string]string {
	return map[string]string{
		fieldVector:        string(db.EncodeVector(vector)),
		fieldProductUID:    p.UID,
		fieldItemCode:      p.ItemCode,
		fieldItemName:      p.ItemName,
		fieldCategory:      p.Category,
		fieldFunction:      p.Function,
		fieldItemType:      p.ItemType,
		fieldModel:         p.Model,
		fieldPerformance:   p.Performance,
		fieldPerformance1:  p.Performance1,
		fieldMaterial:      p.Material,
		fieldBrandCode:     p.BrandCode,
		fieldUOM:           p.UOM,
		fieldEmbeddingHash: p.EmbeddingHash,
	}
}

// parseProduct rebuilds a product from hash fields. Unknown fields are ignored.
func parseProduct(m map[string]string) material.Product {
	return material.Product{
		UID:           m[fieldProductUID],
		ItemCode:      m[fieldItemCode],
		ItemName:      m[fieldItemName],
		Category:      m[fieldCategory],
		Function:      m[fieldFunction],
		ItemType:      m[fieldItemType],
		Model:         m[fieldModel],
		Performance:   m[fieldPerformance],
		Performance1:  m[fieldPerformance1],
		Material:      m[fieldMaterial],
		BrandCode:     m[fieldBrandCode],
		UOM:           m[fieldUOM],
		EmbeddingHash: m[fieldEmbeddingHash],
	}
}
