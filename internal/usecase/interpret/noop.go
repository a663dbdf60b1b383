package interpret

import (
	"context"

	"github.com/kailas-cloud/matsearch/internal/domain/material"
)

// Noop is the interpreter used when no completion provider is configured. It always reports failure.
type Noop struct{}

// Reinterpret implements the interpreter contract.
func (Noop) Reinterpret(context.Context, string) (material.Criteria, bool) {
	return material.Criteria{}, false
}

// ExplainNoResults implements the interpreter contract.
func (Noop) ExplainNoResults(context.Context, string, *material.Criteria, *material.Criteria) (string, bool) {
	return "", false
}

// Summarize implements the interpreter contract.
func (Noop) Summarize(context.Context, string, []material.Record, []material.Product) (string, bool) {
	return "", false
}
