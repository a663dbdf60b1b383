// Package orchestrator sequences the extractor, the catalog and vector searches and the
// model-backed fallbacks into one search call.
package orchestrator

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/matsearch/internal/domain/material"
	"github.com/kailas-cloud/matsearch/internal/logger"
	"github.com/kailas-cloud/matsearch/internal/metrics"
	"github.com/kailas-cloud/matsearch/internal/usecase/semantic"
	"github.com/kailas-cloud/matsearch/internal/usecase/structured"
)

// DefaultSemanticTopK is the neighbor count requested for every query.
const DefaultSemanticTopK = 10

// Source names where the returned records came from.
type Source string

// Record sources.
const (
	SourceStructured Source = "structured"
	SourceSemantic   Source = "semantic"
	SourceNone       Source = "none"
)

// Result is the outcome of one pipeline run.
type Result struct {
	Records []material.Record
	// Narrative is the user-facing answer.
	Narrative string
	// Description is a one-line caption for the record table.
	Description string

	Criteria      material.Criteria
	Reinterpreted *material.Criteria
	Strategy      structured.Strategy
	Source        Source
	SemanticHits  int
}

// Service is the search orchestrator.
type Service struct {
	extractor   Extractor
	structured  StructuredSearcher
	semantic    SemanticSearcher
	interpreter Interpreter
	topK        int
	logger      *zap.Logger
}

// New creates a search orchestrator. A non-positive topK uses DefaultSemanticTopK.
func New(
	extractor Extractor,
	structured StructuredSearcher,
	semantic SemanticSearcher,
	interpreter Interpreter,
	topK int,
	logger *zap.Logger,
) *Service {
	if topK <= 0 {
		topK = DefaultSemanticTopK
	}
	return &Service{
		extractor:   extractor,
		structured:  structured,
		semantic:    semantic,
		interpreter: interpreter,
		topK:        topK,
		logger:      logger,
	}
}

// RunSearch answers a free-text query. It never fails: when every collaborator is down
// the result is empty and carries a static narrative.
func (s *Service) RunSearch(ctx context.Context, query string) Result {
	log := logger.FromContextOr(ctx, s.logger)

	// The vector path is independent of the catalog path and always attempted.
	var hits []semantic.Hit
	var g errgroup.Group
	g.Go(func() error {
		hits = s.semantic.SearchSimilar(ctx, query, s.topK)
		stage("semantic", len(hits) > 0)
		return nil
	})

	criteria := s.extractor.Extract(query)
	res := Result{Criteria: criteria, Source: SourceNone}

	found := s.structured.Search(ctx, &criteria)
	stage("structured", len(found.Records) > 0)
	res.Strategy = found.Strategy

	var reinterpreted *material.Criteria
	if len(found.Records) == 0 {
		if llm, ok := s.interpreter.Reinterpret(ctx, query); ok {
			reinterpreted = &llm
			res.Reinterpreted = reinterpreted
			if !llm.Equal(&criteria) {
				found = s.structured.Search(ctx, &llm)
				stage("reinterpret", len(found.Records) > 0)
				if len(found.Records) > 0 {
					res.Strategy = found.Strategy
				}
			} else {
				stageOutcome("reinterpret", "unchanged")
			}
		} else {
			stageOutcome("reinterpret", "failed")
		}
	}

	_ = g.Wait()
	res.SemanticHits = len(hits)
	products := make([]material.Product, len(hits))
	for i := range hits {
		products[i] = hits[i].Product
	}

	if len(found.Records) == 0 && len(hits) == 0 {
		res.Records = []material.Record{}
		res.Description = NoResultsDescription
		if text, ok := s.interpreter.ExplainNoResults(ctx, query, &criteria, reinterpreted); ok {
			res.Narrative = text
			stageOutcome("explain", "hit")
		} else {
			res.Narrative = NoResultsNarrative
			stageOutcome("explain", "fallback")
		}
		log.Info("Search found nothing",
			zap.String("strategy", string(res.Strategy)),
			zap.Bool("reinterpreted", reinterpreted != nil),
		)
		return res
	}

	if len(found.Records) == 0 {
		res.Records = productRecords(products)
		res.Source = SourceSemantic
		stageOutcome("semantic_adopt", "hit")
	} else {
		res.Records = merge(found.Records, products)
		res.Source = SourceStructured
	}

	res.Description = recordsDescription(len(res.Records))
	res.Narrative = s.narrate(ctx, log, query, &criteria, found.Records, products, len(res.Records))

	log.Info("Search completed",
		zap.String("strategy", string(res.Strategy)),
		zap.String("source", string(res.Source)),
		zap.Int("structured", len(found.Records)),
		zap.Int("semantic", len(hits)),
		zap.Int("records", len(res.Records)),
	)
	return res
}

// narrate prefers item history stats, then a model summary, then a template.
func (s *Service) narrate(
	ctx context.Context, log *zap.Logger, query string, c *material.Criteria,
	records []material.Record, products []material.Product, total int,
) string {
	if c.HasItemCode() && len(records) > 0 {
		stats, err := s.structured.History(ctx, c.ItemCode)
		if err == nil {
			return historyNarrative(&stats)
		}
		log.Warn("Item history unavailable", zap.String("item_code", c.ItemCode), zap.Error(err))
	}

	if text, ok := s.interpreter.Summarize(ctx, query, records, products); ok {
		stageOutcome("summary", "hit")
		return text
	}
	stageOutcome("summary", "fallback")
	return foundNarrative(total)
}

// merge appends the products whose identity is not already among records.
func merge(records []material.Record, products []material.Product) []material.Record {
	out := make([]material.Record, 0, len(records)+len(products))
	seen := make(map[string]struct{}, len(records))
	for i := range records {
		if k := records[i].Key(); k != "" {
			seen[k] = struct{}{}
		}
		out = append(out, records[i])
	}
	for i := range products {
		r := products[i].ToRecord()
		k := r.Key()
		if k == "" {
			continue
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, r)
	}
	return out
}

func productRecords(products []material.Product) []material.Record {
	out := make([]material.Record, len(products))
	for i := range products {
		out[i] = products[i].ToRecord()
	}
	return out
}

func stage(name string, hit bool) {
	if hit {
		stageOutcome(name, "hit")
		return
	}
	stageOutcome(name, "miss")
}

func stageOutcome(name, outcome string) {
	metrics.SearchStageTotal.WithLabelValues(name, outcome).Inc()
}
