// Package structured runs the tiered catalog search for extracted criteria.
package structured

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/kailas-cloud/matsearch/internal/domain"
	"github.com/kailas-cloud/matsearch/internal/domain/material"
	"github.com/kailas-cloud/matsearch/internal/logger"
	"github.com/kailas-cloud/matsearch/internal/metrics"
)

// Strategy names the catalog query that produced a result.
type Strategy string

// Strategies in the order they are considered.
const (
	StrategyExactItemCode Strategy = "exact_item_code"
	StrategyKeywords      Strategy = "keywords"
	StrategyCombined      Strategy = "combined"
	StrategyCategory      Strategy = "category"
	StrategyFunction      Strategy = "function"
	StrategyBrand         Strategy = "brand"
	StrategyItemName      Strategy = "item_name"
	StrategyFullText      Strategy = "full_text"
	StrategyNone          Strategy = "none"
)

// Defaults for Config.
const (
	DefaultMaxResults = 100
	DefaultWordLimit  = 50
	DefaultTimeout    = 10 * time.Second
)

// Config tunes the executor.
type Config struct {
	MaxResults int
	// WordLimit caps each per-word query of the fuzzy name fallback.
	WordLimit int
	Timeout   time.Duration
}

// Result is the outcome of one structured search.
type Result struct {
	Records  []material.Record
	Strategy Strategy
	// Filtered is the number of records dropped by the price and date post-filters.
	Filtered int
}

// Service is the structured search executor.
type Service struct {
	catalog Catalog
	cfg     Config
	logger  *zap.Logger
}

// New creates a structured search executor.
func New(catalog Catalog, cfg Config, logger *zap.Logger) *Service {
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = DefaultMaxResults
	}
	if cfg.WordLimit <= 0 {
		cfg.WordLimit = DefaultWordLimit
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Service{catalog: catalog, cfg: cfg, logger: logger}
}

type attempt struct {
	strategy Strategy
	run      func(ctx context.Context) ([]material.Record, error)
}

// Search runs the first applicable strategy, one retry against the next field that is
// also set, and a full-text fallback. Price and date post-filters apply to everything
// except exact item code lookups. Store failures count as empty results.
func (s *Service) Search(ctx context.Context, c *material.Criteria) Result {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()
	log := logger.FromContextOr(ctx, s.logger)

	if c.HasItemCode() {
		records := s.run(ctx, log, attempt{StrategyExactItemCode, func(ctx context.Context) ([]material.Record, error) {
			return s.catalog.FindByItemCode(ctx, c.ItemCode)
		}})
		return s.finish(Result{Records: s.cap(records), Strategy: StrategyExactItemCode})
	}

	plan := s.plan(c)
	var (
		records  []material.Record
		strategy = StrategyNone
	)
	// the first applicable strategy plus one retry
	for _, a := range plan[:min(2, len(plan))] {
		if records = s.run(ctx, log, a); len(records) > 0 {
			strategy = a.strategy
			break
		}
	}

	if len(records) == 0 {
		if term := fullTextTerm(c); term != "" {
			records = s.run(ctx, log, attempt{StrategyFullText, func(ctx context.Context) ([]material.Record, error) {
				return s.catalog.FullText(ctx, term, s.cfg.MaxResults)
			}})
			if len(records) > 0 {
				strategy = StrategyFullText
			}
		}
	}

	res := Result{Strategy: strategy}
	if len(records) == 0 {
		return s.finish(res)
	}

	filtered := material.ApplyFilters(records, c)
	if filtered.PriceRemoved > 0 {
		metrics.FilterRemovedTotal.WithLabelValues("price").Add(float64(filtered.PriceRemoved))
	}
	if filtered.DateRemoved > 0 {
		metrics.FilterRemovedTotal.WithLabelValues("date").Add(float64(filtered.DateRemoved))
	}
	if len(filtered.Records) == 0 {
		log.Warn("Post-filters removed every record",
			zap.String("strategy", string(strategy)),
			zap.Int("before", len(records)),
			zap.Int("price_removed", filtered.PriceRemoved),
			zap.Int("date_removed", filtered.DateRemoved),
		)
	}

	res.Records = s.cap(filtered.Records)
	res.Filtered = filtered.PriceRemoved + filtered.DateRemoved
	return s.finish(res)
}

// plan lists the applicable strategies for c, most specific first.
func (s *Service) plan(c *material.Criteria) []attempt {
	limit := s.cfg.MaxResults
	var plan []attempt

	if len(c.Keywords) >= 2 {
		keywords := c.Keywords
		plan = append(plan, attempt{StrategyKeywords, func(ctx context.Context) ([]material.Record, error) {
			return s.catalog.SearchAllKeywords(ctx, keywords, limit)
		}})
	}
	if c.SearchType == material.SearchCombined || (c.SearchType == material.SearchNone && c.HasFilters()) {
		plan = append(plan, attempt{StrategyCombined, func(ctx context.Context) ([]material.Record, error) {
			return s.catalog.SearchCombined(ctx, c, limit)
		}})
	}
	if c.HasCategory() {
		plan = append(plan, attempt{StrategyCategory, func(ctx context.Context) ([]material.Record, error) {
			return s.catalog.FindByCategory(ctx, c.Category, limit)
		}})
	}
	if c.HasFunction() {
		plan = append(plan, attempt{StrategyFunction, func(ctx context.Context) ([]material.Record, error) {
			return s.catalog.FindByFunction(ctx, c.Function, limit)
		}})
	}
	if c.HasBrand() {
		plan = append(plan, attempt{StrategyBrand, func(ctx context.Context) ([]material.Record, error) {
			return s.catalog.FindByBrand(ctx, c.BrandCode, limit)
		}})
	}
	if c.HasItemNameKeyword() {
		plan = append(plan, attempt{StrategyItemName, func(ctx context.Context) ([]material.Record, error) {
			return s.searchItemName(ctx, c.ItemNameKeyword)
		}})
	}
	return plan
}

// searchItemName falls back to one query per word longer than two characters
// and unions the hits.
func (s *Service) searchItemName(ctx context.Context, keyword string) ([]material.Record, error) {
	records, err := s.catalog.SearchItemName(ctx, keyword, s.cfg.MaxResults)
	if err != nil || len(records) > 0 {
		return records, err
	}

	words := strings.Fields(keyword)
	if len(words) < 2 {
		return nil, nil
	}

	seen := make(map[string]struct{})
	var union []material.Record
	for _, w := range words {
		if utf8.RuneCountInString(w) <= 2 {
			continue
		}
		hits, err := s.catalog.SearchItemName(ctx, w, s.cfg.WordLimit)
		if err != nil {
			return union, err
		}
		for i := range hits {
			key := dedupKey(&hits[i])
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			union = append(union, hits[i])
		}
	}
	return union, nil
}

// dedupKey identifies a record by item code, then transaction number.
func dedupKey(r *material.Record) string {
	if code := strings.ToUpper(strings.TrimSpace(r.ItemCode)); code != "" {
		return "code:" + code
	}
	if r.TxNo != "" {
		return "tx:" + r.TxNo
	}
	return fmt.Sprintf("id:%d", r.ID)
}

// fullTextTerm picks the most specific remaining field, else the raw query.
func fullTextTerm(c *material.Criteria) string {
	for _, v := range []string{
		c.ItemNameKeyword, c.Category, c.Function, c.BrandCode, c.BuyerName, c.BuyerCode, c.RawQuery,
	} {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func (s *Service) run(ctx context.Context, log *zap.Logger, a attempt) []material.Record {
	records, err := a.run(ctx)
	if err != nil {
		log.Warn("Catalog query failed",
			zap.String("strategy", string(a.strategy)),
			zap.Error(err),
		)
		return nil
	}
	return records
}

func (s *Service) cap(records []material.Record) []material.Record {
	if len(records) > s.cfg.MaxResults {
		return records[:s.cfg.MaxResults]
	}
	return records
}

func (s *Service) finish(res Result) Result {
	metrics.SearchStrategyTotal.WithLabelValues(string(res.Strategy)).Inc()
	return res
}

// History aggregates every transaction of one item code.
func (s *Service) History(ctx context.Context, itemCode string) (material.HistoryStats, error) {
	itemCode = strings.ToUpper(strings.TrimSpace(itemCode))
	if itemCode == "" {
		return material.HistoryStats{}, fmt.Errorf("item code is required: %w", domain.ErrInvalidRequest)
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	records, err := s.catalog.FindByItemCode(ctx, itemCode)
	if err != nil {
		return material.HistoryStats{}, fmt.Errorf("find %s: %w", itemCode, err)
	}
	if len(records) == 0 {
		return material.HistoryStats{}, fmt.Errorf("item %s: %w", itemCode, domain.ErrNotFound)
	}
	return material.ComputeHistory(itemCode, records), nil
}

// Categories lists the distinct catalog categories.
func (s *Service) Categories(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	cats, err := s.catalog.DistinctCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("distinct categories: %w", err)
	}
	if cats == nil {
		cats = []string{}
	}
	return cats, nil
}
