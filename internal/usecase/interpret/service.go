// Package interpret asks a completion model to re-read queries the rule-based
// extractor could not serve, and to phrase result narratives.
// Every call is best effort: failures are logged and reported as ok=false.
package interpret

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/matsearch/internal/domain"
	"github.com/kailas-cloud/matsearch/internal/domain/material"
	"github.com/kailas-cloud/matsearch/internal/logger"
)

// Completion parameters per call kind.
const (
	parseTemperature = 0.3
	parseMaxTokens   = 1000
	proseTemperature = 0.7
	proseMaxTokens   = 2048
)

// DefaultTimeout bounds a single completion call.
const DefaultTimeout = 30 * time.Second

// Service implements the interpreter on top of a chat completion provider.
type Service struct {
	completer domain.Completer
	timeout   time.Duration
	logger    *zap.Logger
}

// New creates an interpreter. A non-positive timeout uses DefaultTimeout.
func New(completer domain.Completer, timeout time.Duration, logger *zap.Logger) *Service {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Service{completer: completer, timeout: timeout, logger: logger}
}

// Reinterpret asks the model for structured criteria. ok is false when the call
// fails, no JSON can be recovered, or every field comes back empty.
func (s *Service) Reinterpret(ctx context.Context, text string) (material.Criteria, bool) {
	log := s.log(ctx)

	out, err := s.complete(ctx, domain.CompletionRequest{
		SystemPrompt: parseSystemPrompt,
		UserPrompt:   parseUserPrompt(text),
		Temperature:  parseTemperature,
		MaxTokens:    parseMaxTokens,
	})
	if err != nil {
		log.Warn("Reinterpretation failed", zap.String("query", text), zap.Error(err))
		return material.Criteria{}, false
	}

	span, ok := extractJSON(out)
	if !ok {
		log.Warn("No JSON object in completion", zap.String("query", text), zap.Int("response_len", len(out)))
		return material.Criteria{}, false
	}

	c, err := decodeCriteria(span)
	if err != nil {
		log.Warn("Malformed criteria JSON", zap.String("query", text), zap.Error(err))
		return material.Criteria{}, false
	}
	if c.IsEmpty() {
		log.Warn("Completion returned no usable fields", zap.String("query", text))
		return material.Criteria{}, false
	}

	c.RawQuery = text
	c.Finalize()
	log.Debug("Query reinterpreted", zap.String("query", text), zap.String("criteria", describe(&c)))
	return c, true
}

// ExplainNoResults asks the model why nothing matched and how to rephrase.
func (s *Service) ExplainNoResults(
	ctx context.Context, text string, original, reinterpreted *material.Criteria,
) (string, bool) {
	return s.prose(ctx, "explain", explainUserPrompt(text, original, reinterpreted))
}

// Summarize asks the model to introduce the results to the user.
func (s *Service) Summarize(
	ctx context.Context, query string, structured []material.Record, semantic []material.Product,
) (string, bool) {
	return s.prose(ctx, "summary", summaryUserPrompt(query, structured, semantic))
}

func (s *Service) prose(ctx context.Context, kind, prompt string) (string, bool) {
	out, err := s.complete(ctx, domain.CompletionRequest{
		SystemPrompt: assistantSystemPrompt,
		UserPrompt:   prompt,
		Temperature:  proseTemperature,
		MaxTokens:    proseMaxTokens,
	})
	if err != nil {
		s.log(ctx).Warn("Completion failed", zap.String("kind", kind), zap.Error(err))
		return "", false
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return "", false
	}
	return out, true
}

func (s *Service) complete(ctx context.Context, req domain.CompletionRequest) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	out, err := s.completer.Complete(ctx, req)
	if err != nil {
		return "", fmt.Errorf("complete: %w", err)
	}
	return out, nil
}

func (s *Service) log(ctx context.Context) *zap.Logger {
	return logger.FromContextOr(ctx, s.logger)
}

// decodeCriteria maps the model's JSON object onto criteria. Values may be
// null, "null", strings or numbers; anything unparseable is dropped.
func decodeCriteria(span string) (material.Criteria, error) {
	var raw map[string]any
	if err := json.Unmarshal([]byte(span), &raw); err != nil {
		return material.Criteria{}, fmt.Errorf("unmarshal: %w", err)
	}

	str := func(keys ...string) string {
		for _, k := range keys {
			if v := scalar(raw[k]); v != "" {
				return v
			}
		}
		return ""
	}

	c := material.Criteria{
		ItemCode:        strings.ToUpper(str("itemCode")),
		ItemNameKeyword: str("itemNameKeyword"),
		Category:        str("category", "productHierarchy3"),
		Function:        str("function"),
		BrandCode:       str("brandCode"),
		BuyerName:       str("buyerName"),
		BuyerCode:       str("buyerCode"),
	}
	if v, ok := material.ParsePrice(str("minPrice")); ok {
		c.MinPrice = material.Float(v)
	}
	if v, ok := material.ParsePrice(str("maxPrice")); ok {
		c.MaxPrice = material.Float(v)
	}
	if d, ok := material.ParseDate(str("startDate")); ok {
		c.StartDate = &d
	}
	if d, ok := material.ParseDate(str("endDate")); ok {
		c.EndDate = &d
	}
	return c, nil
}

// scalar renders a JSON scalar as trimmed text; null and "null" become empty.
func scalar(v any) string {
	var s string
	switch x := v.(type) {
	case string:
		s = x
	case float64:
		s = strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		s = strconv.FormatBool(x)
	default:
		return ""
	}
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "null") {
		return ""
	}
	return s
}
