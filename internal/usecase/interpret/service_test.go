package interpret

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/matsearch/internal/domain"
	"github.com/kailas-cloud/matsearch/internal/domain/material"
)

// --- Reinterpret ---

func TestReinterpret_Brand(t *testing.T) {
	svc, mc := newTestService(t, `Here you go: {"itemCode": null, "brandCode": "AET", "category": "null", "minPrice": null}`, nil)

	c, ok := svc.Reinterpret(context.Background(), "Show all products from AET")
	if !ok {
		t.Fatal("expected ok")
	}
	if c.BrandCode != "AET" || c.Category != "" {
		t.Errorf("unexpected criteria: %+v", c)
	}
	if c.SearchType != material.SearchBrand {
		t.Errorf("expected BRAND, got %q", c.SearchType)
	}
	if c.RawQuery != "Show all products from AET" {
		t.Errorf("raw query not kept: %q", c.RawQuery)
	}

	req := mc.requests[0]
	if req.Temperature != 0.3 || req.MaxTokens != 1000 {
		t.Errorf("unexpected parse parameters: %+v", req)
	}
	if !strings.Contains(req.UserPrompt, "Show all products from AET") {
		t.Errorf("query missing from prompt: %q", req.UserPrompt)
	}
}

func TestReinterpret_RangesAndLegacyCategoryKey(t *testing.T) {
	svc, _ := newTestService(t,
		`{"productHierarchy3": "Filters", "minPrice": "10", "maxPrice": 99.5, "startDate": "2024-01-01", "endDate": "bad"}`, nil)

	c, ok := svc.Reinterpret(context.Background(), "filters 10 to 99.5 since 2024")
	if !ok {
		t.Fatal("expected ok")
	}
	if c.Category != "Filters" {
		t.Errorf("expected category Filters, got %q", c.Category)
	}
	if c.MinPrice == nil || *c.MinPrice != 10 || c.MaxPrice == nil || *c.MaxPrice != 99.5 {
		t.Errorf("unexpected prices: %v %v", c.MinPrice, c.MaxPrice)
	}
	if c.StartDate == nil || !c.StartDate.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected start date: %v", c.StartDate)
	}
	if c.EndDate != nil {
		t.Errorf("unparseable end date must be dropped, got %v", c.EndDate)
	}
	if c.SearchType != material.SearchCombined {
		t.Errorf("expected COMBINED, got %q", c.SearchType)
	}
}

func TestReinterpret_ItemCodeUpperCased(t *testing.T) {
	svc, _ := newTestService(t, `{"itemCode": "ti00040"}`, nil)
	c, ok := svc.Reinterpret(context.Background(), "find ti00040")
	if !ok || c.ItemCode != "TI00040" || c.SearchType != material.SearchExactItemCode {
		t.Fatalf("unexpected result: %v %+v", ok, c)
	}
}

func TestReinterpret_Failures(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		err   error
	}{
		{"provider error", "", domain.ErrCompletionProviderError},
		{"no json", "I am not sure what you mean.", nil},
		{"all null", `{"itemCode": null, "brandCode": "null", "category": ""}`, nil},
		{"empty object", `{}`, nil},
		{"not an object", `{"a": }`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestService(t, tt.reply, tt.err)
			if c, ok := svc.Reinterpret(context.Background(), "???"); ok {
				t.Fatalf("expected failure, got %+v", c)
			}
		})
	}
}

func TestReinterpret_AppliesTimeout(t *testing.T) {
	mc := &mockCompleter{completeFn: func(ctx context.Context, _ domain.CompletionRequest) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}}
	svc := New(mc, 10*time.Millisecond, zap.NewNop())

	start := time.Now()
	if _, ok := svc.Reinterpret(context.Background(), "gloves"); ok {
		t.Fatal("expected failure on timeout")
	}
	if time.Since(start) > time.Second {
		t.Fatal("timeout not applied")
	}
}

// --- ExplainNoResults / Summarize ---

func TestExplainNoResults(t *testing.T) {
	svc, mc := newTestService(t, "  Try a broader keyword.  ", nil)
	original := material.Criteria{BrandCode: "AET"}

	got, ok := svc.ExplainNoResults(context.Background(), "Show all products from AET", &original, nil)
	if !ok || got != "Try a broader keyword." {
		t.Fatalf("unexpected result: %v %q", ok, got)
	}

	req := mc.requests[0]
	if req.Temperature != 0.7 || req.MaxTokens != 2048 {
		t.Errorf("unexpected prose parameters: %+v", req)
	}
	if !strings.Contains(req.UserPrompt, `brandCode="AET"`) {
		t.Errorf("original criteria missing from prompt: %q", req.UserPrompt)
	}
	if !strings.Contains(req.UserPrompt, "Expert suggested search criteria: none") {
		t.Errorf("missing reinterpretation should render as none: %q", req.UserPrompt)
	}
}

func TestExplainNoResults_Failure(t *testing.T) {
	svc, _ := newTestService(t, "", errors.New("boom"))
	if _, ok := svc.ExplainNoResults(context.Background(), "x", nil, nil); ok {
		t.Fatal("expected failure")
	}

	svc, _ = newTestService(t, "   ", nil)
	if _, ok := svc.ExplainNoResults(context.Background(), "x", nil, nil); ok {
		t.Fatal("blank reply must count as failure")
	}
}

func TestSummarize_ListsTopResults(t *testing.T) {
	svc, mc := newTestService(t, "Here are some gloves.", nil)

	records := make([]material.Record, 7)
	for i := range records {
		records[i] = material.Record{ItemName: "Glove", Model: "G-1"}
	}
	semantic := []material.Product{{ItemName: "Nitrile Glove", Material: "Nitrile"}, {}}

	got, ok := svc.Summarize(context.Background(), "gloves", records, semantic)
	if !ok || got != "Here are some gloves." {
		t.Fatalf("unexpected result: %v %q", ok, got)
	}

	prompt := mc.requests[0].UserPrompt
	if strings.Count(prompt, "Glove (Model: G-1)") != maxSummaryItems {
		t.Errorf("expected %d structured lines: %q", maxSummaryItems, prompt)
	}
	if !strings.Contains(prompt, "1. Nitrile Glove - Material: Nitrile") {
		t.Errorf("semantic line missing: %q", prompt)
	}
	if !strings.Contains(prompt, "2. N/A") {
		t.Errorf("empty name should render N/A: %q", prompt)
	}
}

// --- Noop ---

func TestNoop(t *testing.T) {
	var n Noop
	if _, ok := n.Reinterpret(context.Background(), "x"); ok {
		t.Error("Reinterpret must fail")
	}
	if _, ok := n.ExplainNoResults(context.Background(), "x", nil, nil); ok {
		t.Error("ExplainNoResults must fail")
	}
	if _, ok := n.Summarize(context.Background(), "x", nil, nil); ok {
		t.Error("Summarize must fail")
	}
}
