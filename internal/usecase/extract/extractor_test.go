package extract

import (
	"testing"
	"time"

	"github.com/kailas-cloud/matsearch/internal/domain/material"
)

func fixedClock() time.Time { return time.Date(2025, time.June, 15, 9, 30, 0, 0, time.UTC) }

func TestExtract(t *testing.T) {
	e := New(WithClock(fixedClock))

	tests := []struct {
		name  string
		query string
		want  material.Criteria
	}{
		{
			name:  "empty",
			query: "   ",
			want:  material.Criteria{SearchType: material.SearchNone},
		},
		{
			name:  "item code with brand",
			query: "TI00040 + AET",
			want:  material.Criteria{ItemCode: "TI00040", BrandCode: "AET", SearchType: material.SearchCombined},
		},
		{
			name:  "price range only",
			query: "unit cost 0-100",
			want:  material.Criteria{MinPrice: material.Float(0), MaxPrice: material.Float(100), SearchType: material.SearchNone},
		},
		{
			name:  "price upper bound",
			query: "price under 50",
			want:  material.Criteria{MinPrice: material.Float(0), MaxPrice: material.Float(50), SearchType: material.SearchNone},
		},
		{
			name:  "brand phrase",
			query: "Show all products from AET",
			want:  material.Criteria{BrandCode: "AET", SearchType: material.SearchBrand},
		},
		{
			name:  "title case name",
			query: "Safety Shoes",
			want:  material.Criteria{ItemNameKeyword: "Safety Shoes", SearchType: material.SearchItemNameFuzzy},
		},
		{
			name:  "brand keyword and price",
			query: "Fluke multimeter price 100 to 500",
			want: material.Criteria{
				BrandCode: "FLUKE", ItemNameKeyword: "multimeter",
				MinPrice: material.Float(100), MaxPrice: material.Float(500),
				SearchType: material.SearchCombined,
			},
		},
		{
			name:  "category with relative dates",
			query: "site safety equipment last year",
			want: material.Criteria{
				Category:  "Site Safety Equipment",
				StartDate: material.Date(2024, time.January, 1), EndDate: material.Date(2024, time.December, 31),
				SearchType: material.SearchCombined,
			},
		},
		{
			name:  "keyword with buyer segment",
			query: "gloves + ACME TRADING PTE LTD",
			want:  material.Criteria{ItemNameKeyword: "gloves", BuyerName: "ACME TRADING PTE LTD", SearchType: material.SearchCombined},
		},
		{
			name:  "buyer segment then long category segment",
			query: "AIR LIQUIDE SINGAPORE PRIVATE LIMITED + Site Safety Equipment",
			want: material.Criteria{
				BuyerName: "AIR LIQUIDE SINGAPORE PRIVATE LIMITED", Category: "Site Safety Equipment",
				SearchType: material.SearchCombined,
			},
		},
		{
			name:  "long category segment is not a buyer",
			query: "Site Safety Equipment + AET",
			want:  material.Criteria{Category: "Site Safety Equipment", BrandCode: "AET", SearchType: material.SearchCombined},
		},
		{
			name:  "second company segment kept once buyer is set",
			query: "ACME TRADING PTE LTD + BETA SUPPLY PTE LTD",
			want: material.Criteria{
				BuyerName: "ACME TRADING PTE LTD", ItemNameKeyword: "BETA SUPPLY PTE LTD",
				SearchType: material.SearchCombined,
			},
		},
		{
			name:  "several free segments",
			query: "gloves + goggles",
			want: material.Criteria{
				ItemNameKeyword: "gloves", Keywords: []string{"gloves", "goggles"},
				SearchType: material.SearchItemNameFuzzy,
			},
		},
		{
			name:  "chinese price with name",
			query: "价格 10到20 的手套",
			want: material.Criteria{
				ItemNameKeyword: "手套", MinPrice: material.Float(10), MaxPrice: material.Float(20),
				SearchType: material.SearchCombined,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.Extract(tt.query)
			if !got.Equal(&tt.want) {
				t.Errorf("Extract(%q)\n got  %+v\n want %+v", tt.query, got, tt.want)
			}
		})
	}
}

func TestExtract_KeepsRawQuery(t *testing.T) {
	got := New().Extract("TI00040 + AET")
	if got.RawQuery != "TI00040 + AET" {
		t.Errorf("RawQuery = %q", got.RawQuery)
	}
}

func TestExtract_Idempotent(t *testing.T) {
	e := New(WithClock(fixedClock))
	for _, q := range []string{"TI00040", "Safety Shoes", "gloves + goggles", "cutting tools price 1-9 this year"} {
		a, b := e.Extract(q), e.Extract(q)
		if !a.Equal(&b) {
			t.Errorf("Extract(%q) not deterministic: %+v vs %+v", q, a, b)
		}
	}
}

func TestExtract_SegmentOrderDoesNotMatter(t *testing.T) {
	e := New(WithClock(fixedClock))
	a := e.Extract("TI00040 + AET")
	b := e.Extract("AET + TI00040")
	if !a.Equal(&b) {
		t.Errorf("%+v vs %+v", a, b)
	}
}

func TestCached(t *testing.T) {
	c, err := NewCached(New(WithClock(fixedClock)), 16)
	if err != nil {
		t.Fatalf("NewCached: %v", err)
	}

	first := c.Extract("unit cost 0-100")
	*first.MaxPrice = 999

	second := c.Extract("unit cost 0-100")
	if second.MaxPrice == nil || *second.MaxPrice != 100 {
		t.Errorf("cached value was mutated through a returned copy: %+v", second)
	}
}

func TestNewCached_InvalidSize(t *testing.T) {
	if _, err := NewCached(New(), 0); err == nil {
		t.Error("expected error for zero size")
	}
}
