package extract

import (
	"testing"
	"time"
)

func TestMatchItemCode(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"TI00040", "TI00040", true},
		{"price of ti00040 please", "TI00040", true},
		{"AB12", "", false},
		{"safety shoes", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := matchItemCode(tt.in)
			if ok != tt.ok || got != tt.want {
				t.Errorf("matchItemCode(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestBrandRules(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"phrase", "Show all products from AET", "AET"},
		{"phrase two words", "gas by AIR LIQUIDE", "AIR LIQUIDE"},
		{"phrase excludes stopword", "gloves from THE", ""},
		{"keyword anchored", "brand FLK gloves", "FLK"},
		{"chinese keyword", "品牌 AET 的产品", "AET"},
		{"known lowercase", "fluke multimeter", "FLUKE"},
		{"known not inside word", "aetna policy", ""},
		{"caps multi", "gloves ACME WORKS", "ACME WORKS"},
		{"caps single", "gloves ACME", "ACME"},
		{"caps stopword", "TOOL COST", ""},
		{"none", "safety shoes", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := matchBrand(tt.in)
			if got != tt.want {
				t.Errorf("matchBrand(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestMatchCategoryTable_LongestFirst(t *testing.T) {
	e, ok := matchCategoryTable("need site safety equipment")
	if !ok {
		t.Fatal("expected a match")
	}
	if e.key != "site safety equipment" || e.value != "Site Safety Equipment" {
		t.Errorf("got %+v", e)
	}
}

func TestMatchTitleCaseCategory(t *testing.T) {
	tests := []struct {
		in string
		ok bool
	}{
		{"Safety Shoes", true},
		{"Shoes", false},
		{"safety shoes", false},
		{"Acme Private Limited Company", false},
		{"Safety Shoes 2", false},
	}
	for _, tt := range tests {
		if _, ok := matchTitleCaseCategory(tt.in); ok != tt.ok {
			t.Errorf("matchTitleCaseCategory(%q) ok = %v, want %v", tt.in, ok, tt.ok)
		}
	}
}

func TestMatchFunction_SkipsAbsorbed(t *testing.T) {
	if _, ok := matchFunction("site safety equipment", "Site Safety Equipment"); ok {
		t.Error("safety is part of the category and must not be matched")
	}
	e, ok := matchFunction("cutting gloves", "")
	if !ok || e.value != "Cutting" {
		t.Errorf("got %+v, %v", e, ok)
	}
}

func TestMatchDateRange(t *testing.T) {
	now := time.Date(2025, time.June, 15, 10, 0, 0, 0, time.UTC)

	r, ok := matchDateRange("gloves bought last year", now)
	if !ok {
		t.Fatal("expected last year")
	}
	if !r.start.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) || !r.end.Equal(time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("last year = %v..%v", r.start, r.end)
	}

	r, ok = matchDateRange("今年的手套", now)
	if !ok {
		t.Fatal("expected this year")
	}
	if !r.start.Equal(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)) || !r.end.Equal(time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("this year = %v..%v", r.start, r.end)
	}

	if _, ok := matchDateRange("gloves", now); ok {
		t.Error("unexpected range")
	}
}

func TestMatchPriceRange(t *testing.T) {
	tests := []struct {
		in       string
		min, max float64
		ok       bool
	}{
		{"unit cost 0-100", 0, 100, true},
		{"price 10 to 20.5", 10, 20.5, true},
		{"价格 5到9", 5, 9, true},
		{"gloves 3~7", 3, 7, true},
		{"price under 50", 0, 50, true},
		{"cost below 12.5", 0, 12.5, true},
		{"gloves price 100-50", 50, 100, true},
		{"gloves 50", 0, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := matchPriceRange(tt.in)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if ok && (got.min != tt.min || got.max != tt.max) {
				t.Errorf("got %v..%v, want %v..%v", got.min, got.max, tt.min, tt.max)
			}
		})
	}
}

func TestLooksLikeCompany(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"ACME PTE LTD", true},
		{"a very long segment of text here", true},
		{"AET", false},
		{"Ltd", false},
	}
	for _, tt := range tests {
		if got := looksLikeCompany(tt.in); got != tt.want {
			t.Errorf("looksLikeCompany(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestSplitSegments(t *testing.T) {
	got := splitSegments("TI00040 + AET and gloves 和 手套")
	want := []string{"TI00040", "AET", "gloves", "手套"}
	if len(got) != len(want) {
		t.Fatalf("got %q, want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("segment %d = %q, want %q", i, got[i], want[i])
		}
	}
}
