package material

import (
	"slices"
	"strings"
	"time"
)

// SearchType selects the structured search strategy.
type SearchType string

// Search type constants. SearchNone means no primary field was recognised.
const (
	SearchNone          SearchType = ""
	SearchExactItemCode SearchType = "EXACT_ITEM_CODE"
	SearchItemNameFuzzy SearchType = "ITEM_NAME_FUZZY"
	SearchCategory      SearchType = "CATEGORY"
	SearchFunction      SearchType = "FUNCTION"
	SearchBrand         SearchType = "BRAND"
	SearchCombined      SearchType = "COMBINED"
)

// IsValid checks if the type is one of the supported values.
func (t SearchType) IsValid() bool {
	switch t {
	case SearchNone, SearchExactItemCode, SearchItemNameFuzzy, SearchCategory,
		SearchFunction, SearchBrand, SearchCombined:
		return true
	}
	return false
}

// Criteria is the structured, partially filled intent of a query.
// It is built per request and treated as immutable once Finalize has run.
type Criteria struct {
	ItemCode        string
	ItemNameKeyword string
	Category        string
	Function        string
	BrandCode       string
	BuyerName       string
	BuyerCode       string
	MinPrice        *float64
	MaxPrice        *float64
	StartDate       *time.Time
	EndDate         *time.Time
	RawQuery        string

	// Keywords holds the free-text segments of a "+"/"and" separated query.
	Keywords []string

	SearchType SearchType
}

func has(s string) bool { return strings.TrimSpace(s) != "" }

// HasItemCode reports whether an item code is set.
func (c *Criteria) HasItemCode() bool { return has(c.ItemCode) }

// HasItemNameKeyword reports whether a name keyword is set.
func (c *Criteria) HasItemNameKeyword() bool { return has(c.ItemNameKeyword) }

// HasCategory reports whether a category is set.
func (c *Criteria) HasCategory() bool { return has(c.Category) }

// HasFunction reports whether a function is set.
func (c *Criteria) HasFunction() bool { return has(c.Function) }

// HasBrand reports whether a brand code is set.
func (c *Criteria) HasBrand() bool { return has(c.BrandCode) }

// HasBuyerName reports whether a buyer name is set.
func (c *Criteria) HasBuyerName() bool { return has(c.BuyerName) }

// HasBuyerCode reports whether a buyer code is set.
func (c *Criteria) HasBuyerCode() bool { return has(c.BuyerCode) }

// HasPriceRange reports whether either price bound is set.
func (c *Criteria) HasPriceRange() bool { return c.MinPrice != nil || c.MaxPrice != nil }

// HasDateRange reports whether either date bound is set.
func (c *Criteria) HasDateRange() bool { return c.StartDate != nil || c.EndDate != nil }

// HasFilters reports whether any range or counterparty condition is set.
func (c *Criteria) HasFilters() bool {
	return c.HasPriceRange() || c.HasDateRange() || c.HasBuyerName() || c.HasBuyerCode()
}

// IsEmpty reports whether no condition at all is set. RawQuery and Keywords are ignored.
func (c *Criteria) IsEmpty() bool {
	return c.conditionCount() == 0
}

func (c *Criteria) conditionCount() int {
	n := 0
	for _, set := range []bool{
		c.HasItemCode(), c.HasItemNameKeyword(), c.HasCategory(), c.HasFunction(),
		c.HasBrand(), c.HasBuyerName(), c.HasBuyerCode(), c.HasPriceRange(), c.HasDateRange(),
	} {
		if set {
			n++
		}
	}
	return n
}

// IsCombined reports whether two or more conditions are set.
// A category plus a function that is a lowercase substring (len > 2) of the category counts once.
func (c *Criteria) IsCombined() bool {
	n := c.conditionCount()
	if n == 2 && c.HasCategory() && c.HasFunction() && FunctionAbsorbed(c.Category, c.Function) {
		return false
	}
	return n > 1
}

// FunctionAbsorbed reports whether function is already expressed by category.
func FunctionAbsorbed(category, function string) bool {
	fn := strings.ToLower(strings.TrimSpace(function))
	return len(fn) > 2 && strings.Contains(strings.ToLower(category), fn)
}

// Finalize derives SearchType from the populated fields.
func (c *Criteria) Finalize() {
	switch {
	case c.IsCombined():
		c.SearchType = SearchCombined
	case c.HasItemCode():
		c.SearchType = SearchExactItemCode
	case c.HasItemNameKeyword():
		c.SearchType = SearchItemNameFuzzy
	case c.HasCategory():
		c.SearchType = SearchCategory
	case c.HasFunction():
		c.SearchType = SearchFunction
	case c.HasBrand():
		c.SearchType = SearchBrand
	default:
		c.SearchType = SearchNone
	}
}

// MergeFrom copies every field of other that is still empty on c.
// Earlier values win, which gives "first non-empty wins" when segments are merged in order.
func (c *Criteria) MergeFrom(other *Criteria) {
	fill := func(dst *string, src string) {
		if !has(*dst) && has(src) {
			*dst = src
		}
	}
	fill(&c.ItemCode, other.ItemCode)
	fill(&c.ItemNameKeyword, other.ItemNameKeyword)
	fill(&c.Category, other.Category)
	fill(&c.Function, other.Function)
	fill(&c.BrandCode, other.BrandCode)
	fill(&c.BuyerName, other.BuyerName)
	fill(&c.BuyerCode, other.BuyerCode)
	if c.MinPrice == nil && other.MinPrice != nil {
		c.MinPrice = ptr(*other.MinPrice)
	}
	if c.MaxPrice == nil && other.MaxPrice != nil {
		c.MaxPrice = ptr(*other.MaxPrice)
	}
	if c.StartDate == nil && other.StartDate != nil {
		c.StartDate = ptr(*other.StartDate)
	}
	if c.EndDate == nil && other.EndDate != nil {
		c.EndDate = ptr(*other.EndDate)
	}
}

// Clone returns a deep copy.
func (c Criteria) Clone() Criteria {
	out := c
	if c.MinPrice != nil {
		out.MinPrice = ptr(*c.MinPrice)
	}
	if c.MaxPrice != nil {
		out.MaxPrice = ptr(*c.MaxPrice)
	}
	if c.StartDate != nil {
		out.StartDate = ptr(*c.StartDate)
	}
	if c.EndDate != nil {
		out.EndDate = ptr(*c.EndDate)
	}
	out.Keywords = slices.Clone(c.Keywords)
	return out
}

// Equal compares the search-relevant fields of two criteria. RawQuery is ignored.
func (c *Criteria) Equal(o *Criteria) bool {
	return c.ItemCode == o.ItemCode &&
		c.ItemNameKeyword == o.ItemNameKeyword &&
		c.Category == o.Category &&
		c.Function == o.Function &&
		c.BrandCode == o.BrandCode &&
		c.BuyerName == o.BuyerName &&
		c.BuyerCode == o.BuyerCode &&
		eqPtr(c.MinPrice, o.MinPrice, func(a, b float64) bool { return a == b }) &&
		eqPtr(c.MaxPrice, o.MaxPrice, func(a, b float64) bool { return a == b }) &&
		eqPtr(c.StartDate, o.StartDate, time.Time.Equal) &&
		eqPtr(c.EndDate, o.EndDate, time.Time.Equal) &&
		slices.Equal(c.Keywords, o.Keywords) &&
		c.SearchType == o.SearchType
}

func eqPtr[T any](a, b *T, eq func(T, T) bool) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return eq(*a, *b)
}

func ptr[T any](v T) *T { return &v }

// Float returns a pointer to v.
func Float(v float64) *float64 { return &v }

// Date returns a pointer to the UTC midnight of the given day.
func Date(year int, month time.Month, day int) *time.Time {
	d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return &d
}
