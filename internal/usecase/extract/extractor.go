// Package extract turns free-form material queries into structured criteria
// with a deterministic rule cascade. It needs no network and never fails.
package extract

import (
	"strings"
	"time"

	"github.com/kailas-cloud/matsearch/internal/domain/material"
)

// Extractor applies the rule cascade. The zero value is not usable; call New.
type Extractor struct {
	now func() time.Time
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithClock overrides the clock used for relative date phrases.
func WithClock(now func() time.Time) Option {
	return func(e *Extractor) { e.now = now }
}

// New creates an extractor that uses the wall clock unless overridden.
func New(opts ...Option) *Extractor {
	e := &Extractor{now: time.Now}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Extract builds finalized criteria for text. Empty input yields SearchNone.
func (e *Extractor) Extract(text string) material.Criteria {
	text = strings.TrimSpace(text)
	now := e.now().UTC()

	segs := splitSegments(text)
	if len(segs) <= 1 {
		c := e.single(text, now)
		c.Finalize()
		return c
	}

	merged := material.Criteria{RawQuery: text}
	var free []string
	for _, seg := range segs {
		sc := e.single(seg, now)
		if companySegment(seg, &sc) {
			if !merged.HasBuyerName() {
				merged.BuyerName = seg
				continue
			}
			if sc.IsEmpty() {
				free = append(free, seg)
				continue
			}
		}
		if onlyKeyword(&sc) {
			free = append(free, sc.ItemNameKeyword)
			continue
		}
		merged.MergeFrom(&sc)
	}

	switch {
	case len(free) >= 2:
		merged.Keywords = free
		if !merged.HasItemNameKeyword() {
			merged.ItemNameKeyword = free[0]
		}
	case len(free) == 1 && !merged.HasItemNameKeyword():
		merged.ItemNameKeyword = free[0]
	}
	merged.Finalize()
	return merged
}

// companySegment reports whether seg reads as a buyer name once extracted.
// Segments that claimed a code, category, function, price or date are never buyers.
// A brand only counts as part of the name when seg carries a legal-entity token.
func companySegment(seg string, c *material.Criteria) bool {
	if !looksLikeCompany(seg) {
		return false
	}
	if c.HasItemCode() || c.HasCategory() || c.HasFunction() || c.HasPriceRange() || c.HasDateRange() {
		return false
	}
	if c.HasBrand() {
		return companyRe.MatchString(seg)
	}
	return true
}

func onlyKeyword(c *material.Criteria) bool {
	if !c.HasItemNameKeyword() {
		return false
	}
	kw := c.ItemNameKeyword
	c.ItemNameKeyword = ""
	empty := c.IsEmpty()
	c.ItemNameKeyword = kw
	return empty
}

// single runs the cascade over one segment without finalizing.
func (e *Extractor) single(text string, now time.Time) material.Criteria {
	c := material.Criteria{RawQuery: text}
	if text == "" {
		return c
	}

	if code, ok := matchItemCode(text); ok {
		c.ItemCode = code
		return c
	}

	brand, hasBrand := matchBrand(text)
	if hasBrand {
		c.BrandCode = brand
	}

	var claimed []string
	catEntry, hasTableCategory := matchCategoryTable(text)
	guessedCategory := false
	if hasTableCategory {
		c.Category = catEntry.value
		claimed = append(claimed, catEntry.key)
	} else if cat, ok := matchTitleCaseCategory(withoutBrand(text, brand)); ok {
		c.Category = cat
		claimed = append(claimed, cat)
		guessedCategory = true
	}

	fnEntry, hasFunction := matchFunction(text, c.Category)
	if hasFunction {
		c.Function = fnEntry.value
		claimed = append(claimed, fnEntry.key)
	}

	dates, hasDates := matchDateRange(text, now)
	if hasDates {
		c.StartDate = &dates.start
		c.EndDate = &dates.end
	}

	price, hasPrice := matchPriceRange(text)
	if hasPrice {
		c.MinPrice = material.Float(price.min)
		c.MaxPrice = material.Float(price.max)
	}

	if !hasBrand && !hasTableCategory && !hasFunction {
		rest := stripDatePhrases(text)
		if hasPrice {
			rest = removeFold(rest, price.span)
		}
		if kw := stripStopwords(rest); len([]rune(kw)) > 1 {
			c.ItemNameKeyword = kw
		} else if !hasPrice && !hasDates {
			if kw, ok := wholeQueryKeyword(text); ok {
				c.ItemNameKeyword = kw
			}
		}
		// A keyword outranks a title-case guess; the phrase is searched as a name instead.
		if c.HasItemNameKeyword() && guessedCategory {
			c.Category = ""
		}
	}

	if (hasBrand || c.HasCategory() || hasFunction || hasPrice) && !c.HasItemNameKeyword() && !c.HasBuyerName() {
		rest := remainder(text, brand, claimed, price, hasPrice)
		switch {
		case looksLikeCompany(rest):
			c.BuyerName = rest
		case len([]rune(rest)) > 2:
			c.ItemNameKeyword = rest
		}
	}
	return c
}

func withoutBrand(text, brand string) string {
	if brand == "" {
		return text
	}
	return stripQueryVerbs(removeFold(text, brand))
}

// remainder is what is left of text once every claimed phrase is removed.
func remainder(text, brand string, claimed []string, price priceRange, hasPrice bool) string {
	rest := text
	if brand != "" {
		rest = removeFold(rest, brand)
	}
	for _, k := range claimed {
		rest = removeFold(rest, k)
	}
	if hasPrice {
		rest = removeFold(rest, price.span)
	}
	rest = stripDatePhrases(rest)
	rest = connectiveRe.ReplaceAllString(rest, " ")
	return stripQueryVerbs(rest)
}
