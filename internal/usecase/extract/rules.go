package extract

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/kailas-cloud/matsearch/internal/domain/material"
)

var (
	splitRe       = regexp.MustCompile(`(?i)\s*\+\s*|\s+and\s+|\s+和\s+`)
	companyRe     = regexp.MustCompile(`\b(?:LIMITED|PRIVATE|COMPANY|CORP|INC|LLC|PTE|LTD|SINGAPORE)\b`)
	itemCodeRe    = regexp.MustCompile(`\b([A-Za-z]{2,}[0-9]{3,})\b`)
	brandPhraseRe = regexp.MustCompile(`\b(?i:products\s+from|items\s+from|product\s+from|item\s+from|from|by)\s+([A-Z]{2,}(?:\s+[A-Z]{2,})?)\b`)
	brandAnchorRe = regexp.MustCompile(`(?i)brand|品牌|牌子`)
	brandTokenRe  = regexp.MustCompile(`\b([A-Z]{2,10})\b`)
	capsMultiRe   = regexp.MustCompile(`\b([A-Z]{2,}\s+[A-Z]{2,}(?:\s+[A-Z]{2,})?)\b`)
	capsSingleRe  = regexp.MustCompile(`\b([A-Z]{2,})\b`)
	titleCaseRe   = regexp.MustCompile(`^[A-Z][a-zA-Z\s]+$`)
	spacesRe      = regexp.MustCompile(`\s+`)
	connectiveRe  = regexp.MustCompile(`(?i)\b(?:and|or)\b|[+和或]`)

	priceKeywordRe     = regexp.MustCompile(`(?i)unit cost|单价|价格|price|cost`)
	priceNearRangeRe   = regexp.MustCompile(`(?i)(?:unit cost|单价|价格|price|cost)\s+(\d+(?:\.\d+)?)\s*(?:到|-|~|至|to)\s*(\d+(?:\.\d+)?)`)
	priceRangeRe       = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(?:到|-|~|至|to)\s*(\d+(?:\.\d+)?)`)
	priceUpperBoundRe  = regexp.MustCompile(`(?i)(?:unit cost|单价|价格|price|cost)\s*(?:<|小于|less than|under|below)?\s*(\d+(?:\.\d+)?)`)
	lastYearRe         = regexp.MustCompile(`(?i)去年|last year`)
	thisYearRe         = regexp.MustCompile(`(?i)今年|this year`)
	edgePunctuation    = "?？.。!！,，;；:："
	maxWholeQueryRunes = 200
)

// ruleFunc is one extraction rule: it either claims a value from the text or reports no match.
type ruleFunc func(text string) (string, bool)

// namedRule keeps the cascade order explicit and inspectable.
type namedRule struct {
	name  string
	match ruleFunc
}

// brandRules are tried in order; the first match wins.
var brandRules = []namedRule{
	{"phrase", matchBrandPhrase},
	{"keyword", matchBrandKeyword},
	{"known", matchKnownBrand},
	{"caps", matchCapsBrand},
}

// splitSegments splits on "+", " and " and " 和 ". A single element means no split happened.
func splitSegments(text string) []string {
	raw := splitRe.Split(text, -1)
	segs := make([]string, 0, len(raw))
	for _, s := range raw {
		if s = strings.TrimSpace(s); s != "" {
			segs = append(segs, s)
		}
	}
	return segs
}

// looksLikeCompany reports whether text has a legal-entity token or is longer than 20 characters.
func looksLikeCompany(text string) bool {
	text = strings.TrimSpace(text)
	return companyRe.MatchString(text) || len([]rune(text)) > 20
}

func matchItemCode(text string) (string, bool) {
	m := itemCodeRe.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return strings.ToUpper(m[1]), true
}

func matchBrandPhrase(text string) (string, bool) {
	for _, m := range brandPhraseRe.FindAllStringSubmatch(text, -1) {
		brand := strings.ToUpper(strings.TrimSpace(m[1]))
		if _, bad := brandPhraseExcluded[brand]; bad {
			continue
		}
		return brand, true
	}
	return "", false
}

func matchBrandKeyword(text string) (string, bool) {
	loc := brandAnchorRe.FindStringIndex(text)
	if loc == nil {
		return "", false
	}
	m := brandTokenRe.FindStringSubmatch(text[loc[1]:])
	if m == nil {
		return "", false
	}
	return m[1], true
}

var knownBrandRes = func() []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(knownBrands))
	for i, b := range knownBrands {
		out[i] = regexp.MustCompile(`(?:^|[^A-Z0-9])` + regexp.QuoteMeta(b) + `(?:$|[^A-Z0-9])`)
	}
	return out
}()

func matchKnownBrand(text string) (string, bool) {
	upper := strings.ToUpper(text)
	for i, re := range knownBrandRes {
		if re.MatchString(upper) {
			return knownBrands[i], true
		}
	}
	return "", false
}

func matchCapsBrand(text string) (string, bool) {
	for _, m := range capsMultiRe.FindAllStringSubmatch(text, -1) {
		candidate := m[1]
		if len(candidate) < 4 || containsCapsStopword(candidate) {
			continue
		}
		return candidate, true
	}
	for _, m := range capsSingleRe.FindAllStringSubmatch(text, -1) {
		if _, bad := capsStopwords[m[1]]; bad {
			continue
		}
		return m[1], true
	}
	return "", false
}

func containsCapsStopword(phrase string) bool {
	for _, tok := range strings.Fields(phrase) {
		if _, bad := capsStopwords[tok]; bad {
			return true
		}
	}
	return false
}

func matchBrand(text string) (string, bool) {
	for _, r := range brandRules {
		if v, ok := r.match(text); ok {
			return v, true
		}
	}
	return "", false
}

func matchCategoryTable(text string) (tableEntry, bool) {
	return categoryTable.match(strings.ToLower(text), nil)
}

// matchTitleCaseCategory treats a Title-Case phrase of two or more words as a category name.
func matchTitleCaseCategory(text string) (string, bool) {
	text = strings.TrimSpace(text)
	if looksLikeCompany(text) || !titleCaseRe.MatchString(text) || len(strings.Fields(text)) < 2 {
		return "", false
	}
	return text, true
}

// matchFunction skips table entries already expressed by category.
func matchFunction(text, category string) (tableEntry, bool) {
	return functionTable.match(strings.ToLower(text), func(e tableEntry) bool {
		if category == "" {
			return true
		}
		return !material.FunctionAbsorbed(category, e.key) && !material.FunctionAbsorbed(category, e.value)
	})
}

// dateRange is an inclusive calendar range.
type dateRange struct {
	start time.Time
	end   time.Time
}

func matchDateRange(text string, now time.Time) (dateRange, bool) {
	y, m, d := now.Date()
	switch {
	case lastYearRe.MatchString(text):
		return dateRange{
			start: time.Date(y-1, time.January, 1, 0, 0, 0, 0, time.UTC),
			end:   time.Date(y-1, time.December, 31, 0, 0, 0, 0, time.UTC),
		}, true
	case thisYearRe.MatchString(text):
		return dateRange{
			start: time.Date(y, time.January, 1, 0, 0, 0, 0, time.UTC),
			end:   time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
		}, true
	}
	return dateRange{}, false
}

// priceRange holds the parsed bounds and the text span they came from.
type priceRange struct {
	min, max float64
	span     string
}

// matchPriceRange tries a keyword-anchored range, then any range, then a single keyword-anchored upper bound.
func matchPriceRange(text string) (priceRange, bool) {
	hasKeyword := priceKeywordRe.MatchString(text)
	if hasKeyword {
		if pr, ok := rangeFrom(priceNearRangeRe, text); ok {
			return pr, true
		}
	}
	if pr, ok := rangeFrom(priceRangeRe, text); ok {
		return pr, true
	}
	if hasKeyword {
		if m := priceUpperBoundRe.FindStringSubmatch(text); m != nil {
			if v, err := strconv.ParseFloat(m[1], 64); err == nil {
				return priceRange{min: 0, max: v, span: m[0]}, true
			}
		}
	}
	return priceRange{}, false
}

func rangeFrom(re *regexp.Regexp, text string) (priceRange, bool) {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return priceRange{}, false
	}
	lo, err1 := strconv.ParseFloat(m[1], 64)
	hi, err2 := strconv.ParseFloat(m[2], 64)
	if err1 != nil || err2 != nil {
		return priceRange{}, false
	}
	if lo > hi {
		lo, hi = hi, lo
	}
	return priceRange{min: lo, max: hi, span: m[0]}, true
}

// stripStopwords removes stopwords and collapses whitespace.
func stripStopwords(text string) string {
	return cleanup(stopwordRe.ReplaceAllString(text, " "))
}

func stripQueryVerbs(text string) string {
	return cleanup(queryVerbRe.ReplaceAllString(text, " "))
}

// looksLikeQuestion reports whether text reads as a question rather than a product name.
func looksLikeQuestion(text string) bool {
	lower := strings.ToLower(strings.TrimSpace(text))
	return strings.HasSuffix(lower, "?") || strings.HasSuffix(lower, "？") ||
		strings.HasPrefix(lower, "how") || strings.HasPrefix(lower, "what") || strings.HasPrefix(lower, "why")
}

// wholeQueryKeyword returns the trimmed query when it is usable as a name keyword.
func wholeQueryKeyword(text string) (string, bool) {
	text = strings.TrimSpace(text)
	n := len([]rune(text))
	if n <= 2 || n >= maxWholeQueryRunes || looksLikeQuestion(text) {
		return "", false
	}
	return text, true
}

func stripDatePhrases(text string) string {
	text = lastYearRe.ReplaceAllString(text, " ")
	return thisYearRe.ReplaceAllString(text, " ")
}

// removeFold deletes phrase from text ignoring case and tolerating any run of whitespace inside it.
func removeFold(text, phrase string) string {
	if strings.TrimSpace(phrase) == "" {
		return text
	}
	pattern := strings.Join(strings.Fields(regexp.QuoteMeta(phrase)), `\s+`)
	re, err := regexp.Compile(`(?i)` + pattern)
	if err != nil {
		return text
	}
	return re.ReplaceAllString(text, " ")
}

func cleanup(text string) string {
	text = spacesRe.ReplaceAllString(text, " ")
	return strings.Trim(strings.TrimSpace(text), edgePunctuation+" ")
}
