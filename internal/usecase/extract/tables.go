package extract

import (
	"regexp"
	"sort"
	"strings"
)

// tableEntry maps a lowercase synonym to its canonical catalog value.
type tableEntry struct {
	key   string
	value string
}

// lookupTable is evaluated longest key first.
type lookupTable []tableEntry

func newLookupTable(entries ...tableEntry) lookupTable {
	t := lookupTable(entries)
	sort.SliceStable(t, func(i, j int) bool { return len(t[i].key) > len(t[j].key) })
	return t
}

// match returns the first entry whose key occurs in lower and that accept allows.
func (t lookupTable) match(lower string, accept func(tableEntry) bool) (tableEntry, bool) {
	for _, e := range t {
		if !strings.Contains(lower, e.key) {
			continue
		}
		if accept != nil && !accept(e) {
			continue
		}
		return e, true
	}
	return tableEntry{}, false
}

var categoryTable = newLookupTable(
	tableEntry{"site safety equipment", "Site Safety Equipment"},
	tableEntry{"site safety", "Site Safety Equipment"},
	tableEntry{"safety equipment", "Site Safety Equipment"},
	tableEntry{"安全设备", "Site Safety Equipment"},
	tableEntry{"filters", "Filters"},
	tableEntry{"过滤器", "Filters"},
	tableEntry{"maintenance chemicals", "Maintenance Chemicals"},
	tableEntry{"维护化学品", "Maintenance Chemicals"},
	tableEntry{"cutting tools", "Cutting Tool"},
	tableEntry{"cutting tool", "Cutting Tool"},
	tableEntry{"切削工具", "Cutting Tool"},
	tableEntry{"electrical accessories", "Electrical Accessories"},
	tableEntry{"electrical", "Electrical Accessories"},
	tableEntry{"电气配件", "Electrical Accessories"},
)

var functionTable = newLookupTable(
	tableEntry{"maintenance chemicals", "Maintenance Chemicals"},
	tableEntry{"cutting tools", "Cutting Tool"},
	tableEntry{"cutting tool", "Cutting Tool"},
	tableEntry{"protection", "Protection"},
	tableEntry{"cutting", "Cutting"},
	tableEntry{"safety", "Safety"},
)

// knownBrands are recognised anywhere in the query.
var knownBrands = []string{"AIR LIQUIDE", "AET", "FLUKE", "3M", "HONEYWELL"}

var (
	brandPhraseExcluded = map[string]struct{}{"ALL": {}, "THE": {}, "AND": {}, "OR": {}, "FOR": {}}
	capsStopwords       = map[string]struct{}{"AND": {}, "OR": {}, "THE": {}, "FOR": {}, "TOOL": {}, "COST": {}}
)

// stopwords are removed before the leftover text becomes a name keyword.
var stopwords = []string{
	"find", "search", "show", "list", "get", "for", "the", "a", "an",
	"找", "搜索", "显示", "列出", "获取", "的", "一个",
	"can", "you", "please", "what", "where", "how", "when", "why",
	"is", "are", "was", "were",
}

// queryVerbs never form a keyword on their own.
var queryVerbs = []string{
	"show", "all", "products", "from", "items", "find", "search", "list",
	"get", "display", "by", "with", "the", "a", "an",
}

var (
	stopwordRe  = wordListRegexp(stopwords)
	queryVerbRe = wordListRegexp(queryVerbs)
)

// wordListRegexp matches ASCII words on word boundaries and CJK words anywhere;
// RE2 word boundaries only apply to ASCII word characters.
func wordListRegexp(words []string) *regexp.Regexp {
	var ascii, cjk []string
	for _, w := range words {
		if isASCII(w) {
			ascii = append(ascii, regexp.QuoteMeta(w))
		} else {
			cjk = append(cjk, regexp.QuoteMeta(w))
		}
	}
	var parts []string
	if len(ascii) > 0 {
		parts = append(parts, `\b(?:`+strings.Join(ascii, "|")+`)\b`)
	}
	if len(cjk) > 0 {
		parts = append(parts, `(?:`+strings.Join(cjk, "|")+`)`)
	}
	return regexp.MustCompile(`(?i)` + strings.Join(parts, "|"))
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}
