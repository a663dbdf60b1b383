package material

import "time"

// PriceInRange applies the price bounds to UnitCost and then TxP1.
// A record is kept when any parsable price is inside the bounds or when no price parses at all.
func PriceInRange(r *Record, lo, hi *float64) bool {
	if lo == nil && hi == nil {
		return true
	}
	parsed := false
	for _, raw := range []string{r.UnitCost, r.TxP1} {
		v, ok := ParsePrice(raw)
		if !ok {
			continue
		}
		parsed = true
		if (lo == nil || v >= *lo) && (hi == nil || v <= *hi) {
			return true
		}
	}
	return !parsed
}

// DateInRange compares the transaction day against inclusive bounds.
// Records whose date cannot be parsed are kept.
func DateInRange(r *Record, start, end *time.Time) bool {
	if start == nil && end == nil {
		return true
	}
	d, ok := ParseDate(r.TxDate)
	if !ok {
		return true
	}
	if start != nil && d.Before(dayOf(*start)) {
		return false
	}
	if end != nil && d.After(dayOf(*end)) {
		return false
	}
	return true
}

func dayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// FilterResult reports how many records each post-filter removed.
type FilterResult struct {
	Records      []Record
	PriceRemoved int
	DateRemoved  int
}

// ApplyFilters runs the price filter and then the date filter of c over records.
func ApplyFilters(records []Record, c *Criteria) FilterResult {
	out := FilterResult{Records: records}
	if c.HasPriceRange() {
		kept := make([]Record, 0, len(out.Records))
		for i := range out.Records {
			if PriceInRange(&out.Records[i], c.MinPrice, c.MaxPrice) {
				kept = append(kept, out.Records[i])
			}
		}
		out.PriceRemoved = len(out.Records) - len(kept)
		out.Records = kept
	}
	if c.HasDateRange() {
		kept := make([]Record, 0, len(out.Records))
		for i := range out.Records {
			if DateInRange(&out.Records[i], c.StartDate, c.EndDate) {
				kept = append(kept, out.Records[i])
			}
		}
		out.DateRemoved = len(out.Records) - len(kept)
		out.Records = kept
	}
	return out
}
