package catalog

import (
	"database/sql/driver"
	"strconv"
	"sync"
	"time"

	"modernc.org/sqlite"

	"github.com/kailas-cloud/matsearch/internal/domain/material"
)

// SQL-side filters delegate to the same parsers as the in-memory post-filters,
// so unparsable text fails open in both places.
const (
	fnPriceInRange = "price_in_range" // (unit_cost, txp1, min, max) -> 0/1
	fnDateInRange  = "date_in_range"  // (tx_date, start, end) -> 0/1
	fnSortDate     = "sort_date"      // (tx_date) -> "2006-01-02" or ""
)

var (
	registerOnce sync.Once
	registerErr  error
)

func registerFunctions() error {
	registerOnce.Do(func() {
		if registerErr = sqlite.RegisterDeterministicScalarFunction(fnPriceInRange, 4, priceInRange); registerErr != nil {
			return
		}
		if registerErr = sqlite.RegisterDeterministicScalarFunction(fnDateInRange, 3, dateInRange); registerErr != nil {
			return
		}
		registerErr = sqlite.RegisterDeterministicScalarFunction(fnSortDate, 1, sortDate)
	})
	return registerErr
}

func priceInRange(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	r := material.Record{UnitCost: text(args[0]), TxP1: text(args[1])}
	return boolInt(material.PriceInRange(&r, number(args[2]), number(args[3]))), nil
}

func dateInRange(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	r := material.Record{TxDate: text(args[0])}
	return boolInt(material.DateInRange(&r, day(args[1]), day(args[2]))), nil
}

func sortDate(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	d, ok := material.ParseDate(text(args[0]))
	if !ok {
		return "", nil
	}
	return d.Format(time.DateOnly), nil
}

func text(v driver.Value) string {
	switch t := v.(type) {
	case string:
		return t
	case []byte:
		return string(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	}
	return ""
}

func number(v driver.Value) *float64 {
	switch t := v.(type) {
	case float64:
		return &t
	case int64:
		f := float64(t)
		return &f
	}
	return nil
}

func day(v driver.Value) *time.Time {
	s := text(v)
	if s == "" {
		return nil
	}
	d, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return nil
	}
	return &d
}

func boolInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
