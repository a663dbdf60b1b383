package material

import (
	"math"
	"sort"
	"time"
)

// HistoryStats aggregates every transaction of one item code.
type HistoryStats struct {
	ItemCode         string
	ItemName         string
	Count            int
	MinPrice         *float64
	MaxPrice         *float64
	AvgPrice         *float64
	FirstTransaction *time.Time
	LastTransaction  *time.Time
	History          []Record
}

// ComputeHistory builds stats from the transactions of one item.
// Prices come from TXP1 values above zero; unparseable values and dates are skipped.
func ComputeHistory(itemCode string, records []Record) HistoryStats {
	stats := HistoryStats{ItemCode: itemCode, Count: len(records), History: records}
	if len(records) == 0 {
		return stats
	}
	stats.ItemName = records[0].ItemName

	var prices []float64
	var dates []time.Time
	for i := range records {
		if p, ok := ParsePrice(records[i].TxP1); ok && p > 0 {
			prices = append(prices, p)
		}
		if d, ok := ParseDate(records[i].TxDate); ok {
			dates = append(dates, d)
		}
	}

	if len(prices) > 0 {
		sort.Float64s(prices)
		sum := 0.0
		for _, p := range prices {
			sum += p
		}
		stats.MinPrice = Float(prices[0])
		stats.MaxPrice = Float(prices[len(prices)-1])
		stats.AvgPrice = Float(roundHalfUp(sum/float64(len(prices)), 2))
	}

	if len(dates) > 0 {
		sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
		stats.FirstTransaction = ptr(dates[0])
		stats.LastTransaction = ptr(dates[len(dates)-1])
	}
	return stats
}

func roundHalfUp(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Floor(v*scale+0.5+1e-9) / scale
}
