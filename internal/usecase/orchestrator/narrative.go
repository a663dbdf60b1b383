package orchestrator

import (
	"fmt"
	"strconv"
	"time"

	"github.com/kailas-cloud/matsearch/internal/domain/material"
)

const (
	// NoResultsNarrative is returned when nothing matched and no explanation is available.
	NoResultsNarrative = "Sorry, I couldn't find any exact matches. Please try different keywords " +
		"or provide more information about the product you're looking for."
	// NoResultsDescription describes an empty result table.
	NoResultsDescription = "Still can't find what you're looking for? Jump to chatbox"
)

func foundNarrative(n int) string {
	return fmt.Sprintf("I found %d related product(s). Here are the search results:", n)
}

func recordsDescription(n int) string {
	return fmt.Sprintf("Found %d material record(s).", n)
}

func historyNarrative(s *material.HistoryStats) string {
	return fmt.Sprintf(
		"Found %d historical transactions for Item Code: %s (%s). "+
			"Price range: %s - %s, Average: %s. "+
			"First transaction: %s, Last transaction: %s.",
		s.Count, s.ItemCode, orNA(s.ItemName),
		price(s.MinPrice), price(s.MaxPrice), price(s.AvgPrice),
		day(s.FirstTransaction), day(s.LastTransaction),
	)
}

func price(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func day(t *time.Time) string {
	if t == nil {
		return "N/A"
	}
	return t.Format(time.DateOnly)
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
