package chat

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/matsearch/internal/domain/material"
)

// requisition collects the distinct item codes of the records, in order.
func requisition(records []material.Record) *Action {
	seen := make(map[string]struct{}, len(records))
	items := []string{}
	for i := range records {
		code := strings.ToUpper(strings.TrimSpace(records[i].ItemCode))
		if code == "" {
			continue
		}
		if _, dup := seen[code]; dup {
			continue
		}
		seen[code] = struct{}{}
		items = append(items, code)
	}

	msg := "No products found for requisition."
	if len(items) > 0 {
		msg = fmt.Sprintf("Purchase requisition created for %d product(s).", len(items))
	}
	return &Action{Type: IntentCreateRequisition, Items: items, Message: msg}
}
