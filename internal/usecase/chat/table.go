package chat

import (
	"strconv"

	"github.com/kailas-cloud/matsearch/internal/domain/material"
)

// TableTitle is the caption of every search result table.
const TableTitle = "Material Search Results"

// MissingValue replaces empty cells.
const MissingValue = "N/A"

// Headers are the result table columns, in display order.
var Headers = []string{
	"id", "Item Code", "Item Name", "Function", "ItemType", "Model",
	"Performance", "Performance.1", "Material", "Brand Code",
	"Bundled", "Origin", "UOM", "TXP1", "TXP2", "Date", "Category",
}

// Table is a generic header/rows rendering of records.
type Table struct {
	Title       string
	Headers     []string
	Rows        []map[string]string
	Description string
}

// NewTable renders records as a result table.
func NewTable(records []material.Record, description string) Table {
	rows := make([]map[string]string, len(records))
	for i := range records {
		rows[i] = row(&records[i])
	}
	return Table{
		Title:       TableTitle,
		Headers:     Headers,
		Rows:        rows,
		Description: description,
	}
}

func row(r *material.Record) map[string]string {
	id := ""
	if r.ID > 0 {
		id = strconv.FormatInt(r.ID, 10)
	}
	values := []string{
		id, r.ItemCode, r.ItemName, r.Function, r.ItemType, r.Model,
		r.Performance, r.Performance1, r.Material, r.BrandCode,
		r.Bundled, r.Origin, r.UOM, r.TxP1, r.TxP2, r.TxDate, r.Category,
	}
	out := make(map[string]string, len(Headers))
	for i, h := range Headers {
		out[h] = cell(values[i])
	}
	return out
}

func cell(v string) string {
	if v == "" {
		return MissingValue
	}
	return v
}
