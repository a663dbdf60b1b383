package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/kailas-cloud/matsearch/internal/db"
	"github.com/kailas-cloud/matsearch/internal/domain/material"
)

// MaxKeywords caps the multi-keyword AND query.
const MaxKeywords = 5

const recordColumns = `id, tx_no, tx_date, tx_qty, txp1, txp2, buyer_code, buyer_name,
	item_code, item_name, category, function, item_type, model, performance, performance1,
	material, uom, bundled, origin, brand_code, unit_cost, sector, sub_sector,
	value, rationale, www, source`

const newestFirst = ` ORDER BY ` + fnSortDate + `(tx_date) DESC, id DESC`

// fullTextColumns are OR-ed by FullText.
var fullTextColumns = []string{
	"item_name", "item_code", "buyer_name", "buyer_code", "category", "function",
	"brand_code", "model", "item_type", "material", "sector", "sub_sector",
}

// FindByItemCode returns every transaction of an item, newest first. Matching ignores case.
func (s *Store) FindByItemCode(ctx context.Context, itemCode string) ([]material.Record, error) {
	return s.queryRecords(ctx,
		`SELECT `+recordColumns+` FROM transactions WHERE UPPER(item_code) = UPPER(?)`+newestFirst,
		strings.TrimSpace(itemCode))
}

// SearchItemName matches the keyword as a substring, or with its spaces treated as wildcards.
func (s *Store) SearchItemName(ctx context.Context, keyword string, limit int) ([]material.Record, error) {
	kw := strings.TrimSpace(keyword)
	return s.queryRecords(ctx,
		`SELECT `+recordColumns+` FROM transactions WHERE item_name LIKE ? ESCAPE '\' OR item_name LIKE ? ESCAPE '\'`+newestFirst+` LIMIT ?`,
		contains(kw), containsWords(kw), limit)
}

// FindByCategory matches category as a substring.
func (s *Store) FindByCategory(ctx context.Context, category string, limit int) ([]material.Record, error) {
	return s.likeColumn(ctx, "category", category, limit)
}

// FindByFunction matches function as a substring.
func (s *Store) FindByFunction(ctx context.Context, function string, limit int) ([]material.Record, error) {
	return s.likeColumn(ctx, "function", function, limit)
}

// FindByBrand matches brand code as a substring.
func (s *Store) FindByBrand(ctx context.Context, brand string, limit int) ([]material.Record, error) {
	return s.likeColumn(ctx, "brand_code", brand, limit)
}

func (s *Store) likeColumn(ctx context.Context, column, value string, limit int) ([]material.Record, error) {
	return s.queryRecords(ctx,
		`SELECT `+recordColumns+` FROM transactions WHERE `+column+` LIKE ? ESCAPE '\'`+newestFirst+` LIMIT ?`,
		contains(strings.TrimSpace(value)), limit)
}

// SearchCombined ANDs every condition set on c. Price and date bounds use the same
// fail-open rules as the in-memory filters.
func (s *Store) SearchCombined(ctx context.Context, c *material.Criteria, limit int) ([]material.Record, error) {
	var (
		where []string
		args  []any
	)
	add := func(cond string, a ...any) {
		where = append(where, cond)
		args = append(args, a...)
	}

	if c.HasItemCode() {
		add("UPPER(item_code) = UPPER(?)", strings.TrimSpace(c.ItemCode))
	}
	if c.HasItemNameKeyword() {
		add(`item_name LIKE ? ESCAPE '\'`, contains(strings.TrimSpace(c.ItemNameKeyword)))
	}
	if c.HasCategory() {
		add(`category LIKE ? ESCAPE '\'`, contains(strings.TrimSpace(c.Category)))
	}
	if c.HasFunction() {
		add(`function LIKE ? ESCAPE '\'`, contains(strings.TrimSpace(c.Function)))
	}
	if c.HasBrand() {
		add(`brand_code LIKE ? ESCAPE '\'`, contains(strings.TrimSpace(c.BrandCode)))
	}
	if c.HasBuyerName() {
		add(`buyer_name LIKE ? ESCAPE '\'`, contains(strings.TrimSpace(c.BuyerName)))
	}
	if c.HasBuyerCode() {
		add("UPPER(buyer_code) = UPPER(?)", strings.TrimSpace(c.BuyerCode))
	}
	if c.HasPriceRange() {
		add(fnPriceInRange+"(unit_cost, txp1, ?, ?) = 1", nullFloat(c.MinPrice), nullFloat(c.MaxPrice))
	}
	if c.HasDateRange() {
		add(fnDateInRange+"(tx_date, ?, ?) = 1", nullDate(c.StartDate), nullDate(c.EndDate))
	}
	if len(where) == 0 {
		return nil, nil
	}

	args = append(args, limit)
	return s.queryRecords(ctx,
		`SELECT `+recordColumns+` FROM transactions WHERE `+strings.Join(where, " AND ")+newestFirst+` LIMIT ?`,
		args...)
}

// SearchAllKeywords requires every keyword to occur in item name, item code, category or function.
// Only the first MaxKeywords keywords are used.
func (s *Store) SearchAllKeywords(ctx context.Context, keywords []string, limit int) ([]material.Record, error) {
	var (
		where []string
		args  []any
	)
	for _, kw := range keywords {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		if len(where) == MaxKeywords {
			break
		}
		where = append(where, `(item_name LIKE ? ESCAPE '\' OR item_code LIKE ? ESCAPE '\' OR category LIKE ? ESCAPE '\' OR function LIKE ? ESCAPE '\')`)
		p := contains(kw)
		args = append(args, p, p, p, p)
	}
	if len(where) == 0 {
		return nil, nil
	}
	args = append(args, limit)
	return s.queryRecords(ctx,
		`SELECT `+recordColumns+` FROM transactions WHERE `+strings.Join(where, " AND ")+newestFirst+` LIMIT ?`,
		args...)
}

// FullText matches term against any of the descriptive columns.
func (s *Store) FullText(ctx context.Context, term string, limit int) ([]material.Record, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, nil
	}
	conds := make([]string, len(fullTextColumns))
	args := make([]any, 0, len(fullTextColumns)+1)
	for i, col := range fullTextColumns {
		conds[i] = col + ` LIKE ? ESCAPE '\'`
		args = append(args, contains(term))
	}
	args = append(args, limit)
	return s.queryRecords(ctx,
		`SELECT `+recordColumns+` FROM transactions WHERE `+strings.Join(conds, " OR ")+newestFirst+` LIMIT ?`,
		args...)
}

// DistinctCategories lists non-empty categories alphabetically.
func (s *Store) DistinctCategories(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT category FROM transactions WHERE TRIM(category) <> '' ORDER BY category`)
	if err != nil {
		return nil, &db.Error{Op: db.OpSQLQuery, Err: err}
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, &db.Error{Op: db.OpSQLQuery, Err: err}
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, &db.Error{Op: db.OpSQLQuery, Err: err}
	}
	return out, nil
}

// InsertRecords appends transactions in one database transaction. IDs are assigned by the store.
func (s *Store) InsertRecords(ctx context.Context, records []material.Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &db.Error{Op: db.OpSQLExec, Err: err}
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO transactions (
		tx_no, tx_date, tx_qty, txp1, txp2, buyer_code, buyer_name,
		item_code, item_name, category, function, item_type, model, performance, performance1,
		material, uom, bundled, origin, brand_code, unit_cost, sector, sub_sector,
		value, rationale, www, source
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return &db.Error{Op: db.OpSQLExec, Err: err}
	}
	defer stmt.Close()

	for i := range records {
		r := &records[i]
		if _, err := stmt.ExecContext(ctx,
			r.TxNo, r.TxDate, r.TxQty, r.TxP1, r.TxP2, r.BuyerCode, r.BuyerName,
			r.ItemCode, r.ItemName, r.Category, r.Function, r.ItemType, r.Model, r.Performance, r.Performance1,
			r.Material, r.UOM, r.Bundled, r.Origin, r.BrandCode, r.UnitCost, r.Sector, r.SubSector,
			r.Value, r.Rationale, r.WWW, r.Source,
		); err != nil {
			return &db.Error{Op: db.OpSQLExec, Err: fmt.Errorf("insert record %d: %w", i, err)}
		}
	}
	if err := tx.Commit(); err != nil {
		return &db.Error{Op: db.OpSQLExec, Err: err}
	}
	return nil
}

func (s *Store) queryRecords(ctx context.Context, query string, args ...any) ([]material.Record, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &db.Error{Op: db.OpSQLQuery, Err: err}
	}
	defer rows.Close()

	var out []material.Record
	for rows.Next() {
		var r material.Record
		if err := rows.Scan(
			&r.ID, &r.TxNo, &r.TxDate, &r.TxQty, &r.TxP1, &r.TxP2, &r.BuyerCode, &r.BuyerName,
			&r.ItemCode, &r.ItemName, &r.Category, &r.Function, &r.ItemType, &r.Model, &r.Performance, &r.Performance1,
			&r.Material, &r.UOM, &r.Bundled, &r.Origin, &r.BrandCode, &r.UnitCost, &r.Sector, &r.SubSector,
			&r.Value, &r.Rationale, &r.WWW, &r.Source,
		); err != nil {
			return nil, &db.Error{Op: db.OpSQLQuery, Err: err}
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, &db.Error{Op: db.OpSQLQuery, Err: err}
	}
	return out, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// contains builds a substring LIKE pattern; s matches literally under ESCAPE '\'.
func contains(s string) string { return "%" + likeEscaper.Replace(s) + "%" }

// containsWords matches the words of s in order with anything between them.
func containsWords(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = likeEscaper.Replace(w)
	}
	return "%" + strings.Join(words, "%") + "%"
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func nullDate(v *time.Time) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: v.Format(time.DateOnly), Valid: true}
}
