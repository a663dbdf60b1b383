package catalog

import (
	"context"

	"github.com/kailas-cloud/matsearch/internal/db"
	"github.com/kailas-cloud/matsearch/internal/domain/material"
)

const productColumns = `product_uid, item_code, item_name, category, function, item_type, model,
	performance, performance1, material, brand_code, uom, embedding_hash`

const productUpdate = `ON CONFLICT(product_uid) DO UPDATE SET
	item_code = excluded.item_code,
	item_name = excluded.item_name,
	category = excluded.category,
	function = excluded.function,
	item_type = excluded.item_type,
	model = excluded.model,
	performance = excluded.performance,
	performance1 = excluded.performance1,
	material = excluded.material,
	brand_code = excluded.brand_code,
	uom = excluded.uom`

// UpsertProducts inserts or refreshes product master rows. Stored embedding hashes are preserved.
func (s *Store) UpsertProducts(ctx context.Context, products []material.Product) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &db.Error{Op: db.OpSQLExec, Err: err}
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO products (`+productColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, '') `+productUpdate)
	if err != nil {
		return &db.Error{Op: db.OpSQLExec, Err: err}
	}
	defer stmt.Close()

	for i := range products {
		p := &products[i]
		if _, err := stmt.ExecContext(ctx,
			p.UID, p.ItemCode, p.ItemName, p.Category, p.Function, p.ItemType, p.Model,
			p.Performance, p.Performance1, p.Material, p.BrandCode, p.UOM,
		); err != nil {
			return &db.Error{Op: db.OpSQLExec, Err: err}
		}
	}
	if err := tx.Commit(); err != nil {
		return &db.Error{Op: db.OpSQLExec, Err: err}
	}
	return nil
}

// DeriveProducts builds one product per item code from its most recent transaction.
// The product uid is the upper-cased item code. It returns the number of rows written.
func (s *Store) DeriveProducts(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `INSERT INTO products (`+productColumns+`)
		SELECT UPPER(TRIM(item_code)), TRIM(item_code), item_name, category, function, item_type, model,
			performance, performance1, material, brand_code, uom, ''
		FROM transactions
		WHERE id IN (
			SELECT MAX(id) FROM transactions WHERE TRIM(item_code) <> '' GROUP BY UPPER(TRIM(item_code))
		) `+productUpdate)
	if err != nil {
		return 0, &db.Error{Op: db.OpSQLExec, Err: err}
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, &db.Error{Op: db.OpSQLExec, Err: err}
	}
	return n, nil
}

// ListProducts pages through the product master ordered by uid.
func (s *Store) ListProducts(ctx context.Context, offset, limit int) ([]material.Product, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+productColumns+` FROM products ORDER BY product_uid LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, &db.Error{Op: db.OpSQLQuery, Err: err}
	}
	defer rows.Close()

	var out []material.Product
	for rows.Next() {
		var p material.Product
		if err := rows.Scan(
			&p.UID, &p.ItemCode, &p.ItemName, &p.Category, &p.Function, &p.ItemType, &p.Model,
			&p.Performance, &p.Performance1, &p.Material, &p.BrandCode, &p.UOM, &p.EmbeddingHash,
		); err != nil {
			return nil, &db.Error{Op: db.OpSQLQuery, Err: err}
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, &db.Error{Op: db.OpSQLQuery, Err: err}
	}
	return out, nil
}

// SetEmbeddingHash records the hash of the text a product was last embedded from.
func (s *Store) SetEmbeddingHash(ctx context.Context, uid, hash string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE products SET embedding_hash = ? WHERE product_uid = ?`, hash, uid)
	if err != nil {
		return &db.Error{Op: db.OpSQLExec, Err: err}
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return &db.Error{Op: db.OpSQLExec, Err: db.ErrKeyNotFound}
	}
	return nil
}
