package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"paragony/internal/core"
)

// ListItems returns the account's items, optionally restricted to items
// assigned to the given owner.
func (r *SQLiteRepository) ListItems(ctx context.Context, accountID, ownerID int64) ([]core.Item, error) {
	query := `SELECT i.id, COALESCE(i.receipt_id, 0), i.category, i.value_cents,
		i.description, i.quantity, i.save_date
		FROM items i WHERE i.account_id = ?`
	args := []any{accountID}
	if ownerID != 0 {
		query += " AND EXISTS (SELECT 1 FROM item_owners io WHERE io.item_id = i.id AND io.owner_id = ?)"
		args = append(args, ownerID)
	}
	query += " ORDER BY i.id"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	items, err := scanItems(rows)
	if err != nil {
		return nil, err
	}
	if err := r.attachItemOwners(ctx, items); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *SQLiteRepository) GetItem(ctx context.Context, accountID, id int64) (*core.Item, error) {
	var it core.Item
	var saveDate string
	err := r.db.QueryRowContext(ctx,
		`SELECT id, COALESCE(receipt_id, 0), category, value_cents, description, quantity, save_date
		FROM items WHERE account_id = ? AND id = ?`,
		accountID, id,
	).Scan(&it.ID, &it.ReceiptID, &it.Category, &it.ValueCents, &it.Description, &it.Quantity, &saveDate)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	it.SaveDate = parseStoredDate(saveDate)

	items := []core.Item{it}
	if err := r.attachItemOwners(ctx, items); err != nil {
		return nil, err
	}
	return &items[0], nil
}

// CreateItem inserts a standalone item together with its owner assignments.
func (r *SQLiteRepository) CreateItem(ctx context.Context, accountID int64, it *core.Item) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := insertItem(ctx, tx, accountID, 0, it); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// UpdateItem replaces the item's fields and owner set.
func (r *SQLiteRepository) UpdateItem(ctx context.Context, accountID int64, it *core.Item) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE items SET category = ?, value_cents = ?, description = ?, quantity = ?
		WHERE account_id = ? AND id = ?`,
		it.Category, it.ValueCents, it.Description, it.Quantity, accountID, it.ID,
	)
	if err != nil {
		return fmt.Errorf("update item: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update item: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM item_owners WHERE item_id = ?", it.ID); err != nil {
		return fmt.Errorf("clear item owners: %w", err)
	}
	if err := insertItemOwners(ctx, tx, it.ID, it.OwnerIDs); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) DeleteItem(ctx context.Context, accountID, id int64) error {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM items WHERE account_id = ? AND id = ?",
		accountID, id,
	)
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// insertItem writes one item row plus its owner assignments inside tx.
// receiptID zero stores NULL.
func insertItem(ctx context.Context, tx *sql.Tx, accountID, receiptID int64, it *core.Item) error {
	var receipt any
	if receiptID != 0 {
		receipt = receiptID
	}
	res, err := tx.ExecContext(ctx,
		`INSERT INTO items (account_id, receipt_id, category, value_cents, description, quantity)
		VALUES (?, ?, ?, ?, ?, ?)`,
		accountID, receipt, it.Category, it.ValueCents, it.Description, it.Quantity,
	)
	if err != nil {
		return fmt.Errorf("insert item: %w", err)
	}
	it.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("item id: %w", err)
	}
	it.ReceiptID = receiptID
	return insertItemOwners(ctx, tx, it.ID, it.OwnerIDs)
}

func insertItemOwners(ctx context.Context, tx *sql.Tx, itemID int64, ownerIDs []int64) error {
	for _, ownerID := range ownerIDs {
		_, err := tx.ExecContext(ctx,
			"INSERT OR IGNORE INTO item_owners (item_id, owner_id) VALUES (?, ?)",
			itemID, ownerID,
		)
		if err != nil {
			return fmt.Errorf("insert item owner: %w", err)
		}
	}
	return nil
}

func scanItems(rows *sql.Rows) ([]core.Item, error) {
	var items []core.Item
	for rows.Next() {
		var it core.Item
		var saveDate string
		if err := rows.Scan(&it.ID, &it.ReceiptID, &it.Category, &it.ValueCents,
			&it.Description, &it.Quantity, &saveDate); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		it.SaveDate = parseStoredDate(saveDate)
		items = append(items, it)
	}
	return items, rows.Err()
}

// attachItemOwners loads the owner ids for every item in one query.
func (r *SQLiteRepository) attachItemOwners(ctx context.Context, items []core.Item) error {
	if len(items) == 0 {
		return nil
	}
	index := make(map[int64]int, len(items))
	args := make([]any, 0, len(items))
	for i := range items {
		index[items[i].ID] = i
		args = append(args, items[i].ID)
	}

	query := fmt.Sprintf(
		"SELECT item_id, owner_id FROM item_owners WHERE item_id IN (%s) ORDER BY item_id, owner_id",
		placeholders(len(items)),
	)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("load item owners: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var itemID, ownerID int64
		if err := rows.Scan(&itemID, &ownerID); err != nil {
			return fmt.Errorf("scan item owner: %w", err)
		}
		if i, ok := index[itemID]; ok {
			items[i].OwnerIDs = append(items[i].OwnerIDs, ownerID)
		}
	}
	return rows.Err()
}

// parseStoredDate tolerates both date and datetime text from SQLite.
func parseStoredDate(s string) core.Date {
	s = strings.TrimSpace(s)
	if len(s) >= 10 {
		if d, err := core.ParseDate(s[:10]); err == nil {
			return d
		}
	}
	return core.Date{}
}
