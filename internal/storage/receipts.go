package storage

import (
	"context"
	"fmt"
	"strings"

	"paragony/internal/core"
)

// ReceiptFilter narrows receipt listings. Zero values mean "no filter".
type ReceiptFilter struct {
	ID              int64
	PayerID         int64
	Year            int
	Month           int
	Day             int
	TransactionType core.TransactionType
	Shop            string  // case-insensitive substring
	OwnerIDs        []int64 // receipts containing items assigned to any of these owners
	Categories      []string
}

// CreateReceipt persists the receipt and its nested items in one
// transaction; on any failure nothing is written.
func (r *SQLiteRepository) CreateReceipt(ctx context.Context, accountID int64, rec *core.Receipt) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO receipts (account_id, payer_id, shop, transaction_type, payment_date)
		VALUES (?, ?, ?, ?, ?)`,
		accountID, rec.PayerID, rec.Shop, rec.TransactionType, rec.PaymentDate.String(),
	)
	if err != nil {
		return fmt.Errorf("insert receipt: %w", err)
	}
	rec.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("receipt id: %w", err)
	}

	for i := range rec.Items {
		if err := insertItem(ctx, tx, accountID, rec.ID, &rec.Items[i]); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// UpdateReceipt replaces the receipt's fields and its entire item set:
// previously attached items are deleted, the new set is inserted. Partial
// item updates are not supported by this path.
func (r *SQLiteRepository) UpdateReceipt(ctx context.Context, accountID int64, rec *core.Receipt) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE receipts SET payer_id = ?, shop = ?, transaction_type = ?, payment_date = ?
		WHERE account_id = ? AND id = ?`,
		rec.PayerID, rec.Shop, rec.TransactionType, rec.PaymentDate.String(), accountID, rec.ID,
	)
	if err != nil {
		return fmt.Errorf("update receipt: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update receipt: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM items WHERE account_id = ? AND receipt_id = ?",
		accountID, rec.ID,
	); err != nil {
		return fmt.Errorf("clear receipt items: %w", err)
	}

	for i := range rec.Items {
		if err := insertItem(ctx, tx, accountID, rec.ID, &rec.Items[i]); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetReceipt(ctx context.Context, accountID, id int64) (*core.Receipt, error) {
	receipts, err := r.ListReceipts(ctx, accountID, ReceiptFilter{ID: id})
	if err != nil {
		return nil, err
	}
	if len(receipts) == 0 {
		return nil, ErrNotFound
	}
	return &receipts[0], nil
}

func (r *SQLiteRepository) DeleteReceipt(ctx context.Context, accountID, id int64) error {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM receipts WHERE account_id = ? AND id = ?",
		accountID, id,
	)
	if err != nil {
		return fmt.Errorf("delete receipt: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete receipt: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListReceipts returns receipts matching the filter, ordered by payment
// date, with their items and owner assignments loaded.
func (r *SQLiteRepository) ListReceipts(ctx context.Context, accountID int64, f ReceiptFilter) ([]core.Receipt, error) {
	query := `SELECT r.id, r.payer_id, r.shop, r.transaction_type, r.payment_date, r.save_date
		FROM receipts r WHERE r.account_id = ?`
	args := []any{accountID}

	if f.ID != 0 {
		query += " AND r.id = ?"
		args = append(args, f.ID)
	}
	if f.PayerID != 0 {
		query += " AND r.payer_id = ?"
		args = append(args, f.PayerID)
	}
	if f.Year != 0 {
		query += " AND strftime('%Y', r.payment_date) = ?"
		args = append(args, fmt.Sprintf("%04d", f.Year))
	}
	if f.Month != 0 {
		query += " AND strftime('%m', r.payment_date) = ?"
		args = append(args, fmt.Sprintf("%02d", f.Month))
	}
	if f.Day != 0 {
		query += " AND strftime('%d', r.payment_date) = ?"
		args = append(args, fmt.Sprintf("%02d", f.Day))
	}
	if f.TransactionType != "" {
		query += " AND r.transaction_type = ?"
		args = append(args, f.TransactionType)
	}
	if f.Shop != "" {
		query += " AND instr(lower(r.shop), lower(?)) > 0"
		args = append(args, f.Shop)
	}
	if len(f.OwnerIDs) > 0 {
		query += fmt.Sprintf(` AND EXISTS (
			SELECT 1 FROM items i JOIN item_owners io ON io.item_id = i.id
			WHERE i.receipt_id = r.id AND io.owner_id IN (%s))`,
			placeholders(len(f.OwnerIDs)))
		for _, id := range f.OwnerIDs {
			args = append(args, id)
		}
	}
	if len(f.Categories) > 0 {
		query += fmt.Sprintf(` AND EXISTS (
			SELECT 1 FROM items i WHERE i.receipt_id = r.id AND i.category IN (%s))`,
			placeholders(len(f.Categories)))
		for _, c := range f.Categories {
			args = append(args, c)
		}
	}
	query += " ORDER BY r.payment_date, r.id"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list receipts: %w", err)
	}
	defer rows.Close()

	var receipts []core.Receipt
	for rows.Next() {
		var rec core.Receipt
		var paymentDate, saveDate string
		if err := rows.Scan(&rec.ID, &rec.PayerID, &rec.Shop, &rec.TransactionType,
			&paymentDate, &saveDate); err != nil {
			return nil, fmt.Errorf("scan receipt: %w", err)
		}
		rec.PaymentDate = parseStoredDate(paymentDate)
		rec.SaveDate = parseStoredDate(saveDate)
		receipts = append(receipts, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate receipts: %w", err)
	}

	if err := r.attachReceiptItems(ctx, accountID, receipts); err != nil {
		return nil, err
	}
	return receipts, nil
}

// ListMonthReceipts loads the month's receipts with items, the common input
// of the aggregation endpoints. txType empty loads both kinds.
func (r *SQLiteRepository) ListMonthReceipts(ctx context.Context, accountID int64, year, month int, txType core.TransactionType) ([]core.Receipt, error) {
	return r.ListReceipts(ctx, accountID, ReceiptFilter{
		Year:            year,
		Month:           month,
		TransactionType: txType,
	})
}

func (r *SQLiteRepository) attachReceiptItems(ctx context.Context, accountID int64, receipts []core.Receipt) error {
	if len(receipts) == 0 {
		return nil
	}
	index := make(map[int64]int, len(receipts))
	args := []any{accountID}
	for i := range receipts {
		index[receipts[i].ID] = i
		args = append(args, receipts[i].ID)
	}

	query := fmt.Sprintf(
		`SELECT id, COALESCE(receipt_id, 0), category, value_cents, description, quantity, save_date
		FROM items WHERE account_id = ? AND receipt_id IN (%s) ORDER BY id`,
		placeholders(len(receipts)),
	)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("load receipt items: %w", err)
	}
	defer rows.Close()

	items, err := scanItems(rows)
	if err != nil {
		return err
	}
	if err := r.attachItemOwners(ctx, items); err != nil {
		return err
	}

	for _, it := range items {
		if i, ok := index[it.ReceiptID]; ok {
			receipts[i].Items = append(receipts[i].Items, it)
		}
	}
	return nil
}

// ShopExpenseSum is one row of the shop aggregation.
type ShopExpenseSum struct {
	Shop     string
	SumCents int64
}

// ShopExpenseSums groups the month's expense items by shop, restricted to
// the category set and to items assigned to any of the owners. Items are
// counted once regardless of how many selected owners they match.
func (r *SQLiteRepository) ShopExpenseSums(ctx context.Context, accountID int64, year, month int, categories []string, ownerIDs []int64) ([]ShopExpenseSum, error) {
	if len(categories) == 0 || len(ownerIDs) == 0 {
		return nil, nil
	}
	y, m := monthArgs(year, month)
	query := fmt.Sprintf(
		`SELECT r.shop, SUM(i.value_cents) AS sum_cents
		FROM receipts r
		JOIN items i ON i.receipt_id = r.id
		WHERE r.account_id = ?
		  AND r.transaction_type = 'expense'
		  AND strftime('%%Y', r.payment_date) = ?
		  AND strftime('%%m', r.payment_date) = ?
		  AND i.category IN (%s)
		  AND EXISTS (SELECT 1 FROM item_owners io
		              WHERE io.item_id = i.id AND io.owner_id IN (%s))
		GROUP BY r.shop
		ORDER BY sum_cents DESC, r.shop`,
		placeholders(len(categories)), placeholders(len(ownerIDs)),
	)
	args := []any{accountID, y, m}
	for _, c := range categories {
		args = append(args, c)
	}
	for _, id := range ownerIDs {
		args = append(args, id)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("shop expense sums: %w", err)
	}
	defer rows.Close()

	var sums []ShopExpenseSum
	for rows.Next() {
		var s ShopExpenseSum
		if err := rows.Scan(&s.Shop, &s.SumCents); err != nil {
			return nil, fmt.Errorf("scan shop sum: %w", err)
		}
		sums = append(sums, s)
	}
	return sums, rows.Err()
}

// CategoryExpenseSum is one row of the category aggregation.
type CategoryExpenseSum struct {
	Category string
	SumCents int64
}

// CategoryExpenseSums groups the month's expense items by category, sorted
// by category name. An optional owner filter restricts the counted items.
func (r *SQLiteRepository) CategoryExpenseSums(ctx context.Context, accountID int64, year, month int, ownerIDs []int64) ([]CategoryExpenseSum, error) {
	y, m := monthArgs(year, month)
	var b strings.Builder
	b.WriteString(`SELECT i.category, SUM(i.value_cents) AS sum_cents
		FROM receipts r
		JOIN items i ON i.receipt_id = r.id
		WHERE r.account_id = ?
		  AND r.transaction_type = 'expense'
		  AND strftime('%Y', r.payment_date) = ?
		  AND strftime('%m', r.payment_date) = ?`)
	args := []any{accountID, y, m}
	if len(ownerIDs) > 0 {
		fmt.Fprintf(&b,
			` AND EXISTS (SELECT 1 FROM item_owners io
			WHERE io.item_id = i.id AND io.owner_id IN (%s))`,
			placeholders(len(ownerIDs)))
		for _, id := range ownerIDs {
			args = append(args, id)
		}
	}
	b.WriteString(" GROUP BY i.category ORDER BY i.category")

	rows, err := r.db.QueryContext(ctx, b.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("category expense sums: %w", err)
	}
	defer rows.Close()

	var sums []CategoryExpenseSum
	for rows.Next() {
		var s CategoryExpenseSum
		if err := rows.Scan(&s.Category, &s.SumCents); err != nil {
			return nil, fmt.Errorf("scan category sum: %w", err)
		}
		sums = append(sums, s)
	}
	return sums, rows.Err()
}
