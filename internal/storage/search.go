package storage

import (
	"context"
	"fmt"
	"time"

	"paragony/internal/core"
)

// UpsertRecentShop creates or refreshes the recent-shop row for a
// normalized shop name. A single statement keeps the upsert atomic;
// concurrent writers race on last_used and the last one wins, which is
// acceptable for an autocomplete cache.
func (r *SQLiteRepository) UpsertRecentShop(ctx context.Context, accountID int64, name string) error {
	name = core.NormalizeName(name)
	if name == "" {
		return nil
	}
	now := time.Now().UTC().Format("2006-01-02 15:04:05")
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO recent_shops (account_id, name, last_used) VALUES (?, ?, ?)
		ON CONFLICT (account_id, name) DO UPDATE SET last_used = excluded.last_used`,
		accountID, name, now,
	)
	if err != nil {
		return fmt.Errorf("upsert recent shop: %w", err)
	}
	return nil
}

// SearchRecentShops returns shops matching the query. An empty query lists
// everything ordered by name; otherwise matches are substring,
// case-insensitive, most recently used first, capped at limit.
func (r *SQLiteRepository) SearchRecentShops(ctx context.Context, accountID int64, query string, limit int) ([]core.RecentShop, error) {
	var (
		rowsQuery string
		args      []any
	)
	if query == "" {
		rowsQuery = "SELECT id, name, last_used FROM recent_shops WHERE account_id = ? ORDER BY name"
		args = []any{accountID}
	} else {
		rowsQuery = `SELECT id, name, last_used FROM recent_shops
			WHERE account_id = ? AND instr(name, lower(?)) > 0
			ORDER BY last_used DESC LIMIT ?`
		args = []any{accountID, query, limit}
	}

	rows, err := r.db.QueryContext(ctx, rowsQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("search recent shops: %w", err)
	}
	defer rows.Close()

	var shops []core.RecentShop
	for rows.Next() {
		var s core.RecentShop
		var lastUsed string
		if err := rows.Scan(&s.ID, &s.Name, &lastUsed); err != nil {
			return nil, fmt.Errorf("scan recent shop: %w", err)
		}
		if t, err := time.Parse("2006-01-02 15:04:05", lastUsed); err == nil {
			s.LastUsed = t
		}
		shops = append(shops, s)
	}
	return shops, rows.Err()
}

func (r *SQLiteRepository) DeleteRecentShops(ctx context.Context, accountID int64) error {
	if _, err := r.db.ExecContext(ctx,
		"DELETE FROM recent_shops WHERE account_id = ?", accountID,
	); err != nil {
		return fmt.Errorf("delete recent shops: %w", err)
	}
	return nil
}

// DistinctReceiptShops returns the normalized distinct shop names across
// the account's receipts, for rebuilding the recent-shop table.
func (r *SQLiteRepository) DistinctReceiptShops(ctx context.Context, accountID int64) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT DISTINCT lower(trim(shop)) FROM receipts WHERE account_id = ? AND trim(shop) != ''",
		accountID,
	)
	if err != nil {
		return nil, fmt.Errorf("distinct receipt shops: %w", err)
	}
	defer rows.Close()

	var shops []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("scan shop: %w", err)
		}
		shops = append(shops, s)
	}
	return shops, rows.Err()
}

// IncrementItemPrediction adds delta to the frequency counter for a
// normalized item description, creating the row when missing. Same
// single-statement upsert tolerance as UpsertRecentShop.
func (r *SQLiteRepository) IncrementItemPrediction(ctx context.Context, accountID int64, description string, delta int64) error {
	description = core.NormalizeName(description)
	if description == "" {
		return nil
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO item_predictions (account_id, description, frequency) VALUES (?, ?, ?)
		ON CONFLICT (account_id, description) DO UPDATE SET frequency = frequency + excluded.frequency`,
		accountID, description, delta,
	)
	if err != nil {
		return fmt.Errorf("increment item prediction: %w", err)
	}
	return nil
}

// SearchItemPredictions returns predictions matching the query. An empty
// query lists everything ordered by description; otherwise matches are
// substring, case-insensitive, most frequent first.
func (r *SQLiteRepository) SearchItemPredictions(ctx context.Context, accountID int64, query string) ([]core.ItemPrediction, error) {
	var (
		rowsQuery string
		args      []any
	)
	if query == "" {
		rowsQuery = `SELECT id, description, frequency FROM item_predictions
			WHERE account_id = ? ORDER BY description`
		args = []any{accountID}
	} else {
		rowsQuery = `SELECT id, description, frequency FROM item_predictions
			WHERE account_id = ? AND instr(description, lower(?)) > 0
			ORDER BY frequency DESC, description`
		args = []any{accountID, query}
	}

	rows, err := r.db.QueryContext(ctx, rowsQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("search item predictions: %w", err)
	}
	defer rows.Close()

	var predictions []core.ItemPrediction
	for rows.Next() {
		var p core.ItemPrediction
		if err := rows.Scan(&p.ID, &p.Description, &p.Frequency); err != nil {
			return nil, fmt.Errorf("scan item prediction: %w", err)
		}
		predictions = append(predictions, p)
	}
	return predictions, rows.Err()
}

func (r *SQLiteRepository) DeleteItemPredictions(ctx context.Context, accountID int64) error {
	if _, err := r.db.ExecContext(ctx,
		"DELETE FROM item_predictions WHERE account_id = ?", accountID,
	); err != nil {
		return fmt.Errorf("delete item predictions: %w", err)
	}
	return nil
}

// ItemDescriptionCounts returns normalized item descriptions with their
// occurrence counts across receipt-attached items, for rebuilding the
// prediction table.
func (r *SQLiteRepository) ItemDescriptionCounts(ctx context.Context, accountID int64) (map[string]int64, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT lower(trim(description)), COUNT(*) FROM items
		WHERE account_id = ? AND receipt_id IS NOT NULL AND trim(description) != ''
		GROUP BY lower(trim(description))`,
		accountID,
	)
	if err != nil {
		return nil, fmt.Errorf("item description counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var desc string
		var n int64
		if err := rows.Scan(&desc, &n); err != nil {
			return nil, fmt.Errorf("scan description count: %w", err)
		}
		counts[desc] = n
	}
	return counts, rows.Err()
}
