package storage

import (
	"context"
	"database/sql"
	"fmt"

	"paragony/internal/core"
)

func (r *SQLiteRepository) ListOwners(ctx context.Context, accountID int64) ([]core.Owner, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, name, payer FROM owners WHERE account_id = ? ORDER BY id",
		accountID,
	)
	if err != nil {
		return nil, fmt.Errorf("list owners: %w", err)
	}
	defer rows.Close()

	var owners []core.Owner
	for rows.Next() {
		var o core.Owner
		if err := rows.Scan(&o.ID, &o.Name, &o.Payer); err != nil {
			return nil, fmt.Errorf("scan owner: %w", err)
		}
		owners = append(owners, o)
	}
	return owners, rows.Err()
}

func (r *SQLiteRepository) GetOwner(ctx context.Context, accountID, id int64) (*core.Owner, error) {
	o := &core.Owner{}
	err := r.db.QueryRowContext(ctx,
		"SELECT id, name, payer FROM owners WHERE account_id = ? AND id = ?",
		accountID, id,
	).Scan(&o.ID, &o.Name, &o.Payer)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get owner: %w", err)
	}
	return o, nil
}

func (r *SQLiteRepository) CreateOwner(ctx context.Context, accountID int64, o *core.Owner) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO owners (account_id, name, payer) VALUES (?, ?, ?)",
		accountID, o.Name, o.Payer,
	)
	if err != nil {
		return fmt.Errorf("insert owner: %w", err)
	}
	o.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("owner id: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) UpdateOwner(ctx context.Context, accountID int64, o *core.Owner) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE owners SET name = ?, payer = ? WHERE account_id = ? AND id = ?",
		o.Name, o.Payer, accountID, o.ID,
	)
	if err != nil {
		return fmt.Errorf("update owner: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update owner: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) DeleteOwner(ctx context.Context, accountID, id int64) error {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM owners WHERE account_id = ? AND id = ?",
		accountID, id,
	)
	if err != nil {
		return fmt.Errorf("delete owner: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete owner: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// OwnersExist reports whether every given owner id belongs to the account.
func (r *SQLiteRepository) OwnersExist(ctx context.Context, accountID int64, ids []int64) (bool, error) {
	if len(ids) == 0 {
		return true, nil
	}
	unique := make(map[int64]struct{}, len(ids))
	args := []any{accountID}
	for _, id := range ids {
		if _, ok := unique[id]; ok {
			continue
		}
		unique[id] = struct{}{}
		args = append(args, id)
	}

	query := fmt.Sprintf(
		"SELECT COUNT(*) FROM owners WHERE account_id = ? AND id IN (%s)",
		placeholders(len(unique)),
	)
	var count int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return false, fmt.Errorf("count owners: %w", err)
	}
	return count == len(unique), nil
}
