package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// Account is an authentication principal; all user data is scoped to one.
type Account struct {
	ID           int64
	Email        string
	DisplayName  string
	PasswordHash string
}

func (r *SQLiteRepository) CreateAccount(ctx context.Context, a *Account) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO accounts (email, display_name, password_hash) VALUES (?, ?, ?)",
		a.Email, a.DisplayName, a.PasswordHash,
	)
	if err != nil {
		// Loser of a concurrent register race hits the UNIQUE index.
		if strings.Contains(err.Error(), "UNIQUE constraint failed: accounts.email") {
			return fmt.Errorf("insert account: %w", ErrDuplicate)
		}
		return fmt.Errorf("insert account: %w", err)
	}
	a.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("account id: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetAccountByEmail(ctx context.Context, email string) (*Account, error) {
	a := &Account{}
	err := r.db.QueryRowContext(ctx,
		"SELECT id, email, display_name, password_hash FROM accounts WHERE email = ?",
		email,
	).Scan(&a.ID, &a.Email, &a.DisplayName, &a.PasswordHash)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get account by email: %w", err)
	}
	return a, nil
}

func (r *SQLiteRepository) GetAccountByID(ctx context.Context, id int64) (*Account, error) {
	a := &Account{}
	err := r.db.QueryRowContext(ctx,
		"SELECT id, email, display_name, password_hash FROM accounts WHERE id = ?",
		id,
	).Scan(&a.ID, &a.Email, &a.DisplayName, &a.PasswordHash)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get account by id: %w", err)
	}
	return a, nil
}
