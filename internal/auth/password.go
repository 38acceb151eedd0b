package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"paragony/internal/storage"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
	ErrEmailExists        = errors.New("email already registered")
)

// AccountStore is the slice of the repository the authenticator needs.
type AccountStore interface {
	CreateAccount(ctx context.Context, a *storage.Account) error
	GetAccountByEmail(ctx context.Context, email string) (*storage.Account, error)
	GetAccountByID(ctx context.Context, id int64) (*storage.Account, error)
}

// PasswordAuthenticator registers and verifies accounts with bcrypt hashes.
type PasswordAuthenticator struct {
	store AccountStore
}

func NewPasswordAuthenticator(store AccountStore) *PasswordAuthenticator {
	return &PasswordAuthenticator{store: store}
}

func (a *PasswordAuthenticator) validatePassword(password string) error {
	if len(password) < 8 {
		return ErrWeakPassword
	}
	return nil
}

// Register creates a new account with a hashed password.
func (a *PasswordAuthenticator) Register(ctx context.Context, email, displayName, password string) (*storage.Account, error) {
	if err := a.validatePassword(password); err != nil {
		return nil, err
	}

	email = strings.ToLower(strings.TrimSpace(email))
	if existing, err := a.store.GetAccountByEmail(ctx, email); err == nil && existing != nil {
		return nil, ErrEmailExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	account := &storage.Account{
		Email:        email,
		DisplayName:  displayName,
		PasswordHash: string(hash),
	}
	if err := a.store.CreateAccount(ctx, account); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("creating account: %w", err)
	}
	return account, nil
}

// Authenticate verifies email and password, returning the account if valid.
func (a *PasswordAuthenticator) Authenticate(ctx context.Context, email, password string) (*storage.Account, error) {
	account, err := a.store.GetAccountByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return account, nil
}
