package auth

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"paragony/internal/storage"
)

type fakeAccountStore struct {
	byEmail map[string]*storage.Account
	nextID  int64

	// hideFromLookup makes GetAccountByEmail miss, mimicking a concurrent
	// register racing past the pre-insert existence check.
	hideFromLookup bool
}

func newFakeAccountStore() *fakeAccountStore {
	return &fakeAccountStore{byEmail: make(map[string]*storage.Account), nextID: 1}
}

func (s *fakeAccountStore) CreateAccount(_ context.Context, a *storage.Account) error {
	if _, ok := s.byEmail[a.Email]; ok {
		return fmt.Errorf("insert account: %w", storage.ErrDuplicate)
	}
	a.ID = s.nextID
	s.nextID++
	s.byEmail[a.Email] = a
	return nil
}

func (s *fakeAccountStore) GetAccountByEmail(_ context.Context, email string) (*storage.Account, error) {
	if s.hideFromLookup {
		return nil, storage.ErrNotFound
	}
	if a, ok := s.byEmail[email]; ok {
		return a, nil
	}
	return nil, storage.ErrNotFound
}

func (s *fakeAccountStore) GetAccountByID(_ context.Context, id int64) (*storage.Account, error) {
	for _, a := range s.byEmail {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, storage.ErrNotFound
}

func TestRegisterAndAuthenticate(t *testing.T) {
	ctx := context.Background()
	authn := NewPasswordAuthenticator(newFakeAccountStore())

	account, err := authn.Register(ctx, "Ada@Example.com", "Ada", "correct horse")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if account.Email != "ada@example.com" {
		t.Errorf("email = %q, want lowercased", account.Email)
	}
	if account.PasswordHash == "correct horse" {
		t.Error("password stored in plain text")
	}

	t.Run("valid credentials", func(t *testing.T) {
		got, err := authn.Authenticate(ctx, "ada@example.com", "correct horse")
		if err != nil {
			t.Fatalf("Authenticate failed: %v", err)
		}
		if got.ID != account.ID {
			t.Errorf("account id = %d, want %d", got.ID, account.ID)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		if _, err := authn.Authenticate(ctx, "ada@example.com", "wrong password"); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("err = %v, want ErrInvalidCredentials", err)
		}
	})

	t.Run("unknown email", func(t *testing.T) {
		if _, err := authn.Authenticate(ctx, "nobody@example.com", "correct horse"); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("err = %v, want ErrInvalidCredentials", err)
		}
	})

	t.Run("duplicate email", func(t *testing.T) {
		if _, err := authn.Register(ctx, "ada@example.com", "Ada", "another pass"); !errors.Is(err, ErrEmailExists) {
			t.Fatalf("err = %v, want ErrEmailExists", err)
		}
	})

	t.Run("duplicate insert race", func(t *testing.T) {
		store := newFakeAccountStore()
		racer := NewPasswordAuthenticator(store)
		if _, err := racer.Register(ctx, "bob@example.com", "Bob", "another pass"); err != nil {
			t.Fatalf("Register failed: %v", err)
		}

		// The existence check misses but the insert hits the unique index.
		store.hideFromLookup = true
		if _, err := racer.Register(ctx, "bob@example.com", "Bob", "another pass"); !errors.Is(err, ErrEmailExists) {
			t.Fatalf("err = %v, want ErrEmailExists", err)
		}
	})

	t.Run("weak password", func(t *testing.T) {
		if _, err := authn.Register(ctx, "new@example.com", "New", "short"); !errors.Is(err, ErrWeakPassword) {
			t.Fatalf("err = %v, want ErrWeakPassword", err)
		}
	})
}

func TestJWTRoundTrip(t *testing.T) {
	manager := NewJWTManager("test-secret-key-32-bytes-long!!!", time.Hour)
	account := &storage.Account{ID: 42, Email: "ada@example.com"}

	token, err := manager.Generate(account)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	claims, err := manager.Validate(token)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if claims.AccountID != 42 || claims.Email != "ada@example.com" {
		t.Errorf("claims = %+v", claims)
	}

	t.Run("tampered token rejected", func(t *testing.T) {
		if _, err := manager.Validate(token + "x"); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("err = %v, want ErrInvalidToken", err)
		}
	})

	t.Run("wrong secret rejected", func(t *testing.T) {
		other := NewJWTManager("a-completely-different-secret!!!", time.Hour)
		if _, err := other.Validate(token); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("err = %v, want ErrInvalidToken", err)
		}
	})

	t.Run("expired token rejected", func(t *testing.T) {
		expired := NewJWTManager("test-secret-key-32-bytes-long!!!", -time.Minute)
		token, err := expired.Generate(account)
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		if _, err := manager.Validate(token); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("err = %v, want ErrInvalidToken", err)
		}
	})
}
