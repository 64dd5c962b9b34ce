package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gwan-project/landing-auth/internal/domain"
)

// seedPendingAccount stores a PENDING account with a live activation code.
func seedPendingAccount(t *testing.T, repo *mockAccountRepo) (*domain.Account, string) {
	t.Helper()
	account, err := domain.NewAccount("Alice Tan", "alice@example.com", "+6281234567890")
	if err != nil {
		t.Fatalf("NewAccount() error = %v", err)
	}
	if err := account.GenerateActivationCode(); err != nil {
		t.Fatalf("GenerateActivationCode() error = %v", err)
	}
	if err := repo.Create(context.Background(), account); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	return account, *account.ActivationCode
}

func TestActivate(t *testing.T) {
	t.Run("activates and issues session token", func(t *testing.T) {
		repo := newMockAccountRepo()
		account, code := seedPendingAccount(t, repo)
		svc := NewActivationService(repo, testTokenManager(), testLogger())

		out, err := svc.Activate(context.Background(), ActivateInput{AccountID: account.ID, Code: code})
		if err != nil {
			t.Fatalf("Activate() error = %v", err)
		}
		if out.Account.Status != domain.StatusActivated {
			t.Errorf("status = %s, want ACTIVATED", out.Account.Status)
		}
		if out.Token == "" {
			t.Error("expected session token")
		}

		stored, _ := repo.GetByID(context.Background(), account.ID)
		if stored.Status != domain.StatusActivated {
			t.Errorf("persisted status = %s, want ACTIVATED", stored.Status)
		}
		if stored.ActivationCode != nil {
			t.Error("activation code not cleared after use")
		}
	})

	t.Run("replay fails after activation", func(t *testing.T) {
		repo := newMockAccountRepo()
		account, code := seedPendingAccount(t, repo)
		svc := NewActivationService(repo, testTokenManager(), testLogger())

		if _, err := svc.Activate(context.Background(), ActivateInput{AccountID: account.ID, Code: code}); err != nil {
			t.Fatalf("first Activate() error = %v", err)
		}
		if _, err := svc.Activate(context.Background(), ActivateInput{AccountID: account.ID, Code: code}); !errors.Is(err, domain.ErrAccountNotPending) {
			t.Errorf("replay error = %v, want ErrAccountNotPending", err)
		}
	})

	t.Run("wrong code", func(t *testing.T) {
		repo := newMockAccountRepo()
		account, code := seedPendingAccount(t, repo)
		svc := NewActivationService(repo, testTokenManager(), testLogger())

		wrong := "000000"
		if wrong == code {
			wrong = "000001"
		}
		if _, err := svc.Activate(context.Background(), ActivateInput{AccountID: account.ID, Code: wrong}); !errors.Is(err, domain.ErrCodeMismatch) {
			t.Errorf("Activate() error = %v, want ErrCodeMismatch", err)
		}

		// A failed attempt must not consume the code.
		stored, _ := repo.GetByID(context.Background(), account.ID)
		if stored.Status != domain.StatusPending {
			t.Errorf("status = %s, want PENDING", stored.Status)
		}
	})

	t.Run("expired code", func(t *testing.T) {
		repo := newMockAccountRepo()
		account, code := seedPendingAccount(t, repo)
		expired := time.Now().UTC().Add(-time.Minute)
		account.ActivationCodeExpiresAt = &expired
		if err := repo.Update(context.Background(), account); err != nil {
			t.Fatalf("Update() error = %v", err)
		}
		svc := NewActivationService(repo, testTokenManager(), testLogger())

		if _, err := svc.Activate(context.Background(), ActivateInput{AccountID: account.ID, Code: code}); !errors.Is(err, domain.ErrCodeExpired) {
			t.Errorf("Activate() error = %v, want ErrCodeExpired", err)
		}
	})

	t.Run("malformed code rejected before lookup", func(t *testing.T) {
		repo := newMockAccountRepo()
		repo.getErr = errors.New("should not be called")
		svc := NewActivationService(repo, testTokenManager(), testLogger())

		if _, err := svc.Activate(context.Background(), ActivateInput{AccountID: "user_x", Code: "12ab56"}); !errors.Is(err, domain.ErrInvalidCodeFormat) {
			t.Errorf("Activate() error = %v, want ErrInvalidCodeFormat", err)
		}
	})

	t.Run("unknown account", func(t *testing.T) {
		svc := NewActivationService(newMockAccountRepo(), testTokenManager(), testLogger())

		if _, err := svc.Activate(context.Background(), ActivateInput{AccountID: "user_missing", Code: "123456"}); !errors.Is(err, domain.ErrAccountNotFound) {
			t.Errorf("Activate() error = %v, want ErrAccountNotFound", err)
		}
	})
}
