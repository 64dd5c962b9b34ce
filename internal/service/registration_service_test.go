package service

import (
	"context"
	"errors"
	"testing"

	"github.com/gwan-project/landing-auth/internal/domain"
)

func TestRegister(t *testing.T) {
	input := RegisterInput{
		Name:  "Alice Tan",
		Email: "alice@example.com",
		Phone: "+6281234567890",
	}

	t.Run("creates pending account and delivers code", func(t *testing.T) {
		repo := newMockAccountRepo()
		notifier := newMockNotifier()
		svc := NewRegistrationService(repo, notifier, false, testLogger())

		out, err := svc.Register(context.Background(), input)
		if err != nil {
			t.Fatalf("Register() error = %v", err)
		}
		if out.Account.Status != domain.StatusPending {
			t.Errorf("status = %s, want PENDING", out.Account.Status)
		}
		if out.Account.ActivationCode == nil {
			t.Fatal("activation code not set")
		}
		if got := notifier.activationCodes[out.Account.ID]; got != *out.Account.ActivationCode {
			t.Errorf("delivered code = %q, want %q", got, *out.Account.ActivationCode)
		}
		if out.ActivationCode != "" {
			t.Errorf("activation code echoed with echoing disabled: %q", out.ActivationCode)
		}
		if _, ok := repo.accounts[out.Account.ID]; !ok {
			t.Error("account not persisted")
		}
	})

	t.Run("echoes code when enabled", func(t *testing.T) {
		repo := newMockAccountRepo()
		notifier := newMockNotifier()
		svc := NewRegistrationService(repo, notifier, true, testLogger())

		out, err := svc.Register(context.Background(), input)
		if err != nil {
			t.Fatalf("Register() error = %v", err)
		}
		if out.ActivationCode == "" {
			t.Error("expected echoed activation code")
		}
		if out.ActivationCode != *out.Account.ActivationCode {
			t.Errorf("echoed code = %q, want %q", out.ActivationCode, *out.Account.ActivationCode)
		}
	})

	t.Run("validation errors", func(t *testing.T) {
		tests := []struct {
			name    string
			input   RegisterInput
			wantErr error
		}{
			{"short name", RegisterInput{Name: "A", Email: "a@b.com", Phone: "+6281234567890"}, domain.ErrInvalidName},
			{"bad email", RegisterInput{Name: "Alice", Email: "not-an-email", Phone: "+6281234567890"}, domain.ErrInvalidEmail},
			{"bad phone", RegisterInput{Name: "Alice", Email: "a@b.com", Phone: "123"}, domain.ErrInvalidPhone},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				svc := NewRegistrationService(newMockAccountRepo(), newMockNotifier(), false, testLogger())
				if _, err := svc.Register(context.Background(), tt.input); !errors.Is(err, tt.wantErr) {
					t.Errorf("Register() error = %v, want %v", err, tt.wantErr)
				}
			})
		}
	})

	t.Run("duplicate email", func(t *testing.T) {
		repo := newMockAccountRepo()
		svc := NewRegistrationService(repo, newMockNotifier(), false, testLogger())

		if _, err := svc.Register(context.Background(), input); err != nil {
			t.Fatalf("first Register() error = %v", err)
		}

		dup := input
		dup.Phone = "+6289999999999"
		if _, err := svc.Register(context.Background(), dup); !errors.Is(err, domain.ErrEmailAlreadyRegistered) {
			t.Errorf("Register() error = %v, want ErrEmailAlreadyRegistered", err)
		}
	})

	t.Run("duplicate phone", func(t *testing.T) {
		repo := newMockAccountRepo()
		svc := NewRegistrationService(repo, newMockNotifier(), false, testLogger())

		if _, err := svc.Register(context.Background(), input); err != nil {
			t.Fatalf("first Register() error = %v", err)
		}

		dup := input
		dup.Email = "other@example.com"
		if _, err := svc.Register(context.Background(), dup); !errors.Is(err, domain.ErrPhoneAlreadyRegistered) {
			t.Errorf("Register() error = %v, want ErrPhoneAlreadyRegistered", err)
		}
	})

	t.Run("constraint violation on insert passes through", func(t *testing.T) {
		// Simulates losing the race: the fast-path check passes but the
		// insert hits the unique constraint.
		repo := newMockAccountRepo()
		repo.createErr = domain.ErrEmailAlreadyRegistered
		svc := NewRegistrationService(repo, newMockNotifier(), false, testLogger())

		if _, err := svc.Register(context.Background(), input); !errors.Is(err, domain.ErrEmailAlreadyRegistered) {
			t.Errorf("Register() error = %v, want ErrEmailAlreadyRegistered", err)
		}
	})

	t.Run("delivery failure keeps account pending", func(t *testing.T) {
		repo := newMockAccountRepo()
		notifier := newMockNotifier()
		notifier.activationErr = errors.New("smtp down")
		svc := NewRegistrationService(repo, notifier, false, testLogger())

		_, err := svc.Register(context.Background(), input)
		if !errors.Is(err, ErrCodeDeliveryFailed) {
			t.Fatalf("Register() error = %v, want ErrCodeDeliveryFailed", err)
		}

		// The account survives with a live code so delivery can be retried.
		stored, err := repo.GetByEmail(context.Background(), input.Email)
		if err != nil {
			t.Fatalf("account not persisted after delivery failure: %v", err)
		}
		if stored.Status != domain.StatusPending {
			t.Errorf("status = %s, want PENDING", stored.Status)
		}
		if stored.ActivationCode == nil {
			t.Error("activation code cleared after delivery failure")
		}
	})

	t.Run("repository failure maps to internal error", func(t *testing.T) {
		repo := newMockAccountRepo()
		repo.getErr = errors.New("connection refused")
		svc := NewRegistrationService(repo, newMockNotifier(), false, testLogger())

		if _, err := svc.Register(context.Background(), input); !errors.Is(err, ErrInternalError) {
			t.Errorf("Register() error = %v, want ErrInternalError", err)
		}
	})
}
