package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gwan-project/landing-auth/internal/domain"
	"github.com/gwan-project/landing-auth/internal/lock"
)

// seedActivatedAccount stores an ACTIVATED account.
func seedActivatedAccount(t *testing.T, repo *mockAccountRepo) *domain.Account {
	t.Helper()
	account, code := seedPendingAccount(t, repo)
	if err := account.Activate(code); err != nil {
		t.Fatalf("Activate() error = %v", err)
	}
	if err := repo.Update(context.Background(), account); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	return account
}

func newTestLoginService(repo *mockAccountRepo, notifier *mockNotifier, echo bool) *LoginService {
	return NewLoginService(repo, notifier, testTokenManager(), lock.NewNoOpLocker(), echo, testLogger())
}

func TestRequestLogin(t *testing.T) {
	t.Run("issues code by email", func(t *testing.T) {
		repo := newMockAccountRepo()
		account := seedActivatedAccount(t, repo)
		notifier := newMockNotifier()
		svc := newTestLoginService(repo, notifier, false)

		out, err := svc.RequestLogin(context.Background(), RequestLoginInput{Contact: account.Email})
		if err != nil {
			t.Fatalf("RequestLogin() error = %v", err)
		}
		if out.Channel != "email" {
			t.Errorf("channel = %q, want email", out.Channel)
		}
		if out.LoginCode != "" {
			t.Errorf("login code echoed with echoing disabled: %q", out.LoginCode)
		}

		stored, _ := repo.GetByID(context.Background(), account.ID)
		if stored.LoginCode == nil {
			t.Fatal("login code not persisted")
		}
		if got := notifier.loginCodes[account.ID]; got != *stored.LoginCode {
			t.Errorf("delivered code = %q, want %q", got, *stored.LoginCode)
		}
		if got := notifier.loginContacts[account.ID]; got != account.Email {
			t.Errorf("delivery contact = %q, want %q", got, account.Email)
		}
	})

	t.Run("issues code by phone", func(t *testing.T) {
		repo := newMockAccountRepo()
		account := seedActivatedAccount(t, repo)
		svc := newTestLoginService(repo, newMockNotifier(), false)

		out, err := svc.RequestLogin(context.Background(), RequestLoginInput{Contact: account.Phone})
		if err != nil {
			t.Fatalf("RequestLogin() error = %v", err)
		}
		if out.Channel != "whatsapp" {
			t.Errorf("channel = %q, want whatsapp", out.Channel)
		}
	})

	t.Run("newer request overwrites earlier code", func(t *testing.T) {
		repo := newMockAccountRepo()
		account := seedActivatedAccount(t, repo)
		svc := newTestLoginService(repo, newMockNotifier(), true)

		first, err := svc.RequestLogin(context.Background(), RequestLoginInput{Contact: account.Email})
		if err != nil {
			t.Fatalf("first RequestLogin() error = %v", err)
		}
		second, err := svc.RequestLogin(context.Background(), RequestLoginInput{Contact: account.Email})
		if err != nil {
			t.Fatalf("second RequestLogin() error = %v", err)
		}

		stored, _ := repo.GetByID(context.Background(), account.ID)
		if *stored.LoginCode != second.LoginCode {
			t.Errorf("stored code = %q, want latest %q", *stored.LoginCode, second.LoginCode)
		}
		if first.LoginCode == second.LoginCode {
			// Astronomically unlikely; a collision here means the
			// generator is broken.
			t.Errorf("two requests produced the same code %q", first.LoginCode)
		}
	})

	t.Run("pending account cannot request login", func(t *testing.T) {
		repo := newMockAccountRepo()
		account, _ := seedPendingAccount(t, repo)
		svc := newTestLoginService(repo, newMockNotifier(), false)

		if _, err := svc.RequestLogin(context.Background(), RequestLoginInput{Contact: account.Email}); !errors.Is(err, domain.ErrAccountNotReady) {
			t.Errorf("RequestLogin() error = %v, want ErrAccountNotReady", err)
		}
	})

	t.Run("unknown contact", func(t *testing.T) {
		svc := newTestLoginService(newMockAccountRepo(), newMockNotifier(), false)

		if _, err := svc.RequestLogin(context.Background(), RequestLoginInput{Contact: "nobody@example.com"}); !errors.Is(err, domain.ErrAccountNotFound) {
			t.Errorf("RequestLogin() error = %v, want ErrAccountNotFound", err)
		}
	})

	t.Run("malformed contact rejected before lookup", func(t *testing.T) {
		repo := newMockAccountRepo()
		repo.getErr = errors.New("should not be called")
		svc := newTestLoginService(repo, newMockNotifier(), false)

		contacts := []string{"   ", "definitely-not-a-contact", "not@", "12345"}
		for _, contact := range contacts {
			if _, err := svc.RequestLogin(context.Background(), RequestLoginInput{Contact: contact}); !errors.Is(err, domain.ErrInvalidContact) {
				t.Errorf("RequestLogin(%q) error = %v, want ErrInvalidContact", contact, err)
			}
		}
	})

	t.Run("delivery failure", func(t *testing.T) {
		repo := newMockAccountRepo()
		account := seedActivatedAccount(t, repo)
		notifier := newMockNotifier()
		notifier.loginErr = errors.New("gateway timeout")
		svc := newTestLoginService(repo, notifier, false)

		if _, err := svc.RequestLogin(context.Background(), RequestLoginInput{Contact: account.Email}); !errors.Is(err, ErrCodeDeliveryFailed) {
			t.Errorf("RequestLogin() error = %v, want ErrCodeDeliveryFailed", err)
		}
	})
}

func TestValidateLogin(t *testing.T) {
	t.Run("valid code issues token and consumes code", func(t *testing.T) {
		repo := newMockAccountRepo()
		account := seedActivatedAccount(t, repo)
		svc := newTestLoginService(repo, newMockNotifier(), true)

		issued, err := svc.RequestLogin(context.Background(), RequestLoginInput{Contact: account.Email})
		if err != nil {
			t.Fatalf("RequestLogin() error = %v", err)
		}

		out, err := svc.ValidateLogin(context.Background(), ValidateLoginInput{Contact: account.Email, Code: issued.LoginCode})
		if err != nil {
			t.Fatalf("ValidateLogin() error = %v", err)
		}
		if out.Token == "" {
			t.Error("expected session token")
		}
		if out.Account.ID != account.ID {
			t.Errorf("account ID = %q, want %q", out.Account.ID, account.ID)
		}

		stored, _ := repo.GetByID(context.Background(), account.ID)
		if stored.LoginCode != nil {
			t.Error("login code not consumed")
		}
	})

	t.Run("code is single use", func(t *testing.T) {
		repo := newMockAccountRepo()
		account := seedActivatedAccount(t, repo)
		svc := newTestLoginService(repo, newMockNotifier(), true)

		issued, err := svc.RequestLogin(context.Background(), RequestLoginInput{Contact: account.Email})
		if err != nil {
			t.Fatalf("RequestLogin() error = %v", err)
		}
		input := ValidateLoginInput{Contact: account.Email, Code: issued.LoginCode}
		if _, err := svc.ValidateLogin(context.Background(), input); err != nil {
			t.Fatalf("first ValidateLogin() error = %v", err)
		}
		if _, err := svc.ValidateLogin(context.Background(), input); !errors.Is(err, ErrLoginFailed) {
			t.Errorf("replay error = %v, want ErrLoginFailed", err)
		}
	})

	t.Run("code failures collapse to one error", func(t *testing.T) {
		// Wrong, expired and absent codes must be indistinguishable to the
		// caller.
		tests := []struct {
			name string
			prep func(t *testing.T, repo *mockAccountRepo, account *domain.Account) string
		}{
			{
				name: "no code issued",
				prep: func(t *testing.T, repo *mockAccountRepo, account *domain.Account) string {
					return "123456"
				},
			},
			{
				name: "wrong code",
				prep: func(t *testing.T, repo *mockAccountRepo, account *domain.Account) string {
					account.SetLoginCode("654321", time.Now().UTC().Add(domain.LoginCodeTTL))
					if err := repo.Update(context.Background(), account); err != nil {
						t.Fatalf("Update() error = %v", err)
					}
					return "123456"
				},
			},
			{
				name: "expired code",
				prep: func(t *testing.T, repo *mockAccountRepo, account *domain.Account) string {
					account.SetLoginCode("654321", time.Now().UTC().Add(-time.Minute))
					if err := repo.Update(context.Background(), account); err != nil {
						t.Fatalf("Update() error = %v", err)
					}
					return "654321"
				},
			},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				repo := newMockAccountRepo()
				account := seedActivatedAccount(t, repo)
				svc := newTestLoginService(repo, newMockNotifier(), false)

				code := tt.prep(t, repo, account)
				if _, err := svc.ValidateLogin(context.Background(), ValidateLoginInput{Contact: account.Email, Code: code}); !errors.Is(err, ErrLoginFailed) {
					t.Errorf("ValidateLogin() error = %v, want ErrLoginFailed", err)
				}
			})
		}
	})

	t.Run("malformed code rejected before lookup", func(t *testing.T) {
		repo := newMockAccountRepo()
		repo.getErr = errors.New("should not be called")
		svc := newTestLoginService(repo, newMockNotifier(), false)

		if _, err := svc.ValidateLogin(context.Background(), ValidateLoginInput{Contact: "a@b.com", Code: "12345"}); !errors.Is(err, domain.ErrInvalidCodeFormat) {
			t.Errorf("ValidateLogin() error = %v, want ErrInvalidCodeFormat", err)
		}
	})

	t.Run("unknown contact", func(t *testing.T) {
		svc := newTestLoginService(newMockAccountRepo(), newMockNotifier(), false)

		if _, err := svc.ValidateLogin(context.Background(), ValidateLoginInput{Contact: "nobody@example.com", Code: "123456"}); !errors.Is(err, domain.ErrAccountNotFound) {
			t.Errorf("ValidateLogin() error = %v, want ErrAccountNotFound", err)
		}
	})

	t.Run("malformed contact rejected before lookup", func(t *testing.T) {
		repo := newMockAccountRepo()
		repo.getErr = errors.New("should not be called")
		svc := newTestLoginService(repo, newMockNotifier(), false)

		if _, err := svc.ValidateLogin(context.Background(), ValidateLoginInput{Contact: "definitely-not-a-contact", Code: "123456"}); !errors.Is(err, domain.ErrInvalidContact) {
			t.Errorf("ValidateLogin() error = %v, want ErrInvalidContact", err)
		}
	})

	t.Run("pending account cannot validate login", func(t *testing.T) {
		repo := newMockAccountRepo()
		account, _ := seedPendingAccount(t, repo)
		svc := newTestLoginService(repo, newMockNotifier(), false)

		if _, err := svc.ValidateLogin(context.Background(), ValidateLoginInput{Contact: account.Email, Code: "123456"}); !errors.Is(err, domain.ErrAccountNotReady) {
			t.Errorf("ValidateLogin() error = %v, want ErrAccountNotReady", err)
		}
	})
}
