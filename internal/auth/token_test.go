package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gwan-project/landing-auth/internal/domain"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func testAccount() *domain.Account {
	return &domain.Account{
		ID:     "user_1700000000000_abc123def",
		Name:   "Jane Roe",
		Email:  "jane@x.com",
		Phone:  "+15551234567",
		Status: domain.StatusActivated,
	}
}

func TestTokenManager_IssueAndVerify(t *testing.T) {
	tm := NewTokenManager(testSecret, "landing-auth", 7*24*time.Hour)
	account := testAccount()

	token, err := tm.Issue(account)
	if err != nil {
		t.Fatalf("unexpected error issuing token: %v", err)
	}

	claims, err := tm.Verify(token)
	if err != nil {
		t.Fatalf("unexpected error verifying token: %v", err)
	}

	if claims.Subject != account.ID {
		t.Errorf("expected subject %q, got %q", account.ID, claims.Subject)
	}
	if claims.Email != account.Email {
		t.Errorf("expected email %q, got %q", account.Email, claims.Email)
	}
	if claims.Name != account.Name {
		t.Errorf("expected name %q, got %q", account.Name, claims.Name)
	}
	if claims.Status != string(domain.StatusActivated) {
		t.Errorf("expected status %q, got %q", domain.StatusActivated, claims.Status)
	}
}

func TestTokenManager_Verify_Errors(t *testing.T) {
	tm := NewTokenManager(testSecret, "landing-auth", time.Hour)
	account := testAccount()

	tests := []struct {
		name  string
		token func(t *testing.T) string
	}{
		{
			name: "garbage token",
			token: func(t *testing.T) string {
				return "not.a.token"
			},
		},
		{
			name: "wrong secret",
			token: func(t *testing.T) string {
				other := NewTokenManager("ffffffffffffffffffffffffffffffff", "landing-auth", time.Hour)
				token, err := other.Issue(account)
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return token
			},
		},
		{
			name: "missing email claim",
			token: func(t *testing.T) string {
				stripped := testAccount()
				stripped.Email = ""
				token, err := tm.Issue(stripped)
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return token
			},
		},
		{
			name: "missing name claim",
			token: func(t *testing.T) string {
				stripped := testAccount()
				stripped.Name = ""
				token, err := tm.Issue(stripped)
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return token
			},
		},
		{
			name: "wrong issuer",
			token: func(t *testing.T) string {
				other := NewTokenManager(testSecret, "someone-else", time.Hour)
				token, err := other.Issue(account)
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return token
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tm.Verify(tt.token(t)); err == nil {
				t.Error("expected verification to fail")
			}
		})
	}
}

func TestTokenManager_Verify_Expired(t *testing.T) {
	tm := NewTokenManager(testSecret, "landing-auth", -time.Minute)

	token, err := tm.Issue(testAccount())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := tm.Verify(token); err != ErrTokenExpired {
		t.Errorf("expected ErrTokenExpired, got %v", err)
	}
}

func TestMiddleware(t *testing.T) {
	tm := NewTokenManager(testSecret, "landing-auth", time.Hour)

	token, err := tm.Issue(testAccount())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var gotAccountID string
	handler := Middleware(tm, testLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAccountID = AccountIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name       string
		authHeader string
		wantStatus int
	}{
		{"valid token", "Bearer " + token, http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc", http.StatusUnauthorized},
		{"empty token", "Bearer ", http.StatusUnauthorized},
		{"bad token", "Bearer junk", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotAccountID = ""

			req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, rec.Code)
			}
			if tt.wantStatus == http.StatusOK && gotAccountID != "user_1700000000000_abc123def" {
				t.Errorf("expected account ID in context, got %q", gotAccountID)
			}
		})
	}
}
