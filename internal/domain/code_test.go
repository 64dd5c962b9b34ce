package domain

import (
	"strings"
	"testing"
)

func TestGenerateOneTimeCode(t *testing.T) {
	seen := make(map[string]bool)

	for i := 0; i < 200; i++ {
		code, err := GenerateOneTimeCode()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(code) != OneTimeCodeLength {
			t.Fatalf("expected %d digits, got %q", OneTimeCodeLength, code)
		}
		if !IsOneTimeCode(code) {
			t.Fatalf("code %q is not numeric", code)
		}
		if code[0] == '0' {
			t.Fatalf("code %q has a leading zero", code)
		}
		seen[code] = true
	}

	// 200 draws from 900000 values should essentially never all collide.
	if len(seen) < 2 {
		t.Error("expected some variation across generated codes")
	}
}

func TestIsOneTimeCode(t *testing.T) {
	tests := []struct {
		code string
		want bool
	}{
		{"123456", true},
		{"000000", true},
		{"12345", false},
		{"1234567", false},
		{"12345a", false},
		{"", false},
		{" 123456", false},
	}

	for _, tt := range tests {
		if got := IsOneTimeCode(tt.code); got != tt.want {
			t.Errorf("IsOneTimeCode(%q) = %v, want %v", tt.code, got, tt.want)
		}
	}
}

func TestNewAccountID(t *testing.T) {
	id := NewAccountID()
	if !strings.HasPrefix(id, "user_") {
		t.Errorf("expected user_ prefix, got %q", id)
	}
	if parts := strings.Split(id, "_"); len(parts) != 3 || len(parts[2]) != 9 {
		t.Errorf("unexpected ID shape: %q", id)
	}
	if NewAccountID() == id {
		t.Error("consecutive IDs must differ")
	}
}
