package crypto

import (
	"errors"
	"testing"
)

func TestGenerateSigningKey(t *testing.T) {
	key, err := GenerateSigningKey()
	if err != nil {
		t.Fatalf("GenerateSigningKey() error = %v", err)
	}
	if len(key) != SigningKeySize*2 {
		t.Errorf("key length = %d, want %d", len(key), SigningKeySize*2)
	}

	parsed, err := ParseHexKey(key)
	if err != nil {
		t.Fatalf("ParseHexKey() error = %v", err)
	}
	if len(parsed) != SigningKeySize {
		t.Errorf("parsed length = %d, want %d", len(parsed), SigningKeySize)
	}

	other, err := GenerateSigningKey()
	if err != nil {
		t.Fatalf("GenerateSigningKey() error = %v", err)
	}
	if key == other {
		t.Error("two generated keys are identical")
	}
}

func TestParseHexKey(t *testing.T) {
	tests := []struct {
		name  string
		input string
		ok    bool
	}{
		{"valid", "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef", true},
		{"valid with whitespace", "  0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef\n", true},
		{"too short", "0123456789abcdef", false},
		{"not hex", "zzzz456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseHexKey(tt.input)
			if tt.ok && err != nil {
				t.Errorf("ParseHexKey() error = %v", err)
			}
			if !tt.ok && !errors.Is(err, ErrInvalidHexKey) {
				t.Errorf("ParseHexKey() error = %v, want ErrInvalidHexKey", err)
			}
		})
	}
}
