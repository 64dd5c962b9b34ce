// Package domain contains the core business entities for the Gwan landing
// auth service.
package domain

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"regexp"
	"time"
)

// One-time code parameters. Codes are 6-digit numeric values sampled
// uniformly from [100000, 999999] so they never carry a leading zero.
// They are short-lived and single-use, not cryptographic tokens.
const (
	// ActivationCodeTTL is how long an activation code stays valid.
	ActivationCodeTTL = 15 * time.Minute

	// LoginCodeTTL is how long a login code stays valid.
	LoginCodeTTL = 10 * time.Minute

	// OneTimeCodeLength is the number of digits in a one-time code.
	OneTimeCodeLength = 6

	codeMin   = 100000
	codeRange = 900000
)

var codePattern = regexp.MustCompile(`^\d{6}$`)

// GenerateOneTimeCode produces a 6-digit numeric code using crypto/rand.
func GenerateOneTimeCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(codeRange))
	if err != nil {
		return "", fmt.Errorf("failed to generate one-time code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+codeMin), nil
}

// IsOneTimeCode reports whether s has the shape of a one-time code.
func IsOneTimeCode(s string) bool {
	return codePattern.MatchString(s)
}

// idChars is the alphabet for entity ID suffixes (lowercase base36).
const idChars = "0123456789abcdefghijklmnopqrstuvwxyz"

// NewAccountID generates a fresh account identifier.
// Format: user_<unix-millis>_<9 random base36 chars>. The timestamp prefix
// keeps IDs roughly sortable; the random suffix guarantees uniqueness.
func NewAccountID() string {
	return newEntityID("user")
}

func newEntityID(prefix string) string {
	suffix := make([]byte, 9)
	randomBytes := make([]byte, 9)
	if _, err := rand.Read(randomBytes); err != nil {
		// crypto/rand failing means the platform RNG is broken; there is
		// no sensible recovery for ID generation.
		panic(fmt.Sprintf("failed to read random bytes: %v", err))
	}
	for i := range suffix {
		suffix[i] = idChars[int(randomBytes[i])%len(idChars)]
	}
	return fmt.Sprintf("%s_%d_%s", prefix, time.Now().UnixMilli(), suffix)
}
