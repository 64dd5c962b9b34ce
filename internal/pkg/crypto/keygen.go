// Package crypto provides key-generation utilities for the landing auth
// service.
package crypto

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// SigningKeySize is the size of a JWT signing key in bytes (HMAC-SHA256).
const SigningKeySize = 32

// ErrInvalidHexKey indicates the hex key is malformed or wrong length.
var ErrInvalidHexKey = errors.New("invalid hex key: must be 64 hex characters (32 bytes)")

// GenerateSigningKey generates a random 32-byte JWT signing key.
// Returns the key as a 64-character hex string.
func GenerateSigningKey() (string, error) {
	key := make([]byte, SigningKeySize)
	if _, err := rand.Read(key); err != nil {
		return "", fmt.Errorf("failed to generate signing key: %w", err)
	}
	return hex.EncodeToString(key), nil
}

// ParseHexKey parses a hex-encoded key string into bytes.
// Expects 64 hex characters (32 bytes).
func ParseHexKey(hexKey string) ([]byte, error) {
	hexKey = strings.TrimSpace(hexKey)

	if len(hexKey) != SigningKeySize*2 {
		return nil, ErrInvalidHexKey
	}

	key, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidHexKey, err)
	}

	return key, nil
}
