package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/gwan-project/landing-auth/internal/domain"
)

// Claims are the session token claims. The subject is the account ID;
// the remaining fields are a snapshot of the account at issue time and
// may go stale (the /me endpoint re-reads the live account).
type Claims struct {
	Email  string `json:"email"`
	Name   string `json:"name"`
	Status string `json:"status"`
	jwt.RegisteredClaims
}

// TokenManager issues and verifies HMAC-signed session tokens.
type TokenManager struct {
	secret   []byte
	issuer   string
	tokenTTL time.Duration
}

// NewTokenManager creates a token manager with the given signing secret.
func NewTokenManager(secret string, issuer string, tokenTTL time.Duration) *TokenManager {
	return &TokenManager{
		secret:   []byte(secret),
		issuer:   issuer,
		tokenTTL: tokenTTL,
	}
}

// Issue creates a signed session token for the account.
func (m *TokenManager) Issue(account *domain.Account) (string, error) {
	now := time.Now().UTC()

	claims := Claims{
		Email:  account.Email,
		Name:   account.Name,
		Status: string(account.Status),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   account.ID,
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.tokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}

// Verify parses and validates a session token, returning its claims.
func (m *TokenManager) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithIssuer(m.issuer))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if !token.Valid || claims.Subject == "" || claims.Email == "" || claims.Name == "" || claims.Status == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
