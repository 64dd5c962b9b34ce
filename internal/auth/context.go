package auth

import "context"

// contextKey is a private type for context keys in this package.
type contextKey struct{}

var claimsKey = contextKey{}

// WithClaims returns a context carrying the verified token claims.
func WithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// ClaimsFromContext extracts the verified token claims from the context.
// Returns nil if the request was not authenticated.
func ClaimsFromContext(ctx context.Context) *Claims {
	claims, _ := ctx.Value(claimsKey).(*Claims)
	return claims
}

// AccountIDFromContext extracts the authenticated account ID from the
// context. Returns "" if the request was not authenticated.
func AccountIDFromContext(ctx context.Context) string {
	if claims := ClaimsFromContext(ctx); claims != nil {
		return claims.Subject
	}
	return ""
}
