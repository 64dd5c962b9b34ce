// Package auth provides JWT bearer authentication for the landing auth service.
package auth

import "errors"

// Authentication and token errors.
var (
	// ErrMissingAuthorizationHeader indicates no Authorization header was sent.
	ErrMissingAuthorizationHeader = errors.New("missing authorization header")

	// ErrInvalidAuthorizationHeader indicates the Authorization header is malformed.
	ErrInvalidAuthorizationHeader = errors.New("invalid authorization header")

	// ErrInvalidToken indicates the token failed signature or claims validation.
	ErrInvalidToken = errors.New("invalid token")

	// ErrTokenExpired indicates the token is past its expiry.
	ErrTokenExpired = errors.New("token expired")
)
