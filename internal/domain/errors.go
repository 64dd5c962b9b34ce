// Package domain contains the core business entities for the Gwan landing
// auth service.
package domain

import (
	"errors"
	"fmt"
)

// Domain errors - these represent business rule violations.
// They are distinct from infrastructure errors (database, network, etc.).

var (
	// ===========================================
	// Validation Errors
	// ===========================================

	// ErrInvalidName indicates the name is shorter than 2 characters.
	ErrInvalidName = errors.New("name must be at least 2 characters long")

	// ErrInvalidEmail indicates the email format is invalid.
	ErrInvalidEmail = errors.New("invalid email format")

	// ErrInvalidPhone indicates the phone format is invalid.
	ErrInvalidPhone = errors.New("invalid phone format")

	// ErrInvalidContact indicates the contact is neither an email nor a phone.
	ErrInvalidContact = errors.New("invalid contact: must be an email or phone number")

	// ErrInvalidCodeFormat indicates the submitted code is not 6 digits.
	ErrInvalidCodeFormat = errors.New("code must be 6 digits")

	// ===========================================
	// Account Errors
	// ===========================================

	// ErrAccountNotFound indicates the requested account does not exist.
	ErrAccountNotFound = errors.New("account not found")

	// ErrEmailAlreadyRegistered indicates an account with the email exists.
	ErrEmailAlreadyRegistered = errors.New("email already registered")

	// ErrPhoneAlreadyRegistered indicates an account with the phone exists.
	ErrPhoneAlreadyRegistered = errors.New("phone already registered")

	// ===========================================
	// State Errors
	// ===========================================

	// ErrAccountNotPending indicates activation was attempted on a
	// non-pending account.
	ErrAccountNotPending = errors.New("account is not in pending status")

	// ErrAccountNotActivated indicates profile completion was attempted
	// before activation.
	ErrAccountNotActivated = errors.New("account must be activated before completing profile")

	// ErrAccountNotReady indicates a login code was requested for an
	// account that has not finished activation.
	ErrAccountNotReady = errors.New("account is not activated yet")

	// ===========================================
	// One-Time Code Errors
	// ===========================================

	// ErrNoCodeIssued indicates no code is currently set on the account.
	ErrNoCodeIssued = errors.New("no code issued")

	// ErrCodeExpired indicates the code's expiry has passed.
	ErrCodeExpired = errors.New("code has expired")

	// ErrCodeMismatch indicates the submitted code does not match.
	ErrCodeMismatch = errors.New("code does not match")

	// ===========================================
	// Character / Upload Errors
	// ===========================================

	// ErrCharacterNotFound indicates the account has no character yet.
	ErrCharacterNotFound = errors.New("character not found")

	// ErrImageRequired indicates no image file was provided.
	ErrImageRequired = errors.New("image file is required")

	// ErrImageTypeNotAllowed indicates the content type is not an allowed image type.
	ErrImageTypeNotAllowed = errors.New("unsupported file type: only jpg, jpeg, png and gif images are allowed")

	// ErrImageTooLarge indicates the image exceeds the maximum size.
	ErrImageTooLarge = errors.New("file too large: maximum size is 20MB")

	// ErrCharacterHasNoImage indicates there is no image to analyze.
	ErrCharacterHasNoImage = errors.New("character has no image to process")
)

// DomainError wraps a domain error with additional context.
type DomainError struct {
	// Err is the underlying domain error.
	Err error

	// Message provides additional context.
	Message string

	// Resource identifies the affected resource (e.g., account ID, contact).
	Resource string
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Resource != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Err.Error(), e.Message, e.Resource)
	}
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error for errors.Is/errors.As.
func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new DomainError with context.
func NewDomainError(err error, message, resource string) *DomainError {
	return &DomainError{
		Err:      err,
		Message:  message,
		Resource: resource,
	}
}
