// Package domain contains the core business entities for the Gwan landing
// auth service. These are pure Go structs with no external dependencies,
// representing accounts, characters and the activation/login lifecycle.
package domain

import (
	"regexp"
	"strings"
	"time"
)

// AccountStatus represents the lifecycle state of an account.
// The progression is strictly forward: PENDING -> ACTIVATED -> COMPLETED.
type AccountStatus string

const (
	// StatusPending is the initial state after registration.
	// An activation code exists only while the account is PENDING.
	StatusPending AccountStatus = "PENDING"

	// StatusActivated means the activation code was consumed successfully.
	// Login codes may be issued from this state onward.
	StatusActivated AccountStatus = "ACTIVATED"

	// StatusCompleted means the profile (character image) has been set.
	// This is a terminal state.
	StatusCompleted AccountStatus = "COMPLETED"
)

// rank orders statuses for the monotonic-progression invariant.
func (s AccountStatus) rank() int {
	switch s {
	case StatusPending:
		return 0
	case StatusActivated:
		return 1
	case StatusCompleted:
		return 2
	}
	return -1
}

// Valid returns true if the status is one of the known values.
func (s AccountStatus) Valid() bool {
	return s.rank() >= 0
}

// CanTransitionTo reports whether moving to the target status is a legal
// forward transition (statuses never regress).
func (s AccountStatus) CanTransitionTo(target AccountStatus) bool {
	return target.rank() == s.rank()+1
}

// Account represents a registered user in the system.
// Email and phone are each globally unique across accounts.
type Account struct {
	// ID is the opaque stable identifier, assigned at creation.
	ID string `json:"id"`

	// Name is the display name. Constraints: at least 2 characters.
	Name string `json:"name"`

	// Email is the unique email address for the account.
	Email string `json:"email"`

	// Phone is the unique phone number (WhatsApp) for the account.
	Phone string `json:"phone"`

	// Status is the current lifecycle state.
	Status AccountStatus `json:"status"`

	// ActivationCode is the one-time 6-digit activation code.
	// Present only between registration and successful activation.
	ActivationCode *string `json:"-"`

	// ActivationCodeExpiresAt is the expiry of the activation code.
	// Always set and cleared together with ActivationCode.
	ActivationCodeExpiresAt *time.Time `json:"-"`

	// LoginCode is the one-time 6-digit login code.
	// Present only between a login request and its consumption.
	LoginCode *string `json:"-"`

	// LoginCodeExpiresAt is the expiry of the login code.
	// Always set and cleared together with LoginCode.
	LoginCodeExpiresAt *time.Time `json:"-"`

	// ProfileImageURL is the character image URL, set on profile completion.
	ProfileImageURL *string `json:"profile_image_url,omitempty"`

	// CreatedAt is the timestamp when the account was created.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is the timestamp when the account was last mutated.
	UpdatedAt time.Time `json:"updated_at"`
}

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^\+?[\d\s\-()]{10,}$`)
)

// NewAccount creates a new pending account with a freshly generated ID.
// Returns a validation error if name, email or phone are malformed.
func NewAccount(name, email, phone string) (*Account, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	if err := ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := ValidatePhone(phone); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &Account{
		ID:        NewAccountID(),
		Name:      name,
		Email:     email,
		Phone:     phone,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// ValidateName checks the display name constraint (at least 2 characters).
func ValidateName(name string) error {
	if len(strings.TrimSpace(name)) < 2 {
		return ErrInvalidName
	}
	return nil
}

// ValidateEmail checks the email shape.
func ValidateEmail(email string) error {
	if !emailPattern.MatchString(email) {
		return ErrInvalidEmail
	}
	return nil
}

// ValidatePhone checks the phone shape: 10+ digits with optional leading +
// and the usual separators (spaces, hyphens, parentheses).
func ValidatePhone(phone string) error {
	if !phonePattern.MatchString(phone) {
		return ErrInvalidPhone
	}
	return nil
}

// ValidateContact checks that a login contact is either email-shaped or
// phone-shaped, dispatching on the presence of '@'. Anything else fails
// with ErrInvalidContact before any account lookup happens.
func ValidateContact(contact string) error {
	if strings.Contains(contact, "@") {
		if ValidateEmail(contact) != nil {
			return ErrInvalidContact
		}
		return nil
	}
	if ValidatePhone(contact) != nil {
		return ErrInvalidContact
	}
	return nil
}

// GenerateActivationCode assigns a fresh activation code and expiry.
// Any prior unconsumed code is discarded; only the newest code validates.
func (a *Account) GenerateActivationCode() error {
	code, err := GenerateOneTimeCode()
	if err != nil {
		return err
	}
	expiresAt := time.Now().UTC().Add(ActivationCodeTTL)
	a.ActivationCode = &code
	a.ActivationCodeExpiresAt = &expiresAt
	a.touch()
	return nil
}

// Activate consumes the activation code and moves the account to ACTIVATED.
// Fails if the account is not PENDING, no code is set, the code has expired,
// or the submitted code does not match.
func (a *Account) Activate(code string) error {
	return a.activateAt(code, time.Now().UTC())
}

func (a *Account) activateAt(code string, now time.Time) error {
	if a.Status != StatusPending {
		return ErrAccountNotPending
	}
	if a.ActivationCode == nil || a.ActivationCodeExpiresAt == nil {
		return ErrNoCodeIssued
	}
	if now.After(*a.ActivationCodeExpiresAt) {
		return ErrCodeExpired
	}
	if *a.ActivationCode != code {
		return ErrCodeMismatch
	}

	a.Status = StatusActivated
	a.ActivationCode = nil
	a.ActivationCodeExpiresAt = nil
	a.touch()
	return nil
}

// CanRequestLogin reports whether login codes may be issued for this
// account (status ACTIVATED or COMPLETED).
func (a *Account) CanRequestLogin() bool {
	return a.Status == StatusActivated || a.Status == StatusCompleted
}

// SetLoginCode stores a login code and its expiry, overwriting any prior
// code. At most one live login code exists per account; a newer request
// silently invalidates the earlier code (last write wins).
func (a *Account) SetLoginCode(code string, expiresAt time.Time) {
	a.LoginCode = &code
	a.LoginCodeExpiresAt = &expiresAt
	a.touch()
}

// ValidateLoginCode checks the submitted login code against the stored one.
// The caller clears the code after a successful validation.
func (a *Account) ValidateLoginCode(code string) error {
	return a.validateLoginCodeAt(code, time.Now().UTC())
}

func (a *Account) validateLoginCodeAt(code string, now time.Time) error {
	if a.LoginCode == nil || a.LoginCodeExpiresAt == nil {
		return ErrNoCodeIssued
	}
	if now.After(*a.LoginCodeExpiresAt) {
		return ErrCodeExpired
	}
	if *a.LoginCode != code {
		return ErrCodeMismatch
	}
	return nil
}

// ClearLoginCode removes the login code and its expiry together.
func (a *Account) ClearLoginCode() {
	a.LoginCode = nil
	a.LoginCodeExpiresAt = nil
	a.touch()
}

// CompleteProfile sets the profile image and moves the account to COMPLETED.
// Fails unless the account is ACTIVATED.
func (a *Account) CompleteProfile(imageURL string) error {
	if a.Status != StatusActivated {
		return ErrAccountNotActivated
	}
	a.ProfileImageURL = &imageURL
	a.Status = StatusCompleted
	a.touch()
	return nil
}

// touch refreshes the UpdatedAt timestamp.
func (a *Account) touch() {
	a.UpdatedAt = time.Now().UTC()
}

// Summary is the client-facing projection of an account.
type Summary struct {
	ID     string        `json:"id"`
	Name   string        `json:"name"`
	Email  string        `json:"email"`
	Phone  string        `json:"phone"`
	Status AccountStatus `json:"status"`
}

// Summary returns the client-facing projection of the account.
func (a *Account) Summary() Summary {
	return Summary{
		ID:     a.ID,
		Name:   a.Name,
		Email:  a.Email,
		Phone:  a.Phone,
		Status: a.Status,
	}
}
