// Package repository defines data access interfaces for the Gwan landing
// auth service. These interfaces abstract database operations, allowing for
// different implementations (PostgreSQL, SQLite, in-memory for testing)
// while keeping the service layer clean.
package repository

import (
	"context"
	"strings"

	"github.com/gwan-project/landing-auth/internal/domain"
)

// =============================================================================
// Account Repository
// =============================================================================

// AccountRepository defines the interface for account data access.
type AccountRepository interface {
	// Create creates a new account.
	// Returns domain.ErrEmailAlreadyRegistered or
	// domain.ErrPhoneAlreadyRegistered when a unique constraint fires;
	// the database constraint is the authoritative backstop for the
	// service-level pre-check.
	Create(ctx context.Context, account *domain.Account) error

	// GetByID retrieves an account by ID.
	GetByID(ctx context.Context, id string) (*domain.Account, error)

	// GetByEmail retrieves an account by email.
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)

	// GetByPhone retrieves an account by phone.
	GetByPhone(ctx context.Context, phone string) (*domain.Account, error)

	// GetByContact retrieves an account by contact, dispatching to email
	// or phone lookup based on the presence of '@'.
	GetByContact(ctx context.Context, contact string) (*domain.Account, error)

	// Update updates an existing account.
	Update(ctx context.Context, account *domain.Account) error

	// Delete deletes an account by ID. Administrative operation only;
	// the state machine never destroys accounts.
	Delete(ctx context.Context, id string) error

	// List returns all accounts with pagination.
	List(ctx context.Context, opts ListOptions) (*ListResult[domain.Account], error)
}

// IsEmailContact reports whether a contact string addresses the email
// channel rather than the phone (WhatsApp) channel.
func IsEmailContact(contact string) bool {
	return strings.Contains(contact, "@")
}

// =============================================================================
// Character Repository
// =============================================================================

// CharacterRepository defines the interface for character data access.
type CharacterRepository interface {
	// Create creates a new character.
	Create(ctx context.Context, character *domain.Character) error

	// GetByUserID retrieves the character owned by the given account.
	GetByUserID(ctx context.Context, userID string) (*domain.Character, error)

	// Update updates an existing character.
	Update(ctx context.Context, character *domain.Character) error

	// Delete deletes a character by ID.
	Delete(ctx context.Context, id string) error
}

// =============================================================================
// Analysis History Repository
// =============================================================================

// AnalysisRepository defines the interface for analysis history access.
type AnalysisRepository interface {
	// Create records an analysis run (success or failure).
	Create(ctx context.Context, record *domain.AnalysisRecord) error

	// ListByUserID returns analysis records for an account, newest first.
	ListByUserID(ctx context.Context, userID string, opts ListOptions) (*ListResult[domain.AnalysisRecord], error)
}

// =============================================================================
// Common Types
// =============================================================================

// ListOptions contains common pagination options.
type ListOptions struct {
	// Offset is the number of records to skip.
	Offset int

	// Limit is the maximum number of records to return.
	Limit int
}

// ListResult is a generic paginated list result.
type ListResult[T any] struct {
	// Items is the list of items.
	Items []*T

	// Total is the total number of items (without pagination).
	Total int64

	// Offset is the current offset.
	Offset int

	// Limit is the current limit.
	Limit int
}

// DatabaseHealth is an interface for database health checks, used by the
// readiness endpoint.
type DatabaseHealth interface {
	Ping(ctx context.Context) error
	Health(ctx context.Context) error
	Close() error
}

// Repositories holds all repository instances.
type Repositories struct {
	Account   AccountRepository
	Character CharacterRepository
	Analysis  AnalysisRepository
}
