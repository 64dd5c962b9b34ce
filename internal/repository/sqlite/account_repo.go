package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/gwan-project/landing-auth/internal/domain"
	"github.com/gwan-project/landing-auth/internal/repository"
)

// accountRepository implements repository.AccountRepository for SQLite.
type accountRepository struct {
	db *DB
}

// NewAccountRepository creates a new SQLite account repository.
func NewAccountRepository(db *DB) repository.AccountRepository {
	return &accountRepository{db: db}
}

const accountColumns = `
	id, name, email, phone, status,
	activation_code, activation_code_expires_at,
	login_code, login_code_expires_at,
	profile_image_url, created_at, updated_at
`

// Create creates a new account.
func (r *accountRepository) Create(ctx context.Context, account *domain.Account) error {
	query := `
		INSERT INTO accounts (` + accountColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		account.ID,
		account.Name,
		account.Email,
		account.Phone,
		string(account.Status),
		nullString(account.ActivationCode),
		nullTime(account.ActivationCodeExpiresAt),
		nullString(account.LoginCode),
		nullTime(account.LoginCodeExpiresAt),
		nullString(account.ProfileImageURL),
		account.CreatedAt.Format(time.RFC3339),
		account.UpdatedAt.Format(time.RFC3339),
	)

	if err != nil {
		if isUniqueViolation(err) {
			return mapAccountUniqueViolation(err)
		}
		return fmt.Errorf("failed to create account: %w", err)
	}

	return nil
}

// GetByID retrieves an account by ID.
func (r *accountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = ?`
	return r.scanAccount(r.db.QueryRowContext(ctx, query, id), "ID")
}

// GetByEmail retrieves an account by email.
func (r *accountRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE email = ?`
	return r.scanAccount(r.db.QueryRowContext(ctx, query, email), "email")
}

// GetByPhone retrieves an account by phone.
func (r *accountRepository) GetByPhone(ctx context.Context, phone string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE phone = ?`
	return r.scanAccount(r.db.QueryRowContext(ctx, query, phone), "phone")
}

// GetByContact retrieves an account by email or phone based on contact shape.
func (r *accountRepository) GetByContact(ctx context.Context, contact string) (*domain.Account, error) {
	if repository.IsEmailContact(contact) {
		return r.GetByEmail(ctx, contact)
	}
	return r.GetByPhone(ctx, contact)
}

// Update updates an existing account.
func (r *accountRepository) Update(ctx context.Context, account *domain.Account) error {
	query := `
		UPDATE accounts
		SET name = ?, email = ?, phone = ?, status = ?,
		    activation_code = ?, activation_code_expires_at = ?,
		    login_code = ?, login_code_expires_at = ?,
		    profile_image_url = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		account.Name,
		account.Email,
		account.Phone,
		string(account.Status),
		nullString(account.ActivationCode),
		nullTime(account.ActivationCodeExpiresAt),
		nullString(account.LoginCode),
		nullTime(account.LoginCodeExpiresAt),
		nullString(account.ProfileImageURL),
		account.UpdatedAt.Format(time.RFC3339),
		account.ID,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return mapAccountUniqueViolation(err)
		}
		return fmt.Errorf("failed to update account: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return domain.ErrAccountNotFound
	}

	return nil
}

// Delete deletes an account by ID.
func (r *accountRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM accounts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return domain.ErrAccountNotFound
	}

	return nil
}

// List returns all accounts with pagination.
func (r *accountRepository) List(ctx context.Context, opts repository.ListOptions) (*repository.ListResult[domain.Account], error) {
	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM accounts`).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count accounts: %w", err)
	}

	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?
	`

	rows, err := r.db.QueryContext(ctx, query, opts.Limit, opts.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*domain.Account
	for rows.Next() {
		account, err := r.scanAccountRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, account)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating accounts: %w", err)
	}

	return &repository.ListResult[domain.Account]{
		Items:  accounts,
		Total:  total,
		Offset: opts.Offset,
		Limit:  opts.Limit,
	}, nil
}

// rowScanner covers *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *accountRepository) scanAccount(row *sql.Row, by string) (*domain.Account, error) {
	account, err := scanAccountFrom(row)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account by %s: %w", by, err)
	}
	return account, nil
}

func (r *accountRepository) scanAccountRow(rows *sql.Rows) (*domain.Account, error) {
	return scanAccountFrom(rows)
}

func scanAccountFrom(s rowScanner) (*domain.Account, error) {
	account := &domain.Account{}
	var status string
	var activationCode, loginCode, profileImageURL sql.NullString
	var activationExpires, loginExpires sql.NullString
	var createdAt, updatedAt string

	err := s.Scan(
		&account.ID,
		&account.Name,
		&account.Email,
		&account.Phone,
		&status,
		&activationCode,
		&activationExpires,
		&loginCode,
		&loginExpires,
		&profileImageURL,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	account.Status = domain.AccountStatus(status)
	account.ActivationCode = scanNullString(activationCode)
	account.ActivationCodeExpiresAt = scanNullTime(activationExpires)
	account.LoginCode = scanNullString(loginCode)
	account.LoginCodeExpiresAt = scanNullTime(loginExpires)
	account.ProfileImageURL = scanNullString(profileImageURL)
	account.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	account.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)

	return account, nil
}

// mapAccountUniqueViolation maps a unique constraint error to the domain
// conflict error for the column that fired.
func mapAccountUniqueViolation(err error) error {
	switch uniqueViolationColumn(err) {
	case "accounts.email":
		return domain.ErrEmailAlreadyRegistered
	case "accounts.phone":
		return domain.ErrPhoneAlreadyRegistered
	}
	return fmt.Errorf("%w: email or phone already registered", domain.ErrEmailAlreadyRegistered)
}

// nullString converts an optional string to its SQL representation.
func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// nullTime converts an optional time to its SQL (RFC3339 text) representation.
func nullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.UTC().Format(time.RFC3339), Valid: true}
}

// scanNullString handles nullable string columns.
func scanNullString(ns sql.NullString) *string {
	if ns.Valid {
		return &ns.String
	}
	return nil
}

// scanNullTime handles nullable RFC3339 text columns.
func scanNullTime(ns sql.NullString) *time.Time {
	if !ns.Valid {
		return nil
	}
	t, err := time.Parse(time.RFC3339, ns.String)
	if err != nil {
		return nil
	}
	return &t
}

// Ensure accountRepository implements repository.AccountRepository.
var _ repository.AccountRepository = (*accountRepository)(nil)
