package postgres

import (
	"context"
	"fmt"

	"github.com/gwan-project/landing-auth/internal/domain"
	"github.com/gwan-project/landing-auth/internal/repository"
)

// accountRepository implements repository.AccountRepository for PostgreSQL.
type accountRepository struct {
	db *DB
}

// NewAccountRepository creates a new PostgreSQL account repository.
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
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.db.Pool.Exec(ctx, query,
		account.ID,
		account.Name,
		account.Email,
		account.Phone,
		string(account.Status),
		account.ActivationCode,
		account.ActivationCodeExpiresAt,
		account.LoginCode,
		account.LoginCodeExpiresAt,
		account.ProfileImageURL,
		account.CreatedAt,
		account.UpdatedAt,
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
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	return r.queryAccount(ctx, query, id, "ID")
}

// GetByEmail retrieves an account by email.
func (r *accountRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE email = $1`
	return r.queryAccount(ctx, query, email, "email")
}

// GetByPhone retrieves an account by phone.
func (r *accountRepository) GetByPhone(ctx context.Context, phone string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE phone = $1`
	return r.queryAccount(ctx, query, phone, "phone")
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
		SET name = $1, email = $2, phone = $3, status = $4,
		    activation_code = $5, activation_code_expires_at = $6,
		    login_code = $7, login_code_expires_at = $8,
		    profile_image_url = $9, updated_at = $10
		WHERE id = $11
	`

	tag, err := r.db.Pool.Exec(ctx, query,
		account.Name,
		account.Email,
		account.Phone,
		string(account.Status),
		account.ActivationCode,
		account.ActivationCodeExpiresAt,
		account.LoginCode,
		account.LoginCodeExpiresAt,
		account.ProfileImageURL,
		account.UpdatedAt,
		account.ID,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return mapAccountUniqueViolation(err)
		}
		return fmt.Errorf("failed to update account: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrAccountNotFound
	}

	return nil
}

// Delete deletes an account by ID.
func (r *accountRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrAccountNotFound
	}

	return nil
}

// List returns all accounts with pagination.
func (r *accountRepository) List(ctx context.Context, opts repository.ListOptions) (*repository.ListResult[domain.Account], error) {
	var total int64
	if err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM accounts`).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count accounts: %w", err)
	}

	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.Pool.Query(ctx, query, opts.Limit, opts.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*domain.Account
	for rows.Next() {
		account := &domain.Account{}
		var status string
		err := rows.Scan(
			&account.ID,
			&account.Name,
			&account.Email,
			&account.Phone,
			&status,
			&account.ActivationCode,
			&account.ActivationCodeExpiresAt,
			&account.LoginCode,
			&account.LoginCodeExpiresAt,
			&account.ProfileImageURL,
			&account.CreatedAt,
			&account.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		account.Status = domain.AccountStatus(status)
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

func (r *accountRepository) queryAccount(ctx context.Context, query string, arg any, by string) (*domain.Account, error) {
	account := &domain.Account{}
	var status string

	err := r.db.Pool.QueryRow(ctx, query, arg).Scan(
		&account.ID,
		&account.Name,
		&account.Email,
		&account.Phone,
		&status,
		&account.ActivationCode,
		&account.ActivationCodeExpiresAt,
		&account.LoginCode,
		&account.LoginCodeExpiresAt,
		&account.ProfileImageURL,
		&account.CreatedAt,
		&account.UpdatedAt,
	)

	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account by %s: %w", by, err)
	}

	account.Status = domain.AccountStatus(status)
	return account, nil
}

// mapAccountUniqueViolation maps a unique constraint error to the domain
// conflict error for the constraint that fired.
func mapAccountUniqueViolation(err error) error {
	constraint := uniqueViolationConstraint(err)
	switch {
	case constraintMentions(constraint, "email"):
		return domain.ErrEmailAlreadyRegistered
	case constraintMentions(constraint, "phone"):
		return domain.ErrPhoneAlreadyRegistered
	}
	return fmt.Errorf("%w: email or phone already registered", domain.ErrEmailAlreadyRegistered)
}

// Ensure accountRepository implements repository.AccountRepository.
var _ repository.AccountRepository = (*accountRepository)(nil)
