package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/gwan-project/landing-auth/internal/domain"
	"github.com/gwan-project/landing-auth/internal/repository"
)

// characterRepository implements repository.CharacterRepository for SQLite.
type characterRepository struct {
	db *DB
}

// NewCharacterRepository creates a new SQLite character repository.
func NewCharacterRepository(db *DB) repository.CharacterRepository {
	return &characterRepository{db: db}
}

// Create creates a new character.
func (r *characterRepository) Create(ctx context.Context, character *domain.Character) error {
	query := `
		INSERT INTO characters (id, user_id, image_url, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		character.ID,
		character.UserID,
		character.ImageURL,
		character.CreatedAt.Format(time.RFC3339),
		character.UpdatedAt.Format(time.RFC3339),
	)

	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrAccountNotFound
		}
		return fmt.Errorf("failed to create character: %w", err)
	}

	return nil
}

// GetByUserID retrieves the character owned by the given account.
func (r *characterRepository) GetByUserID(ctx context.Context, userID string) (*domain.Character, error) {
	query := `
		SELECT id, user_id, image_url, created_at, updated_at
		FROM characters
		WHERE user_id = ?
	`

	character := &domain.Character{}
	var createdAt, updatedAt string

	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&character.ID,
		&character.UserID,
		&character.ImageURL,
		&createdAt,
		&updatedAt,
	)

	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrCharacterNotFound
		}
		return nil, fmt.Errorf("failed to get character by user ID: %w", err)
	}

	character.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	character.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)

	return character, nil
}

// Update updates an existing character.
func (r *characterRepository) Update(ctx context.Context, character *domain.Character) error {
	query := `
		UPDATE characters
		SET image_url = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		character.ImageURL,
		character.UpdatedAt.Format(time.RFC3339),
		character.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update character: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return domain.ErrCharacterNotFound
	}

	return nil
}

// Delete deletes a character by ID.
func (r *characterRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM characters WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete character: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return domain.ErrCharacterNotFound
	}

	return nil
}

// Ensure characterRepository implements repository.CharacterRepository.
var _ repository.CharacterRepository = (*characterRepository)(nil)
