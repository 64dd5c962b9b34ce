package postgres

import (
	"context"
	"fmt"

	"github.com/gwan-project/landing-auth/internal/domain"
	"github.com/gwan-project/landing-auth/internal/repository"
)

// characterRepository implements repository.CharacterRepository for PostgreSQL.
type characterRepository struct {
	db *DB
}

// NewCharacterRepository creates a new PostgreSQL character repository.
func NewCharacterRepository(db *DB) repository.CharacterRepository {
	return &characterRepository{db: db}
}

// Create creates a new character.
func (r *characterRepository) Create(ctx context.Context, character *domain.Character) error {
	query := `
		INSERT INTO characters (id, user_id, image_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.Pool.Exec(ctx, query,
		character.ID,
		character.UserID,
		character.ImageURL,
		character.CreatedAt,
		character.UpdatedAt,
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
		WHERE user_id = $1
	`

	character := &domain.Character{}
	err := r.db.Pool.QueryRow(ctx, query, userID).Scan(
		&character.ID,
		&character.UserID,
		&character.ImageURL,
		&character.CreatedAt,
		&character.UpdatedAt,
	)

	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrCharacterNotFound
		}
		return nil, fmt.Errorf("failed to get character by user ID: %w", err)
	}

	return character, nil
}

// Update updates an existing character.
func (r *characterRepository) Update(ctx context.Context, character *domain.Character) error {
	query := `
		UPDATE characters
		SET image_url = $1, updated_at = $2
		WHERE id = $3
	`

	tag, err := r.db.Pool.Exec(ctx, query,
		character.ImageURL,
		character.UpdatedAt,
		character.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update character: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrCharacterNotFound
	}

	return nil
}

// Delete deletes a character by ID.
func (r *characterRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM characters WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete character: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrCharacterNotFound
	}

	return nil
}

// Ensure characterRepository implements repository.CharacterRepository.
var _ repository.CharacterRepository = (*characterRepository)(nil)
