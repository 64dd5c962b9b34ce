package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gwan-project/landing-auth/internal/domain"
	"github.com/gwan-project/landing-auth/internal/repository"
)

// analysisRepository implements repository.AnalysisRepository for PostgreSQL.
type analysisRepository struct {
	db *DB
}

// NewAnalysisRepository creates a new PostgreSQL analysis history repository.
func NewAnalysisRepository(db *DB) repository.AnalysisRepository {
	return &analysisRepository{db: db}
}

// Create records an analysis run (success or failure).
func (r *analysisRepository) Create(ctx context.Context, record *domain.AnalysisRecord) error {
	var analysisJSON []byte
	if record.Analysis != nil {
		data, err := json.Marshal(record.Analysis)
		if err != nil {
			return fmt.Errorf("failed to marshal analysis: %w", err)
		}
		analysisJSON = data
	}

	query := `
		INSERT INTO character_analysis_history
			(id, character_id, user_id, image_url, analysis, status, error_message, raw_response, processed_at)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), NULLIF($8, ''), $9)
	`

	_, err := r.db.Pool.Exec(ctx, query,
		record.ID,
		record.CharacterID,
		record.UserID,
		record.ImageURL,
		analysisJSON,
		string(record.Status),
		record.ErrorMessage,
		record.RawResponse,
		record.ProcessedAt,
	)

	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrCharacterNotFound
		}
		return fmt.Errorf("failed to create analysis record: %w", err)
	}

	return nil
}

// ListByUserID returns analysis records for an account, newest first.
func (r *analysisRepository) ListByUserID(ctx context.Context, userID string, opts repository.ListOptions) (*repository.ListResult[domain.AnalysisRecord], error) {
	var total int64
	err := r.db.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM character_analysis_history WHERE user_id = $1`, userID,
	).Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("failed to count analysis records: %w", err)
	}

	query := `
		SELECT id, character_id, user_id, image_url, analysis, status, error_message, raw_response, processed_at
		FROM character_analysis_history
		WHERE user_id = $1
		ORDER BY processed_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Pool.Query(ctx, query, userID, opts.Limit, opts.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list analysis records: %w", err)
	}
	defer rows.Close()

	var records []*domain.AnalysisRecord
	for rows.Next() {
		record := &domain.AnalysisRecord{}
		var analysisJSON []byte
		var status string
		var errorMessage, rawResponse *string

		err := rows.Scan(
			&record.ID,
			&record.CharacterID,
			&record.UserID,
			&record.ImageURL,
			&analysisJSON,
			&status,
			&errorMessage,
			&rawResponse,
			&record.ProcessedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan analysis record: %w", err)
		}

		record.Status = domain.AnalysisStatus(status)
		if errorMessage != nil {
			record.ErrorMessage = *errorMessage
		}
		if rawResponse != nil {
			record.RawResponse = *rawResponse
		}

		if len(analysisJSON) > 0 {
			analysis := &domain.CharacterAnalysis{}
			if err := json.Unmarshal(analysisJSON, analysis); err != nil {
				return nil, fmt.Errorf("failed to unmarshal analysis: %w", err)
			}
			record.Analysis = analysis
		}

		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating analysis records: %w", err)
	}

	return &repository.ListResult[domain.AnalysisRecord]{
		Items:  records,
		Total:  total,
		Offset: opts.Offset,
		Limit:  opts.Limit,
	}, nil
}

// Ensure analysisRepository implements repository.AnalysisRepository.
var _ repository.AnalysisRepository = (*analysisRepository)(nil)
