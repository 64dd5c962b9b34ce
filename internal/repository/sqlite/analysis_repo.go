package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gwan-project/landing-auth/internal/domain"
	"github.com/gwan-project/landing-auth/internal/repository"
)

// analysisRepository implements repository.AnalysisRepository for SQLite.
type analysisRepository struct {
	db *DB
}

// NewAnalysisRepository creates a new SQLite analysis history repository.
func NewAnalysisRepository(db *DB) repository.AnalysisRepository {
	return &analysisRepository{db: db}
}

// Create records an analysis run (success or failure).
func (r *analysisRepository) Create(ctx context.Context, record *domain.AnalysisRecord) error {
	var analysisJSON sql.NullString
	if record.Analysis != nil {
		data, err := json.Marshal(record.Analysis)
		if err != nil {
			return fmt.Errorf("failed to marshal analysis: %w", err)
		}
		analysisJSON = sql.NullString{String: string(data), Valid: true}
	}

	query := `
		INSERT INTO character_analysis_history
			(id, character_id, user_id, image_url, analysis, status, error_message, raw_response, processed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		record.ID,
		record.CharacterID,
		record.UserID,
		record.ImageURL,
		analysisJSON,
		string(record.Status),
		emptyToNull(record.ErrorMessage),
		emptyToNull(record.RawResponse),
		record.ProcessedAt.Format(time.RFC3339),
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
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM character_analysis_history WHERE user_id = ?`, userID,
	).Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("failed to count analysis records: %w", err)
	}

	query := `
		SELECT id, character_id, user_id, image_url, analysis, status, error_message, raw_response, processed_at
		FROM character_analysis_history
		WHERE user_id = ?
		ORDER BY processed_at DESC
		LIMIT ? OFFSET ?
	`

	rows, err := r.db.QueryContext(ctx, query, userID, opts.Limit, opts.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list analysis records: %w", err)
	}
	defer rows.Close()

	var records []*domain.AnalysisRecord
	for rows.Next() {
		record := &domain.AnalysisRecord{}
		var analysisJSON, errorMessage, rawResponse sql.NullString
		var status, processedAt string

		err := rows.Scan(
			&record.ID,
			&record.CharacterID,
			&record.UserID,
			&record.ImageURL,
			&analysisJSON,
			&status,
			&errorMessage,
			&rawResponse,
			&processedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan analysis record: %w", err)
		}

		record.Status = domain.AnalysisStatus(status)
		record.ErrorMessage = errorMessage.String
		record.RawResponse = rawResponse.String
		record.ProcessedAt, _ = time.Parse(time.RFC3339, processedAt)

		if analysisJSON.Valid {
			analysis := &domain.CharacterAnalysis{}
			if err := json.Unmarshal([]byte(analysisJSON.String), analysis); err != nil {
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

// emptyToNull stores empty strings as NULL.
func emptyToNull(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// Ensure analysisRepository implements repository.AnalysisRepository.
var _ repository.AnalysisRepository = (*analysisRepository)(nil)
