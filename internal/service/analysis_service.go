package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/gwan-project/landing-auth/internal/analysis"
	"github.com/gwan-project/landing-auth/internal/domain"
	"github.com/gwan-project/landing-auth/internal/repository"
)

// AnalysisService runs character image analysis and records history.
type AnalysisService struct {
	characterRepo repository.CharacterRepository
	analysisRepo  repository.AnalysisRepository
	analyzer      analysis.Analyzer
	enabled       bool
	logger        zerolog.Logger
}

// NewAnalysisService creates a new AnalysisService. When enabled is
// false, ProcessCharacter fails fast with ErrAnalysisDisabled.
func NewAnalysisService(
	characterRepo repository.CharacterRepository,
	analysisRepo repository.AnalysisRepository,
	analyzer analysis.Analyzer,
	enabled bool,
	logger zerolog.Logger,
) *AnalysisService {
	return &AnalysisService{
		characterRepo: characterRepo,
		analysisRepo:  analysisRepo,
		analyzer:      analyzer,
		enabled:       enabled,
		logger:        logger.With().Str("service", "analysis").Logger(),
	}
}

// ProcessCharacterOutput contains the analysis result.
type ProcessCharacterOutput struct {
	Record *domain.AnalysisRecord
}

// ProcessCharacter analyzes the account's character image. Every run is
// recorded in the analysis history, successful or not; a provider
// failure surfaces as ErrAnalysisFailed after the ERROR record is stored.
func (s *AnalysisService) ProcessCharacter(ctx context.Context, accountID string) (*ProcessCharacterOutput, error) {
	if !s.enabled {
		return nil, ErrAnalysisDisabled
	}

	character, err := s.characterRepo.GetByUserID(ctx, accountID)
	if err != nil {
		if errors.Is(err, domain.ErrCharacterNotFound) {
			return nil, err
		}
		s.logger.Error().Err(err).Str("account_id", accountID).Msg("failed to load character")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	if character.ImageURL == "" {
		return nil, domain.ErrCharacterHasNoImage
	}

	record := domain.NewAnalysisRecord(character.ID, accountID, character.ImageURL)

	result, raw, err := s.analyzer.Analyze(ctx, character.ImageURL)
	record.RawResponse = raw
	if err != nil {
		record.MarkFailed(err.Error())
		if createErr := s.analysisRepo.Create(ctx, record); createErr != nil {
			s.logger.Error().Err(createErr).Str("account_id", accountID).Msg("failed to record analysis failure")
		}

		s.logger.Warn().
			Err(err).
			Str("account_id", accountID).
			Str("character_id", character.ID).
			Msg("character analysis failed")
		return nil, fmt.Errorf("%w: %v", ErrAnalysisFailed, err)
	}

	record.Analysis = result
	if err := s.analysisRepo.Create(ctx, record); err != nil {
		s.logger.Error().Err(err).Str("account_id", accountID).Msg("failed to record analysis result")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.logger.Info().
		Str("account_id", accountID).
		Str("character_id", character.ID).
		Float64("confidence", result.Metadata.Confidence).
		Msg("character analysis completed")

	return &ProcessCharacterOutput{Record: record}, nil
}

// History returns the account's analysis history, newest first.
func (s *AnalysisService) History(ctx context.Context, accountID string, opts repository.ListOptions) (*repository.ListResult[domain.AnalysisRecord], error) {
	result, err := s.analysisRepo.ListByUserID(ctx, accountID, opts)
	if err != nil {
		s.logger.Error().Err(err).Str("account_id", accountID).Msg("failed to list analysis history")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	return result, nil
}
