package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/gwan-project/landing-auth/internal/domain"
	"github.com/gwan-project/landing-auth/internal/lock"
	"github.com/gwan-project/landing-auth/internal/repository"
	"github.com/gwan-project/landing-auth/internal/storage"
)

// uploadLockTTL bounds how long a character-upload lock can be held.
const uploadLockTTL = 30 * time.Second

// ProfileService handles account profiles and character image uploads.
type ProfileService struct {
	accountRepo   repository.AccountRepository
	characterRepo repository.CharacterRepository
	store         storage.ImageStore
	locker        lock.Locker
	logger        zerolog.Logger
}

// NewProfileService creates a new ProfileService.
func NewProfileService(
	accountRepo repository.AccountRepository,
	characterRepo repository.CharacterRepository,
	store storage.ImageStore,
	locker lock.Locker,
	logger zerolog.Logger,
) *ProfileService {
	return &ProfileService{
		accountRepo:   accountRepo,
		characterRepo: characterRepo,
		store:         store,
		locker:        locker,
		logger:        logger.With().Str("service", "profile").Logger(),
	}
}

// Me returns the live account for the authenticated user. Token claims
// may be stale; this is always a fresh read.
func (s *ProfileService) Me(ctx context.Context, accountID string) (*domain.Account, error) {
	account, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return nil, err
		}
		s.logger.Error().Err(err).Str("account_id", accountID).Msg("failed to load account")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	return account, nil
}

// CompleteProfileInput contains the profile image upload.
type CompleteProfileInput struct {
	AccountID string
	Image     *domain.ImageUpload
}

// CompleteProfile stores the profile image and moves the account from
// ACTIVATED to COMPLETED.
func (s *ProfileService) CompleteProfile(ctx context.Context, input CompleteProfileInput) (*domain.Account, error) {
	if err := input.Image.Validate(); err != nil {
		return nil, err
	}

	account, err := s.accountRepo.GetByID(ctx, input.AccountID)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return nil, err
		}
		s.logger.Error().Err(err).Str("account_id", input.AccountID).Msg("failed to load account")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	// Fail the status check before paying for the upload.
	if account.Status != domain.StatusActivated {
		return nil, domain.ErrAccountNotActivated
	}

	key := storage.CharacterImageKey(account.ID, input.Image.Filename)
	url, err := s.store.Put(ctx, key, input.Image.Reader, input.Image.Size, input.Image.ContentType)
	if err != nil {
		s.logger.Error().Err(err).Str("account_id", account.ID).Msg("failed to store profile image")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	if err := account.CompleteProfile(url); err != nil {
		return nil, err
	}

	if err := s.accountRepo.Update(ctx, account); err != nil {
		s.logger.Error().Err(err).Str("account_id", account.ID).Msg("failed to persist profile completion")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.logger.Info().
		Str("account_id", account.ID).
		Msg("profile completed")

	return account, nil
}

// UploadCharacterInput contains the character image upload.
type UploadCharacterInput struct {
	AccountID string
	Image     *domain.ImageUpload
}

// UploadCharacter stores a character image and creates or replaces the
// account's single character. Concurrent uploads for one account are
// serialized with a best-effort lock.
func (s *ProfileService) UploadCharacter(ctx context.Context, input UploadCharacterInput) (*domain.Character, error) {
	if err := input.Image.Validate(); err != nil {
		return nil, err
	}

	lockKey := lock.Keys.CharacterUpload(input.AccountID)
	acquired, err := s.locker.AcquireWithRetry(ctx, lockKey, uploadLockTTL, 3, 100*time.Millisecond)
	if err != nil {
		s.logger.Warn().Err(err).Str("account_id", input.AccountID).Msg("character upload lock unavailable")
	}
	if acquired {
		defer func() {
			if _, err := s.locker.Release(context.WithoutCancel(ctx), lockKey); err != nil {
				s.logger.Warn().Err(err).Str("account_id", input.AccountID).Msg("failed to release upload lock")
			}
		}()
	}

	key := storage.CharacterImageKey(input.AccountID, input.Image.Filename)
	url, err := s.store.Put(ctx, key, input.Image.Reader, input.Image.Size, input.Image.ContentType)
	if err != nil {
		s.logger.Error().Err(err).Str("account_id", input.AccountID).Msg("failed to store character image")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	character, err := s.characterRepo.GetByUserID(ctx, input.AccountID)
	switch {
	case err == nil:
		character.UpdateImage(url)
		if err := s.characterRepo.Update(ctx, character); err != nil {
			s.logger.Error().Err(err).Str("account_id", input.AccountID).Msg("failed to update character")
			return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
		}
	case errors.Is(err, domain.ErrCharacterNotFound):
		character = domain.NewCharacter(input.AccountID, url)
		if err := s.characterRepo.Create(ctx, character); err != nil {
			s.logger.Error().Err(err).Str("account_id", input.AccountID).Msg("failed to create character")
			return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
		}
	default:
		s.logger.Error().Err(err).Str("account_id", input.AccountID).Msg("failed to load character")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.logger.Info().
		Str("account_id", input.AccountID).
		Str("character_id", character.ID).
		Msg("character image uploaded")

	return character, nil
}

// GetCharacter returns the account's character.
func (s *ProfileService) GetCharacter(ctx context.Context, accountID string) (*domain.Character, error) {
	character, err := s.characterRepo.GetByUserID(ctx, accountID)
	if err != nil {
		if errors.Is(err, domain.ErrCharacterNotFound) {
			return nil, err
		}
		s.logger.Error().Err(err).Str("account_id", accountID).Msg("failed to load character")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	return character, nil
}
