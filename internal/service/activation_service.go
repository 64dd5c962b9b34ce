package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/gwan-project/landing-auth/internal/auth"
	"github.com/gwan-project/landing-auth/internal/domain"
	"github.com/gwan-project/landing-auth/internal/repository"
)

// ActivationService handles account activation.
type ActivationService struct {
	accountRepo repository.AccountRepository
	tokens      *auth.TokenManager
	logger      zerolog.Logger
}

// NewActivationService creates a new ActivationService.
func NewActivationService(
	accountRepo repository.AccountRepository,
	tokens *auth.TokenManager,
	logger zerolog.Logger,
) *ActivationService {
	return &ActivationService{
		accountRepo: accountRepo,
		tokens:      tokens,
		logger:      logger.With().Str("service", "activation").Logger(),
	}
}

// ActivateInput contains the data needed to activate an account.
type ActivateInput struct {
	AccountID string
	Code      string
}

// ActivateOutput contains the result of an activation.
type ActivateOutput struct {
	Account *domain.Account

	// Token is a session token issued on successful activation, so the
	// user is signed in immediately.
	Token string
}

// Activate consumes the activation code and moves the account to
// ACTIVATED. The code is single use: a replay fails because the account
// has left PENDING.
func (s *ActivationService) Activate(ctx context.Context, input ActivateInput) (*ActivateOutput, error) {
	if !domain.IsOneTimeCode(input.Code) {
		return nil, domain.ErrInvalidCodeFormat
	}

	account, err := s.accountRepo.GetByID(ctx, input.AccountID)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return nil, err
		}
		s.logger.Error().Err(err).Str("account_id", input.AccountID).Msg("failed to load account")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	if err := account.Activate(input.Code); err != nil {
		s.logger.Debug().
			Err(err).
			Str("account_id", account.ID).
			Msg("activation rejected")
		return nil, err
	}

	if err := s.accountRepo.Update(ctx, account); err != nil {
		s.logger.Error().Err(err).Str("account_id", account.ID).Msg("failed to persist activation")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	token, err := s.tokens.Issue(account)
	if err != nil {
		s.logger.Error().Err(err).Str("account_id", account.ID).Msg("failed to issue token")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.logger.Info().
		Str("account_id", account.ID).
		Msg("account activated")

	return &ActivateOutput{Account: account, Token: token}, nil
}
