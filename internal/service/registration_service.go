package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/gwan-project/landing-auth/internal/domain"
	"github.com/gwan-project/landing-auth/internal/notification"
	"github.com/gwan-project/landing-auth/internal/repository"
)

// RegistrationService handles new account registration.
type RegistrationService struct {
	accountRepo repository.AccountRepository
	notifier    notification.Notifier
	echoCodes   bool
	logger      zerolog.Logger
}

// NewRegistrationService creates a new RegistrationService.
// When echoCodes is true the generated activation code is returned in the
// output (development only).
func NewRegistrationService(
	accountRepo repository.AccountRepository,
	notifier notification.Notifier,
	echoCodes bool,
	logger zerolog.Logger,
) *RegistrationService {
	return &RegistrationService{
		accountRepo: accountRepo,
		notifier:    notifier,
		echoCodes:   echoCodes,
		logger:      logger.With().Str("service", "registration").Logger(),
	}
}

// RegisterInput contains the data needed to register an account.
type RegisterInput struct {
	Name  string
	Email string
	Phone string
}

// RegisterOutput contains the result of a registration.
type RegisterOutput struct {
	Account *domain.Account

	// ActivationCode is set only when code echoing is enabled.
	ActivationCode string
}

// Register creates a PENDING account, generates an activation code and
// delivers it. Email and phone must both be unused; the database unique
// constraints are the authoritative backstop for concurrent registrations.
func (s *RegistrationService) Register(ctx context.Context, input RegisterInput) (*RegisterOutput, error) {
	account, err := domain.NewAccount(input.Name, input.Email, input.Phone)
	if err != nil {
		return nil, err
	}

	// Fast-path conflict checks for friendly errors; the insert below
	// still catches races via the unique constraints.
	if _, err := s.accountRepo.GetByEmail(ctx, input.Email); err == nil {
		return nil, domain.ErrEmailAlreadyRegistered
	} else if !errors.Is(err, domain.ErrAccountNotFound) {
		s.logger.Error().Err(err).Msg("failed to check email availability")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	if _, err := s.accountRepo.GetByPhone(ctx, input.Phone); err == nil {
		return nil, domain.ErrPhoneAlreadyRegistered
	} else if !errors.Is(err, domain.ErrAccountNotFound) {
		s.logger.Error().Err(err).Msg("failed to check phone availability")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	if err := account.GenerateActivationCode(); err != nil {
		s.logger.Error().Err(err).Msg("failed to generate activation code")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	if err := s.accountRepo.Create(ctx, account); err != nil {
		if errors.Is(err, domain.ErrEmailAlreadyRegistered) || errors.Is(err, domain.ErrPhoneAlreadyRegistered) {
			return nil, err
		}
		s.logger.Error().Err(err).Msg("failed to create account")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	code := *account.ActivationCode
	if err := s.notifier.SendActivationCode(ctx, account, code); err != nil {
		// The account stays PENDING with a live code; the client is told
		// delivery failed so the user can retry later.
		s.logger.Error().Err(err).Str("account_id", account.ID).Msg("activation code delivery failed")
		return nil, fmt.Errorf("%w: %v", ErrCodeDeliveryFailed, err)
	}

	s.logger.Info().
		Str("account_id", account.ID).
		Msg("account registered")

	out := &RegisterOutput{Account: account}
	if s.echoCodes {
		out.ActivationCode = code
	}
	return out, nil
}
