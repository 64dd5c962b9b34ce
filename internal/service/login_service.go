package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/gwan-project/landing-auth/internal/auth"
	"github.com/gwan-project/landing-auth/internal/domain"
	"github.com/gwan-project/landing-auth/internal/lock"
	"github.com/gwan-project/landing-auth/internal/notification"
	"github.com/gwan-project/landing-auth/internal/repository"
)

// loginIssueLockTTL bounds how long a login-issue lock can be held.
const loginIssueLockTTL = 5 * time.Second

// LoginService handles passwordless login with one-time codes.
type LoginService struct {
	accountRepo repository.AccountRepository
	notifier    notification.Notifier
	tokens      *auth.TokenManager
	locker      lock.Locker
	echoCodes   bool
	logger      zerolog.Logger
}

// NewLoginService creates a new LoginService.
func NewLoginService(
	accountRepo repository.AccountRepository,
	notifier notification.Notifier,
	tokens *auth.TokenManager,
	locker lock.Locker,
	echoCodes bool,
	logger zerolog.Logger,
) *LoginService {
	return &LoginService{
		accountRepo: accountRepo,
		notifier:    notifier,
		tokens:      tokens,
		locker:      locker,
		echoCodes:   echoCodes,
		logger:      logger.With().Str("service", "login").Logger(),
	}
}

// RequestLoginInput contains the contact (email or phone) to log in with.
type RequestLoginInput struct {
	Contact string
}

// RequestLoginOutput contains the result of a login request.
type RequestLoginOutput struct {
	// Channel is the delivery channel the code went out on.
	Channel string

	// LoginCode is set only when code echoing is enabled.
	LoginCode string
}

// RequestLogin generates a login code for the account matching the
// contact and delivers it. A newer request overwrites any earlier live
// code (last write wins). Issuance for one account is serialized with a
// best-effort lock; if the lock cannot be acquired the request proceeds
// anyway, since last-write-wins keeps the outcome well defined.
func (s *LoginService) RequestLogin(ctx context.Context, input RequestLoginInput) (*RequestLoginOutput, error) {
	contact := strings.TrimSpace(input.Contact)
	if err := domain.ValidateContact(contact); err != nil {
		return nil, err
	}

	account, err := s.accountRepo.GetByContact(ctx, contact)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return nil, err
		}
		s.logger.Error().Err(err).Msg("failed to look up account by contact")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	if !account.CanRequestLogin() {
		return nil, domain.ErrAccountNotReady
	}

	lockKey := lock.Keys.LoginCodeIssue(account.ID)
	acquired, err := s.locker.Acquire(ctx, lockKey, loginIssueLockTTL)
	if err != nil {
		s.logger.Warn().Err(err).Str("account_id", account.ID).Msg("login issue lock unavailable")
	}
	if acquired {
		defer func() {
			if _, err := s.locker.Release(context.WithoutCancel(ctx), lockKey); err != nil {
				s.logger.Warn().Err(err).Str("account_id", account.ID).Msg("failed to release login issue lock")
			}
		}()
	}

	code, err := domain.GenerateOneTimeCode()
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to generate login code")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	account.SetLoginCode(code, time.Now().UTC().Add(domain.LoginCodeTTL))

	if err := s.accountRepo.Update(ctx, account); err != nil {
		s.logger.Error().Err(err).Str("account_id", account.ID).Msg("failed to persist login code")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	if err := s.notifier.SendLoginCode(ctx, account, contact, code); err != nil {
		s.logger.Error().Err(err).Str("account_id", account.ID).Msg("login code delivery failed")
		return nil, fmt.Errorf("%w: %v", ErrCodeDeliveryFailed, err)
	}

	channel := "whatsapp"
	if repository.IsEmailContact(contact) {
		channel = "email"
	}

	s.logger.Info().
		Str("account_id", account.ID).
		Str("channel", channel).
		Msg("login code issued")

	out := &RequestLoginOutput{Channel: channel}
	if s.echoCodes {
		out.LoginCode = code
	}
	return out, nil
}

// ValidateLoginInput contains the contact and submitted code.
type ValidateLoginInput struct {
	Contact string
	Code    string
}

// ValidateLoginOutput contains the result of a successful login.
type ValidateLoginOutput struct {
	Account *domain.Account
	Token   string
}

// ValidateLogin checks the submitted code, consumes it and issues a
// session token. All code failures collapse to ErrLoginFailed so callers
// cannot distinguish expired from mismatched codes; the precise cause is
// logged server-side.
func (s *LoginService) ValidateLogin(ctx context.Context, input ValidateLoginInput) (*ValidateLoginOutput, error) {
	contact := strings.TrimSpace(input.Contact)
	if err := domain.ValidateContact(contact); err != nil {
		return nil, err
	}
	if !domain.IsOneTimeCode(input.Code) {
		return nil, domain.ErrInvalidCodeFormat
	}

	account, err := s.accountRepo.GetByContact(ctx, contact)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return nil, err
		}
		s.logger.Error().Err(err).Msg("failed to look up account by contact")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	if !account.CanRequestLogin() {
		return nil, domain.ErrAccountNotReady
	}

	if err := account.ValidateLoginCode(input.Code); err != nil {
		s.logger.Debug().
			Err(err).
			Str("account_id", account.ID).
			Msg("login code rejected")
		return nil, ErrLoginFailed
	}

	// The code is single use: clear it before issuing the session.
	account.ClearLoginCode()
	if err := s.accountRepo.Update(ctx, account); err != nil {
		s.logger.Error().Err(err).Str("account_id", account.ID).Msg("failed to consume login code")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	token, err := s.tokens.Issue(account)
	if err != nil {
		s.logger.Error().Err(err).Str("account_id", account.ID).Msg("failed to issue token")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.logger.Info().
		Str("account_id", account.ID).
		Msg("login validated")

	return &ValidateLoginOutput{Account: account, Token: token}, nil
}
