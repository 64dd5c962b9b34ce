// Package notification delivers one-time codes to users over email and
// WhatsApp. The channel is chosen from the contact: anything containing
// '@' goes out as email, everything else as a WhatsApp message.
package notification

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/gwan-project/landing-auth/internal/domain"
	"github.com/gwan-project/landing-auth/internal/repository"
)

// Notifier delivers one-time codes.
type Notifier interface {
	// SendActivationCode delivers a freshly generated activation code.
	// Activation codes go to the account's email, with a best-effort
	// copy to the account's phone.
	SendActivationCode(ctx context.Context, account *domain.Account, code string) error

	// SendLoginCode delivers a login code over the channel matching the
	// contact the user supplied (email or phone).
	SendLoginCode(ctx context.Context, account *domain.Account, contact, code string) error
}

// ChannelSender sends a single message over one concrete channel.
type ChannelSender interface {
	// Send delivers a message to the recipient address for its channel
	// (email address or phone number).
	Send(ctx context.Context, recipient, subject, body string) error
}

// Router implements Notifier by dispatching to channel senders.
type Router struct {
	email    ChannelSender
	whatsapp ChannelSender
	logger   zerolog.Logger
}

// NewRouter creates a notifier that routes codes to the given senders.
func NewRouter(email, whatsapp ChannelSender, logger zerolog.Logger) *Router {
	return &Router{
		email:    email,
		whatsapp: whatsapp,
		logger:   logger.With().Str("component", "notifier").Logger(),
	}
}

// SendActivationCode delivers the activation code to the account's email
// and, best effort, to the account's phone. Email delivery failing fails
// the operation; the WhatsApp copy failing only logs.
func (r *Router) SendActivationCode(ctx context.Context, account *domain.Account, code string) error {
	subject := "Activate your account"
	body := fmt.Sprintf(
		"Hi %s,\n\nYour activation code is %s. It expires in %d minutes.\n",
		account.Name, code, int(domain.ActivationCodeTTL.Minutes()),
	)

	if err := r.email.Send(ctx, account.Email, subject, body); err != nil {
		return fmt.Errorf("failed to send activation code: %w", err)
	}

	if err := r.whatsapp.Send(ctx, account.Phone, subject, body); err != nil {
		r.logger.Warn().
			Err(err).
			Str("account_id", account.ID).
			Msg("whatsapp copy of activation code failed")
	}

	r.logger.Info().
		Str("account_id", account.ID).
		Str("channel", "email").
		Msg("activation code sent")
	return nil
}

// SendLoginCode delivers the login code over email or WhatsApp depending
// on the contact shape.
func (r *Router) SendLoginCode(ctx context.Context, account *domain.Account, contact, code string) error {
	subject := "Your login code"
	body := fmt.Sprintf(
		"Hi %s,\n\nYour login code is %s. It expires in %d minutes.\n",
		account.Name, code, int(domain.LoginCodeTTL.Minutes()),
	)

	channel := "whatsapp"
	sender := r.whatsapp
	recipient := account.Phone
	if repository.IsEmailContact(contact) {
		channel = "email"
		sender = r.email
		recipient = account.Email
	}

	if err := sender.Send(ctx, recipient, subject, body); err != nil {
		return fmt.Errorf("failed to send login code: %w", err)
	}

	r.logger.Info().
		Str("account_id", account.ID).
		Str("channel", channel).
		Msg("login code sent")
	return nil
}

// Ensure Router implements Notifier.
var _ Notifier = (*Router)(nil)
