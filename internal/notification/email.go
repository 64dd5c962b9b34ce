package notification

import (
	"context"
	"fmt"

	mail "gopkg.in/mail.v2"

	"github.com/gwan-project/landing-auth/internal/config"
)

// EmailSender sends messages over SMTP.
type EmailSender struct {
	dialer   *mail.Dialer
	from     string
	fromName string
}

// NewEmailSender creates an SMTP-backed sender from config.
func NewEmailSender(cfg config.EmailConfig) *EmailSender {
	return &EmailSender{
		dialer:   mail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:     cfg.From,
		fromName: cfg.FromName,
	}
}

// Send delivers an email to the recipient address.
func (s *EmailSender) Send(ctx context.Context, recipient, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := mail.NewMessage()
	msg.SetAddressHeader("From", s.from, s.fromName)
	msg.SetHeader("To", recipient)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	if err := s.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("smtp send failed: %w", err)
	}

	return nil
}

// Ensure EmailSender implements ChannelSender.
var _ ChannelSender = (*EmailSender)(nil)
