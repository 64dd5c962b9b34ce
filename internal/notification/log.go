package notification

import (
	"context"

	"github.com/rs/zerolog"
)

// LogSender logs messages instead of delivering them.
// Used in development and tests (notification.mode = "log").
type LogSender struct {
	channel string
	logger  zerolog.Logger
}

// NewLogSender creates a sender that only logs, tagged with its channel.
func NewLogSender(channel string, logger zerolog.Logger) *LogSender {
	return &LogSender{
		channel: channel,
		logger:  logger.With().Str("component", "notifier").Str("channel", channel).Logger(),
	}
}

// Send logs the message.
func (s *LogSender) Send(ctx context.Context, recipient, subject, body string) error {
	s.logger.Info().
		Str("recipient", recipient).
		Str("subject", subject).
		Str("body", body).
		Msg("message logged instead of sent")
	return nil
}

// Ensure LogSender implements ChannelSender.
var _ ChannelSender = (*LogSender)(nil)
