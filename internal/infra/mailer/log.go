package mailer

import (
	"context"
	"log/slog"

	"blog-platform/internal/handler/http/requestid"
	"blog-platform/internal/usecase/mail"
)

// LogChannel writes mail to the logger instead of sending it.
// It is enabled only when no SMTP relay is configured.
type LogChannel struct {
	logger  *slog.Logger
	enabled bool
}

// NewLogChannel returns a LogChannel writing to logger.
func NewLogChannel(logger *slog.Logger, enabled bool) *LogChannel {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogChannel{logger: logger, enabled: enabled}
}

// Name implements mail.Channel.
func (c *LogChannel) Name() string { return "log" }

// IsEnabled implements mail.Channel.
func (c *LogChannel) IsEnabled() bool { return c.enabled }

// Send implements mail.Channel.
func (c *LogChannel) Send(ctx context.Context, msg mail.Message) error {
	if !c.enabled {
		return mail.ErrChannelDisabled
	}
	c.logger.InfoContext(ctx, "Outgoing mail",
		slog.String("request_id", requestid.FromContext(ctx)),
		slog.String("to", msg.To),
		slog.String("subject", msg.Subject),
		slog.String("body", msg.Body))
	return nil
}

// Channels pairs smtpCh with a log channel that takes over when the relay
// is not configured.
func Channels(smtpCh *SMTPChannel, logger *slog.Logger) []mail.Channel {
	return []mail.Channel{smtpCh, NewLogChannel(logger, !smtpCh.IsEnabled())}
}
