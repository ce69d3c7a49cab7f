package mailer

import (
	"context"
	"fmt"
	"log/slog"
	"mime"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"blog-platform/internal/config"
	"blog-platform/internal/handler/http/requestid"
	"blog-platform/internal/usecase/mail"
)

// SendFunc matches smtp.SendMail.
type SendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPChannel delivers mail through an SMTP relay.
type SMTPChannel struct {
	addr    string
	host    string
	from    string
	auth    smtp.Auth
	send    SendFunc
	limiter *RateLimiter
	now     func() time.Time
}

// NewSMTPChannel builds a channel from cfg. PLAIN auth is used when a
// username is configured.
func NewSMTPChannel(cfg config.MailConfig) *SMTPChannel {
	ch := &SMTPChannel{
		addr:    net.JoinHostPort(cfg.SMTPHost, strconv.Itoa(cfg.SMTPPort)),
		host:    cfg.SMTPHost,
		from:    cfg.From,
		send:    smtp.SendMail,
		limiter: NewRateLimiter(2.0, 5),
		now:     time.Now,
	}
	if cfg.Username != "" {
		ch.auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.SMTPHost)
	}
	return ch
}

// WithSendFunc replaces the transport. Used by tests.
func (c *SMTPChannel) WithSendFunc(fn SendFunc) *SMTPChannel {
	c.send = fn
	return c
}

// Name implements mail.Channel.
func (c *SMTPChannel) Name() string { return "smtp" }

// IsEnabled implements mail.Channel.
func (c *SMTPChannel) IsEnabled() bool { return c.host != "" }

// Send implements mail.Channel. smtp.SendMail does not take a context, so
// cancellation is only honoured while waiting for the rate limiter.
func (c *SMTPChannel) Send(ctx context.Context, msg mail.Message) error {
	if !c.IsEnabled() {
		return mail.ErrChannelDisabled
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("smtp rate limit: %w", err)
	}

	start := time.Now()
	err := c.send(c.addr, c.auth, c.from, []string{msg.To}, c.render(msg))
	if err != nil {
		return fmt.Errorf("smtp send to %s: %w", c.addr, err)
	}

	slog.Debug("SMTP relay accepted mail",
		slog.String("request_id", requestid.FromContext(ctx)),
		slog.String("relay", c.addr),
		slog.Duration("duration", time.Since(start)))
	return nil
}

// render builds an RFC 5322 message with a UTF-8 plain text body.
func (c *SMTPChannel) render(msg mail.Message) []byte {
	var b strings.Builder
	header := func(k, v string) {
		b.WriteString(k)
		b.WriteString(": ")
		b.WriteString(v)
		b.WriteString("\r\n")
	}
	header("From", c.from)
	header("To", msg.To)
	header("Subject", mime.QEncoding.Encode("utf-8", msg.Subject))
	header("Date", c.now().Format(time.RFC1123Z))
	header("MIME-Version", "1.0")
	header("Content-Type", `text/plain; charset="utf-8"`)
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(msg.Body, "\n", "\r\n"))
	return []byte(b.String())
}
