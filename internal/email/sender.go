// Package email generates and delivers candidate outreach emails.
package email

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"hirelens/internal/config"
	"hirelens/internal/errors"
	"hirelens/internal/observability"
)

// Sender delivers one email. Send reports success and never panics;
// failures are logged by the implementation.
type Sender interface {
	Send(ctx context.Context, to, subject, body string) bool
}

// SMTPSender delivers mail through a single SMTP relay
type SMTPSender struct {
	cfg    config.EmailConfig
	logger *errors.Logger

	// sendMail is smtp.SendMail, replaced in tests
	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
	now      func() time.Time
}

// NewSMTPSender creates a sender for cfg. Auth is used only when a
// username is configured.
func NewSMTPSender(cfg config.EmailConfig, logger *errors.Logger) *SMTPSender {
	return &SMTPSender{
		cfg:      cfg,
		logger:   logger,
		sendMail: smtp.SendMail,
		now:      time.Now,
	}
}

func (s *SMTPSender) Send(ctx context.Context, to, subject, body string) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Warn("Email send panicked", "to", to, "panic", fmt.Sprint(r))
			ok = false
		}
	}()

	if err := ctx.Err(); err != nil {
		s.logger.Warn("Email not sent", "to", to, "error", err)
		return false
	}

	msg, err := buildMessage(s.cfg.From, to, subject, body, s.now())
	if err != nil {
		s.logger.LogError(err, "Email rejected", "to", to)
		return false
	}

	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}
	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.port()))

	if err := s.sendMail(addr, auth, s.cfg.From, []string{to}, msg); err != nil {
		s.logger.LogError(errors.NewNetworkError(errors.ErrCodeNetworkTimeout, "SMTP delivery failed", err),
			"Email send failed", "to", to, "relay", addr)
		return false
	}

	s.logger.Info("Email sent", "to", to, "subject", subject)
	return true
}

func (s *SMTPSender) port() int {
	if s.cfg.Port > 0 {
		return s.cfg.Port
	}
	return 587
}

// LogSender logs emails instead of delivering them. Used for dry runs.
type LogSender struct {
	logger *errors.Logger
}

func NewLogSender(logger *errors.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(_ context.Context, to, subject, body string) bool {
	s.logger.Info("Email (dry run)", "to", to, "subject", subject, "body_length", len(body))
	return true
}

// NewSender returns an SMTPSender when delivery is enabled, otherwise a
// LogSender
func NewSender(cfg config.EmailConfig, logger *errors.Logger) Sender {
	if cfg.Enabled {
		return NewSMTPSender(cfg, logger)
	}
	return NewLogSender(logger)
}

type meteredSender struct {
	Sender
	metrics *observability.Metrics
}

// WithMetrics counts every delivery attempt made through s
func WithMetrics(s Sender, m *observability.Metrics) Sender {
	return &meteredSender{Sender: s, metrics: m}
}

func (s *meteredSender) Send(ctx context.Context, to, subject, body string) bool {
	ok := s.Sender.Send(ctx, to, subject, body)
	s.metrics.RecordEmailSent(ctx, ok)
	return ok
}

// buildMessage renders an RFC 5322 plain-text message. Header values
// must not contain line breaks.
func buildMessage(from, to, subject, body string, date time.Time) ([]byte, error) {
	if strings.TrimSpace(to) == "" {
		return nil, errors.NewValidationError(errors.ErrCodeInvalidRequest, "Recipient address is required", nil)
	}
	for name, v := range map[string]string{"From": from, "To": to, "Subject": subject} {
		if strings.ContainsAny(v, "\r\n") {
			return nil, errors.NewValidationError(errors.ErrCodeInvalidRequest,
				fmt.Sprintf("%s header contains a line break", name), nil)
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	fmt.Fprintf(&b, "Date: %s\r\n", date.Format(time.RFC1123Z))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(strings.ReplaceAll(body, "\r\n", "\n"), "\n", "\r\n"))
	return []byte(b.String()), nil
}
