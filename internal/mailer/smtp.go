package mailer

import (
	"context"
	"fmt"

	mail "github.com/go-mail/mail"
	"go.uber.org/zap"
)

// SMTPConfig holds SMTP connection settings
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPSender delivers mail over plain SMTP
type SMTPSender struct {
	dialer *mail.Dialer
	from   string
	logger *zap.Logger
}

// NewSMTPSender creates a new SMTP sender
func NewSMTPSender(cfg SMTPConfig, logger *zap.Logger) *SMTPSender {
	return &SMTPSender{
		dialer: mail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
		logger: logger,
	}
}

// Send delivers a plain-text message via SMTP. go-mail dials per message,
// which is fine at this volume.
func (s *SMTPSender) Send(ctx context.Context, to, subject, body string) error {
	m := mail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		s.logger.Error("smtp send failed",
			zap.Error(err),
			zap.String("to", to),
		)
		return fmt.Errorf("smtp send: %w", err)
	}

	s.logger.Info("email sent via smtp",
		zap.String("to", to),
		zap.String("subject", subject),
	)

	return nil
}
