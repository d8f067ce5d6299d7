package mailer

import (
	"context"

	"go.uber.org/zap"
)

// LogSender is a sender that only logs messages (for development)
type LogSender struct {
	logger *zap.Logger
}

func NewLogSender(logger *zap.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(ctx context.Context, to, subject, body string) error {
	s.logger.Info("email sent",
		zap.String("to", to),
		zap.String("subject", subject),
		zap.Int("body_bytes", len(body)),
	)
	return nil
}
