package notify

import (
	"context"
	"log/slog"

	"storefront-core/internal/usecase/shared"
)

// LogMailer writes emails to the log. Used for local runs.
type LogMailer struct {
	from   string
	logger *slog.Logger
}

func NewLogMailer(from string, logger *slog.Logger) *LogMailer {
	return &LogMailer{from: from, logger: logger}
}

func (m *LogMailer) Send(_ context.Context, email shared.Email) error {
	m.logger.Info("email",
		slog.String("from", m.from),
		slog.String("to", email.To),
		slog.String("subject", email.Subject),
		slog.String("body", email.Body))
	return nil
}
