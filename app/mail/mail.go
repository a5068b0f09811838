package mail

import (
	"log/slog"

	"github.com/google/uuid"
)

var _ Notifier = (*LocalMailService)(nil)

// Notifier delivers a best-effort notification. Callers never observe a
// failure; a notifier that cannot deliver logs and moves on.
type Notifier interface {
	Send(subject, message string)
}

// LocalMailService writes outgoing mail to the application log instead of
// an SMTP relay. Useful for development and the in-memory demo wiring.
type LocalMailService struct {
	logger *slog.Logger
	from   string
	to     string
}

func NewLocalMailService(from, to string, logger *slog.Logger) *LocalMailService {
	return &LocalMailService{
		logger: logger,
		from:   from,
		to:     to,
	}
}

func (s *LocalMailService) Send(subject, message string) {
	s.logger.Info("Sending mail with local mail service",
		slog.String("message_id", uuid.New().String()),
		slog.String("from", s.from),
		slog.String("to", s.to),
		slog.String("subject", subject),
		slog.String("message", message),
	)
}
