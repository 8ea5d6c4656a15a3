package mail

import (
	"context"

	"fxacademy/internal/logging"
)

// consoleSender logs messages instead of delivering them. Used when no SendGrid key is configured.
type consoleSender struct {
	log *logging.Logger
}

func NewConsole(log *logging.Logger) Sender {
	return &consoleSender{log: log}
}

func (s *consoleSender) Send(_ context.Context, msg Message) error {
	if len(msg.To) == 0 {
		return ErrNoRecipients
	}
	to := make([]string, 0, len(msg.To))
	for _, a := range msg.To {
		to = append(to, a.Email)
	}
	s.log.Info("mail_console", map[string]any{
		"component": "mail",
		"to":        to,
		"subject":   msg.Subject,
		"text":      msg.Text,
	})
	return nil
}
