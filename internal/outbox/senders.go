package outbox

import (
	"context"
	"fmt"

	"autochase/internal/config"
	"autochase/internal/models"
	"autochase/pkg/email"
	"autochase/pkg/telegram"
)

// EmailSender delivers reminders to the invoice's client over SMTP.
type EmailSender struct {
	cfg config.Config
}

func NewEmailSender(cfg config.Config) *EmailSender {
	return &EmailSender{cfg: cfg}
}

func (s *EmailSender) Name() string { return "email" }

func (s *EmailSender) Send(ctx context.Context, ev models.ReminderEvent) error {
	e := s.cfg.Email
	if e.SMTPServer == "" || e.SMTPPort == 0 || e.Username == "" {
		return fmt.Errorf("missing email configuration: SMTPServer, SMTPPort, or Username is empty")
	}
	return email.Send(e.SMTPServer, e.SMTPPort, e.Username, e.Password, e.FromName, ev.To, ev.Subject, ev.Body)
}

// TelegramSender posts a copy of each dispatched reminder to an internal
// chat, so the business sees what went out.
type TelegramSender struct {
	client *telegram.Client
}

func NewTelegramSender(token, chatID string) (*TelegramSender, error) {
	client, err := telegram.New(token, chatID)
	if err != nil {
		return nil, err
	}
	return &TelegramSender{client: client}, nil
}

func (s *TelegramSender) Name() string { return "telegram" }

func (s *TelegramSender) Send(ctx context.Context, ev models.ReminderEvent) error {
	text := fmt.Sprintf("Reminder sent to %s\n%s\n\n%s", ev.To, ev.Subject, ev.Body)
	return s.client.Send(ctx, text)
}
