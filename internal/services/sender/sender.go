// Package sender реализует отправку писем-напоминаний через SMTP.
package sender

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/TechHookDev/trialwatch/internal/config"
	"github.com/TechHookDev/trialwatch/internal/lib/sl"
	"github.com/TechHookDev/trialwatch/internal/lib/smtp"
)

// ErrNotConfigured возвращается, когда учётные данные SMTP не заданы.
// Планировщик в этом случае сообщает об ошибке конфигурации до начала
// обработки, не пытаясь отправить ни одного письма.
var ErrNotConfigured = errors.New("smtp credentials are not configured")

// SenderService отправляет письма через SMTP транспорт.
type SenderService struct {
	cfg       config.SMTP
	transport smtp.TransportInterface
	log       *slog.Logger
}

// NewSenderService создает новый экземпляр SenderService.
func NewSenderService(cfg config.SMTP, log *slog.Logger, transport smtp.TransportInterface) *SenderService {
	return &SenderService{
		cfg:       cfg,
		transport: transport,
		log:       log,
	}
}

// Configured проверяет наличие учётных данных SMTP.
func (s *SenderService) Configured() error {
	if s.cfg.SMTPHost == "" || s.cfg.SMTPUser == "" || s.cfg.SMTPPass == "" {
		return ErrNotConfigured
	}
	return nil
}

// Send отправляет одно письмо с переданной темой и текстом.
func (s *SenderService) Send(to, subject, bodyText string) error {
	if err := s.Configured(); err != nil {
		return err
	}

	msg := strings.Join([]string{
		"From: " + s.transport.GetSMTPUser(),
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		bodyText,
	}, "\r\n")

	client, err := s.transport.Connect()
	if err != nil {
		s.log.Error("failed to connect to SMTP server", sl.Err(err))
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	if err := client.Mail(s.transport.GetSMTPUser()); err != nil {
		s.log.Error("failed to set MAIL FROM", "from", s.transport.GetSMTPUser(), sl.Err(err))
		return fmt.Errorf("failed to set mail sender: %w", err)
	}

	if err := client.Rcpt(to); err != nil {
		s.log.Error("failed to set RCPT TO", "recipient", to, sl.Err(err))
		return fmt.Errorf("failed to set recipient %s: %w", to, err)
	}

	wc, err := client.Data()
	if err != nil {
		s.log.Error("failed to get Data writer", sl.Err(err))
		return fmt.Errorf("failed to get write closer: %w", err)
	}

	if _, err = wc.Write([]byte(msg)); err != nil {
		s.log.Error("failed to write email body", sl.Err(err))
		return fmt.Errorf("failed to write message: %w", err)
	}

	if err = wc.Close(); err != nil {
		s.log.Error("failed to close Data writer", sl.Err(err))
		return fmt.Errorf("failed to close write closer: %w", err)
	}

	if err = client.Quit(); err != nil {
		s.log.Error("failed to quit SMTP client", sl.Err(err))
		return fmt.Errorf("failed to quit SMTP client: %w", err)
	}

	s.log.Info("email sent successfully", "to", to)
	return nil
}
