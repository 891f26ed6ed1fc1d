// Package notifier defines the outbound alert channel used by
// internal/alerting, and an SMTP implementation of it.
package notifier

import (
	"fmt"
	"net/smtp"
	"strings"

	"hmitree/internal/config"
)

// Notifier sends a subject/body notification to whatever channel
// implements it.
type Notifier interface {
	Send(subject, body string) error
}

// EmailNotifier implements Notifier over net/smtp.
type EmailNotifier struct {
	cfg  config.SMTPConfig
	auth smtp.Auth
}

// NewEmailNotifier constructs a Notifier from SMTP settings. PlainAuth
// withholds credentials until the server identifies itself.
func NewEmailNotifier(cfg config.SMTPConfig) Notifier {
	auth := smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	return &EmailNotifier{cfg: cfg, auth: auth}
}

// Send emails subject/body (as HTML) to every configured recipient.
func (n *EmailNotifier) Send(subject, body string) error {
	addr := fmt.Sprintf("%s:%d", n.cfg.Host, n.cfg.Port)
	recipients := n.cfg.To

	msg := []byte("To: " + strings.Join(recipients, ",") + "\r\n" +
		"From: " + n.cfg.From + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"Content-Type: text/html; charset=UTF-8\r\n" +
		"\r\n" +
		body)

	if err := smtp.SendMail(addr, n.auth, n.cfg.From, recipients, msg); err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	return nil
}
