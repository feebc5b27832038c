// Package mailer sends password-reset emails over SMTP.
package mailer

import (
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/duynhne/identity-service/config"
)

// SMTPMailer delivers reset links via an SMTP relay. It implements
// the logic layer's Mailer interface.
type SMTPMailer struct {
	dialer       *gomail.Dialer
	from         string
	resetURLBase string
}

// New creates an SMTPMailer from config.
func New(cfg *config.Config) *SMTPMailer {
	return &SMTPMailer{
		dialer:       gomail.NewDialer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password),
		from:         cfg.SMTP.From,
		resetURLBase: cfg.Auth.ResetURLBase,
	}
}

// SendResetLink mails the reset link for token to email.
func (m *SMTPMailer) SendResetLink(email, token string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", email)
	msg.SetHeader("Subject", "Password reset")
	msg.SetBody("text/plain", fmt.Sprintf(
		"A password reset was requested for this address.\n\n"+
			"Follow this link to choose a new password:\n%s?token=%s\n\n"+
			"If you did not request a reset, ignore this message.",
		m.resetURLBase, token,
	))

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("dial and send: %w", err)
	}
	return nil
}
