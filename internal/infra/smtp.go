package infra

import (
	"errors"
	"fmt"
	"net/smtp"

	"github.com/jordan-wright/email"

	"multipos/internal/config"
)

// ErrMailerNotConfigured is returned by Send when no SMTP host is set.
var ErrMailerNotConfigured = errors.New("mailer: SMTP host not configured")

// Mailer sends plain-text notification mail over SMTP.
type Mailer struct {
	host     string
	user     string
	password string
	addr     string
}

func NewMailer(cfg *config.Config) *Mailer {
	return &Mailer{
		host:     cfg.SMTPHost,
		user:     cfg.SMTPUser,
		password: cfg.SMTPPassword,
		addr:     fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort),
	}
}

// Send delivers one message to every recipient in to.
func (m *Mailer) Send(to []string, subject, body string) error {
	if m.host == "" {
		return ErrMailerNotConfigured
	}
	e := email.NewEmail()
	e.From = m.user
	e.To = to
	e.Subject = subject
	e.Text = []byte(body)

	var auth smtp.Auth
	if m.user != "" {
		auth = smtp.PlainAuth("", m.user, m.password, m.host)
	}
	if err := e.Send(m.addr, auth); err != nil {
		return fmt.Errorf("mailer: send: %w", err)
	}
	return nil
}
