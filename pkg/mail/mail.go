// Package mail delivers transactional email over SMTP.
//
// The Mailer is constructed once from config and injected into the
// services that send mail. When SMTP_HOST is unset the Mailer logs the
// message instead of sending it, which keeps local development and
// tests free of a mail server dependency.
package mail

import (
	"crypto/tls"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/shashiranjanraj/vyapar/config"
	"github.com/shashiranjanraj/vyapar/pkg/logger"
)

// Mailer sends email through a configured SMTP relay.
type Mailer struct {
	host     string
	port     string
	username string
	password string
	from     string
}

// New builds a Mailer from config.
func New(cfg *config.Config) *Mailer {
	return &Mailer{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		username: cfg.SMTPUsername,
		password: cfg.SMTPPassword,
		from:     cfg.MailFrom,
	}
}

// Enabled reports whether a real SMTP relay is configured.
func (m *Mailer) Enabled() bool { return m.host != "" }

// Send delivers an HTML email to the given recipient. With no relay
// configured the message is logged and dropped.
func (m *Mailer) Send(to, subject, htmlBody string) error {
	if !m.Enabled() {
		logger.Info("mail: no SMTP relay configured, dropping message",
			"to", to, "subject", subject)
		return nil
	}

	raw := m.buildRaw(to, subject, htmlBody)
	addr := m.host + ":" + m.port

	var auth smtp.Auth
	if m.username != "" {
		auth = smtp.PlainAuth("", m.username, m.password, m.host)
	}

	// Implicit TLS on 465, STARTTLS otherwise.
	if m.port == "465" {
		return m.sendTLS(addr, auth, to, raw)
	}
	if err := smtp.SendMail(addr, auth, m.from, []string{to}, raw); err != nil {
		return fmt.Errorf("mail: send to %s: %w", to, err)
	}
	return nil
}

func (m *Mailer) sendTLS(addr string, auth smtp.Auth, to string, raw []byte) error {
	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: m.host})
	if err != nil {
		return fmt.Errorf("mail: TLS dial: %w", err)
	}
	client, err := smtp.NewClient(conn, m.host)
	if err != nil {
		return err
	}
	defer client.Quit()

	if auth != nil {
		if err := client.Auth(auth); err != nil {
			return err
		}
	}
	if err := client.Mail(m.from); err != nil {
		return err
	}
	if err := client.Rcpt(to); err != nil {
		return err
	}
	w, err := client.Data()
	if err != nil {
		return err
	}
	defer w.Close()
	_, err = w.Write(raw)
	return err
}

func (m *Mailer) buildRaw(to, subject, htmlBody string) []byte {
	var b strings.Builder
	b.WriteString("From: " + m.from + "\r\n")
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(htmlBody)
	return []byte(b.String())
}
