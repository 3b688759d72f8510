package mail

import (
	"log"
	"net/smtp"

	"sales_system/internal/platform/config"
)

// SMTPMailer delivers notification mail over plain SMTP. Send reports
// success as a boolean so callers cannot tell delivery failure apart from
// any other reset failure.
type SMTPMailer struct {
	addr string
	from string
	auth smtp.Auth
}

func NewSMTPMailer() *SMTPMailer {
	cfg := config.AppConfig
	m := &SMTPMailer{
		addr: cfg.SMTPHost + ":" + cfg.SMTPPort,
		from: cfg.MailFrom,
	}
	if cfg.SMTPUser != "" {
		m.auth = smtp.PlainAuth("", cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPHost)
	}
	return m
}

func (m *SMTPMailer) Send(to, subject, body string) bool {
	msg := []byte("From: " + m.from + "\r\n" +
		"To: " + to + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"\r\n" +
		body + "\r\n")

	if err := smtp.SendMail(m.addr, m.auth, m.from, []string{to}, msg); err != nil {
		log.Printf("mail: send to %s failed: %v", to, err)
		return false
	}
	return true
}
