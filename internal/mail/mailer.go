package mail

import (
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"jobdesk/api/internal/config"
)

// SMTPMailer sends transactional mail over plain SMTP with STARTTLS.
// Callers treat delivery as fire-and-forget.
type SMTPMailer struct {
	cfg config.MailConfig
	log zerolog.Logger
}

func NewSMTPMailer(cfg config.MailConfig, log zerolog.Logger) *SMTPMailer {
	return &SMTPMailer{cfg: cfg, log: log}
}

func (m *SMTPMailer) SendVerificationEmail(to, token string) error {
	link := fmt.Sprintf("%s?token=%s", m.cfg.VerifyBaseURL, url.QueryEscape(token))

	fromHeader := fmt.Sprintf("%s <%s>", m.cfg.FromName, m.cfg.From)
	body := fmt.Sprintf(
		"Welcome to %s!\r\n\r\nPlease verify your email address by opening the link below:\r\n\r\n%s\r\n\r\nThe link expires in 24 hours.\r\n",
		m.cfg.FromName, link,
	)

	msg := strings.Join([]string{
		"From: " + fromHeader,
		"To: " + to,
		"Subject: Verify your email address",
		"MIME-Version: 1.0",
		`Content-Type: text/plain; charset="UTF-8"`,
		"",
		body,
	}, "\r\n")

	if err := m.send(to, []byte(msg)); err != nil {
		return fmt.Errorf("send verification mail: %w", err)
	}

	m.log.Debug().Str("to", to).Msg("verification email sent")
	return nil
}

func (m *SMTPMailer) send(to string, msg []byte) error {
	addr := fmt.Sprintf("%s:%d", m.cfg.SMTPHost, m.cfg.SMTPPort)

	timeout := m.cfg.SendTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return err
	}
	_ = conn.SetDeadline(time.Now().Add(timeout))

	client, err := smtp.NewClient(conn, m.cfg.SMTPHost)
	if err != nil {
		conn.Close()
		return err
	}
	defer client.Close()

	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(&tls.Config{ServerName: m.cfg.SMTPHost}); err != nil {
			return err
		}
	}

	if m.cfg.Username != "" {
		auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.SMTPHost)
		if err := client.Auth(auth); err != nil {
			return err
		}
	}

	if err := client.Mail(m.cfg.From); err != nil {
		return err
	}
	if err := client.Rcpt(to); err != nil {
		return err
	}

	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}

	return client.Quit()
}
