package mail

import (
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"

	"github.com/tazhibayda/account-service/internal/log"
)

type Mail struct {
	To      string
	Subject string
	HTML    string
}

type Sender interface {
	Send(m Mail) error
}

// LogSender stands in when SMTP is not configured (local dev).
type LogSender struct{}

func (LogSender) Send(m Mail) error {
	log.Infof("[MAIL] to=%s subj=%s", m.To, m.Subject)
	return nil
}

type SMTPSender struct {
	Host     string
	Port     string
	User     string
	Password string
	From     string
}

func NewSMTP(host, port, user, password, from string) *SMTPSender {
	return &SMTPSender{Host: host, Port: port, User: user, Password: password, From: from}
}

func (s *SMTPSender) Send(m Mail) error {
	msg := strings.Join([]string{
		fmt.Sprintf("From: %s", s.From),
		fmt.Sprintf("To: %s", m.To),
		fmt.Sprintf("Subject: %s", m.Subject),
		"MIME-Version: 1.0",
		`Content-Type: text/html; charset="UTF-8"`,
		"",
		m.HTML,
	}, "\r\n")

	return s.send(m.To, []byte(msg))
}

func (s *SMTPSender) send(to string, msg []byte) error {
	addr := net.JoinHostPort(s.Host, s.Port)

	conn, err := net.DialTimeout("tcp", addr, 8*time.Second)
	if err != nil {
		return fmt.Errorf("smtp dial: %w", err)
	}
	// deadline covers the whole session, not just the dial
	_ = conn.SetDeadline(time.Now().Add(15 * time.Second))

	c, err := smtp.NewClient(conn, s.Host)
	if err != nil {
		return err
	}
	defer func() { _ = c.Quit() }()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: s.Host}); err != nil {
			return err
		}
	}
	if s.User != "" {
		auth := smtp.PlainAuth("", s.User, s.Password, s.Host)
		if err := c.Auth(auth); err != nil {
			return err
		}
	}

	if err := c.Mail(s.From); err != nil {
		return err
	}
	if err := c.Rcpt(to); err != nil {
		return err
	}

	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}
