package mailer

import (
	"context"
	"fmt"
	"time"

	mail "github.com/wneessen/go-mail"
)

// SMTP sends mail through an authenticated SMTP relay. Port 465 uses implicit TLS,
// any other port requires STARTTLS.
type SMTP struct {
	Host string
	Port int
	User string
	Pass string
	From string

	Timeout time.Duration
}

func NewSMTP(host string, port int, user, pass, from string) *SMTP {
	if from == "" {
		from = user
	}
	return &SMTP{Host: host, Port: port, User: user, Pass: pass, From: from, Timeout: 15 * time.Second}
}

func (s *SMTP) client() (*mail.Client, error) {
	opts := []mail.Option{mail.WithPort(s.Port), mail.WithTimeout(s.Timeout)}
	if s.Port == 465 {
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	}
	if s.User != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.User),
			mail.WithPassword(s.Pass))
	}
	return mail.NewClient(s.Host, opts...)
}

func (s *SMTP) Send(ctx context.Context, to, subject, text, html string) error {
	msg, err := buildMessage(s.From, to, subject, text, html)
	if err != nil {
		return err
	}
	c, err := s.client()
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	if err := c.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send to %s: %w", to, err)
	}
	return nil
}

// buildMessage assembles a UTF-8, quoted-printable message; multipart/alternative when html is set.
// Addresses are parsed, so header injection through from or to is rejected.
func buildMessage(from, to, subject, text, html string) (*mail.Msg, error) {
	m := mail.NewMsg()
	if err := m.From(from); err != nil {
		return nil, fmt.Errorf("from address: %w", err)
	}
	if err := m.To(to); err != nil {
		return nil, fmt.Errorf("to address: %w", err)
	}
	m.Subject(subject)
	m.SetDate()
	m.SetMessageID()
	m.SetBodyString(mail.TypeTextPlain, text)
	if html != "" {
		m.AddAlternativeString(mail.TypeTextHTML, html)
	}
	return m, nil
}
