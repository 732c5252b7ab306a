package email

import (
	"crypto/tls"
	"fmt"

	"gopkg.in/gomail.v2"
)

type Message struct {
	FromName  string
	FromEmail string
	ToEmail   string
	Subject   string
	TextBody  string
}

type SMTPSettings struct {
	Host     string
	Port     int
	Username string
	Password string
}

// Sender delivers one message per SMTP session.
type Sender struct {
	dialer    *gomail.Dialer
	fromName  string
	fromEmail string
}

func NewSender(settings SMTPSettings, fromName, fromEmail string) *Sender {
	d := gomail.NewDialer(settings.Host, settings.Port, settings.Username, settings.Password)
	d.TLSConfig = &tls.Config{ServerName: settings.Host, MinVersion: tls.VersionTLS12}
	return &Sender{dialer: d, fromName: fromName, fromEmail: fromEmail}
}

// Send is synchronous and does not retry.
func (s *Sender) Send(toEmail, subject, body string) error {
	msg := Message{
		FromName:  s.fromName,
		FromEmail: s.fromEmail,
		ToEmail:   toEmail,
		Subject:   subject,
		TextBody:  body,
	}
	if err := s.dialer.DialAndSend(buildMessage(msg)); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

func buildMessage(msg Message) *gomail.Message {
	m := gomail.NewMessage(gomail.SetCharset("UTF-8"))
	if msg.FromName != "" {
		m.SetAddressHeader("From", msg.FromEmail, msg.FromName)
	} else {
		m.SetHeader("From", msg.FromEmail)
	}
	m.SetHeader("To", msg.ToEmail)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.TextBody)
	return m
}
