package service

import (
	"context"
	"errors"
	"strings"
)

// Mailer is the outbound mail transport. Send is synchronous with no retry.
type Mailer interface {
	Send(toEmail, subject, body string) error
}

var errMailerUnavailable = errors.New("mailer unavailable")

type EmailService struct {
	Mailer Mailer
}

func (s *EmailService) SendPasswordReset(ctx context.Context, toEmail, resetURL string) error {
	if s.Mailer == nil {
		return errMailerUnavailable
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	subject := "Personal Portfolio Dashboard Password Recovery"
	body := strings.Join([]string{
		"You requested a password reset.",
		"",
		"Reset your password using this link:",
		resetURL,
		"",
		"The link expires in 15 minutes. If you did not request this, you can ignore this email.",
	}, "\n")

	return s.Mailer.Send(toEmail, subject, body)
}
