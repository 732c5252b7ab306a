package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"portfolioserver/internal/auth"
	"portfolioserver/internal/domain"
	"portfolioserver/internal/validation"
)

type ResetMailer interface {
	SendPasswordReset(ctx context.Context, toEmail, resetURL string) error
}

type forgotInput struct {
	Email string `json:"email" validate:"required,account_email"`
}

type ResetPasswordInput struct {
	Password        string `json:"password" validate:"required,password"`
	ConfirmPassword string `json:"confirmPassword" validate:"required"`
}

// PasswordResetService runs the recovery token lifecycle. An account has at
// most one outstanding token; only its SHA-256 digest is stored.
type PasswordResetService struct {
	Accounts AccountsStore
	Hasher   PasswordHasher
	Tokens   TokenIssuer
	Mail     ResetMailer
	// DashboardURL is the base of the link placed in the email.
	DashboardURL string
	TokenTTL     time.Duration
	Logger       *slog.Logger
	Now          func() time.Time
}

func (s *PasswordResetService) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

func (s *PasswordResetService) tokenTTL() time.Duration {
	if s.TokenTTL <= 0 {
		return auth.ResetTokenTTL
	}
	return s.TokenTTL
}

func (s *PasswordResetService) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}

// RequestReset issues a token and mails it. An unknown email returns nil so
// the caller cannot probe which accounts exist.
func (s *PasswordResetService) RequestReset(ctx context.Context, email string) error {
	in := forgotInput{Email: validation.NormalizeEmail(email)}
	if err := validation.Struct(in); err != nil {
		return err
	}

	acct, err := s.Accounts.GetAccountSecretsByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.logger().Info("password reset for unknown email", "event", "password_reset_unknown_email")
			return nil
		}
		return err
	}

	raw, digest, err := auth.NewResetToken()
	if err != nil {
		return err
	}
	acct.SetResetToken(digest, s.now().Add(s.tokenTTL()))
	if _, err := s.Accounts.SaveAccount(ctx, acct); err != nil {
		return err
	}

	// Persist first, then send; roll back on a failed send.
	resetURL := s.DashboardURL + "/password/reset/" + raw
	if sendErr := s.Mail.SendPasswordReset(ctx, acct.Email, resetURL); sendErr != nil {
		s.logger().Warn("password reset email failed", "event", "password_reset_delivery_failed", "account_id", acct.ID, "err", sendErr)
		deliveryErr := &domain.DeliveryError{Err: sendErr}

		acct.ClearResetToken()
		if _, err := s.Accounts.SaveAccount(context.WithoutCancel(ctx), acct); err != nil {
			return errors.Join(deliveryErr, fmt.Errorf("roll back reset token: %w", err))
		}
		return deliveryErr
	}

	s.logger().Info("password reset requested", "event", "password_reset_requested", "account_id", acct.ID)
	return nil
}

// ResetPassword consumes a token. A wrong token and an expired one fail the
// same way.
func (s *PasswordResetService) ResetPassword(ctx context.Context, rawToken string, in ResetPasswordInput) (Session, error) {
	if rawToken == "" {
		return Session{}, domain.ErrResetTokenInvalid
	}
	if err := validation.Struct(in); err != nil {
		return Session{}, err
	}

	acct, err := s.Accounts.GetAccountByResetToken(ctx, auth.HashResetToken(rawToken), s.now())
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return Session{}, domain.ErrResetTokenInvalid
		}
		return Session{}, err
	}

	if in.Password != in.ConfirmPassword {
		return Session{}, domain.NewValidationError(map[string]string{"confirmPassword": "must match password"})
	}
	if err := acct.SetPassword(s.Hasher, in.Password); err != nil {
		return Session{}, fmt.Errorf("hash password: %w", err)
	}
	acct.ClearResetToken()

	saved, err := s.Accounts.SaveAccount(ctx, acct)
	if err != nil {
		return Session{}, err
	}
	s.logger().Info("password reset completed", "event", "password_reset_completed", "account_id", saved.ID)

	token, expiresAt, err := s.Tokens.Sign(saved.ID)
	if err != nil {
		return Session{}, fmt.Errorf("sign token: %w", err)
	}
	return Session{Account: saved, Token: token, ExpiresAt: expiresAt}, nil
}
