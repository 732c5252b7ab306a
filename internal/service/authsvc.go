package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"portfolioserver/internal/domain"
	"portfolioserver/internal/validation"
)

type AccountsStore interface {
	CreateAccount(ctx context.Context, a domain.AccountWithSecrets) (domain.Account, error)
	GetAccountByID(ctx context.Context, id string) (domain.Account, error)
	GetAccountSecretsByID(ctx context.Context, id string) (domain.AccountWithSecrets, error)
	GetAccountSecretsByEmail(ctx context.Context, email string) (domain.AccountWithSecrets, error)
	// FindAccountByEmailOrPhone ignores the account with excludeID when it is set.
	FindAccountByEmailOrPhone(ctx context.Context, email, phone, excludeID string) (domain.Account, error)
	GetAccountByResetToken(ctx context.Context, tokenHash string, now time.Time) (domain.AccountWithSecrets, error)
	SaveAccount(ctx context.Context, a domain.AccountWithSecrets) (domain.Account, error)
}

type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, digest string) (bool, error)
}

type TokenIssuer interface {
	Sign(accountID string) (string, time.Time, error)
	Verify(token string) (string, error)
}

// Session is what a successful register, login or reset hands back. The
// plaintext token is only ever available here.
type Session struct {
	Account   domain.Account
	Token     string
	ExpiresAt time.Time
}

type RegisterInput struct {
	FullName     string             `json:"fullName" validate:"required,min=3,max=50"`
	Email        string             `json:"email" validate:"required,account_email"`
	Phone        string             `json:"phone" validate:"required,phone10"`
	Password     string             `json:"password" validate:"required,password"`
	AboutMe      string             `json:"aboutMe" validate:"required"`
	PortfolioURL string             `json:"portfolioURL" validate:"required,portfolio_url"`
	Social       domain.SocialLinks `json:"social"`
	Avatar       domain.Asset       `json:"avatar" validate:"required"`
	Resume       domain.Asset       `json:"resume" validate:"required"`
}

func (in RegisterInput) normalized() RegisterInput {
	in.FullName = strings.TrimSpace(in.FullName)
	in.Email = validation.NormalizeEmail(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	in.AboutMe = strings.TrimSpace(in.AboutMe)
	in.PortfolioURL = strings.TrimSpace(in.PortfolioURL)
	return in
}

type loginInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type UpdatePasswordInput struct {
	CurrentPassword    string `json:"currentPassword" validate:"required"`
	NewPassword        string `json:"newPassword" validate:"required,password"`
	ConfirmNewPassword string `json:"confirmNewPassword" validate:"required"`
}

type AuthService struct {
	Accounts AccountsStore
	Hasher   PasswordHasher
	Tokens   TokenIssuer
	Media    MediaStore
	// OwnerID names the account shown on the public portfolio.
	OwnerID string
	Logger  *slog.Logger

	dummyOnce   sync.Once
	dummyDigest string
}

func (s *AuthService) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (Session, error) {
	in = in.normalized()
	if err := validation.Struct(in); err != nil {
		return Session{}, err
	}
	if err := checkUnique(ctx, s.Accounts, in.Email, in.Phone, ""); err != nil {
		return Session{}, err
	}

	acct := domain.AccountWithSecrets{Account: domain.Account{
		Email:        in.Email,
		Phone:        in.Phone,
		FullName:     in.FullName,
		AboutMe:      in.AboutMe,
		PortfolioURL: in.PortfolioURL,
		Social:       in.Social,
		Avatar:       in.Avatar,
		Resume:       in.Resume,
	}}
	if err := acct.SetPassword(s.Hasher, in.Password); err != nil {
		return Session{}, fmt.Errorf("hash password: %w", err)
	}

	created, err := s.Accounts.CreateAccount(ctx, acct)
	if err != nil {
		return Session{}, err
	}
	s.logger().Info("account registered", "event", "account_registered", "account_id", created.ID)

	return s.issue(created)
}

// checkUnique is the fast path; the unique indexes remain the only guard
// against concurrent inserts.
func checkUnique(ctx context.Context, accounts AccountsStore, email, phone, excludeID string) error {
	existing, err := accounts.FindAccountByEmailOrPhone(ctx, email, phone, excludeID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return nil
	case err != nil:
		return err
	case existing.Email == email:
		return domain.NewConflictError("email")
	default:
		return domain.NewConflictError("phone")
	}
}

// Login never tells an unknown email apart from a wrong password.
func (s *AuthService) Login(ctx context.Context, email, password string) (Session, error) {
	in := loginInput{Email: validation.NormalizeEmail(email), Password: password}
	if err := validation.Struct(in); err != nil {
		return Session{}, err
	}

	acct, err := s.Accounts.GetAccountSecretsByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.verifyDummy(in.Password)
			s.logger().Info("login failed", "event", "login_failed")
			return Session{}, domain.ErrInvalidCredentials
		}
		return Session{}, err
	}

	ok, err := s.Hasher.Verify(in.Password, acct.PasswordHash)
	if err != nil {
		return Session{}, err
	}
	if !ok {
		s.logger().Info("login failed", "event", "login_failed", "account_id", acct.ID)
		return Session{}, domain.ErrInvalidCredentials
	}

	return s.issue(acct.Account)
}

// verifyDummy spends one hash verification so an unknown email costs the
// same as a wrong password.
func (s *AuthService) verifyDummy(password string) {
	s.dummyOnce.Do(func() {
		digest, err := s.Hasher.Hash("unknown-account-0")
		if err != nil {
			s.logger().Warn("dummy digest", "err", err)
			return
		}
		s.dummyDigest = digest
	})
	if s.dummyDigest != "" {
		_, _ = s.Hasher.Verify(password, s.dummyDigest)
	}
}

func (s *AuthService) issue(acct domain.Account) (Session, error) {
	token, expiresAt, err := s.Tokens.Sign(acct.ID)
	if err != nil {
		return Session{}, fmt.Errorf("sign token: %w", err)
	}
	return Session{Account: acct, Token: token, ExpiresAt: expiresAt}, nil
}

// Authenticate resolves a session token to its account.
func (s *AuthService) Authenticate(ctx context.Context, token string) (domain.Account, error) {
	if token == "" {
		return domain.Account{}, domain.ErrUnauthorized
	}
	id, err := s.Tokens.Verify(token)
	if err != nil {
		return domain.Account{}, err
	}
	acct, err := s.Accounts.GetAccountByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Account{}, domain.ErrUnauthorized
		}
		return domain.Account{}, err
	}
	return acct, nil
}

func (s *AuthService) Me(ctx context.Context, accountID string) (domain.Account, error) {
	return s.Accounts.GetAccountByID(ctx, accountID)
}

func (s *AuthService) UpdatePassword(ctx context.Context, accountID string, in UpdatePasswordInput) error {
	if err := validation.Struct(in); err != nil {
		return err
	}

	acct, err := s.Accounts.GetAccountSecretsByID(ctx, accountID)
	if err != nil {
		return err
	}
	ok, err := s.Hasher.Verify(in.CurrentPassword, acct.PasswordHash)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrIncorrectPassword
	}
	if in.NewPassword != in.ConfirmNewPassword {
		return domain.NewValidationError(map[string]string{"confirmNewPassword": "must match newPassword"})
	}

	if err := acct.SetPassword(s.Hasher, in.NewPassword); err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if _, err := s.Accounts.SaveAccount(ctx, acct); err != nil {
		return err
	}
	s.logger().Info("password updated", "event", "password_updated", "account_id", accountID)
	return nil
}

// PortfolioOwner returns the account configured for public display.
func (s *AuthService) PortfolioOwner(ctx context.Context) (domain.Account, error) {
	if s.OwnerID == "" {
		return domain.Account{}, domain.ErrNotFound
	}
	return s.Accounts.GetAccountByID(ctx, s.OwnerID)
}
