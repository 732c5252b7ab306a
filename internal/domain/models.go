package domain

import "time"

// Asset points at binary content kept by the media host. The record owns the
// pointer, never the bytes.
type Asset struct {
	ID  string `json:"public_id"`
	URL string `json:"url"`
}

func (a Asset) IsZero() bool { return a.ID == "" && a.URL == "" }

type SocialLinks struct {
	GithubURL    string `json:"githubURL,omitempty"`
	InstagramURL string `json:"instagramURL,omitempty"`
	FacebookURL  string `json:"facebookURL,omitempty"`
	LinkedinURL  string `json:"linkedinURL,omitempty"`
	ThreadURL    string `json:"threadURL,omitempty"`
}

type Account struct {
	ID           string      `json:"id"`
	Email        string      `json:"email"`
	Phone        string      `json:"phone"`
	FullName     string      `json:"fullName"`
	AboutMe      string      `json:"aboutMe"`
	PortfolioURL string      `json:"portfolioURL"`
	Social       SocialLinks `json:"social"`
	Avatar       Asset       `json:"avatar"`
	Resume       Asset       `json:"resume"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
}

// AccountWithSecrets carries the columns that are excluded from default reads.
// It is only loaded for password verification and the reset-token lifecycle.
type AccountWithSecrets struct {
	Account
	PasswordHash        string     `json:"-"`
	ResetPasswordToken  *string    `json:"-"`
	ResetPasswordExpire *time.Time `json:"-"`
}

type PasswordHasher interface {
	Hash(plaintext string) (string, error)
}

// SetPassword hashes plaintext immediately and stores only the digest.
func (a *AccountWithSecrets) SetPassword(h PasswordHasher, plaintext string) error {
	digest, err := h.Hash(plaintext)
	if err != nil {
		return err
	}
	a.PasswordHash = digest
	return nil
}

func (a *AccountWithSecrets) SetResetToken(tokenHash string, expiresAt time.Time) {
	a.ResetPasswordToken = &tokenHash
	a.ResetPasswordExpire = &expiresAt
}

func (a *AccountWithSecrets) ClearResetToken() {
	a.ResetPasswordToken = nil
	a.ResetPasswordExpire = nil
}

func (a AccountWithSecrets) HasPendingReset() bool {
	return a.ResetPasswordToken != nil
}
