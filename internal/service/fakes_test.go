package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"portfolioserver/internal/auth"
	"portfolioserver/internal/domain"
	"portfolioserver/internal/media"
)

// memAccounts enforces the same unique email/phone rule as the database.
type memAccounts struct {
	mu     sync.Mutex
	nextID int
	rows   map[string]domain.AccountWithSecrets
	saves  int
}

func newMemAccounts() *memAccounts {
	return &memAccounts{rows: map[string]domain.AccountWithSecrets{}}
}

func (m *memAccounts) conflict(a domain.AccountWithSecrets) error {
	for id, row := range m.rows {
		if id == a.ID {
			continue
		}
		if row.Email == a.Email {
			return domain.NewConflictError("email")
		}
		if row.Phone == a.Phone {
			return domain.NewConflictError("phone")
		}
	}
	return nil
}

func (m *memAccounts) CreateAccount(_ context.Context, a domain.AccountWithSecrets) (domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.conflict(a); err != nil {
		return domain.Account{}, err
	}
	m.nextID++
	a.ID = fmt.Sprintf("acct-%d", m.nextID)
	a.CreatedAt = time.Now().UTC()
	a.UpdatedAt = a.CreatedAt
	m.rows[a.ID] = a
	return a.Account, nil
}

func (m *memAccounts) GetAccountByID(ctx context.Context, id string) (domain.Account, error) {
	a, err := m.GetAccountSecretsByID(ctx, id)
	return a.Account, err
}

func (m *memAccounts) GetAccountSecretsByID(_ context.Context, id string) (domain.AccountWithSecrets, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.rows[id]
	if !ok {
		return domain.AccountWithSecrets{}, domain.ErrNotFound
	}
	return a, nil
}

func (m *memAccounts) GetAccountSecretsByEmail(_ context.Context, email string) (domain.AccountWithSecrets, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.rows {
		if a.Email == email {
			return a, nil
		}
	}
	return domain.AccountWithSecrets{}, domain.ErrNotFound
}

func (m *memAccounts) FindAccountByEmailOrPhone(_ context.Context, email, phone, excludeID string) (domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.rows))
	for id := range m.rows {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		a := m.rows[id]
		if id != excludeID && (a.Email == email || a.Phone == phone) {
			return a.Account, nil
		}
	}
	return domain.Account{}, domain.ErrNotFound
}

func (m *memAccounts) GetAccountByResetToken(_ context.Context, tokenHash string, now time.Time) (domain.AccountWithSecrets, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.rows {
		if a.ResetPasswordToken != nil && *a.ResetPasswordToken == tokenHash &&
			a.ResetPasswordExpire != nil && a.ResetPasswordExpire.After(now) {
			return a, nil
		}
	}
	return domain.AccountWithSecrets{}, domain.ErrNotFound
}

func (m *memAccounts) SaveAccount(_ context.Context, a domain.AccountWithSecrets) (domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[a.ID]; !ok {
		return domain.Account{}, domain.ErrNotFound
	}
	if err := m.conflict(a); err != nil {
		return domain.Account{}, err
	}
	m.saves++
	a.UpdatedAt = time.Now().UTC()
	m.rows[a.ID] = a
	return a.Account, nil
}

func (m *memAccounts) row(t *testing.T, id string) domain.AccountWithSecrets {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.rows[id]
	if !ok {
		t.Fatalf("account %s not stored", id)
	}
	return a
}

// stubAccountsStore fails the test on any call without a func set.
type stubAccountsStore struct {
	t *testing.T

	getAccountSecretsByEmailFunc  func(context.Context, string) (domain.AccountWithSecrets, error)
	findAccountByEmailOrPhoneFunc func(context.Context, string, string, string) (domain.Account, error)
}

func (s *stubAccountsStore) CreateAccount(context.Context, domain.AccountWithSecrets) (domain.Account, error) {
	s.t.Fatalf("CreateAccount called unexpectedly")
	return domain.Account{}, errors.New("unexpected call")
}

func (s *stubAccountsStore) GetAccountByID(context.Context, string) (domain.Account, error) {
	s.t.Fatalf("GetAccountByID called unexpectedly")
	return domain.Account{}, errors.New("unexpected call")
}

func (s *stubAccountsStore) GetAccountSecretsByID(context.Context, string) (domain.AccountWithSecrets, error) {
	s.t.Fatalf("GetAccountSecretsByID called unexpectedly")
	return domain.AccountWithSecrets{}, errors.New("unexpected call")
}

func (s *stubAccountsStore) GetAccountSecretsByEmail(ctx context.Context, email string) (domain.AccountWithSecrets, error) {
	if s.getAccountSecretsByEmailFunc != nil {
		return s.getAccountSecretsByEmailFunc(ctx, email)
	}
	s.t.Fatalf("GetAccountSecretsByEmail called unexpectedly")
	return domain.AccountWithSecrets{}, errors.New("unexpected call")
}

func (s *stubAccountsStore) FindAccountByEmailOrPhone(ctx context.Context, email, phone, excludeID string) (domain.Account, error) {
	if s.findAccountByEmailOrPhoneFunc != nil {
		return s.findAccountByEmailOrPhoneFunc(ctx, email, phone, excludeID)
	}
	s.t.Fatalf("FindAccountByEmailOrPhone called unexpectedly")
	return domain.Account{}, errors.New("unexpected call")
}

func (s *stubAccountsStore) GetAccountByResetToken(context.Context, string, time.Time) (domain.AccountWithSecrets, error) {
	s.t.Fatalf("GetAccountByResetToken called unexpectedly")
	return domain.AccountWithSecrets{}, errors.New("unexpected call")
}

func (s *stubAccountsStore) SaveAccount(context.Context, domain.AccountWithSecrets) (domain.Account, error) {
	s.t.Fatalf("SaveAccount called unexpectedly")
	return domain.Account{}, errors.New("unexpected call")
}

type sentMail struct {
	to, url string
}

type fakeResetMailer struct {
	mu   sync.Mutex
	err  error
	sent []sentMail
}

func (f *fakeResetMailer) SendPasswordReset(_ context.Context, to, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMail{to: to, url: url})
	return nil
}

type fakeMedia struct {
	mu        sync.Mutex
	n         int
	uploadErr error
	uploads   []media.Upload
	deleted   []string
}

func (f *fakeMedia) Upload(_ context.Context, up media.Upload) (domain.Asset, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.uploadErr != nil {
		return domain.Asset{}, f.uploadErr
	}
	if _, err := io.ReadAll(up.Body); err != nil {
		return domain.Asset{}, err
	}
	f.n++
	f.uploads = append(f.uploads, up)
	id := fmt.Sprintf("%s/obj-%d", up.Folder, f.n)
	return domain.Asset{ID: id, URL: "https://cdn.test/" + id}, nil
}

func (f *fakeMedia) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, id)
	return nil
}

func upload(name string) *media.Upload {
	return &media.Upload{Filename: name, Body: strings.NewReader("bytes")}
}

func testHasher() PasswordHasher { return auth.NewBcryptHasher(bcrypt.MinCost) }

func testSigner() *auth.TokenSigner {
	return auth.NewTokenSigner([]byte("test-signing-key"), time.Hour)
}

func validRegisterInput() RegisterInput {
	return RegisterInput{
		FullName:     "Ada Lovelace",
		Email:        "a@x.com",
		Phone:        "1234567890",
		Password:     "abcd1234",
		AboutMe:      "I write programs.",
		PortfolioURL: "https://ada.dev",
		Avatar:       domain.Asset{ID: "AVATAR/1", URL: "https://cdn.test/AVATAR/1"},
		Resume:       domain.Asset{ID: "RESUME/1", URL: "https://cdn.test/RESUME/1"},
	}
}
