package httpapi

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"portfolioserver/internal/auth"
	"portfolioserver/internal/domain"
	"portfolioserver/internal/media"
	"portfolioserver/internal/service"
)

type memAccounts struct {
	mu     sync.Mutex
	nextID int
	rows   map[string]domain.AccountWithSecrets
}

func newMemAccounts() *memAccounts {
	return &memAccounts{rows: map[string]domain.AccountWithSecrets{}}
}

func (m *memAccounts) CreateAccount(_ context.Context, a domain.AccountWithSecrets) (domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, row := range m.rows {
		if row.Email == a.Email {
			return domain.Account{}, domain.NewConflictError("email")
		}
		if row.Phone == a.Phone {
			return domain.Account{}, domain.NewConflictError("phone")
		}
	}
	m.nextID++
	a.ID = fmt.Sprintf("acct-%d", m.nextID)
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
	for id, a := range m.rows {
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
	m.rows[a.ID] = a
	return a.Account, nil
}

func (m *memAccounts) row(t *testing.T, id string) domain.AccountWithSecrets {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.rows[id]
	if !ok {
		t.Fatalf("no account %q", id)
	}
	return a
}

type fakeMedia struct {
	mu      sync.Mutex
	n       int
	deleted []string
}

func (f *fakeMedia) Upload(_ context.Context, up media.Upload) (domain.Asset, error) {
	if _, err := io.ReadAll(up.Body); err != nil {
		return domain.Asset{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.n++
	id := fmt.Sprintf("%s/obj-%d", up.Folder, f.n)
	return domain.Asset{ID: id, URL: "https://media.test/" + id}, nil
}

func (f *fakeMedia) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, id)
	return nil
}

// captureMailer keeps the last reset link instead of sending it.
type captureMailer struct {
	mu   sync.Mutex
	to   string
	link string
	sent int
	err  error
}

func (c *captureMailer) SendPasswordReset(_ context.Context, toEmail, resetURL string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.to, c.link = toEmail, resetURL
	c.sent++
	return nil
}

type testEnv struct {
	accounts *memAccounts
	media    *fakeMedia
	mailer   *captureMailer
	hasher   auth.BcryptHasher
	signer   *auth.TokenSigner
	handler  http.Handler
	metrics  *Metrics
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		accounts: newMemAccounts(),
		media:    &fakeMedia{},
		mailer:   &captureMailer{},
		hasher:   auth.NewBcryptHasher(bcrypt.MinCost),
		signer:   auth.NewTokenSigner([]byte("test-signing-key"), time.Hour),
		metrics:  NewMetrics(),
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	authSvc := &service.AuthService{
		Accounts: env.accounts,
		Hasher:   env.hasher,
		Tokens:   env.signer,
		Media:    env.media,
		Logger:   logger,
	}
	env.handler = NewRouter(RouterOpts{
		Logger: logger,
		Auth:   authSvc,
		Profile: &service.ProfileService{
			Accounts: env.accounts,
			Media:    env.media,
			Logger:   logger,
		},
		Reset: &service.PasswordResetService{
			Accounts:     env.accounts,
			Hasher:       env.hasher,
			Tokens:       env.signer,
			Mail:         env.mailer,
			DashboardURL: "https://dash.test",
			Logger:       logger,
		},
		Messages:    &service.MessageService{Store: &memMessages{}},
		SessionTTL:  time.Hour,
		CORSOrigins: []string{"https://dash.test"},
		Metrics:     env.metrics,
	})
	return env
}

// seedAccount stores an account with the given password directly.
func (e *testEnv) seedAccount(t *testing.T, email, password string) domain.Account {
	t.Helper()
	a := domain.AccountWithSecrets{Account: domain.Account{
		Email:        email,
		Phone:        "1234567890",
		FullName:     "Ada Lovelace",
		AboutMe:      "Engines",
		PortfolioURL: "https://ada.dev",
	}}
	if err := a.SetPassword(e.hasher, password); err != nil {
		t.Fatalf("hash: %v", err)
	}
	created, err := e.accounts.CreateAccount(context.Background(), a)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	return created
}

type memMessages struct {
	mu   sync.Mutex
	rows []domain.Message
}

func (m *memMessages) CreateMessage(_ context.Context, msg domain.Message) (domain.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	msg.ID = fmt.Sprintf("msg-%d", len(m.rows)+1)
	m.rows = append(m.rows, msg)
	return msg, nil
}

func (m *memMessages) ListMessages(context.Context) ([]domain.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Message, 0, len(m.rows))
	for i := len(m.rows) - 1; i >= 0; i-- {
		out = append(out, m.rows[i])
	}
	return out, nil
}

func (m *memMessages) DeleteMessage(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, row := range m.rows {
		if row.ID == id {
			m.rows = append(m.rows[:i], m.rows[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}
