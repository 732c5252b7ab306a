package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"portfolioserver/internal/domain"
)

type AccountsStore struct {
	db DB
}

func NewAccountsStore(db DB) *AccountsStore {
	return &AccountsStore{db: db}
}

const accountColumns = `id, email, phone, full_name, about_me, portfolio_url,
	github_url, instagram_url, facebook_url, linkedin_url, thread_url,
	avatar_id, avatar_url, resume_id, resume_url, created_at, updated_at`

// The secret columns are only selected where a caller needs them.
const accountSecretColumns = accountColumns + `,
	password_hash, reset_password_token, reset_password_expire`

type accountRow struct {
	id        pgtype.UUID
	github    pgtype.Text
	instagram pgtype.Text
	facebook  pgtype.Text
	linkedin  pgtype.Text
	thread    pgtype.Text
}

func (r *accountRow) dest(a *domain.Account) []any {
	return []any{
		&r.id, &a.Email, &a.Phone, &a.FullName, &a.AboutMe, &a.PortfolioURL,
		&r.github, &r.instagram, &r.facebook, &r.linkedin, &r.thread,
		&a.Avatar.ID, &a.Avatar.URL, &a.Resume.ID, &a.Resume.URL, &a.CreatedAt, &a.UpdatedAt,
	}
}

func (r *accountRow) fill(a *domain.Account) {
	a.ID = uuidOrEmpty(r.id)
	a.Social = domain.SocialLinks{
		GithubURL:    textOrEmpty(r.github),
		InstagramURL: textOrEmpty(r.instagram),
		FacebookURL:  textOrEmpty(r.facebook),
		LinkedinURL:  textOrEmpty(r.linkedin),
		ThreadURL:    textOrEmpty(r.thread),
	}
}

func scanAccount(row pgx.Row) (domain.Account, error) {
	var (
		a domain.Account
		r accountRow
	)
	if err := row.Scan(r.dest(&a)...); err != nil {
		return domain.Account{}, err
	}
	r.fill(&a)
	return a, nil
}

func scanAccountSecrets(row pgx.Row) (domain.AccountWithSecrets, error) {
	var (
		a       domain.AccountWithSecrets
		r       accountRow
		token   pgtype.Text
		expires pgtype.Timestamptz
	)
	dest := append(r.dest(&a.Account), &a.PasswordHash, &token, &expires)
	if err := row.Scan(dest...); err != nil {
		return domain.AccountWithSecrets{}, err
	}
	r.fill(&a.Account)
	a.ResetPasswordToken = textPtr(token)
	a.ResetPasswordExpire = timestamptzPtr(expires)
	return a, nil
}

func (s *AccountsStore) CreateAccount(ctx context.Context, a domain.AccountWithSecrets) (domain.Account, error) {
	const q = `
		INSERT INTO accounts (
			email, phone, password_hash, full_name, about_me, portfolio_url,
			github_url, instagram_url, facebook_url, linkedin_url, thread_url,
			avatar_id, avatar_url, resume_id, resume_url
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING ` + accountColumns

	created, err := scanAccount(s.db.QueryRow(ctx, q,
		a.Email, a.Phone, a.PasswordHash, a.FullName, a.AboutMe, a.PortfolioURL,
		nullIfEmpty(a.Social.GithubURL), nullIfEmpty(a.Social.InstagramURL), nullIfEmpty(a.Social.FacebookURL),
		nullIfEmpty(a.Social.LinkedinURL), nullIfEmpty(a.Social.ThreadURL),
		a.Avatar.ID, a.Avatar.URL, a.Resume.ID, a.Resume.URL,
	))
	if err != nil {
		return domain.Account{}, mapWriteError("create account", err)
	}
	return created, nil
}

func (s *AccountsStore) GetAccountByID(ctx context.Context, id string) (domain.Account, error) {
	uid, err := parseID(id)
	if err != nil {
		return domain.Account{}, err
	}
	q := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`

	a, err := scanAccount(s.db.QueryRow(ctx, q, uid))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Account{}, domain.ErrNotFound
		}
		return domain.Account{}, fmt.Errorf("get account by id: %w", err)
	}
	return a, nil
}

func (s *AccountsStore) GetAccountSecretsByID(ctx context.Context, id string) (domain.AccountWithSecrets, error) {
	uid, err := parseID(id)
	if err != nil {
		return domain.AccountWithSecrets{}, err
	}
	q := `SELECT ` + accountSecretColumns + ` FROM accounts WHERE id = $1`
	return s.getSecrets(ctx, "get account by id", q, uid)
}

func (s *AccountsStore) GetAccountSecretsByEmail(ctx context.Context, email string) (domain.AccountWithSecrets, error) {
	q := `SELECT ` + accountSecretColumns + ` FROM accounts WHERE email = $1`
	return s.getSecrets(ctx, "get account by email", q, email)
}

// GetAccountByResetToken matches only a token whose expiry is still ahead of now.
func (s *AccountsStore) GetAccountByResetToken(ctx context.Context, tokenHash string, now time.Time) (domain.AccountWithSecrets, error) {
	q := `SELECT ` + accountSecretColumns + `
		FROM accounts
		WHERE reset_password_token = $1 AND reset_password_expire > $2`
	return s.getSecrets(ctx, "get account by reset token", q, tokenHash, now)
}

func (s *AccountsStore) getSecrets(ctx context.Context, op, q string, args ...any) (domain.AccountWithSecrets, error) {
	a, err := scanAccountSecrets(s.db.QueryRow(ctx, q, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.AccountWithSecrets{}, domain.ErrNotFound
		}
		return domain.AccountWithSecrets{}, fmt.Errorf("%s: %w", op, err)
	}
	return a, nil
}

func (s *AccountsStore) FindAccountByEmailOrPhone(ctx context.Context, email, phone, excludeID string) (domain.Account, error) {
	q := `SELECT ` + accountColumns + `
		FROM accounts
		WHERE (email = $1 OR phone = $2) AND ($3::uuid IS NULL OR id <> $3::uuid)
		ORDER BY (email = $1) DESC
		LIMIT 1`

	var exclude pgtype.UUID
	if excludeID != "" {
		uid, err := parseID(excludeID)
		if err != nil {
			return domain.Account{}, err
		}
		exclude = uid
	}

	a, err := scanAccount(s.db.QueryRow(ctx, q, email, phone, exclude))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Account{}, domain.ErrNotFound
		}
		return domain.Account{}, fmt.Errorf("find account by email or phone: %w", err)
	}
	return a, nil
}

// SaveAccount writes every column, secrets included, without re-validating.
func (s *AccountsStore) SaveAccount(ctx context.Context, a domain.AccountWithSecrets) (domain.Account, error) {
	uid, err := parseID(a.ID)
	if err != nil {
		return domain.Account{}, err
	}
	const q = `
		UPDATE accounts SET
			email = $2, phone = $3, password_hash = $4, full_name = $5, about_me = $6, portfolio_url = $7,
			github_url = $8, instagram_url = $9, facebook_url = $10, linkedin_url = $11, thread_url = $12,
			avatar_id = $13, avatar_url = $14, resume_id = $15, resume_url = $16,
			reset_password_token = $17, reset_password_expire = $18,
			updated_at = now()
		WHERE id = $1
		RETURNING ` + accountColumns

	saved, err := scanAccount(s.db.QueryRow(ctx, q,
		uid, a.Email, a.Phone, a.PasswordHash, a.FullName, a.AboutMe, a.PortfolioURL,
		nullIfEmpty(a.Social.GithubURL), nullIfEmpty(a.Social.InstagramURL), nullIfEmpty(a.Social.FacebookURL),
		nullIfEmpty(a.Social.LinkedinURL), nullIfEmpty(a.Social.ThreadURL),
		a.Avatar.ID, a.Avatar.URL, a.Resume.ID, a.Resume.URL,
		a.ResetPasswordToken, a.ResetPasswordExpire,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Account{}, domain.ErrNotFound
		}
		return domain.Account{}, mapWriteError("save account", err)
	}
	return saved, nil
}
