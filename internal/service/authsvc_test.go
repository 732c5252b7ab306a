package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolioserver/internal/auth"
	"portfolioserver/internal/domain"
)

func newAuthService(accounts AccountsStore) *AuthService {
	return &AuthService{Accounts: accounts, Hasher: testHasher(), Tokens: testSigner()}
}

func TestAuthServiceRegister(t *testing.T) {
	accounts := newMemAccounts()
	svc := newAuthService(accounts)

	in := validRegisterInput()
	in.Email = "  A@X.com "
	sess, err := svc.Register(context.Background(), in)
	require.NoError(t, err)

	assert.NotEmpty(t, sess.Token)
	assert.Equal(t, "a@x.com", sess.Account.Email)

	id, err := testSigner().Verify(sess.Token)
	require.NoError(t, err)
	assert.Equal(t, sess.Account.ID, id)

	stored := accounts.row(t, sess.Account.ID)
	assert.NotEqual(t, "abcd1234", stored.PasswordHash)
	ok, err := testHasher().Verify("abcd1234", stored.PasswordHash)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.False(t, stored.HasPendingReset())
}

func TestAuthServiceRegisterConflicts(t *testing.T) {
	accounts := newMemAccounts()
	svc := newAuthService(accounts)
	_, err := svc.Register(context.Background(), validRegisterInput())
	require.NoError(t, err)

	sameEmail := validRegisterInput()
	sameEmail.Phone = "0987654321"
	_, err = svc.Register(context.Background(), sameEmail)
	var conflict *domain.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "email", conflict.Field)

	samePhone := validRegisterInput()
	samePhone.Email = "b@x.com"
	_, err = svc.Register(context.Background(), samePhone)
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "phone", conflict.Field)
	assert.True(t, errors.Is(err, domain.ErrConflict))
}

// A racing insert that slips past the pre-check is still rejected by the store.
func TestAuthServiceRegisterStoreConflict(t *testing.T) {
	accounts := newMemAccounts()
	_, err := accounts.CreateAccount(context.Background(), domain.AccountWithSecrets{Account: domain.Account{Email: "a@x.com", Phone: "5555555555"}})
	require.NoError(t, err)

	stub := &racyAccounts{memAccounts: accounts}
	svc := newAuthService(stub)
	_, err = svc.Register(context.Background(), validRegisterInput())
	require.ErrorIs(t, err, domain.ErrConflict)
}

type racyAccounts struct {
	*memAccounts
}

func (r *racyAccounts) FindAccountByEmailOrPhone(context.Context, string, string, string) (domain.Account, error) {
	return domain.Account{}, domain.ErrNotFound
}

func TestAuthServiceRegisterValidation(t *testing.T) {
	svc := newAuthService(&stubAccountsStore{t: t})

	in := validRegisterInput()
	in.Email = "bad"
	in.Phone = "123"
	in.Password = "password"
	in.Avatar = domain.Asset{}
	_, err := svc.Register(context.Background(), in)

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "email")
	assert.Contains(t, verr.Fields, "phone")
	assert.Contains(t, verr.Fields, "password")
	assert.Contains(t, verr.Fields, "avatar")
}

func TestAuthServiceLoginFailuresAreIndistinguishable(t *testing.T) {
	accounts := newMemAccounts()
	svc := newAuthService(accounts)
	_, err := svc.Register(context.Background(), validRegisterInput())
	require.NoError(t, err)

	_, wrongPassword := svc.Login(context.Background(), "a@x.com", "wrong1234")
	_, unknownEmail := svc.Login(context.Background(), "nobody@x.com", "abcd1234")

	require.ErrorIs(t, wrongPassword, domain.ErrInvalidCredentials)
	require.ErrorIs(t, unknownEmail, domain.ErrInvalidCredentials)
	assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())
}

type countingHasher struct {
	PasswordHasher
	mu       sync.Mutex
	verifies int
}

func (h *countingHasher) Verify(plaintext, digest string) (bool, error) {
	h.mu.Lock()
	h.verifies++
	h.mu.Unlock()
	return h.PasswordHasher.Verify(plaintext, digest)
}

func TestAuthServiceLoginUnknownEmailVerifiesHash(t *testing.T) {
	hasher := &countingHasher{PasswordHasher: testHasher()}
	svc := &AuthService{Accounts: newMemAccounts(), Hasher: hasher, Tokens: testSigner()}

	for range 2 {
		_, err := svc.Login(context.Background(), "nobody@x.com", "abcd1234")
		require.ErrorIs(t, err, domain.ErrInvalidCredentials)
	}
	assert.Equal(t, 2, hasher.verifies)
}

func TestAuthServiceLogin(t *testing.T) {
	accounts := newMemAccounts()
	svc := newAuthService(accounts)
	reg, err := svc.Register(context.Background(), validRegisterInput())
	require.NoError(t, err)

	sess, err := svc.Login(context.Background(), "A@x.com", "abcd1234")
	require.NoError(t, err)
	assert.Equal(t, reg.Account.ID, sess.Account.ID)

	me, err := svc.Authenticate(context.Background(), sess.Token)
	require.NoError(t, err)
	assert.Equal(t, reg.Account.ID, me.ID)
}

func TestAuthServiceLoginRequiresFields(t *testing.T) {
	svc := newAuthService(&stubAccountsStore{t: t})
	_, err := svc.Login(context.Background(), "", "")

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Fields, 2)
}

func TestAuthServiceLoginStoreError(t *testing.T) {
	boom := errors.New("db down")
	svc := newAuthService(&stubAccountsStore{
		t: t,
		getAccountSecretsByEmailFunc: func(context.Context, string) (domain.AccountWithSecrets, error) {
			return domain.AccountWithSecrets{}, boom
		},
	})
	_, err := svc.Login(context.Background(), "a@x.com", "abcd1234")
	require.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestAuthServiceAuthenticate(t *testing.T) {
	accounts := newMemAccounts()
	svc := newAuthService(accounts)

	_, err := svc.Authenticate(context.Background(), "")
	require.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = svc.Authenticate(context.Background(), "garbage")
	require.ErrorIs(t, err, domain.ErrInvalidToken)

	orphan, _, err := testSigner().Sign("acct-missing")
	require.NoError(t, err)
	_, err = svc.Authenticate(context.Background(), orphan)
	require.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestAuthServiceUpdatePassword(t *testing.T) {
	accounts := newMemAccounts()
	svc := newAuthService(accounts)
	reg, err := svc.Register(context.Background(), validRegisterInput())
	require.NoError(t, err)
	ctx := context.Background()

	err = svc.UpdatePassword(ctx, reg.Account.ID, UpdatePasswordInput{
		CurrentPassword: "wrong1234", NewPassword: "newpass99", ConfirmNewPassword: "newpass99",
	})
	require.ErrorIs(t, err, domain.ErrIncorrectPassword)

	err = svc.UpdatePassword(ctx, reg.Account.ID, UpdatePasswordInput{
		CurrentPassword: "abcd1234", NewPassword: "newpass99", ConfirmNewPassword: "newpass98",
	})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "confirmNewPassword")

	err = svc.UpdatePassword(ctx, reg.Account.ID, UpdatePasswordInput{
		CurrentPassword: "abcd1234", NewPassword: "newpass99", ConfirmNewPassword: "newpass99",
	})
	require.NoError(t, err)

	_, err = svc.Login(ctx, "a@x.com", "abcd1234")
	require.ErrorIs(t, err, domain.ErrInvalidCredentials)
	_, err = svc.Login(ctx, "a@x.com", "newpass99")
	require.NoError(t, err)
}

func TestAuthServiceUpdatePasswordPolicy(t *testing.T) {
	svc := newAuthService(&stubAccountsStore{t: t})
	err := svc.UpdatePassword(context.Background(), "acct-1", UpdatePasswordInput{
		CurrentPassword: "abcd1234", NewPassword: "short", ConfirmNewPassword: "short",
	})
	require.ErrorIs(t, err, domain.ErrValidation)
}

func TestAuthServicePasswordTooLongIsValidationError(t *testing.T) {
	long := strings.Repeat("a", auth.MaxPasswordBytes) + "1"
	ctx := context.Background()

	in := validRegisterInput()
	in.Password = long
	_, err := newAuthService(&stubAccountsStore{t: t}).Register(ctx, in)
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, auth.ErrPasswordTooLong.Error(), verr.Fields["password"])

	err = newAuthService(&stubAccountsStore{t: t}).UpdatePassword(ctx, "acct-1", UpdatePasswordInput{
		CurrentPassword: "abcd1234", NewPassword: long, ConfirmNewPassword: long,
	})
	require.ErrorIs(t, err, domain.ErrValidation)
}

func TestAuthServicePortfolioOwner(t *testing.T) {
	accounts := newMemAccounts()
	svc := newAuthService(accounts)

	_, err := svc.PortfolioOwner(context.Background())
	require.ErrorIs(t, err, domain.ErrNotFound)

	reg, err := svc.Register(context.Background(), validRegisterInput())
	require.NoError(t, err)
	svc.OwnerID = reg.Account.ID

	owner, err := svc.PortfolioOwner(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", owner.Email)
}
