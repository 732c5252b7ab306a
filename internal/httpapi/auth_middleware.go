package httpapi

import (
	"context"
	"net/http"

	"portfolioserver/internal/auth"
	"portfolioserver/internal/domain"
)

type authCtxKey int

const authAccountKey authCtxKey = iota

// requireAuth rejects the request before next runs unless it carries a
// valid, unexpired session token for an existing account.
func (a *api) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := auth.SessionToken(r)
		if token == "" {
			WriteDomainError(w, domain.ErrUnauthorized)
			return
		}

		acct, err := a.authSvc.Authenticate(r.Context(), token)
		if err != nil {
			a.fail(w, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), authAccountKey, acct)
		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

func CurrentAccount(ctx context.Context) (domain.Account, bool) {
	acct, ok := ctx.Value(authAccountKey).(domain.Account)
	return acct, ok
}
