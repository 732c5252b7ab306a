package httpapi

import (
	"net/http"
	"time"

	"portfolioserver/internal/auth"
	"portfolioserver/internal/domain"
	"portfolioserver/internal/service"
)

// writeSession delivers the token twice: as an HTTP-only cookie for the
// browser and in the body for programmatic clients.
func (a *api) writeSession(w http.ResponseWriter, status int, message string, sess service.Session) {
	ttl := a.sessionTTL
	if ttl <= 0 {
		ttl = time.Until(sess.ExpiresAt)
	}
	auth.SetSessionCookie(w, sess.Token, ttl, a.cookieSecure)
	writeSuccess(w, status, message, envelope{"token": sess.Token, "user": sess.Account})
}

func (a *api) handleRegister(w http.ResponseWriter, r *http.Request) {
	form, err := readForm(w, r)
	if err != nil {
		writeBadBody(w, err)
		return
	}
	defer form.close()

	avatar, err := form.upload("avatar")
	if err != nil {
		writeBadBody(w, err)
		return
	}
	resume, err := form.upload("resume")
	if err != nil {
		writeBadBody(w, err)
		return
	}

	in := service.RegisterInput{
		FullName:     form.get("fullName"),
		Email:        form.get("email"),
		Phone:        form.get("phone"),
		Password:     form.get("password"),
		AboutMe:      form.get("aboutMe"),
		PortfolioURL: form.get("portfolioURL"),
		Social: domain.SocialLinks{
			GithubURL:    form.get("githubURL"),
			InstagramURL: form.get("instagramURL"),
			FacebookURL:  form.get("facebookURL"),
			LinkedinURL:  form.get("linkedinURL"),
			ThreadURL:    form.get("threadURL"),
		},
	}

	sess, err := a.authSvc.RegisterWithUploads(r.Context(), in, avatar, resume)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.writeSession(w, http.StatusCreated, "User registered", sess)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (a *api) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeBadBody(w, err)
		return
	}

	sess, err := a.authSvc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.writeSession(w, http.StatusOK, "Logged in", sess)
}

func (a *api) handleLogout(w http.ResponseWriter, r *http.Request) {
	auth.ClearSessionCookie(w, a.cookieSecure)
	writeSuccess(w, http.StatusOK, "Logged out", nil)
}

func (a *api) handleMe(w http.ResponseWriter, r *http.Request) {
	acct, ok := CurrentAccount(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}
	writeSuccess(w, http.StatusOK, "", envelope{"user": acct})
}

func (a *api) handlePasswordUpdate(w http.ResponseWriter, r *http.Request) {
	acct, ok := CurrentAccount(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}

	var in service.UpdatePasswordInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeBadBody(w, err)
		return
	}
	if err := a.authSvc.UpdatePassword(r.Context(), acct.ID, in); err != nil {
		a.fail(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Password updated", nil)
}

func (a *api) handlePortfolioMe(w http.ResponseWriter, r *http.Request) {
	acct, err := a.authSvc.PortfolioOwner(r.Context())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "", envelope{"user": acct})
}

func (a *api) handleProfileUpdate(w http.ResponseWriter, r *http.Request) {
	acct, ok := CurrentAccount(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}

	form, err := readForm(w, r)
	if err != nil {
		writeBadBody(w, err)
		return
	}
	defer form.close()

	upd := service.ProfileUpdate{
		FullName:     form.ptr("fullName"),
		Email:        form.ptr("email"),
		Phone:        form.ptr("phone"),
		AboutMe:      form.ptr("aboutMe"),
		PortfolioURL: form.ptr("portfolioURL"),
		GithubURL:    form.ptr("githubURL"),
		InstagramURL: form.ptr("instagramURL"),
		FacebookURL:  form.ptr("facebookURL"),
		LinkedinURL:  form.ptr("linkedinURL"),
		ThreadURL:    form.ptr("threadURL"),
	}
	if upd.Avatar, err = form.upload("avatar"); err != nil {
		writeBadBody(w, err)
		return
	}
	if upd.Resume, err = form.upload("resume"); err != nil {
		writeBadBody(w, err)
		return
	}

	updated, err := a.profileSvc.UpdateProfile(r.Context(), acct.ID, upd)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Profile updated", envelope{"user": updated})
}
