package httpapi

import (
	"net/http"

	"portfolioserver/internal/service"
)

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

// handlePasswordForgot answers the same way whether or not the email is
// registered.
func (a *api) handlePasswordForgot(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeBadBody(w, err)
		return
	}

	if err := a.resetSvc.RequestReset(r.Context(), req.Email); err != nil {
		a.fail(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "If the email is registered, a reset link has been sent", nil)
}

func (a *api) handlePasswordReset(w http.ResponseWriter, r *http.Request) {
	var in service.ResetPasswordInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeBadBody(w, err)
		return
	}

	sess, err := a.resetSvc.ResetPassword(r.Context(), r.PathValue("token"), in)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.writeSession(w, http.StatusOK, "Password reset successfully", sess)
}
