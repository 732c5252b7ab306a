package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"portfolioserver/internal/domain"
	"portfolioserver/internal/media"
)

type errorEnvelope struct {
	Success bool     `json:"success"`
	Error   apiError `json:"error"`
}

type apiError struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// envelope is merged into a success body next to "success" and "message".
type envelope map[string]any

func WriteError(w http.ResponseWriter, status int, code, message string) {
	WriteJSON(w, status, errorEnvelope{Error: apiError{Code: code, Message: message}})
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeSuccess(w http.ResponseWriter, status int, message string, data envelope) {
	body := envelope{"success": true}
	if message != "" {
		body["message"] = message
	}
	for k, v := range data {
		body[k] = v
	}
	WriteJSON(w, status, body)
}

// WriteDomainError maps an error to its status and a message safe to show
// the caller. Unknown errors collapse to a generic 500.
func WriteDomainError(w http.ResponseWriter, err error) {
	var verr *domain.ValidationError
	var conflict *domain.ConflictError

	switch {
	case errors.As(err, &verr):
		WriteJSON(w, http.StatusBadRequest, errorEnvelope{Error: apiError{
			Code:    "validation_error",
			Message: validationMessage(verr),
			Fields:  verr.Fields,
		}})
	case errors.Is(err, domain.ErrValidation):
		WriteError(w, http.StatusBadRequest, "validation_error", "invalid request")
	case errors.As(err, &conflict):
		msg := "duplicate value entered"
		if conflict.Field != "" {
			msg = "duplicate " + conflict.Field + " entered"
		}
		WriteJSON(w, http.StatusBadRequest, errorEnvelope{Error: apiError{
			Code:    "conflict",
			Message: msg,
			Fields:  map[string]string{conflict.Field: "already in use"},
		}})
	case errors.Is(err, domain.ErrInvalidCredentials):
		WriteError(w, http.StatusUnauthorized, "invalid_credentials", "invalid email or password")
	case errors.Is(err, domain.ErrIncorrectPassword):
		WriteError(w, http.StatusUnauthorized, "incorrect_password", "current password is incorrect")
	case errors.Is(err, domain.ErrTokenExpired):
		WriteError(w, http.StatusUnauthorized, "token_expired", "session expired, log in again")
	case errors.Is(err, domain.ErrInvalidToken), errors.Is(err, domain.ErrUnauthorized):
		WriteError(w, http.StatusUnauthorized, "unauthorized", "unauthorized")
	case errors.Is(err, domain.ErrResetTokenInvalid):
		WriteError(w, http.StatusBadRequest, "reset_token_invalid", "reset password token is invalid or has expired")
	case errors.Is(err, domain.ErrNotFound):
		WriteError(w, http.StatusNotFound, "not_found", "not found")
	case errors.Is(err, domain.ErrDelivery):
		WriteError(w, http.StatusInternalServerError, "delivery_failed", "failed to send email")
	case errors.Is(err, media.ErrUnavailable):
		WriteError(w, http.StatusServiceUnavailable, "media_unavailable", "file uploads are not configured")
	default:
		WriteError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func validationMessage(verr *domain.ValidationError) string {
	if len(verr.Fields) == 1 {
		for k, v := range verr.Fields {
			return k + " " + v
		}
	}
	return "invalid request"
}

// isExpected reports errors WriteDomainError answers with a specific status.
func isExpected(err error) bool {
	for _, target := range []error{
		domain.ErrValidation, domain.ErrConflict, domain.ErrInvalidCredentials,
		domain.ErrIncorrectPassword, domain.ErrUnauthorized, domain.ErrInvalidToken,
		domain.ErrTokenExpired, domain.ErrNotFound, domain.ErrResetTokenInvalid,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// fail logs anything that will surface as a server error, then writes it.
func (a *api) fail(w http.ResponseWriter, r *http.Request, err error) {
	if !isExpected(err) {
		fields := []any{"err", err, "method", r.Method, "path", r.URL.Path}
		if rid, ok := GetRequestID(r.Context()); ok {
			fields = append(fields, "request_id", rid)
		}
		a.logger.Error("request failed", fields...)
	}
	WriteDomainError(w, err)
}

func handleNotFound(w http.ResponseWriter, _ *http.Request) {
	WriteError(w, http.StatusNotFound, "not_found", "not found")
}
