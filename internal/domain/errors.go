package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrValidation         = errors.New("validation")
	ErrConflict           = errors.New("conflict")
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrIncorrectPassword  = errors.New("incorrect_password")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidToken       = errors.New("invalid_token")
	ErrTokenExpired       = errors.New("token_expired")
	ErrNotFound           = errors.New("not_found")
	ErrResetTokenInvalid  = errors.New("reset_token_invalid")
	ErrDelivery           = errors.New("delivery_failed")
)

type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func NewValidationError(fields map[string]string) error {
	return &ValidationError{Fields: fields}
}

// ConflictError reports a uniqueness violation on a single field.
type ConflictError struct {
	Field string
}

func (e *ConflictError) Error() string {
	if e.Field == "" {
		return "duplicate value"
	}
	return "duplicate " + e.Field
}

func (e *ConflictError) Unwrap() error { return ErrConflict }

func NewConflictError(field string) error {
	return &ConflictError{Field: field}
}

// DeliveryError wraps a failure of the outbound mail transport.
type DeliveryError struct {
	Err error
}

func (e *DeliveryError) Error() string { return "mail delivery: " + e.Err.Error() }

func (e *DeliveryError) Unwrap() []error { return []error{ErrDelivery, e.Err} }
