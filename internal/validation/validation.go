// Package validation checks request structs against their `validate` tags and
// reports every failing field at once as a domain.ValidationError.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"portfolioserver/internal/auth"
	"portfolioserver/internal/domain"
)

var (
	emailPattern        = regexp.MustCompile(`^\S+@\S+\.\S+$`)
	phonePattern        = regexp.MustCompile(`^\d{10}$`)
	portfolioURLPattern = regexp.MustCompile(`^(https?://)?([\w-]+)\.([a-z]{2,})(/\S*)?$`)
)

var (
	once     sync.Once
	instance *validator.Validate
)

func get() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "" || name == "-" {
				return f.Name
			}
			return name
		})
		mustRegister(v, "account_email", func(fl validator.FieldLevel) bool {
			return emailPattern.MatchString(fl.Field().String())
		})
		mustRegister(v, "phone10", func(fl validator.FieldLevel) bool {
			return phonePattern.MatchString(fl.Field().String())
		})
		mustRegister(v, "portfolio_url", func(fl validator.FieldLevel) bool {
			return portfolioURLPattern.MatchString(fl.Field().String())
		})
		mustRegister(v, "password", func(fl validator.FieldLevel) bool {
			return auth.ValidatePassword(fl.Field().String()) == nil
		})
		instance = v
	})
	return instance
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register %s validation: %v", tag, err))
	}
}

// Struct validates s and returns nil or a *domain.ValidationError listing
// every failing field.
func Struct(s any) error {
	err := get().Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate: %w", err)
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = message(fe)
	}
	return domain.NewValidationError(fields)
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "required"
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("must have at least %s items", fe.Param())
		}
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "account_email":
		return "must be a valid email address"
	case "phone10":
		return "must be exactly 10 digits"
	case "portfolio_url":
		return "must be a valid URL"
	case "password":
		if s, ok := fe.Value().(string); ok {
			if err := auth.ValidatePassword(s); err != nil {
				return err.Error()
			}
		}
		return auth.ErrWeakPassword.Error()
	case "eqfield":
		return "must match " + fe.Param()
	default:
		return "is invalid"
	}
}

func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
