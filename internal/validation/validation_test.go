package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolioserver/internal/domain"
)

type sample struct {
	Email     string `json:"email" validate:"required,account_email"`
	Phone     string `json:"phone" validate:"required,phone10"`
	Name      string `json:"fullName" validate:"required,min=3,max=50"`
	Site      string `json:"portfolioURL" validate:"required,portfolio_url"`
	Password  string `json:"password" validate:"required,password"`
	Confirm   string `json:"confirmPassword" validate:"eqfield=Password"`
	Untracked string
}

func TestStruct_Valid(t *testing.T) {
	err := Struct(sample{
		Email:    "a@x.com",
		Phone:    "1234567890",
		Name:     "Ada Lovelace",
		Site:     "https://ada.dev/work",
		Password: "abcd1234",
		Confirm:  "abcd1234",
	})
	require.NoError(t, err)
}

func TestStruct_CollectsAllFields(t *testing.T) {
	err := Struct(sample{
		Email:    "nope",
		Phone:    "12345",
		Name:     "Al",
		Site:     "not a url",
		Password: "short",
		Confirm:  "other",
	})
	require.Error(t, err)
	require.True(t, errors.Is(err, domain.ErrValidation))

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "must be a valid email address", verr.Fields["email"])
	assert.Equal(t, "must be exactly 10 digits", verr.Fields["phone"])
	assert.Equal(t, "must be at least 3 characters", verr.Fields["fullName"])
	assert.Equal(t, "must be a valid URL", verr.Fields["portfolioURL"])
	assert.Contains(t, verr.Fields, "password")
	assert.Contains(t, verr.Fields, "confirmPassword")
	assert.Len(t, verr.Fields, 6)
}

func TestStruct_RequiredUsesJSONName(t *testing.T) {
	err := Struct(sample{})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "required", verr.Fields["email"])
	assert.Equal(t, "required", verr.Fields["fullName"])
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "a@x.com", NormalizeEmail("  A@X.com "))
}
