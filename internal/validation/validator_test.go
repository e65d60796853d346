package validation_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	domainerrors "github.com/familes/familes-server/internal/errors"
	"github.com/familes/familes-server/internal/validation"
)

type TestRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=1024"`
	Name     string `json:"name" validate:"required"`
}

func TestValidator_ValidateSuccess(t *testing.T) {
	v := validation.New()

	req := TestRequest{
		Email:    "mom@example.com",
		Password: "password123",
		Name:     "Reading Mom",
	}

	err := v.Validate(req)
	assert.NoError(t, err)
}

func TestValidator_ValidateErrors(t *testing.T) {
	v := validation.New()

	//nolint:govet // fieldalignment: Minor memory optimization not worth the complexity in test code
	tests := []struct {
		name        string
		req         TestRequest
		wantErrCode int
	}{
		{
			name: "missing required field",
			req: TestRequest{
				Email:    "mom@example.com",
				Password: "password123",
				Name:     "", // Missing
			},
			wantErrCode: http.StatusBadRequest,
		},
		{
			name: "invalid email",
			req: TestRequest{
				Email:    "not-an-email",
				Password: "password123",
				Name:     "Test",
			},
			wantErrCode: http.StatusBadRequest,
		},
		{
			name: "password too short",
			req: TestRequest{
				Email:    "mom@example.com",
				Password: "short",
				Name:     "Test",
			},
			wantErrCode: http.StatusBadRequest,
		},
		{
			name: "password too long",
			req: TestRequest{
				Email:    "mom@example.com",
				Password: string(make([]byte, 1025)),
				Name:     "Test",
			},
			wantErrCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.req)
			assert.Error(t, err)

			var domainErr *domainerrors.Error
			if assert.True(t, domainerrors.As(err, &domainErr)) {
				assert.Equal(t, tt.wantErrCode, domainErr.HTTPStatus())
				assert.NotNil(t, domainErr.Details)
			}
		})
	}
}

func TestValidator_JoinCode(t *testing.T) {
	v := validation.New()

	type joinReq struct {
		JoinCode string `json:"join_code" validate:"required,joincode"`
	}

	assert.NoError(t, v.Validate(joinReq{JoinCode: "ABCD23"}))

	for _, code := range []string{"abcd23", "ABC", "ABCD0O", "ABCDEFG"} {
		err := v.Validate(joinReq{JoinCode: code})
		assert.Error(t, err, "code %q should be rejected", code)

		var domainErr *domainerrors.Error
		if assert.True(t, domainerrors.As(err, &domainErr)) {
			details, ok := domainErr.Details.(map[string]string)
			if assert.True(t, ok) {
				assert.Contains(t, details, "join_code")
			}
		}
	}
}

func TestValidator_JSONFieldNames(t *testing.T) {
	v := validation.New()

	req := TestRequest{
		Email:    "",
		Password: "password123",
		Name:     "Test",
	}

	err := v.Validate(req)
	assert.Error(t, err)

	// Details should use JSON tag name "email", not struct field name "Email"
	var domainErr *domainerrors.Error
	if assert.True(t, domainerrors.As(err, &domainErr)) {
		details, ok := domainErr.Details.(map[string]string)
		if assert.True(t, ok) {
			assert.Contains(t, details, "email")
			assert.NotContains(t, details, "Email")
		}
	}
}
