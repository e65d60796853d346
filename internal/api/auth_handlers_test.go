package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignup_Success(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/auth/signup", map[string]any{
		"email":        "parent@example.com",
		"password":     "correct horse battery",
		"display_name": "Alex",
		"device_info":  signupDevice,
	})

	assert.Equal(t, http.StatusOK, resp.Code)

	var envelope testEnvelope[AuthResponse]
	err := json.Unmarshal(resp.Body.Bytes(), &envelope)
	require.NoError(t, err)

	assert.True(t, envelope.Success)
	assert.NotEmpty(t, envelope.Data.AccessToken)
	assert.NotEmpty(t, envelope.Data.RefreshToken)
	assert.Equal(t, "Bearer", envelope.Data.TokenType)
	assert.Positive(t, envelope.Data.ExpiresIn)
	assert.Equal(t, "parent@example.com", envelope.Data.User.Email)

	require.NotNil(t, envelope.Data.Profile)
	assert.Equal(t, "Alex", envelope.Data.Profile.Name)
	assert.True(t, envelope.Data.Profile.IsPrimary)
	assert.Equal(t, 1, envelope.Data.Profile.Level)
}

func TestSignup_DuplicateEmail(t *testing.T) {
	ts := setupTestServer(t)
	ts.signup(t, "parent@example.com", "Alex")

	resp := ts.api.Post("/api/v1/auth/signup", map[string]any{
		"email":        "parent@example.com",
		"password":     "another password",
		"display_name": "Impostor",
		"device_info":  signupDevice,
	})

	assert.Equal(t, http.StatusConflict, resp.Code)

	var envelope testEnvelope[struct{}]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.False(t, envelope.Success)
	assert.Equal(t, "ALREADY_EXISTS", envelope.Error.Code)
}

func TestSignup_ValidationErrors(t *testing.T) {
	ts := setupTestServer(t)

	tests := []struct {
		name string
		body map[string]any
	}{
		{
			name: "short password",
			body: map[string]any{
				"email":        "parent@example.com",
				"password":     "short",
				"display_name": "Alex",
				"device_info":  signupDevice,
			},
		},
		{
			name: "bad email",
			body: map[string]any{
				"email":        "not-an-email",
				"password":     "correct horse battery",
				"display_name": "Alex",
				"device_info":  signupDevice,
			},
		},
		{
			name: "missing device info",
			body: map[string]any{
				"email":        "parent@example.com",
				"password":     "correct horse battery",
				"display_name": "Alex",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := ts.api.Post("/api/v1/auth/signup", tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.Code)
		})
	}
}

func TestLogin_Success(t *testing.T) {
	ts := setupTestServer(t)
	ts.signup(t, "parent@example.com", "Alex")

	resp := ts.api.Post("/api/v1/auth/login", map[string]any{
		"email":       "parent@example.com",
		"password":    "correct horse battery",
		"device_info": signupDevice,
	})

	assert.Equal(t, http.StatusOK, resp.Code)

	var envelope testEnvelope[AuthResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.True(t, envelope.Success)
	assert.NotEmpty(t, envelope.Data.AccessToken)
	assert.Nil(t, envelope.Data.Profile, "login does not echo a profile")
}

func TestLogin_WrongPassword(t *testing.T) {
	ts := setupTestServer(t)
	ts.signup(t, "parent@example.com", "Alex")

	resp := ts.api.Post("/api/v1/auth/login", map[string]any{
		"email":       "parent@example.com",
		"password":    "wrong password entirely",
		"device_info": signupDevice,
	})

	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestRefresh_RotatesTokens(t *testing.T) {
	ts := setupTestServer(t)
	signup := ts.signup(t, "parent@example.com", "Alex")

	resp := ts.api.Post("/api/v1/auth/refresh", map[string]any{
		"refresh_token": signup.RefreshToken,
	})
	require.Equal(t, http.StatusOK, resp.Code)

	refreshed := decodeEnvelope[AuthResponse](t, resp)
	assert.NotEqual(t, signup.RefreshToken, refreshed.RefreshToken)
	assert.Equal(t, signup.SessionID, refreshed.SessionID)

	// The old token is spent.
	resp = ts.api.Post("/api/v1/auth/refresh", map[string]any{
		"refresh_token": signup.RefreshToken,
	})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestLogout(t *testing.T) {
	ts := setupTestServer(t)
	signup := ts.signup(t, "parent@example.com", "Alex")

	resp := ts.api.Post("/api/v1/auth/logout", map[string]any{
		"refresh_token": signup.RefreshToken,
	})
	assert.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Post("/api/v1/auth/refresh", map[string]any{
		"refresh_token": signup.RefreshToken,
	})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestChangePassword_RevokesSessions(t *testing.T) {
	ts := setupTestServer(t)
	signup := ts.signup(t, "parent@example.com", "Alex")

	resp := ts.api.Post("/api/v1/auth/password", bearer(signup.AccessToken), map[string]any{
		"current_password": "correct horse battery",
		"new_password":     "an even better password",
	})
	assert.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Post("/api/v1/auth/refresh", map[string]any{
		"refresh_token": signup.RefreshToken,
	})
	assert.Equal(t, http.StatusUnauthorized, resp.Code, "old sessions must die with the old password")
}

func TestListSessions(t *testing.T) {
	ts := setupTestServer(t)
	signup := ts.signup(t, "parent@example.com", "Alex")

	resp := ts.api.Get("/api/v1/auth/sessions", bearer(signup.AccessToken))
	require.Equal(t, http.StatusOK, resp.Code)

	var envelope testEnvelope[struct {
		Sessions []SessionResponse `json:"sessions"`
	}]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data.Sessions, 1)
	assert.Equal(t, signup.SessionID, envelope.Data.Sessions[0].ID)
}

func TestDeleteAccount(t *testing.T) {
	ts := setupTestServer(t)
	signup := ts.signup(t, "parent@example.com", "Alex")

	resp := ts.api.Delete("/api/v1/auth/account", bearer(signup.AccessToken), map[string]any{
		"password": "correct horse battery",
	})
	assert.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Post("/api/v1/auth/login", map[string]any{
		"email":       "parent@example.com",
		"password":    "correct horse battery",
		"device_info": signupDevice,
	})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestAuthRequired(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/profiles")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	resp = ts.api.Get("/api/v1/profiles", "Authorization: Bearer not-a-token")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}
