package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateProfile(t *testing.T) {
	ts := setupTestServer(t)
	signup := ts.signup(t, "parent@example.com", "Alex")

	resp := ts.api.Post("/api/v1/profiles", bearer(signup.AccessToken), map[string]any{
		"name": "Milo",
	})
	require.Equal(t, http.StatusOK, resp.Code)

	profile := decodeEnvelope[ProfileResponse](t, resp)
	assert.Equal(t, "Milo", profile.Name)
	assert.False(t, profile.IsPrimary)
	assert.Equal(t, 1, profile.Level)
	assert.Zero(t, profile.TotalXP)

	resp = ts.api.Get("/api/v1/profiles", bearer(signup.AccessToken))
	require.Equal(t, http.StatusOK, resp.Code)

	list := decodeEnvelope[struct {
		Profiles []ProfileResponse `json:"profiles"`
	}](t, resp)
	assert.Len(t, list.Profiles, 2)
}

func TestGetProfile_OwnerOnly(t *testing.T) {
	ts := setupTestServer(t)
	alex := ts.signup(t, "alex@example.com", "Alex")
	sam := ts.signup(t, "sam@example.com", "Sam")

	resp := ts.api.Get("/api/v1/profiles/"+alex.Profile.ID, bearer(sam.AccessToken))
	assert.Equal(t, http.StatusForbidden, resp.Code)

	// The public view works for anyone signed in.
	resp = ts.api.Get("/api/v1/profiles/"+alex.Profile.ID+"/public", bearer(sam.AccessToken))
	require.Equal(t, http.StatusOK, resp.Code)

	public := decodeEnvelope[PublicProfileResponse](t, resp)
	assert.Equal(t, "Alex", public.Name)
	assert.Equal(t, 1, public.Level)
}

func TestRenameProfile(t *testing.T) {
	ts := setupTestServer(t)
	signup := ts.signup(t, "parent@example.com", "Alex")

	resp := ts.api.Patch("/api/v1/profiles/"+signup.Profile.ID, bearer(signup.AccessToken), map[string]any{
		"name": "Alexandra",
	})
	require.Equal(t, http.StatusOK, resp.Code)

	profile := decodeEnvelope[ProfileResponse](t, resp)
	assert.Equal(t, "Alexandra", profile.Name)
}

func TestDeleteProfile(t *testing.T) {
	ts := setupTestServer(t)
	signup := ts.signup(t, "parent@example.com", "Alex")

	resp := ts.api.Post("/api/v1/profiles", bearer(signup.AccessToken), map[string]any{
		"name": "Milo",
	})
	require.Equal(t, http.StatusOK, resp.Code)
	milo := decodeEnvelope[ProfileResponse](t, resp)

	resp = ts.api.Delete("/api/v1/profiles/"+milo.ID, bearer(signup.AccessToken))
	assert.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Get("/api/v1/profiles/"+milo.ID, bearer(signup.AccessToken))
	assert.Equal(t, http.StatusNotFound, resp.Code)
}
