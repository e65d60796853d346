package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type conversationBody struct {
	Messages []ChatMessageResponse `json:"messages"`
	Unread   int                   `json:"unread"`
}

func TestSendAndReadMessages(t *testing.T) {
	ts := setupTestServer(t)
	alex := ts.signup(t, "alex@example.com", "Alex")
	sam := ts.signup(t, "sam@example.com", "Sam")
	befriend(t, ts, alex, sam)

	resp := ts.api.Post(
		"/api/v1/profiles/"+alex.Profile.ID+"/chats/"+sam.Profile.ID+"/messages",
		bearer(alex.AccessToken),
		map[string]any{"body": "Finished chapter three!"},
	)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	sent := decodeEnvelope[ChatMessageResponse](t, resp)
	assert.Equal(t, alex.Profile.ID, sent.SenderID)
	assert.Equal(t, sam.Profile.ID, sent.RecipientID)
	assert.Nil(t, sent.ReadAt)

	resp = ts.api.Get(
		"/api/v1/profiles/"+sam.Profile.ID+"/chats/"+alex.Profile.ID,
		bearer(sam.AccessToken),
	)
	require.Equal(t, http.StatusOK, resp.Code)

	conv := decodeEnvelope[conversationBody](t, resp)
	require.Len(t, conv.Messages, 1)
	assert.Equal(t, "Finished chapter three!", conv.Messages[0].Body)
	assert.Equal(t, 1, conv.Unread)
}

func TestMarkConversationRead(t *testing.T) {
	ts := setupTestServer(t)
	alex := ts.signup(t, "alex@example.com", "Alex")
	sam := ts.signup(t, "sam@example.com", "Sam")
	befriend(t, ts, alex, sam)

	path := "/api/v1/profiles/" + alex.Profile.ID + "/chats/" + sam.Profile.ID + "/messages"
	for _, body := range []string{"hi", "are you reading?"} {
		resp := ts.api.Post(path, bearer(alex.AccessToken), map[string]any{"body": body})
		require.Equal(t, http.StatusOK, resp.Code)
	}

	resp := ts.api.Post(
		"/api/v1/profiles/"+sam.Profile.ID+"/chats/"+alex.Profile.ID+"/read",
		bearer(sam.AccessToken),
	)
	require.Equal(t, http.StatusOK, resp.Code)

	marked := decodeEnvelope[struct {
		Marked int `json:"marked"`
	}](t, resp)
	assert.Equal(t, 2, marked.Marked)

	resp = ts.api.Get(
		"/api/v1/profiles/"+sam.Profile.ID+"/chats/unread",
		bearer(sam.AccessToken),
	)
	require.Equal(t, http.StatusOK, resp.Code)

	unread := decodeEnvelope[struct {
		Counts map[string]int `json:"counts"`
	}](t, resp)
	assert.Empty(t, unread.Counts, "zero counts are omitted")
}

func TestChat_RequiresFriendship(t *testing.T) {
	ts := setupTestServer(t)
	alex := ts.signup(t, "alex@example.com", "Alex")
	sam := ts.signup(t, "sam@example.com", "Sam")

	resp := ts.api.Post(
		"/api/v1/profiles/"+alex.Profile.ID+"/chats/"+sam.Profile.ID+"/messages",
		bearer(alex.AccessToken),
		map[string]any{"body": "hello stranger"},
	)
	assert.Equal(t, http.StatusForbidden, resp.Code)
}

func TestChat_BlankMessageRejected(t *testing.T) {
	ts := setupTestServer(t)
	alex := ts.signup(t, "alex@example.com", "Alex")
	sam := ts.signup(t, "sam@example.com", "Sam")
	befriend(t, ts, alex, sam)

	resp := ts.api.Post(
		"/api/v1/profiles/"+alex.Profile.ID+"/chats/"+sam.Profile.ID+"/messages",
		bearer(alex.AccessToken),
		map[string]any{"body": "   "},
	)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}
