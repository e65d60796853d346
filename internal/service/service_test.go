package service_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/familes/familes-server/internal/auth"
	"github.com/familes/familes-server/internal/domain"
	"github.com/familes/familes-server/internal/service"
	"github.com/familes/familes-server/internal/store"
)

// testTokenKey is a fixed 32-byte hex key for PASETO tests.
var testTokenKey = strings.Repeat("ab", 32)

// testDevice satisfies the device metadata requirement on auth calls.
var testDevice = auth.DeviceInfo{DeviceType: "desktop", Platform: "test"}

type testEnv struct {
	store    *store.Store
	auth     *service.AuthService
	sessions *service.SessionService
	profiles *service.ProfileService
	books    *service.BookService
	reading  *service.ReadingService
	leagues  *service.LeagueService
	boards   *service.LeaderboardService
	rollup   *service.RollupService
	friends  *service.FriendService
	chat     *service.ChatService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "familes-service-test-*")
	require.NoError(t, err)

	s, err := store.New(filepath.Join(tmpDir, "test.db"), nil, store.NewNoopEmitter())
	require.NoError(t, err)
	s.SetProfileIndexer(store.NewNoopProfileIndexer())

	t.Cleanup(func() {
		_ = s.Close()
		_ = os.RemoveAll(tmpDir)
	})

	tokens, err := auth.NewTokenService(testTokenKey, 15*time.Minute, 30*24*time.Hour)
	require.NoError(t, err)

	curve := domain.NewCurve(10, 1.5)
	const dailyGoal = 5

	profiles := service.NewProfileService(s, curve, dailyGoal, nil)
	sessions := service.NewSessionService(s, tokens, nil)
	rollup, err := service.NewRollupService(s, nil)
	require.NoError(t, err)
	t.Cleanup(rollup.Close)

	return &testEnv{
		store:    s,
		auth:     service.NewAuthService(s, tokens, sessions, profiles, nil),
		sessions: sessions,
		profiles: profiles,
		books:    service.NewBookService(s, nil),
		reading:  service.NewReadingService(s, profiles, curve, dailyGoal, nil),
		leagues:  service.NewLeagueService(s, profiles, nil),
		boards:   service.NewLeaderboardService(s, rollup, nil),
		rollup:   rollup,
		friends:  service.NewFriendService(s, profiles, nil),
		chat:     service.NewChatService(s, profiles, nil),
	}
}

// signup creates an account and returns the auth response, which carries
// the primary profile.
func (e *testEnv) signup(t *testing.T, email, name string) *service.AuthResponse {
	t.Helper()
	resp, err := e.auth.Signup(context.Background(), service.SignupRequest{
		Email:       email,
		Password:    "correct horse battery",
		DisplayName: name,
		DeviceInfo:  testDevice,
	})
	require.NoError(t, err)
	require.NotNil(t, resp.Profile)
	return resp
}

// addBook shelves a book for a profile.
func (e *testEnv) addBook(t *testing.T, profileID, title string, totalPages int) *domain.Book {
	t.Helper()
	book, err := e.books.AddBook(context.Background(), profileID, service.AddBookRequest{
		Title:      title,
		Author:     "Test Author",
		TotalPages: totalPages,
	})
	require.NoError(t, err)
	return book
}

// commit moves a bookmark through the reading pipeline.
func (e *testEnv) commit(t *testing.T, userID, profileID, bookID string, pages int) *service.CommitResult {
	t.Helper()
	result, err := e.reading.CommitPageUpdate(context.Background(), userID, profileID, bookID,
		service.CommitPageUpdateRequest{PagesRead: pages})
	require.NoError(t, err)
	return result
}

// befriend runs the full request/accept handshake between two profiles.
func (e *testEnv) befriend(t *testing.T, a *service.AuthResponse, b *service.AuthResponse) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, e.friends.SendRequest(ctx, a.User.ID, a.Profile.ID, b.Profile.ID))
	require.NoError(t, e.friends.AcceptRequest(ctx, b.User.ID, b.Profile.ID, a.Profile.ID))
}
