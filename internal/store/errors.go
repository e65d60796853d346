package store

import domainerrors "github.com/familes/familes-server/internal/errors"

// Named sentinels for store lookups. These carry HTTP status codes via
// the errors package so the API layer can map them without switch
// statements at every call site.
var (
	// ErrNotFound is the generic missing-resource sentinel used by the
	// generic entity layer.
	ErrNotFound = domainerrors.ErrNotFound

	// ErrAlreadyExists is the generic conflict sentinel used by the
	// generic entity layer.
	ErrAlreadyExists = domainerrors.ErrAlreadyExists

	ErrUserNotFound       = domainerrors.NotFound("user not found")
	ErrEmailExists        = domainerrors.AlreadyExists("email already in use")
	ErrProfileNotFound    = domainerrors.NotFound("profile not found")
	ErrBookNotFound       = domainerrors.NotFound("book not found")
	ErrLeagueNotFound     = domainerrors.NotFound("league not found")
	ErrSessionNotFound    = domainerrors.NotFound("session not found")
	ErrSessionExpired     = domainerrors.Unauthorized("session expired")
	ErrMessageNotFound    = domainerrors.NotFound("message not found")
	ErrFriendshipNotFound = domainerrors.NotFound("friendship not found")
)
