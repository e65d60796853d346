package providers

import (
	"github.com/samber/do/v2"

	"github.com/familes/familes-server/internal/auth"
	"github.com/familes/familes-server/internal/config"
	"github.com/familes/familes-server/internal/domain"
	"github.com/familes/familes-server/internal/logger"
	"github.com/familes/familes-server/internal/service"
)

// ProvideSessionService provides the session management service.
func ProvideSessionService(i do.Injector) (*service.SessionService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	tokenService := do.MustInvoke[*auth.TokenService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewSessionService(storeHandle.Store, tokenService, log.Logger), nil
}

// ProvideAuthService provides the authentication service.
func ProvideAuthService(i do.Injector) (*service.AuthService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	tokenService := do.MustInvoke[*auth.TokenService](i)
	sessionService := do.MustInvoke[*service.SessionService](i)
	profileService := do.MustInvoke[*service.ProfileService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewAuthService(storeHandle.Store, tokenService, sessionService, profileService, log.Logger), nil
}

// ProvideProfileService provides the reader profile service.
func ProvideProfileService(i do.Injector) (*service.ProfileService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	curve := domain.NewCurve(cfg.Game.XPBase, cfg.Game.XPMultiplier)
	return service.NewProfileService(storeHandle.Store, curve, cfg.Game.DailyPagesGoal, log.Logger), nil
}

// ProvideBookService provides the bookshelf service.
func ProvideBookService(i do.Injector) (*service.BookService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewBookService(storeHandle.Store, log.Logger), nil
}

// ProvideReadingService provides the page commit and history service.
func ProvideReadingService(i do.Injector) (*service.ReadingService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	profileService := do.MustInvoke[*service.ProfileService](i)
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	curve := domain.NewCurve(cfg.Game.XPBase, cfg.Game.XPMultiplier)
	return service.NewReadingService(storeHandle.Store, profileService, curve, cfg.Game.DailyPagesGoal, log.Logger), nil
}

// ProvideLeagueService provides the reading league service.
func ProvideLeagueService(i do.Injector) (*service.LeagueService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	profileService := do.MustInvoke[*service.ProfileService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewLeagueService(storeHandle.Store, profileService, log.Logger), nil
}

// RollupServiceHandle wraps the rollup service with shutdown capability
// so its ristretto cache is released on exit.
type RollupServiceHandle struct {
	*service.RollupService
}

// Shutdown implements do.Shutdownable.
func (h *RollupServiceHandle) Shutdown() error {
	h.RollupService.Close()
	return nil
}

// ProvideRollupService provides the historical monthly rollup service.
func ProvideRollupService(i do.Injector) (*RollupServiceHandle, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	svc, err := service.NewRollupService(storeHandle.Store, log.Logger)
	if err != nil {
		return nil, err
	}

	return &RollupServiceHandle{RollupService: svc}, nil
}

// ProvideLeaderboardService provides the leaderboard ranking service.
func ProvideLeaderboardService(i do.Injector) (*service.LeaderboardService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	rollupHandle := do.MustInvoke[*RollupServiceHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewLeaderboardService(storeHandle.Store, rollupHandle.RollupService, log.Logger), nil
}

// ProvideFriendService provides the friendship service.
func ProvideFriendService(i do.Injector) (*service.FriendService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	profileService := do.MustInvoke[*service.ProfileService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewFriendService(storeHandle.Store, profileService, log.Logger), nil
}

// ProvideChatService provides the friend chat service.
func ProvideChatService(i do.Injector) (*service.ChatService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	profileService := do.MustInvoke[*service.ProfileService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewChatService(storeHandle.Store, profileService, log.Logger), nil
}
