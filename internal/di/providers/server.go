package providers

import (
	"context"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/familes/familes-server/internal/api"
	"github.com/familes/familes-server/internal/config"
	"github.com/familes/familes-server/internal/logger"
	"github.com/familes/familes-server/internal/service"
	"github.com/familes/familes-server/internal/sse"
)

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Server.Shutdown(ctx)
}

// ProvideHTTPServer provides the HTTP server.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	// Get all services
	authService := do.MustInvoke[*service.AuthService](i)
	sessionService := do.MustInvoke[*service.SessionService](i)
	profileService := do.MustInvoke[*service.ProfileService](i)
	bookService := do.MustInvoke[*service.BookService](i)
	readingService := do.MustInvoke[*service.ReadingService](i)
	leagueService := do.MustInvoke[*service.LeagueService](i)
	leaderboardService := do.MustInvoke[*service.LeaderboardService](i)
	friendService := do.MustInvoke[*service.FriendService](i)
	chatService := do.MustInvoke[*service.ChatService](i)
	searchService := do.MustInvoke[*service.SearchService](i)

	// SSE connections subscribe per profile, so the handler resolves the
	// account's profile IDs when a client attaches.
	sseHandler := sse.NewHandler(sseHandle.Manager, log.Logger, func(r *http.Request, userID string) ([]string, error) {
		profiles, err := profileService.ListProfiles(r.Context(), userID)
		if err != nil {
			return nil, err
		}
		ids := make([]string, 0, len(profiles))
		for _, p := range profiles {
			ids = append(ids, p.ID)
		}
		return ids, nil
	})

	services := &api.Services{
		Auth:        authService,
		Session:     sessionService,
		Profile:     profileService,
		Book:        bookService,
		Reading:     readingService,
		League:      leagueService,
		Leaderboard: leaderboardService,
		Friend:      friendService,
		Chat:        chatService,
		Search:      searchService,
	}

	handler := api.NewServer(api.Options{
		Store:       storeHandle.Store,
		Services:    services,
		SSEManager:  sseHandle.Manager,
		SSEHandler:  sseHandler,
		Logger:      log.Logger,
		CORSOrigins: cfg.Server.CORSOrigins,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start in background
	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error", "error", err)
		}
	}()

	log.Info("Server running", "addr", srv.Addr)

	return &HTTPServerHandle{Server: srv}, nil
}
