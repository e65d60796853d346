package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/familes/familes-server/internal/config"
	"github.com/familes/familes-server/internal/logger"
	"github.com/familes/familes-server/internal/search"
	"github.com/familes/familes-server/internal/service"
)

// SearchIndexHandle wraps the profile search index with shutdown capability.
type SearchIndexHandle struct {
	*search.ProfileIndex
}

// Shutdown implements do.Shutdownable.
func (h *SearchIndexHandle) Shutdown() error {
	return h.Close()
}

// ProvideSearchIndex provides the Bleve profile search index.
func ProvideSearchIndex(i do.Injector) (*SearchIndexHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	index, err := search.NewProfileIndex(search.Options{
		DataPath: cfg.Data.BasePath,
		Logger:   log.Logger,
	})
	if err != nil {
		return nil, err
	}

	docCount, _ := index.DocumentCount()
	log.Info("Search index initialized", "documents", docCount)

	return &SearchIndexHandle{ProfileIndex: index}, nil
}

// ProvideSearchService provides the profile search service.
func ProvideSearchService(i do.Injector) (*service.SearchService, error) {
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	svc := service.NewSearchService(indexHandle.ProfileIndex, storeHandle.Store, log.Logger)

	// Wire to store for automatic indexing
	storeHandle.SetProfileIndexer(svc)

	return svc, nil
}

// TriggerSearchReindexIfNeeded checks if reindexing is needed and triggers it.
// Should be called after all services are wired.
func TriggerSearchReindexIfNeeded(i do.Injector) {
	searchService := do.MustInvoke[*service.SearchService](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	docCount, _ := searchService.DocumentCount()
	if docCount > 0 {
		return
	}

	// Check if we have profiles that need indexing
	ctx := context.Background()
	profiles, err := storeHandle.ListAllProfiles(ctx)
	if err != nil || len(profiles) == 0 {
		return
	}

	log.Info("Search index is empty but profiles exist, triggering initial reindex",
		"profile_count", len(profiles),
	)

	go func() {
		reindexCtx := context.Background()
		if err := searchService.ReindexAll(reindexCtx); err != nil {
			log.Error("Initial search reindex failed", "error", err)
		} else {
			count, _ := searchService.DocumentCount()
			log.Info("Initial search reindex completed", "documents", count)
		}
	}()
}
