package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/familes/familes-server/internal/domain"
	"github.com/familes/familes-server/internal/search"
	"github.com/familes/familes-server/internal/store"
)

// SearchService bridges the profile search index with the data store.
// It implements store.ProfileIndexer so profile writes keep the index
// in sync.
type SearchService struct {
	index  *search.ProfileIndex
	store  *store.Store
	logger *slog.Logger
}

// NewSearchService creates a new search service.
func NewSearchService(index *search.ProfileIndex, store *store.Store, logger *slog.Logger) *SearchService {
	return &SearchService{
		index:  index,
		store:  store,
		logger: logger,
	}
}

// Search performs a profile name search for friend discovery.
func (s *SearchService) Search(ctx context.Context, params search.SearchParams) (*search.SearchResult, error) {
	return s.index.Search(ctx, params)
}

// IndexProfile indexes a single profile.
// Called by the store on every profile write.
func (s *SearchService) IndexProfile(_ context.Context, profile *domain.Profile) error {
	doc := search.NewProfileDocument(profile)

	if err := s.index.IndexDocument(doc); err != nil {
		return fmt.Errorf("index profile: %w", err)
	}

	s.logger.Debug("indexed profile", "id", profile.ID, "name", profile.Name)
	return nil
}

// DeleteProfile removes a profile from the index.
func (s *SearchService) DeleteProfile(_ context.Context, profileID string) error {
	return s.index.DeleteDocument(profileID)
}

// DocumentCount returns the number of indexed profiles.
func (s *SearchService) DocumentCount() (uint64, error) {
	return s.index.DocumentCount()
}

// ReindexAll rebuilds the index from the store. Run at startup when the
// mapping version changed and the index came up empty.
func (s *SearchService) ReindexAll(ctx context.Context) error {
	profiles, err := s.store.ListAllProfiles(ctx)
	if err != nil {
		return fmt.Errorf("list profiles for reindex: %w", err)
	}

	docs := make([]*search.ProfileDocument, 0, len(profiles))
	for _, profile := range profiles {
		docs = append(docs, search.NewProfileDocument(profile))
	}

	if err := s.index.IndexDocuments(docs); err != nil {
		return fmt.Errorf("reindex profiles: %w", err)
	}

	s.logger.Info("search reindex complete", "profiles", len(docs))
	return nil
}
