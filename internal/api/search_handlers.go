package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/familes/familes-server/internal/search"
)

func (s *Server) registerSearchRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "searchProfiles",
		Method:      http.MethodGet,
		Path:        "/api/v1/search/profiles",
		Summary:     "Search profiles",
		Description: "Full-text profile name search for friend discovery",
		Tags:        []string{"Search"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleSearchProfiles)
}

// === DTOs ===

// SearchInput carries profile search query parameters.
type SearchInput struct {
	Authorization string `header:"Authorization"`
	Query         string `query:"q" minLength:"1" maxLength:"256" required:"true" doc:"Search query"`
	Limit         int    `query:"limit" minimum:"0" maximum:"100" doc:"Maximum hits to return, defaults to 20"`
	Offset        int    `query:"offset" minimum:"0" doc:"Hits to skip, for paging"`
}

// SearchHitResponse is one matched profile.
type SearchHitResponse struct {
	ID      string  `json:"id" doc:"Profile ID"`
	Score   float64 `json:"score" doc:"Relevance score"`
	Name    string  `json:"name" doc:"Display name"`
	Level   int     `json:"level" doc:"Level at index time"`
	TotalXP int     `json:"total_xp" doc:"Lifetime XP at index time"`
}

// SearchOutput wraps search results for Huma.
type SearchOutput struct {
	Body struct {
		Query  string              `json:"query" doc:"Query as executed"`
		Total  uint64              `json:"total" doc:"Total matches"`
		TookMs int64               `json:"took_ms" doc:"Search duration in milliseconds"`
		Hits   []SearchHitResponse `json:"hits" doc:"Matched profiles, best first"`
	}
}

// === Handlers ===

func (s *Server) handleSearchProfiles(ctx context.Context, input *SearchInput) (*SearchOutput, error) {
	if _, err := s.authenticateRequest(input.Authorization); err != nil {
		return nil, err
	}

	params := search.DefaultSearchParams()
	params.Query = input.Query
	if input.Limit > 0 {
		params.Limit = input.Limit
	}
	params.Offset = input.Offset

	result, err := s.services.Search.Search(ctx, params)
	if err != nil {
		return nil, err
	}

	out := &SearchOutput{}
	out.Body.Query = result.Query
	out.Body.Total = result.Total
	out.Body.TookMs = result.TookMs
	out.Body.Hits = make([]SearchHitResponse, len(result.Hits))
	for i, h := range result.Hits {
		out.Body.Hits[i] = SearchHitResponse{
			ID:      h.ID,
			Score:   h.Score,
			Name:    h.Name,
			Level:   h.Level,
			TotalXP: h.TotalXP,
		}
	}
	return out, nil
}
