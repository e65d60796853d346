package search

import (
	"context"
	"fmt"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/familes/familes-server/internal/normalize"
)

// SearchParams configures a profile search.
type SearchParams struct {
	Query  string
	Limit  int
	Offset int
}

// DefaultSearchParams returns sensible defaults.
func DefaultSearchParams() SearchParams {
	return SearchParams{Limit: 20}
}

// SearchResult represents profile search results.
type SearchResult struct {
	Query  string      `json:"query"`
	Total  uint64      `json:"total"`
	TookMs int64       `json:"took_ms"`
	Hits   []SearchHit `json:"hits"`
}

// SearchHit represents a single matched profile.
type SearchHit struct {
	ID      string  `json:"id"`
	Score   float64 `json:"score"`
	Name    string  `json:"name"`
	Level   int     `json:"level"`
	TotalXP int     `json:"total_xp"`
}

// Search executes a profile name search.
func (s *ProfileIndex) Search(ctx context.Context, params SearchParams) (*SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if params.Limit <= 0 {
		params.Limit = 20
	}

	searchQuery := buildSearchQuery(params)
	searchRequest := bleve.NewSearchRequestOptions(searchQuery, params.Limit, params.Offset, false)
	searchRequest.Fields = []string{"name", "level", "total_xp"}

	searchResult, err := s.index.SearchInContext(ctx, searchRequest)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	result := &SearchResult{
		Query:  params.Query,
		Total:  searchResult.Total,
		TookMs: searchResult.Took.Milliseconds(),
		Hits:   make([]SearchHit, 0, len(searchResult.Hits)),
	}

	for _, hit := range searchResult.Hits {
		searchHit := SearchHit{
			ID:    hit.ID,
			Score: hit.Score,
		}
		if n, ok := hit.Fields["name"].(string); ok {
			searchHit.Name = n
		}
		if l, ok := hit.Fields["level"].(float64); ok {
			searchHit.Level = int(l)
		}
		if xp, ok := hit.Fields["total_xp"].(float64); ok {
			searchHit.TotalXP = int(xp)
		}
		result.Hits = append(result.Hits, searchHit)
	}

	return result, nil
}

// buildSearchQuery constructs the Bleve query. The raw query runs against
// the name field; the folded form against folded_name, so "jose" finds
// "José" and vice versa. A fuzzy clause adds typo tolerance and a prefix
// clause covers autocomplete.
func buildSearchQuery(params SearchParams) query.Query {
	if params.Query == "" {
		return bleve.NewMatchAllQuery()
	}

	folded := normalize.Name(params.Query)
	textQueries := []query.Query{}

	nameMatch := bleve.NewMatchQuery(params.Query)
	nameMatch.SetField("name")
	nameMatch.SetBoost(3.0)
	textQueries = append(textQueries, nameMatch)

	foldedMatch := bleve.NewMatchQuery(folded)
	foldedMatch.SetField("folded_name")
	foldedMatch.SetBoost(2.0)
	textQueries = append(textQueries, foldedMatch)

	fuzzyQuery := bleve.NewFuzzyQuery(folded)
	fuzzyQuery.SetFuzziness(1)
	fuzzyQuery.SetField("folded_name")
	fuzzyQuery.SetBoost(0.8)
	textQueries = append(textQueries, fuzzyQuery)

	if len(params.Query) >= 2 {
		prefixQuery := bleve.NewPrefixQuery(folded)
		prefixQuery.SetField("folded_name")
		prefixQuery.SetBoost(0.5)
		textQueries = append(textQueries, prefixQuery)
	}

	return bleve.NewDisjunctionQuery(textQueries...)
}
