// Package search provides full-text profile search using Bleve. Friend
// discovery matches display names with prefix and fuzzy queries so "jo"
// finds "José" regardless of accents or casing.
package search

import (
	"github.com/familes/familes-server/internal/domain"
	"github.com/familes/familes-server/internal/normalize"
)

// ProfileDocument is the document structure for the profile index.
// Names are indexed twice: as typed, and folded (lowercase, diacritics
// stripped) so accent-insensitive lookups hit.
type ProfileDocument struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	FoldedName string `json:"folded_name"`
	Level      int    `json:"level"`
	TotalXP    int    `json:"total_xp"`
}

// NewProfileDocument builds a search document from a profile.
func NewProfileDocument(profile *domain.Profile) *ProfileDocument {
	return &ProfileDocument{
		ID:         profile.ID,
		Name:       profile.Name,
		FoldedName: normalize.Name(profile.Name),
		Level:      profile.Level,
		TotalXP:    profile.TotalXP,
	}
}

// ToMap converts the document to a map so field names match the index
// mapping exactly.
func (d *ProfileDocument) ToMap() map[string]any {
	return map[string]any{
		"id":          d.ID,
		"name":        d.Name,
		"folded_name": d.FoldedName,
		"level":       d.Level,
		"total_xp":    d.TotalXP,
	}
}
