package search

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/simple"
	"github.com/blevesearch/bleve/v2/mapping"
)

// buildIndexMapping creates the Bleve index mapping for profile documents.
//
// Names use the simple analyzer (lowercase, no stemming); family names
// should not be stemmed like prose. The folded variant carries the
// accent-insensitive form; queries run against both.
func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultAnalyzer = simple.Name

	docMapping := bleve.NewDocumentMapping()

	nameFieldMapping := bleve.NewTextFieldMapping()
	nameFieldMapping.Analyzer = simple.Name
	nameFieldMapping.Store = true
	nameFieldMapping.IncludeTermVectors = true // For highlighting
	docMapping.AddFieldMappingsAt("name", nameFieldMapping)

	foldedFieldMapping := bleve.NewTextFieldMapping()
	foldedFieldMapping.Analyzer = simple.Name
	foldedFieldMapping.Store = false
	docMapping.AddFieldMappingsAt("folded_name", foldedFieldMapping)

	// ID is stored but not analyzed.
	idFieldMapping := bleve.NewTextFieldMapping()
	idFieldMapping.Analyzer = keyword.Name
	docMapping.AddFieldMappingsAt("id", idFieldMapping)

	levelFieldMapping := bleve.NewNumericFieldMapping()
	levelFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("level", levelFieldMapping)

	xpFieldMapping := bleve.NewNumericFieldMapping()
	xpFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("total_xp", xpFieldMapping)

	indexMapping.AddDocumentMapping("_default", docMapping)

	return indexMapping
}
