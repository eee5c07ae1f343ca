package dictionaryparser

import (
	"github.com/ravenmed/terminology-api/dictionaryparser/entities"
	"github.com/ravenmed/terminology-api/interfaces"
)

// Compile-time check to ensure DictionaryParser implements Parser interface
var _ interfaces.Parser = (*DictionaryParser)(nil)

// DictionaryParser implements the Parser interface over the package-level
// streaming functions.
type DictionaryParser struct{}

// NewDictionaryParser creates a new DictionaryParser instance
func NewDictionaryParser() *DictionaryParser {
	return &DictionaryParser{}
}

func (p *DictionaryParser) ParseMeddraTerms(path string, level entities.Level, emit func(entities.MeddraTerm) error) (entities.ParseStats, error) {
	return ParseMeddraTerms(path, level, emit)
}

func (p *DictionaryParser) ParseMeddraRelations(path string, emit func(entities.MeddraRelation) error) (entities.ParseStats, error) {
	return ParseMeddraRelations(path, emit)
}

func (p *DictionaryParser) ParseAtcTerms(path string, emit func(entities.AtcTerm) error) (entities.ParseStats, error) {
	return ParseAtcTerms(path, emit)
}

func (p *DictionaryParser) ParseIngredients(path string, emit func(entities.Ingredient) error) (entities.ParseStats, error) {
	return ParseIngredients(path, emit)
}

func (p *DictionaryParser) ParseProducts(path string, emit func(entities.Product) error) (entities.ParseStats, error) {
	return ParseProducts(path, emit)
}

func (p *DictionaryParser) ParseProductIngredients(path string, emit func(entities.ProductIngredient) error) (entities.ParseStats, error) {
	return ParseProductIngredients(path, emit)
}
