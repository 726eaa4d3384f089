package extractor

import (
	"labparse/internal/catalog"
	"labparse/internal/domain"
)

// RegexExtractor finds "name ... value" pairs anywhere in free text using
// the catalog's synonym patterns.
type RegexExtractor struct {
	patterns []catalog.Pattern
}

// NewRegexExtractor creates a RegexExtractor over cat's entries.
func NewRegexExtractor(cat *catalog.Catalog) *RegexExtractor {
	return &RegexExtractor{patterns: cat.Patterns()}
}

// Extract returns one indicator per catalog entry that matches, in catalog
// order. For each entry only the first match in text counts; any unit
// written next to the value is ignored in favor of the catalog unit.
func (e *RegexExtractor) Extract(text string) []domain.ExtractedIndicator {
	indicators := []domain.ExtractedIndicator{}
	for _, p := range e.patterns {
		token, found := p.FindValue(text)
		if !found {
			continue
		}
		value, ok := ParseNumber(token)
		if !ok {
			continue
		}
		indicators = append(indicators, Classify(p.IndicatorTemplate, value))
	}
	return indicators
}
