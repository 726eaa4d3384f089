// Package extractor implements the deterministic extraction passes over
// recognized lab-report text: metadata heuristics, the table-format section
// parser and the regex indicator extractor. All functions are pure and safe
// to call concurrently.
package extractor

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"labparse/internal/catalog"
	"labparse/internal/domain"
)

// numberRe matches numeric tokens such as "135", "5,4" or "6.0".
var numberRe = regexp.MustCompile(`\d+[,.]?\d*`)

// ParseNumber parses a numeric token, treating a comma as the decimal
// separator. ok is false for tokens that do not yield a finite number.
func ParseNumber(token string) (float64, bool) {
	s := strings.ReplaceAll(strings.TrimSpace(token), ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// IsNormal reports whether value lies within [min, max], both ends
// inclusive.
func IsNormal(value, min, max float64) bool {
	return min <= value && value <= max
}

// Classify builds an indicator from a catalog template and a parsed value.
func Classify(t catalog.IndicatorTemplate, value float64) domain.ExtractedIndicator {
	return domain.ExtractedIndicator{
		Name:         t.CanonicalName,
		Value:        value,
		Unit:         t.Unit,
		ReferenceMin: domain.Float64Ptr(t.ReferenceMin),
		ReferenceMax: domain.Float64Ptr(t.ReferenceMax),
		IsNormal:     domain.BoolPtr(IsNormal(value, t.ReferenceMin, t.ReferenceMax)),
	}
}

// Reclassify recomputes IsNormal from the indicator's own reference range.
// Indicators without a complete range get no classification.
func Reclassify(ind domain.ExtractedIndicator) domain.ExtractedIndicator {
	if ind.ReferenceMin == nil || ind.ReferenceMax == nil {
		ind.IsNormal = nil
		return ind
	}
	ind.IsNormal = domain.BoolPtr(IsNormal(ind.Value, *ind.ReferenceMin, *ind.ReferenceMax))
	return ind
}
