package pipeline

import (
	"math"

	"labparse/internal/catalog"
	"labparse/internal/domain"
	"labparse/internal/extractor"
)

// Merge combines a deterministic report with an AI report for the same
// document.
//
// Indicators are keyed by canonical name through cat. When both sources
// report an indicator the deterministic one wins; indicators found by only
// one source are kept. Deterministic indicators come first in their
// deterministic order, followed by AI-only indicators in AI order.
//
// Metadata fields take the deterministic value when it is set and the AI
// value otherwise. When the deterministic pass found nothing at all the AI
// report is used wholesale.
//
// The returned provenance map records the source of every metadata field
// and indicator, keyed "studyType", "indicators.<name>" and so on.
func Merge(cat *catalog.Catalog, det, ai *domain.ParsedReport) (*domain.ParsedReport, map[string]domain.Source) {
	if cat == nil {
		cat = catalog.Default()
	}
	provenance := make(map[string]domain.Source)
	if ai == nil {
		ai = &domain.ParsedReport{}
	}
	if det == nil {
		det = &domain.ParsedReport{}
	}

	merged := &domain.ParsedReport{Indicators: []domain.ExtractedIndicator{}}

	if det.IsEmpty() {
		merged.StudyType = ai.StudyType
		merged.StudyDate = ai.StudyDate
		merged.Laboratory = ai.Laboratory
		merged.Doctor = ai.Doctor
		merged.Findings = ai.Findings
		markAI(provenance, "studyType", ai.StudyType != nil)
		markAI(provenance, "studyDate", ai.StudyDate != nil)
		markAI(provenance, "laboratory", ai.Laboratory != nil)
		markAI(provenance, "doctor", ai.Doctor != nil)
		markAI(provenance, "findings", ai.Findings != nil)
	} else {
		merged.StudyType = mergeString(det.StudyType, ai.StudyType, "studyType", provenance)
		merged.StudyDate = mergeDate(det.StudyDate, ai.StudyDate, provenance)
		merged.Laboratory = mergeString(det.Laboratory, ai.Laboratory, "laboratory", provenance)
		merged.Doctor = mergeString(det.Doctor, ai.Doctor, "doctor", provenance)
		merged.Findings = mergeString(det.Findings, ai.Findings, "findings", provenance)
	}

	aiByKey := make(map[string]domain.ExtractedIndicator, len(ai.Indicators))
	for _, ind := range ai.Indicators {
		key := cat.Key(ind.Name)
		if _, dup := aiByKey[key]; !dup {
			aiByKey[key] = ind
		}
	}

	seen := make(map[string]bool, len(det.Indicators))
	for _, ind := range det.Indicators {
		key := cat.Key(ind.Name)
		if seen[key] {
			continue
		}
		seen[key] = true
		merged.Indicators = append(merged.Indicators, ind)

		src := domain.SourceDeterministic
		if other, ok := aiByKey[key]; ok && sameValue(ind.Value, other.Value) {
			src = domain.SourceAgree
		}
		provenance["indicators."+ind.Name] = src
	}

	for _, ind := range ai.Indicators {
		key := cat.Key(ind.Name)
		if seen[key] {
			continue
		}
		seen[key] = true
		ind = enrich(cat, ind)
		merged.Indicators = append(merged.Indicators, ind)
		provenance["indicators."+ind.Name] = domain.SourceAI
	}

	return merged, provenance
}

// enrich fills the unit and reference range of an AI indicator from the
// catalog when the model left them out, then reclassifies it.
func enrich(cat *catalog.Catalog, ind domain.ExtractedIndicator) domain.ExtractedIndicator {
	t, ok := cat.Lookup(ind.Name)
	if !ok {
		return extractor.Reclassify(ind)
	}
	if ind.Unit == "" {
		ind.Unit = t.Unit
	}
	if ind.ReferenceMin == nil && ind.ReferenceMax == nil {
		ind.ReferenceMin = domain.Float64Ptr(t.ReferenceMin)
		ind.ReferenceMax = domain.Float64Ptr(t.ReferenceMax)
	}
	return extractor.Reclassify(ind)
}

func mergeString(det, ai *string, field string, provenance map[string]domain.Source) *string {
	switch {
	case det != nil && ai != nil && *det == *ai:
		provenance[field] = domain.SourceAgree
		return det
	case det != nil:
		provenance[field] = domain.SourceDeterministic
		return det
	case ai != nil:
		provenance[field] = domain.SourceAI
		return ai
	}
	return nil
}

func mergeDate(det, ai *domain.Date, provenance map[string]domain.Source) *domain.Date {
	switch {
	case det != nil && ai != nil && det.Equal(ai.Time):
		provenance["studyDate"] = domain.SourceAgree
		return det
	case det != nil:
		provenance["studyDate"] = domain.SourceDeterministic
		return det
	case ai != nil:
		provenance["studyDate"] = domain.SourceAI
		return ai
	}
	return nil
}

func markAI(provenance map[string]domain.Source, field string, set bool) {
	if set {
		provenance[field] = domain.SourceAI
	}
}

func sameValue(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}
