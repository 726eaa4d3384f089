package parser

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"labparse/internal/domain"
	"labparse/internal/extractor"
)

// flexFloat accepts a JSON number, a numeric string (comma or dot decimal)
// or null.
type flexFloat struct {
	value float64
	set   bool
}

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		f.value, f.set = n, true
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return nil
	}
	if v, ok := extractor.ParseNumber(s); ok {
		f.value, f.set = v, true
	}
	return nil
}

func (f flexFloat) ptr() *float64 {
	if !f.set {
		return nil
	}
	return domain.Float64Ptr(f.value)
}

// modelIndicator is an indicator as returned by the model.
type modelIndicator struct {
	Name         string    `json:"name"`
	Value        flexFloat `json:"value"`
	Unit         *string   `json:"unit"`
	ReferenceMin flexFloat `json:"referenceMin"`
	ReferenceMax flexFloat `json:"referenceMax"`
}

// modelReport is the payload shape requested by SystemPrompt.
type modelReport struct {
	StudyType  *string          `json:"studyType"`
	StudyDate  *string          `json:"studyDate"`
	Laboratory *string          `json:"laboratory"`
	Doctor     *string          `json:"doctor"`
	Findings   *string          `json:"findings"`
	Indicators []modelIndicator `json:"indicators"`
}

// DecodeReport converts model output into a ParsedReport. Indicators without
// a name or numeric value are dropped and IsNormal is recomputed from the
// reference range, so the model's own classification is never trusted.
func DecodeReport(content string) (*domain.ParsedReport, error) {
	content = strings.TrimSpace(content)
	if content == "" || content == "null" {
		return nil, errEmptyOutput
	}

	var raw modelReport
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return nil, fmt.Errorf("parsing LLM JSON output: %w (raw: %s)", err, truncate(content, 500))
	}

	report := &domain.ParsedReport{
		StudyType:  cleanString(raw.StudyType),
		StudyDate:  decodeDate(raw.StudyDate),
		Laboratory: cleanString(raw.Laboratory),
		Doctor:     cleanString(raw.Doctor),
		Findings:   cleanString(raw.Findings),
		Indicators: []domain.ExtractedIndicator{},
	}

	for _, mi := range raw.Indicators {
		name := strings.TrimSpace(mi.Name)
		if name == "" || !mi.Value.set {
			continue
		}
		ind := domain.ExtractedIndicator{
			Name:         name,
			Value:        mi.Value.value,
			ReferenceMin: mi.ReferenceMin.ptr(),
			ReferenceMax: mi.ReferenceMax.ptr(),
		}
		if unit := cleanString(mi.Unit); unit != nil {
			ind.Unit = *unit
		}
		report.Indicators = append(report.Indicators, extractor.Reclassify(ind))
	}

	return report, nil
}

// ExtractJSONObject returns the first balanced {...} block in s, skipping
// braces inside JSON strings. Used when a model wraps its JSON in prose.
func ExtractJSONObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}

func decodeDate(s *string) *domain.Date {
	v := cleanString(s)
	if v == nil {
		return nil
	}
	if d, err := domain.ParseDate(*v); err == nil {
		return &d
	}
	// Models occasionally echo the report's DD.MM.YYYY form.
	return extractor.StudyDate(*v)
}

func cleanString(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" || strings.EqualFold(v, "null") {
		return nil
	}
	return &v
}

// logExtraction records request metadata. Credentials and report text are
// never logged.
func logExtraction(provider domain.AIProvider, model string, report *domain.ParsedReport, started time.Time) {
	log.Printf("parser.%s: extracted model=%s prompt=%s indicators=%d elapsed=%s",
		provider, model, PromptVersion, len(report.Indicators), time.Since(started).Round(time.Millisecond))
}

// Finish decodes model output and logs the outcome. Decoding failures are
// returned as ExtractionError.
func Finish(provider domain.AIProvider, model, content string, started time.Time) (*domain.ParsedReport, error) {
	report, err := DecodeReport(content)
	if err != nil {
		return nil, NewExtractionError(provider, err)
	}
	logExtraction(provider, model, report, started)
	return report, nil
}
