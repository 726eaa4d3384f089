package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// ExtractedIndicator is a single clinical measurement read from a report.
type ExtractedIndicator struct {
	Name         string   `json:"name"`
	Value        float64  `json:"value"`
	Unit         string   `json:"unit"`
	ReferenceMin *float64 `json:"referenceMin,omitempty"`
	ReferenceMax *float64 `json:"referenceMax,omitempty"`
	IsNormal     *bool    `json:"isNormal,omitempty"`
}

// ParsedReport is the structured result for one document. An empty
// Indicators slice is a valid result.
type ParsedReport struct {
	StudyType  *string              `json:"studyType,omitempty"`
	StudyDate  *Date                `json:"studyDate,omitempty"`
	Laboratory *string              `json:"laboratory,omitempty"`
	Doctor     *string              `json:"doctor,omitempty"`
	Findings   *string              `json:"findings,omitempty"`
	Indicators []ExtractedIndicator `json:"indicators"`
}

// HasMetadata reports whether any metadata field is set.
func (r *ParsedReport) HasMetadata() bool {
	return r.StudyType != nil || r.StudyDate != nil || r.Laboratory != nil || r.Doctor != nil || r.Findings != nil
}

// IsEmpty reports whether the report carries neither metadata nor indicators.
func (r *ParsedReport) IsEmpty() bool {
	return !r.HasMetadata() && len(r.Indicators) == 0
}

// OCRResult is what the upstream recognition engine hands over per document.
// Confidence is advisory only and never used for parsing.
type OCRResult struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

// dateLayout is the wire format of Date.
const dateLayout = "2006-01-02"

// Date is a calendar date without time of day, serialized as YYYY-MM-DD.
type Date struct {
	time.Time
}

// NewDate returns the date for year/month/day, or false when the
// combination is not a real calendar date (e.g. month 13, 31 April).
func NewDate(year, month, day int) (Date, bool) {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return Date{}, false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return Date{}, false
	}
	return Date{Time: t}, true
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("parsing date %q: %w", s, err)
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	return d.Format(dateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Float64Ptr returns a pointer to f.
func Float64Ptr(f float64) *float64 {
	return &f
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string {
	return &s
}

// BoolPtr returns a pointer to b.
func BoolPtr(b bool) *bool {
	return &b
}
