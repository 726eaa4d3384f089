package csvexport

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"labparse/internal/domain"
)

// UTF-8 BOM bytes for Excel compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// columns defines the CSV header row.
var columns = []string{
	"Document ID",
	"Study Type",
	"Study Date",
	"Laboratory",
	"Doctor",
	"Indicator",
	"Value",
	"Unit",
	"Reference Min",
	"Reference Max",
	"Status",
}

// Writer wraps csv.Writer for exporting parsed reports as CSV.
type Writer struct {
	csv *csv.Writer
}

// NewWriter creates a Writer that writes CSV to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{csv: csv.NewWriter(w)}
}

// WriteHeader writes the header row.
func (w *Writer) WriteHeader() error {
	return w.csv.Write(columns)
}

// WriteReport writes one row per indicator, each repeating the report
// metadata. A report without indicators still gets a metadata-only row.
func (w *Writer) WriteReport(id string, report *domain.ParsedReport) error {
	if report == nil {
		return nil
	}
	if len(report.Indicators) == 0 {
		return w.csv.Write(metadataRow(id, report))
	}
	for i := range report.Indicators {
		row := metadataRow(id, report)
		fillIndicator(row, &report.Indicators[i])
		if err := w.csv.Write(row); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the underlying csv.Writer buffer.
func (w *Writer) Flush() {
	w.csv.Flush()
}

// Error returns any error from the underlying csv.Writer.
func (w *Writer) Error() error {
	return w.csv.Error()
}

func metadataRow(id string, report *domain.ParsedReport) []string {
	row := make([]string, len(columns))
	row[0] = id
	row[1] = deref(report.StudyType)
	if report.StudyDate != nil {
		row[2] = report.StudyDate.String()
	}
	row[3] = deref(report.Laboratory)
	row[4] = deref(report.Doctor)
	return row
}

func fillIndicator(row []string, ind *domain.ExtractedIndicator) {
	row[5] = ind.Name
	row[6] = formatNumber(ind.Value)
	row[7] = ind.Unit
	if ind.ReferenceMin != nil {
		row[8] = formatNumber(*ind.ReferenceMin)
	}
	if ind.ReferenceMax != nil {
		row[9] = formatNumber(*ind.ReferenceMax)
	}
	row[10] = formatStatus(ind.IsNormal)
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatStatus(v *bool) string {
	switch {
	case v == nil:
		return ""
	case *v:
		return "Normal"
	default:
		return "Abnormal"
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// nonAlphanumeric matches characters that are not alphanumeric, hyphen, or underscore.
var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// multiUnderscore matches consecutive underscores.
var multiUnderscore = regexp.MustCompile(`_{2,}`)

// SanitizeFilename cleans a name for use in Content-Disposition.
// Replaces non-alphanumeric chars (except - _) with _, collapses consecutive
// underscores, and truncates to 100 chars. Falls back to "lab_report" when
// nothing survives.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	if s == "" {
		s = "lab_report"
	}
	return s
}

// BuildFilename returns a sanitized filename for Content-Disposition header.
// Format: {sanitized_name}_{YYYY-MM-DD}.csv
func BuildFilename(name string) string {
	sanitized := SanitizeFilename(name)
	date := time.Now().Format("2006-01-02")
	return fmt.Sprintf("%s_%s.csv", sanitized, date)
}
