package csvexport

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"labparse/internal/domain"
)

func readAll(t *testing.T, buf *bytes.Buffer) [][]string {
	t.Helper()
	rows, err := csv.NewReader(buf).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestWriteHeader(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.WriteHeader())
	w.Flush()
	require.NoError(t, w.Error())

	rows := readAll(t, &buf)
	require.Len(t, rows, 1)
	assert.Len(t, rows[0], 11)
	assert.Equal(t, "Document ID", rows[0][0])
	assert.Equal(t, "Indicator", rows[0][5])
	assert.Equal(t, "Status", rows[0][10])
}

func TestWriteReport_OneRowPerIndicator(t *testing.T) {
	date, _ := domain.NewDate(2024, 3, 12)
	report := &domain.ParsedReport{
		StudyType:  domain.StringPtr("Общий анализ крови"),
		StudyDate:  &date,
		Laboratory: domain.StringPtr("Инвитро"),
		Indicators: []domain.ExtractedIndicator{
			{
				Name:         "Гемоглобин (HGB)",
				Value:        135,
				Unit:         "г/л",
				ReferenceMin: domain.Float64Ptr(120),
				ReferenceMax: domain.Float64Ptr(160),
				IsNormal:     domain.BoolPtr(true),
			},
			{
				Name:         "Эритроциты (RBC)",
				Value:        6.05,
				Unit:         "10^12/л",
				ReferenceMin: domain.Float64Ptr(4),
				ReferenceMax: domain.Float64Ptr(5.5),
				IsNormal:     domain.BoolPtr(false),
			},
			{Name: "Ферритин", Value: 40, Unit: "нг/мл"},
		},
	}

	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.WriteReport("doc-1", report))
	w.Flush()
	require.NoError(t, w.Error())

	rows := readAll(t, &buf)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{
		"doc-1", "Общий анализ крови", "2024-03-12", "Инвитро", "",
		"Гемоглобин (HGB)", "135", "г/л", "120", "160", "Normal",
	}, rows[0])
	assert.Equal(t, "6.05", rows[1][6])
	assert.Equal(t, "5.5", rows[1][9])
	assert.Equal(t, "Abnormal", rows[1][10])
	assert.Equal(t, "", rows[2][8])
	assert.Equal(t, "", rows[2][10])
}

func TestWriteReport_NoIndicators(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.WriteReport("doc-2", &domain.ParsedReport{Doctor: domain.StringPtr("Петров П.П.")}))
	w.Flush()

	rows := readAll(t, &buf)
	require.Len(t, rows, 1)
	assert.Equal(t, "doc-2", rows[0][0])
	assert.Equal(t, "Петров П.П.", rows[0][4])
	assert.Equal(t, "", rows[0][5])
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"simple", "Blood Test March", "Blood_Test_March"},
		{"special chars", "CBC / 2024-03 (repeat)", "CBC_2024-03_repeat"},
		{"cyrillic only", "Общий анализ", "lab_report"},
		{"hyphens and underscores preserved", "report-1_final", "report-1_final"},
		{"consecutive underscores collapsed", "test___report", "test_report"},
		{"leading/trailing cleaned", "  hello  ", "hello"},
		{"empty", "", "lab_report"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizeFilename(tt.input))
		})
	}
}

func TestBuildFilename(t *testing.T) {
	filename := BuildFilename("Blood Test")
	today := time.Now().Format("2006-01-02")
	assert.Equal(t, "Blood_Test_"+today+".csv", filename)
}
