package extractor_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"labparse/internal/catalog"
	"labparse/internal/domain"
	"labparse/internal/extractor"
)

func names(inds []domain.ExtractedIndicator) []string {
	out := make([]string, len(inds))
	for i, ind := range inds {
		out[i] = ind.Name
	}
	return out
}

func TestTableParser_NoHeaders(t *testing.T) {
	p := extractor.NewTableParser(catalog.Default())

	for _, text := range []string{
		"",
		"Гемоглобин (Hb): 135 г/л",
		"180\n6.0\n55",
		"Erythrocyte\nparameters 180",
	} {
		got := p.Parse(text)
		assert.NotNil(t, got, "text %q", text)
		assert.Empty(t, got, "text %q", text)
	}
}

func TestTableParser_PositionalAssignment(t *testing.T) {
	p := extractor.NewTableParser(catalog.Default())

	got := p.Parse("Erythrocyte parameters\n180\n6.0\n55\n")

	require.Len(t, got, 3)
	assert.Equal(t, []string{"Гемоглобин (HGB)", "Эритроциты (RBC)", "Гематокрит (HCT)"}, names(got))

	assert.Equal(t, 180.0, got[0].Value)
	assert.Equal(t, "г/л", got[0].Unit)
	assert.Equal(t, 120.0, *got[0].ReferenceMin)
	assert.Equal(t, 160.0, *got[0].ReferenceMax)
	assert.False(t, *got[0].IsNormal)

	assert.Equal(t, 6.0, got[1].Value)
	assert.False(t, *got[1].IsNormal)

	assert.Equal(t, 55.0, got[2].Value)
	assert.False(t, *got[2].IsNormal)
}

func TestTableParser_CommaDecimalsAndCaseInsensitiveHeader(t *testing.T) {
	p := extractor.NewTableParser(catalog.Default())

	got := p.Parse("ЭРИТРОЦИТАРНЫЕ ПАРАМЕТРЫ\n135 4,5 42,0")

	require.Len(t, got, 3)
	assert.Equal(t, 135.0, got[0].Value)
	assert.Equal(t, 4.5, got[1].Value)
	assert.Equal(t, 42.0, got[2].Value)
	for _, ind := range got {
		assert.True(t, *ind.IsNormal, ind.Name)
	}
}

func TestTableParser_DropsBlankZeros(t *testing.T) {
	p := extractor.NewTableParser(catalog.Default())

	// WBC has min 4, BAS has min 0: only the BAS zero is a real value.
	got := p.Parse("Leukocyte parameters\n0\n60\n30\n6\n2\n0")

	assert.Equal(t, []string{
		"Нейтрофилы (NEU)", "Лимфоциты (LYM)", "Моноциты (MON)", "Эозинофилы (EOS)", "Базофилы (BAS)",
	}, names(got))
	bas := got[len(got)-1]
	assert.Equal(t, 0.0, bas.Value)
	assert.True(t, *bas.IsNormal)
}

func TestTableParser_WindowEndsAtNextHeaderAndStopKeyword(t *testing.T) {
	p := extractor.NewTableParser(catalog.Default())
	text := `Platelet parameters
250 9,1 0,25
Erythrocyte parameters
140 4,8
Заключение: повторить через 30 дней`

	got := p.Parse(text)

	// Sections come out in catalog order, not document order.
	assert.Equal(t, []string{
		"Гемоглобин (HGB)", "Эритроциты (RBC)",
		"Тромбоциты (PLT)", "Средний объем тромбоцитов (MPV)", "Тромбокрит (PCT)",
	}, names(got))
	assert.Equal(t, 4.8, got[1].Value)
	assert.Equal(t, 0.25, got[4].Value)
}

func TestTableParser_BoundaryValuesAreNormal(t *testing.T) {
	p := extractor.NewTableParser(catalog.Default())

	got := p.Parse("Lipid profile\n3,0 3,3 2,2 0,4")

	require.Len(t, got, 4)
	for _, ind := range got {
		require.NotNil(t, ind.IsNormal)
		assert.True(t, *ind.IsNormal, ind.Name)
	}
}

func TestTableParser_LeukocyteDifferential(t *testing.T) {
	p := extractor.NewTableParser(catalog.Default())

	got := p.Parse("Лейкоцитарная формула\n60\n30\n6\n2\n0")

	assert.Equal(t, []string{
		"Нейтрофилы (NEU)", "Лимфоциты (LYM)", "Моноциты (MON)", "Эозинофилы (EOS)", "Базофилы (BAS)",
	}, names(got))
	assert.Equal(t, 60.0, got[0].Value)
	for _, ind := range got {
		assert.True(t, *ind.IsNormal, ind.Name)
	}
}

func TestTableParser_SharedIndicatorEmittedOnce(t *testing.T) {
	p := extractor.NewTableParser(catalog.Default())
	text := `Leukocyte parameters
6,2 55 35 7 2 0,5
Лейкоцитарная формула
60 30 6 2 0`

	got := p.Parse(text)

	assert.Equal(t, []string{
		"Лейкоциты (WBC)", "Нейтрофилы (NEU)", "Лимфоциты (LYM)", "Моноциты (MON)", "Эозинофилы (EOS)", "Базофилы (BAS)",
	}, names(got))
	assert.Equal(t, 55.0, got[1].Value)
}
