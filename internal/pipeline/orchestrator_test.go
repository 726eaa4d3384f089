package pipeline_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"labparse/internal/catalog"
	"labparse/internal/domain"
	"labparse/internal/parser"
	"labparse/internal/pipeline"
	"labparse/mocks"
)

const tableReport = `Общий анализ крови
Дата: 12.03.2024
Erythrocyte parameters
180
6.0
55
`

const freeTextReport = `Лаборатория: Инвитро
Дата исследования: 05.02.2024
Гемоглобин (Hb): 135 г/л
Глюкоза: 5,4 ммоль/л`

func TestOrchestrator_Parse_TableLayoutWins(t *testing.T) {
	o := pipeline.New(catalog.Default(), nil)

	out := o.Parse(tableReport)

	require.NotNil(t, out)
	assert.Equal(t, domain.StrategyTable, out.Strategy)
	assert.Equal(t, []pipeline.State{
		pipeline.StateNotStarted,
		pipeline.StateTableParseAttempted,
		pipeline.StateDone,
	}, out.Trace)

	require.Len(t, out.Report.Indicators, 3)
	assert.Equal(t, "Гемоглобин (HGB)", out.Report.Indicators[0].Name)
	assert.Equal(t, 180.0, out.Report.Indicators[0].Value)
	assert.False(t, *out.Report.Indicators[0].IsNormal)
	assert.Equal(t, 6.0, out.Report.Indicators[1].Value)
	assert.False(t, *out.Report.Indicators[1].IsNormal)
	assert.Equal(t, 55.0, out.Report.Indicators[2].Value)
	assert.False(t, *out.Report.Indicators[2].IsNormal)

	require.NotNil(t, out.Report.StudyType)
	assert.Equal(t, "Общий анализ крови", *out.Report.StudyType)
	require.NotNil(t, out.Report.StudyDate)
	assert.Equal(t, "2024-03-12", out.Report.StudyDate.String())
}

func TestOrchestrator_Parse_FallsBackToRegex(t *testing.T) {
	o := pipeline.New(catalog.Default(), nil)

	out := o.Parse(freeTextReport)

	assert.Equal(t, domain.StrategyRegex, out.Strategy)
	assert.Equal(t, []pipeline.State{
		pipeline.StateNotStarted,
		pipeline.StateTableParseAttempted,
		pipeline.StateRegexParseAttempted,
		pipeline.StateDone,
	}, out.Trace)
	require.Len(t, out.Report.Indicators, 2)
	assert.Equal(t, "Гемоглобин (HGB)", out.Report.Indicators[0].Name)
	assert.Equal(t, 135.0, out.Report.Indicators[0].Value)
	assert.Equal(t, "Глюкоза (GLU)", out.Report.Indicators[1].Name)
	assert.Equal(t, 5.4, out.Report.Indicators[1].Value)
	assert.Nil(t, out.Provenance)
}

func TestOrchestrator_Parse_NothingFound(t *testing.T) {
	o := pipeline.New(nil, nil)

	out := o.Parse("неразборчивый текст без показателей")

	assert.Equal(t, domain.StrategyNone, out.Strategy)
	assert.NotNil(t, out.Report.Indicators)
	assert.Empty(t, out.Report.Indicators)
}

func TestOrchestrator_Parse_Idempotent(t *testing.T) {
	o := pipeline.New(catalog.Default(), nil)

	for _, text := range []string{tableReport, freeTextReport} {
		first := o.Parse(text)
		second := o.Parse(text)
		assert.Equal(t, first, second)
	}
}

func TestOrchestrator_ParseWithAI_NotConfigured(t *testing.T) {
	o := pipeline.New(catalog.Default(), nil)

	out, err := o.ParseWithAI(context.Background(), freeTextReport)

	assert.Nil(t, out)
	assert.ErrorIs(t, err, domain.ErrAINotConfigured)
	assert.False(t, o.AIEnabled())
}

func TestOrchestrator_ParseWithAI_SkipsAIForTables(t *testing.T) {
	ai := new(mocks.MockReportExtractor)
	o := pipeline.New(catalog.Default(), ai)

	out, err := o.ParseWithAI(context.Background(), tableReport)

	require.NoError(t, err)
	assert.Equal(t, domain.StrategyTable, out.Strategy)
	assert.NotContains(t, out.Trace, pipeline.StateAIParseAttempted)
	ai.AssertNotCalled(t, "Extract", mock.Anything, mock.Anything)
}

func TestOrchestrator_ParseWithAI_Merges(t *testing.T) {
	ai := new(mocks.MockReportExtractor)
	ai.On("Extract", mock.Anything, freeTextReport).Return(&domain.ParsedReport{
		Doctor:   domain.StringPtr("Иванова А.А."),
		Findings: domain.StringPtr("Без особенностей"),
		Indicators: []domain.ExtractedIndicator{
			{Name: "Hemoglobin", Value: 153, Unit: "g/L"},
			{Name: "Ферритин", Value: 40, Unit: "нг/мл", ReferenceMin: domain.Float64Ptr(20), ReferenceMax: domain.Float64Ptr(250)},
		},
	}, nil)
	o := pipeline.New(catalog.Default(), ai)

	out, err := o.ParseWithAI(context.Background(), freeTextReport)

	require.NoError(t, err)
	ai.AssertExpectations(t)
	assert.Equal(t, domain.StrategyMerged, out.Strategy)
	assert.Equal(t, []pipeline.State{
		pipeline.StateNotStarted,
		pipeline.StateTableParseAttempted,
		pipeline.StateRegexParseAttempted,
		pipeline.StateAIParseAttempted,
		pipeline.StateDone,
	}, out.Trace)

	require.Len(t, out.Report.Indicators, 3)
	assert.Equal(t, "Гемоглобин (HGB)", out.Report.Indicators[0].Name)
	assert.Equal(t, 135.0, out.Report.Indicators[0].Value)
	assert.Equal(t, "Глюкоза (GLU)", out.Report.Indicators[1].Name)
	assert.Equal(t, "Ферритин", out.Report.Indicators[2].Name)

	require.NotNil(t, out.Report.Laboratory)
	assert.Equal(t, "Инвитро", *out.Report.Laboratory)
	require.NotNil(t, out.Report.Doctor)
	assert.Equal(t, "Иванова А.А.", *out.Report.Doctor)

	assert.Equal(t, domain.SourceDeterministic, out.Provenance["indicators.Гемоглобин (HGB)"])
	assert.Equal(t, domain.SourceAI, out.Provenance["indicators.Ферритин"])
	assert.Equal(t, domain.SourceAI, out.Provenance["doctor"])
	assert.Equal(t, domain.SourceDeterministic, out.Provenance["laboratory"])
}

func TestOrchestrator_ParseWithAI_AIOnly(t *testing.T) {
	text := "Результаты неразборчивы"
	ai := new(mocks.MockReportExtractor)
	ai.On("Extract", mock.Anything, text).Return(&domain.ParsedReport{
		StudyType:  domain.StringPtr("Общий анализ крови"),
		Indicators: []domain.ExtractedIndicator{{Name: "Glucose", Value: 7.2}},
	}, nil)
	o := pipeline.New(catalog.Default(), ai)

	out, err := o.ParseWithAI(context.Background(), text)

	require.NoError(t, err)
	assert.Equal(t, domain.StrategyAI, out.Strategy)
	require.Len(t, out.Report.Indicators, 1)
	ind := out.Report.Indicators[0]
	assert.Equal(t, "ммоль/л", ind.Unit)
	require.NotNil(t, ind.IsNormal)
	assert.False(t, *ind.IsNormal)
}

func TestOrchestrator_ParseWithAI_FailureKeepsDeterministic(t *testing.T) {
	ai := new(mocks.MockReportExtractor)
	ai.On("Extract", mock.Anything, freeTextReport).
		Return(nil, parser.NewExtractionError(domain.ProviderOpenAI, errors.New("connection refused")))
	o := pipeline.New(catalog.Default(), ai)

	out, err := o.ParseWithAI(context.Background(), freeTextReport)

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrExtraction)
	require.NotNil(t, out)
	assert.Equal(t, domain.StrategyRegex, out.Strategy)
	assert.Len(t, out.Report.Indicators, 2)
	assert.Contains(t, out.Trace, pipeline.StateAIParseAttempted)
}
