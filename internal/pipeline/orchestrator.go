// Package pipeline selects an extraction strategy for a document and merges
// deterministic and AI results.
package pipeline

import (
	"context"
	"log"

	"labparse/internal/catalog"
	"labparse/internal/domain"
	"labparse/internal/extractor"
	"labparse/internal/port"
)

// State is a step of a single pipeline run.
type State string

const (
	StateNotStarted          State = "not_started"
	StateTableParseAttempted State = "table_parse_attempted"
	StateRegexParseAttempted State = "regex_parse_attempted"
	StateAIParseAttempted    State = "ai_parse_attempted"
	StateDone                State = "done"
)

// Outcome is the result of one pipeline run. Trace lists the states the run
// passed through in order. Provenance is set only for merged reports.
type Outcome struct {
	Report     *domain.ParsedReport
	Strategy   domain.Strategy
	Trace      []State
	Provenance map[string]domain.Source
}

// Orchestrator runs the extraction passes for one document at a time. It
// holds no per-call state and may be shared between goroutines.
type Orchestrator struct {
	catalog  *catalog.Catalog
	metadata *extractor.MetadataExtractor
	table    *extractor.TableParser
	regex    *extractor.RegexExtractor
	ai       port.ReportExtractor
}

// New creates an Orchestrator over cat. ai may be nil, which disables the AI
// path.
func New(cat *catalog.Catalog, ai port.ReportExtractor) *Orchestrator {
	if cat == nil {
		cat = catalog.Default()
	}
	return &Orchestrator{
		catalog:  cat,
		metadata: extractor.NewMetadataExtractor(nil),
		table:    extractor.NewTableParser(cat),
		regex:    extractor.NewRegexExtractor(cat),
		ai:       ai,
	}
}

// AIEnabled reports whether an AI provider is configured.
func (o *Orchestrator) AIEnabled() bool {
	return o.ai != nil
}

// Catalog returns the catalog the orchestrator parses with.
func (o *Orchestrator) Catalog() *catalog.Catalog {
	return o.catalog
}

// Parse runs the deterministic passes only: the table parser first, then
// the regex extractor when no table section was found.
func (o *Orchestrator) Parse(text string) *Outcome {
	out := o.deterministic(text)
	out.Trace = append(out.Trace, StateDone)
	return out
}

// ParseWithAI runs the deterministic passes and, unless a table layout was
// detected, the configured AI provider, merging both results.
//
// It returns domain.ErrAINotConfigured before doing any work when no
// provider is configured. When the provider fails, the deterministic
// outcome is returned together with the error so the caller can still show
// it.
func (o *Orchestrator) ParseWithAI(ctx context.Context, text string) (*Outcome, error) {
	if o.ai == nil {
		return nil, domain.ErrAINotConfigured
	}

	out := o.deterministic(text)
	if out.Strategy == domain.StrategyTable {
		out.Trace = append(out.Trace, StateDone)
		return out, nil
	}

	out.Trace = append(out.Trace, StateAIParseAttempted)
	aiReport, err := o.ai.Extract(ctx, text)
	if err != nil {
		log.Printf("pipeline.Orchestrator: ai extraction failed, keeping deterministic result: %v", err)
		out.Trace = append(out.Trace, StateDone)
		return out, err
	}

	strategy := domain.StrategyMerged
	if out.Report.IsEmpty() {
		strategy = domain.StrategyAI
	}
	merged, provenance := Merge(o.catalog, out.Report, aiReport)
	out.Report = merged
	out.Provenance = provenance
	out.Strategy = strategy
	out.Trace = append(out.Trace, StateDone)
	return out, nil
}

func (o *Orchestrator) deterministic(text string) *Outcome {
	meta := o.metadata.Extract(text)
	report := &domain.ParsedReport{
		StudyType:  meta.StudyType,
		StudyDate:  meta.StudyDate,
		Laboratory: meta.Laboratory,
		Doctor:     meta.Doctor,
		Indicators: []domain.ExtractedIndicator{},
	}
	out := &Outcome{
		Report:   report,
		Strategy: domain.StrategyNone,
		Trace:    []State{StateNotStarted, StateTableParseAttempted},
	}

	if inds := o.table.Parse(text); len(inds) > 0 {
		report.Indicators = inds
		out.Strategy = domain.StrategyTable
		return out
	}

	out.Trace = append(out.Trace, StateRegexParseAttempted)
	if inds := o.regex.Extract(text); len(inds) > 0 {
		report.Indicators = inds
		out.Strategy = domain.StrategyRegex
	}
	return out
}
