package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"labparse/internal/catalog"
	"labparse/internal/domain"
	"labparse/internal/pipeline"
)

// MaxBatchSize caps the number of documents accepted by ParseBatch.
const MaxBatchSize = 100

// ParseInput is one recognized document handed over by the OCR step.
type ParseInput struct {
	domain.OCRResult
	UseAI bool
}

// ParseResult is the host-facing result of parsing one document.
type ParseResult struct {
	ID         string                   `json:"id"`
	Report     *domain.ParsedReport     `json:"report,omitempty"`
	Strategy   domain.Strategy          `json:"strategy"`
	Trace      []pipeline.State         `json:"trace,omitempty"`
	Provenance map[string]domain.Source `json:"provenance,omitempty"`
	Confidence float64                  `json:"confidence"`
	Warnings   []string                 `json:"warnings,omitempty"`
	Error      string                   `json:"error,omitempty"`
}

// ReportService parses recognized lab-report text for the host application.
type ReportService interface {
	Parse(ctx context.Context, input ParseInput) (*ParseResult, error)
	ParseBatch(ctx context.Context, inputs []ParseInput) ([]*ParseResult, error)
	Catalog() *catalog.Catalog
	AIEnabled() bool
}

// Options configures the service around the pipeline.
type Options struct {
	// AITimeout bounds each AI provider call. Zero means no limit beyond the
	// caller's context.
	AITimeout time.Duration
	// BatchConcurrency bounds the documents parsed at once by ParseBatch.
	BatchConcurrency int
}

type reportService struct {
	pipeline    *pipeline.Orchestrator
	aiTimeout   time.Duration
	concurrency int
}

// NewReportService creates a ReportService over an orchestrator.
func NewReportService(orch *pipeline.Orchestrator, opts Options) ReportService {
	concurrency := opts.BatchConcurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	return &reportService{
		pipeline:    orch,
		aiTimeout:   opts.AITimeout,
		concurrency: concurrency,
	}
}

func (s *reportService) Catalog() *catalog.Catalog {
	return s.pipeline.Catalog()
}

func (s *reportService) AIEnabled() bool {
	return s.pipeline.AIEnabled()
}

// Parse parses one document. A failed AI call is not an error: the
// deterministic result is returned with a warning. Cancellation of ctx is
// returned as ctx.Err().
func (s *reportService) Parse(ctx context.Context, input ParseInput) (*ParseResult, error) {
	if strings.TrimSpace(input.Text) == "" {
		return nil, domain.ErrEmptyText
	}
	if input.UseAI && !s.pipeline.AIEnabled() {
		return nil, domain.ErrAINotConfigured
	}

	result := &ParseResult{
		ID:         uuid.New().String(),
		Confidence: input.Confidence,
	}

	var outcome *pipeline.Outcome
	if input.UseAI {
		var err error
		outcome, err = s.parseWithAI(ctx, input.Text)
		if err != nil {
			// The caller gave up: a warning would go nowhere.
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			if outcome == nil {
				return nil, err
			}
			result.Warnings = append(result.Warnings, fmt.Sprintf("AI extraction failed, showing deterministic result: %v", err))
		}
	} else {
		outcome = s.pipeline.Parse(input.Text)
	}

	result.Report = outcome.Report
	result.Strategy = outcome.Strategy
	result.Trace = outcome.Trace
	result.Provenance = outcome.Provenance

	log.Printf("service.ReportService: parsed id=%s strategy=%s indicators=%d ai=%t",
		result.ID, result.Strategy, len(result.Report.Indicators), input.UseAI)
	return result, nil
}

func (s *reportService) parseWithAI(ctx context.Context, text string) (*pipeline.Outcome, error) {
	if s.aiTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.aiTimeout)
		defer cancel()
	}
	return s.pipeline.ParseWithAI(ctx, text)
}

// ParseBatch parses independent documents concurrently and returns results
// in input order. A document that cannot be parsed gets a result with Error
// set; it does not fail the batch.
func (s *reportService) ParseBatch(ctx context.Context, inputs []ParseInput) ([]*ParseResult, error) {
	if len(inputs) == 0 {
		return nil, domain.ErrEmptyBatch
	}
	if len(inputs) > MaxBatchSize {
		return nil, fmt.Errorf("%w: %d documents, max %d", domain.ErrBatchTooLarge, len(inputs), MaxBatchSize)
	}
	for _, in := range inputs {
		if in.UseAI && !s.pipeline.AIEnabled() {
			return nil, domain.ErrAINotConfigured
		}
	}

	results := make([]*ParseResult, len(inputs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i, in := range inputs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := s.Parse(gctx, in)
			if err != nil {
				if errors.Is(err, context.Canceled) {
					return err
				}
				res = &ParseResult{
					ID:         uuid.New().String(),
					Strategy:   domain.StrategyNone,
					Confidence: in.Confidence,
					Error:      err.Error(),
				}
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
