package port

import (
	"context"

	"labparse/internal/domain"
)

// ReportExtractor abstracts LLM-based structured extraction of a lab report
// from recognized text. Implementations make a single outbound request per
// call and do not retry.
type ReportExtractor interface {
	Extract(ctx context.Context, text string) (*domain.ParsedReport, error)
}
