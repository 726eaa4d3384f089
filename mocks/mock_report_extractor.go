package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"labparse/internal/domain"
)

// MockReportExtractor is a mock implementation of port.ReportExtractor.
type MockReportExtractor struct {
	mock.Mock
}

func (m *MockReportExtractor) Extract(ctx context.Context, text string) (*domain.ParsedReport, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ParsedReport), args.Error(1)
}
