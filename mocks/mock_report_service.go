package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"labparse/internal/catalog"
	"labparse/internal/service"
)

// MockReportService is a mock implementation of service.ReportService.
type MockReportService struct {
	mock.Mock
}

func (m *MockReportService) Parse(ctx context.Context, input service.ParseInput) (*service.ParseResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ParseResult), args.Error(1)
}

func (m *MockReportService) ParseBatch(ctx context.Context, inputs []service.ParseInput) ([]*service.ParseResult, error) {
	args := m.Called(ctx, inputs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*service.ParseResult), args.Error(1)
}

func (m *MockReportService) Catalog() *catalog.Catalog {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*catalog.Catalog)
}

func (m *MockReportService) AIEnabled() bool {
	args := m.Called()
	return args.Bool(0)
}
