package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"polisave/internal/port"
)

// MockOfferExtractor is a mock implementation of port.OfferExtractor.
type MockOfferExtractor struct {
	mock.Mock
}

func (m *MockOfferExtractor) Extract(ctx context.Context, input port.ExtractInput) (*port.ExtractOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.ExtractOutput), args.Error(1)
}
