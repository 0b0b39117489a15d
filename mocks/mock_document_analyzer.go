package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"polisave/internal/analysis"
)

// MockDocumentAnalyzer is a mock implementation of port.DocumentAnalyzer.
type MockDocumentAnalyzer struct {
	mock.Mock
}

func (m *MockDocumentAnalyzer) Analyze(ctx context.Context, signedURL string, opts *analysis.Options) (*analysis.Result, error) {
	args := m.Called(ctx, signedURL, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*analysis.Result), args.Error(1)
}
