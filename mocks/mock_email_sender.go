package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockEmailSender is a mock implementation of port.EmailSender.
type MockEmailSender struct {
	mock.Mock
}

func (m *MockEmailSender) SendAnalysisCompleted(ctx context.Context, toEmail, toName, documentName string) error {
	args := m.Called(ctx, toEmail, toName, documentName)
	return args.Error(0)
}

func (m *MockEmailSender) SendAnalysisFailed(ctx context.Context, toEmail, toName, documentName, reason string) error {
	args := m.Called(ctx, toEmail, toName, documentName, reason)
	return args.Error(0)
}
