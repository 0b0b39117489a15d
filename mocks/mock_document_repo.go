package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"polisave/internal/domain"
)

// MockDocumentRepo is a mock implementation of port.DocumentRepository.
type MockDocumentRepo struct {
	mock.Mock
}

func (m *MockDocumentRepo) Create(ctx context.Context, doc *domain.Document) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}

func (m *MockDocumentRepo) GetByID(ctx context.Context, docID uuid.UUID) (*domain.Document, error) {
	args := m.Called(ctx, docID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Document), args.Error(1)
}

func (m *MockDocumentRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID, offset, limit int) ([]domain.Document, int, error) {
	args := m.Called(ctx, ownerID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Document), args.Int(1), args.Error(2)
}

func (m *MockDocumentRepo) UpdateAnalysis(ctx context.Context, docID uuid.UUID, status domain.AnalysisStatus, analysisError string, analyzedAt *time.Time) error {
	args := m.Called(ctx, docID, status, analysisError, analyzedAt)
	return args.Error(0)
}

func (m *MockDocumentRepo) IncrementAttempts(ctx context.Context, docID uuid.UUID) error {
	args := m.Called(ctx, docID)
	return args.Error(0)
}

func (m *MockDocumentRepo) ClaimQueued(ctx context.Context, limit int) ([]domain.Document, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Document), args.Error(1)
}

func (m *MockDocumentRepo) Delete(ctx context.Context, docID uuid.UUID) error {
	args := m.Called(ctx, docID)
	return args.Error(0)
}
