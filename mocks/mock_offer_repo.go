package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"polisave/internal/domain"
)

// MockOfferRepo is a mock implementation of port.OfferRepository.
type MockOfferRepo struct {
	mock.Mock
}

func (m *MockOfferRepo) Create(ctx context.Context, offer *domain.OfferRecord) error {
	args := m.Called(ctx, offer)
	return args.Error(0)
}

func (m *MockOfferRepo) GetByDocument(ctx context.Context, docID uuid.UUID) (*domain.OfferRecord, error) {
	args := m.Called(ctx, docID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.OfferRecord), args.Error(1)
}

func (m *MockOfferRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID, offset, limit int) ([]domain.OfferRecord, int, error) {
	args := m.Called(ctx, ownerID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.OfferRecord), args.Int(1), args.Error(2)
}

func (m *MockOfferRepo) DeleteByDocument(ctx context.Context, docID uuid.UUID) error {
	args := m.Called(ctx, docID)
	return args.Error(0)
}
