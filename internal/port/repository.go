package port

import (
	"context"
	"time"

	"github.com/google/uuid"

	"polisave/internal/domain"
)

// UserRepository defines the contract for user persistence.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, userID uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context, offset, limit int) ([]domain.User, int, error)
	Update(ctx context.Context, user *domain.User) error
}

// FileMetaRepository defines the contract for file metadata persistence.
type FileMetaRepository interface {
	Create(ctx context.Context, meta *domain.FileMeta) error
	GetByID(ctx context.Context, fileID uuid.UUID) (*domain.FileMeta, error)
	UpdateStatus(ctx context.Context, fileID uuid.UUID, status domain.FileStatus) error
	Delete(ctx context.Context, fileID uuid.UUID) error
}

// DocumentRepository defines the contract for document persistence. ClaimQueued
// is the queue worker's entry point: it atomically moves up to limit queued
// documents to processing so concurrent workers never claim the same one.
type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, docID uuid.UUID) (*domain.Document, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID, offset, limit int) ([]domain.Document, int, error)
	UpdateAnalysis(ctx context.Context, docID uuid.UUID, status domain.AnalysisStatus, analysisError string, analyzedAt *time.Time) error
	IncrementAttempts(ctx context.Context, docID uuid.UUID) error
	ClaimQueued(ctx context.Context, limit int) ([]domain.Document, error)
	Delete(ctx context.Context, docID uuid.UUID) error
}

// OfferRepository defines the contract for unified-offer persistence.
type OfferRepository interface {
	Create(ctx context.Context, offer *domain.OfferRecord) error
	GetByDocument(ctx context.Context, docID uuid.UUID) (*domain.OfferRecord, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID, offset, limit int) ([]domain.OfferRecord, int, error)
	DeleteByDocument(ctx context.Context, docID uuid.UUID) error
}
