package service

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"polisave/internal/config"
	"polisave/internal/domain"
	"polisave/internal/port"
)

// UploadDocumentInput is the DTO for document uploads.
type UploadDocumentInput struct {
	Name        string
	ProductHint string
	FileName    string
	ContentType string
	Content     []byte
	UploadedBy  uuid.UUID
}

// DocumentService manages offer documents and their files.
type DocumentService interface {
	Upload(ctx context.Context, input UploadDocumentInput) (*domain.Document, error)
	Get(ctx context.Context, docID uuid.UUID) (*domain.Document, error)
	List(ctx context.Context, ownerID uuid.UUID, offset, limit int) ([]domain.Document, int, error)
	Delete(ctx context.Context, docID uuid.UUID) error
	RetryAnalysis(ctx context.Context, docID uuid.UUID) error
}

type documentService struct {
	docs    port.DocumentRepository
	files   port.FileMetaRepository
	offers  port.OfferRepository
	storage port.ObjectStorage
	s3cfg   config.S3Config
}

// NewDocumentService creates a new DocumentService implementation.
func NewDocumentService(
	docs port.DocumentRepository,
	files port.FileMetaRepository,
	offers port.OfferRepository,
	storage port.ObjectStorage,
	s3cfg config.S3Config,
) DocumentService {
	return &documentService{
		docs:    docs,
		files:   files,
		offers:  offers,
		storage: storage,
		s3cfg:   s3cfg,
	}
}

// Upload validates the file, stores it in S3 and creates the document record
// in the queued state so the analyze worker picks it up.
func (s *documentService) Upload(ctx context.Context, input UploadDocumentInput) (*domain.Document, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(input.FileName)), ".")
	fileType, ok := domain.AllowedExtensions[ext]
	if !ok {
		return nil, domain.ErrUnsupportedFileType
	}
	maxBytes := s.s3cfg.MaxFileSizeMB << 20
	if int64(len(input.Content)) > maxBytes {
		return nil, domain.ErrFileTooLarge
	}
	contentType := input.ContentType
	if contentType == "" {
		contentType = domain.AllowedFileTypes[fileType]
	}

	fileID := uuid.New()
	key := fmt.Sprintf("documents/%s/%s.%s", input.UploadedBy, fileID, ext)

	meta := &domain.FileMeta{
		ID:           fileID,
		UploadedBy:   input.UploadedBy,
		FileName:     key,
		OriginalName: input.FileName,
		FileType:     fileType,
		FileSize:     int64(len(input.Content)),
		S3Bucket:     s.s3cfg.Bucket,
		S3Key:        key,
		ContentType:  contentType,
		Status:       domain.FileStatusPending,
	}
	if err := s.files.Create(ctx, meta); err != nil {
		return nil, fmt.Errorf("documentService.Upload: %w", err)
	}

	_, err := s.storage.Upload(ctx, port.UploadInput{
		Bucket:      meta.S3Bucket,
		Key:         meta.S3Key,
		Body:        bytes.NewReader(input.Content),
		ContentType: contentType,
		Size:        meta.FileSize,
	})
	if err != nil {
		_ = s.files.UpdateStatus(ctx, meta.ID, domain.FileStatusFailed)
		return nil, fmt.Errorf("documentService.Upload: %w: %v", domain.ErrUploadFailed, err)
	}
	if err := s.files.UpdateStatus(ctx, meta.ID, domain.FileStatusUploaded); err != nil {
		return nil, fmt.Errorf("documentService.Upload: %w", err)
	}

	name := input.Name
	if name == "" {
		name = input.FileName
	}
	doc := &domain.Document{
		FileID:         meta.ID,
		Name:           name,
		ProductHint:    input.ProductHint,
		AnalysisStatus: domain.AnalysisStatusQueued,
		CreatedBy:      input.UploadedBy,
	}
	if err := s.docs.Create(ctx, doc); err != nil {
		return nil, fmt.Errorf("documentService.Upload: %w", err)
	}

	log.Printf("documentService.Upload: stored document %s (file %s, %d bytes)", doc.ID, meta.ID, meta.FileSize)
	return doc, nil
}

func (s *documentService) Get(ctx context.Context, docID uuid.UUID) (*domain.Document, error) {
	return s.docs.GetByID(ctx, docID)
}

func (s *documentService) List(ctx context.Context, ownerID uuid.UUID, offset, limit int) ([]domain.Document, int, error) {
	return s.docs.ListByOwner(ctx, ownerID, offset, limit)
}

// Delete removes the document, its offer and the underlying S3 object.
func (s *documentService) Delete(ctx context.Context, docID uuid.UUID) error {
	doc, err := s.docs.GetByID(ctx, docID)
	if err != nil {
		return err
	}
	if doc.AnalysisStatus == domain.AnalysisStatusProcessing {
		return domain.ErrAnalysisInProgress
	}

	if err := s.offers.DeleteByDocument(ctx, docID); err != nil {
		return fmt.Errorf("documentService.Delete: %w", err)
	}
	if err := s.docs.Delete(ctx, docID); err != nil {
		return fmt.Errorf("documentService.Delete: %w", err)
	}

	meta, err := s.files.GetByID(ctx, doc.FileID)
	if err == nil {
		if err := s.storage.Delete(ctx, meta.S3Bucket, meta.S3Key); err != nil {
			log.Printf("documentService.Delete: s3 delete for %s failed: %v", meta.S3Key, err)
		}
		_ = s.files.UpdateStatus(ctx, meta.ID, domain.FileStatusDeleted)
	}
	return nil
}

// RetryAnalysis re-queues a failed document.
func (s *documentService) RetryAnalysis(ctx context.Context, docID uuid.UUID) error {
	doc, err := s.docs.GetByID(ctx, docID)
	if err != nil {
		return err
	}
	if doc.AnalysisStatus == domain.AnalysisStatusProcessing || doc.AnalysisStatus == domain.AnalysisStatusQueued {
		return domain.ErrAnalysisInProgress
	}
	return s.docs.UpdateAnalysis(ctx, docID, domain.AnalysisStatusQueued, "", nil)
}
