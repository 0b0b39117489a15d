package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"polisave/internal/analysis"
	"polisave/internal/config"
	"polisave/internal/domain"
	"polisave/internal/port"
	"polisave/internal/service"
	"polisave/mocks"
)

type pipelineMocks struct {
	docs      *mocks.MockDocumentRepo
	files     *mocks.MockFileMetaRepo
	offers    *mocks.MockOfferRepo
	users     *mocks.MockUserRepo
	storage   *mocks.MockObjectStorage
	analyzer  *mocks.MockDocumentAnalyzer
	extractor *mocks.MockOfferExtractor
	email     *mocks.MockEmailSender
}

func newPipelineMocks() *pipelineMocks {
	return &pipelineMocks{
		docs:      new(mocks.MockDocumentRepo),
		files:     new(mocks.MockFileMetaRepo),
		offers:    new(mocks.MockOfferRepo),
		users:     new(mocks.MockUserRepo),
		storage:   new(mocks.MockObjectStorage),
		analyzer:  new(mocks.MockDocumentAnalyzer),
		extractor: new(mocks.MockOfferExtractor),
		email:     new(mocks.MockEmailSender),
	}
}

func (m *pipelineMocks) service() service.OfferService {
	return service.NewOfferService(
		m.docs, m.files, m.offers, m.users, m.storage,
		m.analyzer, m.extractor, m.email,
		config.S3Config{Bucket: "offers", PresignExpiry: 900},
		config.AnalyzerConfig{BaseURL: "http://analyzer"},
	)
}

func pipelineFixtures() (*domain.Document, *domain.FileMeta, *domain.User) {
	docID := uuid.New()
	fileID := uuid.New()
	ownerID := uuid.New()
	doc := &domain.Document{
		ID:             docID,
		FileID:         fileID,
		Name:           "oferta_pzu.pdf",
		ProductHint:    "life",
		AnalysisStatus: domain.AnalysisStatusProcessing,
		CreatedBy:      ownerID,
	}
	meta := &domain.FileMeta{
		ID:          fileID,
		UploadedBy:  ownerID,
		FileType:    domain.FileTypePDF,
		S3Bucket:    "offers",
		S3Key:       "documents/" + ownerID.String() + "/" + fileID.String() + ".pdf",
		ContentType: "application/pdf",
	}
	owner := &domain.User{ID: ownerID, Email: "owner@test.com", FullName: "Owner", IsActive: true}
	return doc, meta, owner
}

func analyzerResult() *analysis.Result {
	return &analysis.Result{
		Text: "Składka miesięczna wynosi 120,50 zł do zapłaty",
		Pages: []analysis.Page{
			{PageNumber: 1, Text: "Składka miesięczna wynosi 120,50 zł do zapłaty"},
		},
	}
}

func extractionOutput() *port.ExtractOutput {
	return &port.ExtractOutput{
		Payload: map[string]any{
			"insurer": "PZU",
			"insured": []any{
				map[string]any{"name": "Jan Kowalski", "age": float64(34)},
			},
			"total_premium_after_discounts": "120,50",
		},
		Model: "claude-sonnet-4-20250514",
	}
}

func TestAnalyzeDocument_Success(t *testing.T) {
	m := newPipelineMocks()
	doc, meta, owner := pipelineFixtures()

	m.docs.On("IncrementAttempts", mock.Anything, doc.ID).Return(nil)
	m.docs.On("UpdateAnalysis", mock.Anything, doc.ID, domain.AnalysisStatusProcessing, "", mock.Anything).Return(nil)
	m.files.On("GetByID", mock.Anything, doc.FileID).Return(meta, nil)
	m.storage.On("Download", mock.Anything, meta.S3Bucket, meta.S3Key).Return([]byte("pdf-bytes"), nil)
	m.storage.On("GetPresignedURL", mock.Anything, meta.S3Bucket, meta.S3Key, int64(900)).Return("https://signed/doc.pdf", nil)
	m.analyzer.On("Analyze", mock.Anything, "https://signed/doc.pdf", mock.Anything).Return(analyzerResult(), nil)
	m.extractor.On("Extract", mock.Anything, mock.Anything).Return(extractionOutput(), nil)

	var saved *domain.OfferRecord
	m.offers.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		saved = args.Get(1).(*domain.OfferRecord)
	}).Return(nil)

	m.docs.On("UpdateAnalysis", mock.Anything, doc.ID, domain.AnalysisStatusCompleted, "", mock.Anything).Return(nil)
	m.users.On("GetByID", mock.Anything, doc.CreatedBy).Return(owner, nil)
	m.email.On("SendAnalysisCompleted", mock.Anything, owner.Email, owner.FullName, doc.Name).Return(nil)

	err := m.service().AnalyzeDocument(context.Background(), doc)
	require.NoError(t, err)

	require.NotNil(t, saved)
	assert.Equal(t, doc.ID, saved.DocumentID)
	assert.Equal(t, "oferta_pzu.pdf", saved.SourceDocument)
	assert.Equal(t, "claude-sonnet-4-20250514", saved.ExtractorModel)

	var unified domain.UnifiedOffer
	require.NoError(t, json.Unmarshal(saved.Payload, &unified))
	assert.Equal(t, "PZU", unified.Insurer)
	require.NotNil(t, unified.TotalPremiumAfterDiscounts)
	assert.InDelta(t, 120.5, *unified.TotalPremiumAfterDiscounts, 1e-9)

	m.docs.AssertExpectations(t)
	m.offers.AssertExpectations(t)
	m.email.AssertExpectations(t)
}

func TestAnalyzeDocument_AnalyzerHardFailure(t *testing.T) {
	m := newPipelineMocks()
	doc, meta, owner := pipelineFixtures()

	m.docs.On("IncrementAttempts", mock.Anything, doc.ID).Return(nil)
	m.docs.On("UpdateAnalysis", mock.Anything, doc.ID, domain.AnalysisStatusProcessing, "", mock.Anything).Return(nil)
	m.files.On("GetByID", mock.Anything, doc.FileID).Return(meta, nil)
	m.storage.On("Download", mock.Anything, meta.S3Bucket, meta.S3Key).Return([]byte("pdf-bytes"), nil)
	m.storage.On("GetPresignedURL", mock.Anything, meta.S3Bucket, meta.S3Key, int64(900)).Return("https://signed/doc.pdf", nil)

	hardErr := &analysis.Error{Code: analysis.CodeHTTPError, Message: "POST returned status 500", Status: 500}
	m.analyzer.On("Analyze", mock.Anything, mock.Anything, mock.Anything).Return(nil, hardErr)
	m.extractor.On("Extract", mock.Anything, mock.Anything).Return(extractionOutput(), nil)

	m.docs.On("UpdateAnalysis", mock.Anything, doc.ID, domain.AnalysisStatusFailed, mock.Anything, mock.Anything).Return(nil)
	m.users.On("GetByID", mock.Anything, doc.CreatedBy).Return(owner, nil)
	m.email.On("SendAnalysisFailed", mock.Anything, owner.Email, owner.FullName, doc.Name, mock.Anything).Return(nil)

	err := m.service().AnalyzeDocument(context.Background(), doc)
	require.Error(t, err)
	assert.True(t, analysis.IsCode(err, analysis.CodeHTTPError))

	m.offers.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	m.docs.AssertExpectations(t)
	m.email.AssertExpectations(t)
}

func TestAnalyzeDocument_ExtractionFailureContinues(t *testing.T) {
	m := newPipelineMocks()
	doc, meta, owner := pipelineFixtures()

	m.docs.On("IncrementAttempts", mock.Anything, doc.ID).Return(nil)
	m.docs.On("UpdateAnalysis", mock.Anything, doc.ID, domain.AnalysisStatusProcessing, "", mock.Anything).Return(nil)
	m.files.On("GetByID", mock.Anything, doc.FileID).Return(meta, nil)
	m.storage.On("Download", mock.Anything, meta.S3Bucket, meta.S3Key).Return([]byte("pdf-bytes"), nil)
	m.storage.On("GetPresignedURL", mock.Anything, meta.S3Bucket, meta.S3Key, int64(900)).Return("https://signed/doc.pdf", nil)
	m.analyzer.On("Analyze", mock.Anything, mock.Anything, mock.Anything).Return(analyzerResult(), nil)
	m.extractor.On("Extract", mock.Anything, mock.Anything).Return(nil, errors.New("model unavailable"))

	var saved *domain.OfferRecord
	m.offers.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		saved = args.Get(1).(*domain.OfferRecord)
	}).Return(nil)
	m.docs.On("UpdateAnalysis", mock.Anything, doc.ID, domain.AnalysisStatusCompleted, "", mock.Anything).Return(nil)
	m.users.On("GetByID", mock.Anything, doc.CreatedBy).Return(owner, nil)
	m.email.On("SendAnalysisCompleted", mock.Anything, owner.Email, owner.FullName, doc.Name).Return(nil)

	err := m.service().AnalyzeDocument(context.Background(), doc)
	require.NoError(t, err)

	require.NotNil(t, saved)
	assert.Empty(t, saved.ExtractorModel)

	// Without an extraction the hard-required fields are missing, so the
	// grade is low.
	assert.Equal(t, domain.ConfidenceLow, saved.ExtractionConfidence)

	var missing []string
	require.NoError(t, json.Unmarshal(saved.MissingFields, &missing))
	assert.Contains(t, missing, "insured")
	assert.Contains(t, missing, "total_premium_after_discounts")
}

func TestAnalyzeDocument_BothSourcesDead(t *testing.T) {
	m := newPipelineMocks()
	doc, meta, owner := pipelineFixtures()

	m.docs.On("IncrementAttempts", mock.Anything, doc.ID).Return(nil)
	m.docs.On("UpdateAnalysis", mock.Anything, doc.ID, domain.AnalysisStatusProcessing, "", mock.Anything).Return(nil)
	m.files.On("GetByID", mock.Anything, doc.FileID).Return(meta, nil)
	// Not a real PDF, so the local extraction fallback has nothing to work with.
	m.storage.On("Download", mock.Anything, meta.S3Bucket, meta.S3Key).Return([]byte("junk"), nil)
	m.storage.On("GetPresignedURL", mock.Anything, meta.S3Bucket, meta.S3Key, int64(900)).Return("https://signed/doc.pdf", nil)

	taskErr := &analysis.Error{Code: analysis.CodeTaskFailed, Message: "remote analysis reported failure"}
	m.analyzer.On("Analyze", mock.Anything, mock.Anything, mock.Anything).Return(nil, taskErr)
	m.extractor.On("Extract", mock.Anything, mock.Anything).Return(nil, errors.New("model unavailable"))

	m.docs.On("UpdateAnalysis", mock.Anything, doc.ID, domain.AnalysisStatusFailed, mock.Anything, mock.Anything).Return(nil)
	m.users.On("GetByID", mock.Anything, doc.CreatedBy).Return(owner, nil)
	m.email.On("SendAnalysisFailed", mock.Anything, owner.Email, owner.FullName, doc.Name, mock.Anything).Return(nil)

	err := m.service().AnalyzeDocument(context.Background(), doc)
	require.Error(t, err)

	m.offers.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	m.docs.AssertExpectations(t)
}

func TestAnalyzeDocument_NoAnalyzerConfigured(t *testing.T) {
	m := newPipelineMocks()
	doc, meta, owner := pipelineFixtures()

	svc := service.NewOfferService(
		m.docs, m.files, m.offers, m.users, m.storage,
		nil, // analyzer unconfigured
		m.extractor, m.email,
		config.S3Config{Bucket: "offers", PresignExpiry: 900},
		config.AnalyzerConfig{},
	)

	m.docs.On("IncrementAttempts", mock.Anything, doc.ID).Return(nil)
	m.docs.On("UpdateAnalysis", mock.Anything, doc.ID, domain.AnalysisStatusProcessing, "", mock.Anything).Return(nil)
	m.files.On("GetByID", mock.Anything, doc.FileID).Return(meta, nil)
	// The local fallback cannot parse junk bytes, but the AI extraction
	// alone is enough to build an offer.
	m.storage.On("Download", mock.Anything, meta.S3Bucket, meta.S3Key).Return([]byte("junk"), nil)
	m.extractor.On("Extract", mock.Anything, mock.Anything).Return(extractionOutput(), nil)

	m.offers.On("Create", mock.Anything, mock.Anything).Return(nil)
	m.docs.On("UpdateAnalysis", mock.Anything, doc.ID, domain.AnalysisStatusCompleted, "", mock.Anything).Return(nil)
	m.users.On("GetByID", mock.Anything, doc.CreatedBy).Return(owner, nil)
	m.email.On("SendAnalysisCompleted", mock.Anything, owner.Email, owner.FullName, doc.Name).Return(nil)

	err := svc.AnalyzeDocument(context.Background(), doc)
	require.NoError(t, err)

	m.analyzer.AssertNotCalled(t, "Analyze", mock.Anything, mock.Anything, mock.Anything)
	m.storage.AssertNotCalled(t, "GetPresignedURL", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	m.offers.AssertExpectations(t)
}
