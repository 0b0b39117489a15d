package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"polisave/internal/config"
	"polisave/internal/domain"
	"polisave/internal/port"
	"polisave/internal/service"
	"polisave/mocks"
)

type documentMocks struct {
	docs    *mocks.MockDocumentRepo
	files   *mocks.MockFileMetaRepo
	offers  *mocks.MockOfferRepo
	storage *mocks.MockObjectStorage
}

func newDocumentMocks() *documentMocks {
	return &documentMocks{
		docs:    new(mocks.MockDocumentRepo),
		files:   new(mocks.MockFileMetaRepo),
		offers:  new(mocks.MockOfferRepo),
		storage: new(mocks.MockObjectStorage),
	}
}

func (m *documentMocks) service() service.DocumentService {
	return service.NewDocumentService(m.docs, m.files, m.offers, m.storage, config.S3Config{
		Bucket:        "offers",
		MaxFileSizeMB: 1,
	})
}

func uploadInput() service.UploadDocumentInput {
	return service.UploadDocumentInput{
		Name:        "Oferta PZU",
		ProductHint: "life",
		FileName:    "oferta_pzu.pdf",
		ContentType: "application/pdf",
		Content:     []byte("%PDF-1.4 fake"),
		UploadedBy:  uuid.New(),
	}
}

func TestDocumentService_Upload_Success(t *testing.T) {
	m := newDocumentMocks()
	input := uploadInput()

	var createdMeta *domain.FileMeta
	m.files.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		createdMeta = args.Get(1).(*domain.FileMeta)
	}).Return(nil)
	m.storage.On("Upload", mock.Anything, mock.Anything).Return(&port.UploadOutput{}, nil)
	m.files.On("UpdateStatus", mock.Anything, mock.Anything, domain.FileStatusUploaded).Return(nil)
	m.docs.On("Create", mock.Anything, mock.Anything).Return(nil)

	doc, err := m.service().Upload(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, "Oferta PZU", doc.Name)
	assert.Equal(t, "life", doc.ProductHint)
	assert.Equal(t, domain.AnalysisStatusQueued, doc.AnalysisStatus)
	assert.Equal(t, input.UploadedBy, doc.CreatedBy)

	require.NotNil(t, createdMeta)
	assert.Equal(t, domain.FileTypePDF, createdMeta.FileType)
	assert.Equal(t, "offers", createdMeta.S3Bucket)
	assert.True(t, strings.HasPrefix(createdMeta.S3Key, "documents/"+input.UploadedBy.String()+"/"))
	assert.True(t, strings.HasSuffix(createdMeta.S3Key, ".pdf"))
	assert.Equal(t, int64(len(input.Content)), createdMeta.FileSize)

	m.files.AssertExpectations(t)
	m.docs.AssertExpectations(t)
}

func TestDocumentService_Upload_NameDefaultsToFileName(t *testing.T) {
	m := newDocumentMocks()
	input := uploadInput()
	input.Name = ""

	m.files.On("Create", mock.Anything, mock.Anything).Return(nil)
	m.storage.On("Upload", mock.Anything, mock.Anything).Return(&port.UploadOutput{}, nil)
	m.files.On("UpdateStatus", mock.Anything, mock.Anything, domain.FileStatusUploaded).Return(nil)
	m.docs.On("Create", mock.Anything, mock.Anything).Return(nil)

	doc, err := m.service().Upload(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, "oferta_pzu.pdf", doc.Name)
}

func TestDocumentService_Upload_UnsupportedFileType(t *testing.T) {
	m := newDocumentMocks()
	input := uploadInput()
	input.FileName = "oferta.docx"

	_, err := m.service().Upload(context.Background(), input)
	assert.ErrorIs(t, err, domain.ErrUnsupportedFileType)

	m.files.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	m.storage.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything)
}

func TestDocumentService_Upload_FileTooLarge(t *testing.T) {
	m := newDocumentMocks()
	input := uploadInput()
	input.Content = make([]byte, (1<<20)+1)

	_, err := m.service().Upload(context.Background(), input)
	assert.ErrorIs(t, err, domain.ErrFileTooLarge)
}

func TestDocumentService_Upload_StorageFailure(t *testing.T) {
	m := newDocumentMocks()
	input := uploadInput()

	m.files.On("Create", mock.Anything, mock.Anything).Return(nil)
	m.storage.On("Upload", mock.Anything, mock.Anything).Return(nil, errors.New("s3 unavailable"))
	m.files.On("UpdateStatus", mock.Anything, mock.Anything, domain.FileStatusFailed).Return(nil)

	_, err := m.service().Upload(context.Background(), input)
	assert.ErrorIs(t, err, domain.ErrUploadFailed)

	m.docs.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	m.files.AssertExpectations(t)
}

func TestDocumentService_Delete_Success(t *testing.T) {
	m := newDocumentMocks()
	docID := uuid.New()
	fileID := uuid.New()

	doc := &domain.Document{ID: docID, FileID: fileID, AnalysisStatus: domain.AnalysisStatusCompleted}
	meta := &domain.FileMeta{ID: fileID, S3Bucket: "offers", S3Key: "documents/u/f.pdf"}

	m.docs.On("GetByID", mock.Anything, docID).Return(doc, nil)
	m.offers.On("DeleteByDocument", mock.Anything, docID).Return(nil)
	m.docs.On("Delete", mock.Anything, docID).Return(nil)
	m.files.On("GetByID", mock.Anything, fileID).Return(meta, nil)
	m.storage.On("Delete", mock.Anything, "offers", "documents/u/f.pdf").Return(nil)
	m.files.On("UpdateStatus", mock.Anything, fileID, domain.FileStatusDeleted).Return(nil)

	require.NoError(t, m.service().Delete(context.Background(), docID))

	m.docs.AssertExpectations(t)
	m.offers.AssertExpectations(t)
	m.storage.AssertExpectations(t)
}

func TestDocumentService_Delete_RefusesWhileProcessing(t *testing.T) {
	m := newDocumentMocks()
	docID := uuid.New()

	doc := &domain.Document{ID: docID, AnalysisStatus: domain.AnalysisStatusProcessing}
	m.docs.On("GetByID", mock.Anything, docID).Return(doc, nil)

	err := m.service().Delete(context.Background(), docID)
	assert.ErrorIs(t, err, domain.ErrAnalysisInProgress)

	m.docs.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestDocumentService_Delete_S3FailureIsNotFatal(t *testing.T) {
	m := newDocumentMocks()
	docID := uuid.New()
	fileID := uuid.New()

	doc := &domain.Document{ID: docID, FileID: fileID, AnalysisStatus: domain.AnalysisStatusFailed}
	meta := &domain.FileMeta{ID: fileID, S3Bucket: "offers", S3Key: "documents/u/f.pdf"}

	m.docs.On("GetByID", mock.Anything, docID).Return(doc, nil)
	m.offers.On("DeleteByDocument", mock.Anything, docID).Return(nil)
	m.docs.On("Delete", mock.Anything, docID).Return(nil)
	m.files.On("GetByID", mock.Anything, fileID).Return(meta, nil)
	m.storage.On("Delete", mock.Anything, "offers", "documents/u/f.pdf").Return(errors.New("s3 unavailable"))
	m.files.On("UpdateStatus", mock.Anything, fileID, domain.FileStatusDeleted).Return(nil)

	assert.NoError(t, m.service().Delete(context.Background(), docID))
}

func TestDocumentService_RetryAnalysis(t *testing.T) {
	m := newDocumentMocks()
	docID := uuid.New()

	doc := &domain.Document{ID: docID, AnalysisStatus: domain.AnalysisStatusFailed}
	m.docs.On("GetByID", mock.Anything, docID).Return(doc, nil)
	m.docs.On("UpdateAnalysis", mock.Anything, docID, domain.AnalysisStatusQueued, "", mock.Anything).Return(nil)

	require.NoError(t, m.service().RetryAnalysis(context.Background(), docID))
	m.docs.AssertExpectations(t)
}

func TestDocumentService_RetryAnalysis_RefusesActiveStates(t *testing.T) {
	m := newDocumentMocks()

	for _, status := range []domain.AnalysisStatus{domain.AnalysisStatusProcessing, domain.AnalysisStatusQueued} {
		docID := uuid.New()
		m.docs.On("GetByID", mock.Anything, docID).Return(&domain.Document{ID: docID, AnalysisStatus: status}, nil)

		err := m.service().RetryAnalysis(context.Background(), docID)
		assert.ErrorIs(t, err, domain.ErrAnalysisInProgress, string(status))
	}

	m.docs.AssertNotCalled(t, "UpdateAnalysis", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
