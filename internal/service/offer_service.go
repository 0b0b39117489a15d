package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"polisave/internal/analysis"
	"polisave/internal/classifier"
	"polisave/internal/config"
	"polisave/internal/domain"
	"polisave/internal/offer"
	"polisave/internal/pdftext"
	"polisave/internal/port"
)

// OfferService runs the analysis pipeline and serves the resulting offers.
type OfferService interface {
	AnalyzeDocument(ctx context.Context, doc *domain.Document) error
	GetByDocument(ctx context.Context, docID uuid.UUID) (*domain.OfferRecord, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID, offset, limit int) ([]domain.OfferRecord, int, error)
	DeleteByDocument(ctx context.Context, docID uuid.UUID) error
}

type offerService struct {
	docs      port.DocumentRepository
	files     port.FileMetaRepository
	offers    port.OfferRepository
	users     port.UserRepository
	storage   port.ObjectStorage
	analyzer  port.DocumentAnalyzer // nil when the remote analyzer is unconfigured
	extractor port.OfferExtractor
	email     port.EmailSender

	s3cfg       config.S3Config
	analyzerCfg config.AnalyzerConfig
}

// NewOfferService creates a new OfferService implementation.
func NewOfferService(
	docs port.DocumentRepository,
	files port.FileMetaRepository,
	offers port.OfferRepository,
	users port.UserRepository,
	storage port.ObjectStorage,
	analyzer port.DocumentAnalyzer,
	extractor port.OfferExtractor,
	email port.EmailSender,
	s3cfg config.S3Config,
	analyzerCfg config.AnalyzerConfig,
) OfferService {
	return &offerService{
		docs:        docs,
		files:       files,
		offers:      offers,
		users:       users,
		storage:     storage,
		analyzer:    analyzer,
		extractor:   extractor,
		email:       email,
		s3cfg:       s3cfg,
		analyzerCfg: analyzerCfg,
	}
}

// AnalyzeDocument drives one document through the full pipeline: download,
// remote analysis and AI extraction in parallel, classification, offer
// building, persistence. Any terminal failure marks the document failed with
// the error kind recorded; it is never left processing.
func (s *offerService) AnalyzeDocument(ctx context.Context, doc *domain.Document) error {
	_ = s.docs.IncrementAttempts(ctx, doc.ID)
	if err := s.docs.UpdateAnalysis(ctx, doc.ID, domain.AnalysisStatusProcessing, "", nil); err != nil {
		return fmt.Errorf("offerService.AnalyzeDocument: %w", err)
	}

	meta, err := s.files.GetByID(ctx, doc.FileID)
	if err != nil {
		return s.fail(ctx, doc, fmt.Errorf("loading file metadata: %w", err))
	}
	data, err := s.storage.Download(ctx, meta.S3Bucket, meta.S3Key)
	if err != nil {
		return s.fail(ctx, doc, fmt.Errorf("downloading document: %w", err))
	}

	// Remote analysis and the AI extraction are independent sources; run them
	// in parallel and reconcile afterwards.
	var (
		wg         sync.WaitGroup
		extraction *port.ExtractOutput
		extractErr error
		result     *analysis.Result
		analyzeErr error
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		extraction, extractErr = s.extractor.Extract(ctx, port.ExtractInput{
			Data:        data,
			ContentType: meta.ContentType,
			FileName:    meta.OriginalName,
			ProductHint: doc.ProductHint,
		})
	}()
	if s.analyzer != nil {
		result, analyzeErr = s.runRemoteAnalysis(ctx, doc, meta, data)
	}
	wg.Wait()

	if analyzeErr != nil && !recoverableAnalysisError(analyzeErr) {
		return s.fail(ctx, doc, analyzeErr)
	}
	if extractErr != nil {
		log.Printf("offerService.AnalyzeDocument: extraction for %s failed, continuing with sections only: %v", doc.ID, extractErr)
	}

	seg, segErr := s.classify(result, meta, data)
	if segErr != nil && (extractErr != nil || extraction == nil) {
		// Neither source produced anything usable.
		return s.fail(ctx, doc, segErr)
	}
	if segErr != nil {
		log.Printf("offerService.AnalyzeDocument: classification for %s unavailable: %v", doc.ID, segErr)
	}

	var payload map[string]any
	var model string
	if extraction != nil {
		payload = extraction.Payload
		model = extraction.Model
	}

	unified := offer.Build(offer.BuildInput{
		DocumentID:     doc.ID.String(),
		SourceDocument: doc.Name,
		Extraction:     payload,
		Segmentation:   seg,
	})

	if err := s.persist(ctx, doc, unified, model); err != nil {
		return s.fail(ctx, doc, err)
	}

	now := time.Now().UTC()
	if err := s.docs.UpdateAnalysis(ctx, doc.ID, domain.AnalysisStatusCompleted, "", &now); err != nil {
		return fmt.Errorf("offerService.AnalyzeDocument: %w", err)
	}
	log.Printf("offerService.AnalyzeDocument: document %s completed (confidence=%s, missing=%d)",
		doc.ID, unified.ExtractionConfidence, len(unified.MissingFields))
	s.notify(ctx, doc, "")
	return nil
}

// runRemoteAnalysis presigns the document for the remote analyzer and, on a
// task failure or empty result for a large PDF, degrades once: trims the
// document to the configured page limit, re-uploads it under a derived key
// and analyzes the trimmed copy. The degrade transition fires at most once.
func (s *offerService) runRemoteAnalysis(ctx context.Context, doc *domain.Document, meta *domain.FileMeta, data []byte) (*analysis.Result, error) {
	opts := &analysis.Options{DocumentID: doc.ID.String()}

	signedURL, err := s.storage.GetPresignedURL(ctx, meta.S3Bucket, meta.S3Key, s.s3cfg.PresignExpiry)
	if err != nil {
		return nil, fmt.Errorf("presigning document: %w", err)
	}

	result, err := s.analyzer.Analyze(ctx, signedURL, opts)
	if err == nil {
		return result, nil
	}
	if !degradableAnalysisError(err) || meta.FileType != domain.FileTypePDF || s.analyzerCfg.DegradePageLimit <= 0 {
		return nil, err
	}

	trimmed, trimErr := pdftext.TrimToPages(data, s.analyzerCfg.DegradePageLimit)
	if trimErr != nil || len(trimmed) == len(data) {
		return nil, err
	}
	log.Printf("offerService.runRemoteAnalysis: degrading document %s to %d pages and retrying", doc.ID, s.analyzerCfg.DegradePageLimit)

	derivedKey := strings.TrimSuffix(meta.S3Key, ".pdf") + ".trimmed.pdf"
	_, upErr := s.storage.Upload(ctx, port.UploadInput{
		Bucket:      meta.S3Bucket,
		Key:         derivedKey,
		Body:        bytes.NewReader(trimmed),
		ContentType: meta.ContentType,
		Size:        int64(len(trimmed)),
	})
	if upErr != nil {
		return nil, err
	}
	defer func() {
		if delErr := s.storage.Delete(context.WithoutCancel(ctx), meta.S3Bucket, derivedKey); delErr != nil {
			log.Printf("offerService.runRemoteAnalysis: cleanup of %s failed: %v", derivedKey, delErr)
		}
	}()

	signedURL, err = s.storage.GetPresignedURL(ctx, meta.S3Bucket, derivedKey, s.s3cfg.PresignExpiry)
	if err != nil {
		return nil, fmt.Errorf("presigning trimmed document: %w", err)
	}
	return s.analyzer.Analyze(ctx, signedURL, opts)
}

// classify produces the segmentation: block mode from the analyzer result, or
// paragraph mode from locally extracted PDF text when the analyzer is
// unconfigured or came back empty.
func (s *offerService) classify(result *analysis.Result, meta *domain.FileMeta, data []byte) (classifier.Segmentation, error) {
	if result != nil {
		return classifier.Segment(result.Pages), nil
	}
	if meta.FileType != domain.FileTypePDF {
		return classifier.Segmentation{}, fmt.Errorf("no analysis result and no local text extraction for %s files", meta.FileType)
	}
	text, pageCount, err := pdftext.Extract(data)
	if err != nil {
		return classifier.Segmentation{}, fmt.Errorf("local text extraction: %w", err)
	}
	return classifier.SegmentText(text, pageCount), nil
}

func (s *offerService) persist(ctx context.Context, doc *domain.Document, unified *domain.UnifiedOffer, model string) error {
	payload, err := json.Marshal(unified)
	if err != nil {
		return fmt.Errorf("marshaling offer: %w", err)
	}
	missing, err := json.Marshal(unified.MissingFields)
	if err != nil {
		return fmt.Errorf("marshaling missing fields: %w", err)
	}
	record := &domain.OfferRecord{
		DocumentID:           doc.ID,
		SourceDocument:       doc.Name,
		Payload:              payload,
		ExtractionConfidence: unified.ExtractionConfidence,
		MissingFields:        missing,
		ExtractorModel:       model,
	}
	if err := s.offers.Create(ctx, record); err != nil {
		return fmt.Errorf("persisting offer: %w", err)
	}
	return nil
}

// fail marks the document failed with the error recorded and notifies the
// owner. The original error is returned for the caller's log.
func (s *offerService) fail(ctx context.Context, doc *domain.Document, cause error) error {
	log.Printf("offerService.AnalyzeDocument: document %s failed: %v", doc.ID, cause)
	if err := s.docs.UpdateAnalysis(ctx, doc.ID, domain.AnalysisStatusFailed, cause.Error(), nil); err != nil {
		log.Printf("offerService.fail: marking document %s failed: %v", doc.ID, err)
	}
	s.notify(ctx, doc, cause.Error())
	return fmt.Errorf("offerService.AnalyzeDocument: %w", cause)
}

func (s *offerService) notify(ctx context.Context, doc *domain.Document, failReason string) {
	owner, err := s.users.GetByID(ctx, doc.CreatedBy)
	if err != nil {
		log.Printf("offerService.notify: loading owner of %s: %v", doc.ID, err)
		return
	}
	if failReason != "" {
		err = s.email.SendAnalysisFailed(ctx, owner.Email, owner.FullName, doc.Name, failReason)
	} else {
		err = s.email.SendAnalysisCompleted(ctx, owner.Email, owner.FullName, doc.Name)
	}
	if err != nil {
		log.Printf("offerService.notify: sending email for %s: %v", doc.ID, err)
	}
}

func (s *offerService) GetByDocument(ctx context.Context, docID uuid.UUID) (*domain.OfferRecord, error) {
	return s.offers.GetByDocument(ctx, docID)
}

func (s *offerService) ListByOwner(ctx context.Context, ownerID uuid.UUID, offset, limit int) ([]domain.OfferRecord, int, error) {
	return s.offers.ListByOwner(ctx, ownerID, offset, limit)
}

// DeleteByDocument removes a document's offer without touching the document
// itself; a subsequent retry rebuilds it.
func (s *offerService) DeleteByDocument(ctx context.Context, docID uuid.UUID) error {
	return s.offers.DeleteByDocument(ctx, docID)
}

func recoverableAnalysisError(err error) bool {
	return analysis.IsCode(err, analysis.CodeEmptyAnalysis) || analysis.IsCode(err, analysis.CodeTaskFailed)
}

func degradableAnalysisError(err error) bool {
	return analysis.IsCode(err, analysis.CodeTaskFailed) || analysis.IsCode(err, analysis.CodeEmptyAnalysis)
}
