package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"polisave/internal/domain"
	"polisave/internal/port"
)

type offerRepo struct {
	db *sqlx.DB
}

// NewOfferRepo creates a new PostgreSQL-backed OfferRepository.
func NewOfferRepo(db *sqlx.DB) port.OfferRepository {
	return &offerRepo{db: db}
}

func (r *offerRepo) Create(ctx context.Context, offer *domain.OfferRecord) error {
	if offer.ID == uuid.Nil {
		offer.ID = uuid.New()
	}
	offer.CreatedAt = time.Now().UTC()

	// A re-analysis replaces the previous offer for the document.
	query := `INSERT INTO offers (id, document_id, source_document, payload,
		extraction_confidence, missing_fields, extractor_model, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (document_id) DO UPDATE SET
			source_document = EXCLUDED.source_document,
			payload = EXCLUDED.payload,
			extraction_confidence = EXCLUDED.extraction_confidence,
			missing_fields = EXCLUDED.missing_fields,
			extractor_model = EXCLUDED.extractor_model,
			created_at = EXCLUDED.created_at`

	_, err := r.db.ExecContext(ctx, query,
		offer.ID, offer.DocumentID, offer.SourceDocument, offer.Payload,
		offer.ExtractionConfidence, offer.MissingFields, offer.ExtractorModel,
		offer.CreatedAt)
	if err != nil {
		return fmt.Errorf("offerRepo.Create: %w", err)
	}
	return nil
}

func (r *offerRepo) GetByDocument(ctx context.Context, docID uuid.UUID) (*domain.OfferRecord, error) {
	var offer domain.OfferRecord
	err := r.db.GetContext(ctx, &offer,
		"SELECT * FROM offers WHERE document_id = $1", docID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrOfferNotFound
		}
		return nil, fmt.Errorf("offerRepo.GetByDocument: %w", err)
	}
	return &offer, nil
}

func (r *offerRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID, offset, limit int) ([]domain.OfferRecord, int, error) {
	var total int
	err := r.db.GetContext(ctx, &total,
		`SELECT COUNT(*) FROM offers o
		JOIN documents d ON d.id = o.document_id
		WHERE d.created_by = $1`, ownerID)
	if err != nil {
		return nil, 0, fmt.Errorf("offerRepo.ListByOwner count: %w", err)
	}

	var offers []domain.OfferRecord
	err = r.db.SelectContext(ctx, &offers,
		`SELECT o.* FROM offers o
		JOIN documents d ON d.id = o.document_id
		WHERE d.created_by = $1
		ORDER BY o.created_at DESC LIMIT $2 OFFSET $3`,
		ownerID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("offerRepo.ListByOwner: %w", err)
	}
	return offers, total, nil
}

func (r *offerRepo) DeleteByDocument(ctx context.Context, docID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM offers WHERE document_id = $1", docID)
	if err != nil {
		return fmt.Errorf("offerRepo.DeleteByDocument: %w", err)
	}
	return nil
}
