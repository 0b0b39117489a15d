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

type documentRepo struct {
	db *sqlx.DB
}

// NewDocumentRepo creates a new PostgreSQL-backed DocumentRepository.
func NewDocumentRepo(db *sqlx.DB) port.DocumentRepository {
	return &documentRepo{db: db}
}

func (r *documentRepo) Create(ctx context.Context, doc *domain.Document) error {
	if doc.ID == uuid.Nil {
		doc.ID = uuid.New()
	}
	now := time.Now().UTC()
	doc.CreatedAt = now
	doc.UpdatedAt = now
	if doc.AnalysisStatus == "" {
		doc.AnalysisStatus = domain.AnalysisStatusPending
	}

	query := `INSERT INTO documents (id, file_id, name, product_hint, analysis_status,
		analysis_error, analysis_attempts, analyzed_at, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := r.db.ExecContext(ctx, query,
		doc.ID, doc.FileID, doc.Name, doc.ProductHint, doc.AnalysisStatus,
		doc.AnalysisError, doc.AnalysisAttempts, doc.AnalyzedAt, doc.CreatedBy,
		doc.CreatedAt, doc.UpdatedAt)
	if err != nil {
		return fmt.Errorf("documentRepo.Create: %w", err)
	}
	return nil
}

func (r *documentRepo) GetByID(ctx context.Context, docID uuid.UUID) (*domain.Document, error) {
	var doc domain.Document
	err := r.db.GetContext(ctx, &doc, "SELECT * FROM documents WHERE id = $1", docID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrDocumentNotFound
		}
		return nil, fmt.Errorf("documentRepo.GetByID: %w", err)
	}
	return &doc, nil
}

func (r *documentRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID, offset, limit int) ([]domain.Document, int, error) {
	var total int
	err := r.db.GetContext(ctx, &total,
		"SELECT COUNT(*) FROM documents WHERE created_by = $1", ownerID)
	if err != nil {
		return nil, 0, fmt.Errorf("documentRepo.ListByOwner count: %w", err)
	}

	var docs []domain.Document
	err = r.db.SelectContext(ctx, &docs,
		"SELECT * FROM documents WHERE created_by = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3",
		ownerID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("documentRepo.ListByOwner: %w", err)
	}
	return docs, total, nil
}

func (r *documentRepo) UpdateAnalysis(ctx context.Context, docID uuid.UUID, status domain.AnalysisStatus, analysisError string, analyzedAt *time.Time) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE documents SET analysis_status = $1, analysis_error = $2, analyzed_at = $3, updated_at = $4
		WHERE id = $5`,
		status, analysisError, analyzedAt, time.Now().UTC(), docID)
	if err != nil {
		return fmt.Errorf("documentRepo.UpdateAnalysis: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrDocumentNotFound
	}
	return nil
}

func (r *documentRepo) IncrementAttempts(ctx context.Context, docID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE documents SET analysis_attempts = analysis_attempts + 1, updated_at = $1 WHERE id = $2",
		time.Now().UTC(), docID)
	if err != nil {
		return fmt.Errorf("documentRepo.IncrementAttempts: %w", err)
	}
	return nil
}

// ClaimQueued atomically moves up to limit queued documents to processing and
// returns them. SKIP LOCKED keeps concurrent workers from claiming the same
// rows.
func (r *documentRepo) ClaimQueued(ctx context.Context, limit int) ([]domain.Document, error) {
	query := `UPDATE documents SET analysis_status = 'processing', updated_at = $1
		WHERE id IN (
			SELECT id FROM documents
			WHERE analysis_status = 'queued'
			ORDER BY created_at
			LIMIT $2
			FOR UPDATE SKIP LOCKED
		)
		RETURNING *`

	var docs []domain.Document
	err := r.db.SelectContext(ctx, &docs, query, time.Now().UTC(), limit)
	if err != nil {
		return nil, fmt.Errorf("documentRepo.ClaimQueued: %w", err)
	}
	return docs, nil
}

func (r *documentRepo) Delete(ctx context.Context, docID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM documents WHERE id = $1", docID)
	if err != nil {
		return fmt.Errorf("documentRepo.Delete: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrDocumentNotFound
	}
	return nil
}
