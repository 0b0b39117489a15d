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

type fileRepo struct {
	db *sqlx.DB
}

// NewFileMetaRepo creates a new PostgreSQL-backed FileMetaRepository.
func NewFileMetaRepo(db *sqlx.DB) port.FileMetaRepository {
	return &fileRepo{db: db}
}

func (r *fileRepo) Create(ctx context.Context, meta *domain.FileMeta) error {
	if meta.ID == uuid.Nil {
		meta.ID = uuid.New()
	}
	now := time.Now().UTC()
	meta.CreatedAt = now
	meta.UpdatedAt = now

	query := `INSERT INTO files (id, uploaded_by, file_name, original_name, file_type, file_size,
		s3_bucket, s3_key, content_type, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := r.db.ExecContext(ctx, query,
		meta.ID, meta.UploadedBy, meta.FileName, meta.OriginalName, meta.FileType,
		meta.FileSize, meta.S3Bucket, meta.S3Key, meta.ContentType, meta.Status,
		meta.CreatedAt, meta.UpdatedAt)
	if err != nil {
		return fmt.Errorf("fileRepo.Create: %w", err)
	}
	return nil
}

func (r *fileRepo) GetByID(ctx context.Context, fileID uuid.UUID) (*domain.FileMeta, error) {
	var meta domain.FileMeta
	err := r.db.GetContext(ctx, &meta, "SELECT * FROM files WHERE id = $1", fileID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("fileRepo.GetByID: %w", err)
	}
	return &meta, nil
}

func (r *fileRepo) UpdateStatus(ctx context.Context, fileID uuid.UUID, status domain.FileStatus) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE files SET status = $1, updated_at = $2 WHERE id = $3",
		status, time.Now().UTC(), fileID)
	if err != nil {
		return fmt.Errorf("fileRepo.UpdateStatus: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *fileRepo) Delete(ctx context.Context, fileID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM files WHERE id = $1", fileID)
	if err != nil {
		return fmt.Errorf("fileRepo.Delete: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
