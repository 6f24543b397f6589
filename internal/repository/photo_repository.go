package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/defect-track/internal/domain"
)

// PhotoRepository persists defect photo metadata; the image bytes live
// on disk under the uploads directory.
type PhotoRepository interface {
	Create(ctx context.Context, photo *domain.DefectPhoto) error
	GetByID(ctx context.Context, photoID string) (*domain.DefectPhoto, error)
	ListByDefect(ctx context.Context, defectID string) ([]domain.DefectPhoto, error)
	Delete(ctx context.Context, photoID string) error
}

type photoRepository struct {
	pool *pgxpool.Pool
}

// NewPhotoRepository builds repository.
func NewPhotoRepository(pool *pgxpool.Pool) PhotoRepository {
	return &photoRepository{pool: pool}
}

func (r *photoRepository) Create(ctx context.Context, photo *domain.DefectPhoto) error {
	const query = `
        INSERT INTO defect_photos (id, order_id, user_id, file_path, file_name, file_size, mime_type, created_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,NOW())
        RETURNING created_at`
	return r.pool.QueryRow(ctx, query,
		photo.ID,
		photo.DefectID,
		photo.UserID,
		photo.FilePath,
		photo.FileName,
		photo.FileSize,
		photo.MimeType,
	).Scan(&photo.CreatedAt)
}

func (r *photoRepository) GetByID(ctx context.Context, photoID string) (*domain.DefectPhoto, error) {
	const query = `
        SELECT id, order_id, user_id, file_path, file_name, file_size, mime_type, created_at
        FROM defect_photos WHERE id=$1`
	var photo domain.DefectPhoto
	if err := r.pool.QueryRow(ctx, query, photoID).Scan(
		&photo.ID,
		&photo.DefectID,
		&photo.UserID,
		&photo.FilePath,
		&photo.FileName,
		&photo.FileSize,
		&photo.MimeType,
		&photo.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &photo, nil
}

func (r *photoRepository) ListByDefect(ctx context.Context, defectID string) ([]domain.DefectPhoto, error) {
	const query = `
        SELECT id, order_id, user_id, file_path, file_name, file_size, mime_type, created_at
        FROM defect_photos WHERE order_id=$1 ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, defectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.DefectPhoto
	for rows.Next() {
		var photo domain.DefectPhoto
		if err := rows.Scan(
			&photo.ID,
			&photo.DefectID,
			&photo.UserID,
			&photo.FilePath,
			&photo.FileName,
			&photo.FileSize,
			&photo.MimeType,
			&photo.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, photo)
	}
	return result, rows.Err()
}

func (r *photoRepository) Delete(ctx context.Context, photoID string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM defect_photos WHERE id=$1`, photoID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
