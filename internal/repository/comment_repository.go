package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/defect-track/internal/domain"
)

// CommentRepository persists defect comments.
type CommentRepository interface {
	Create(ctx context.Context, comment *domain.DefectComment) error
	GetByID(ctx context.Context, defectID, commentID string) (*domain.DefectComment, error)
	ListByDefect(ctx context.Context, defectID string) ([]domain.DefectComment, error)
	Update(ctx context.Context, comment *domain.DefectComment) error
	Delete(ctx context.Context, commentID string) error
}

type commentRepository struct {
	pool *pgxpool.Pool
}

// NewCommentRepository builds repository.
func NewCommentRepository(pool *pgxpool.Pool) CommentRepository {
	return &commentRepository{pool: pool}
}

func (r *commentRepository) Create(ctx context.Context, comment *domain.DefectComment) error {
	const query = `
        INSERT INTO defect_comments (id, order_id, user_id, comment_text, created_at, updated_at)
        VALUES ($1,$2,$3,$4,NOW(),NOW())
        RETURNING created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		comment.ID,
		comment.DefectID,
		comment.UserID,
		comment.Body,
	).Scan(&comment.CreatedAt, &comment.UpdatedAt)
}

func (r *commentRepository) GetByID(ctx context.Context, defectID, commentID string) (*domain.DefectComment, error) {
	const query = `
        SELECT id, order_id, user_id, comment_text, created_at, updated_at
        FROM defect_comments WHERE id=$1 AND order_id=$2`
	var comment domain.DefectComment
	if err := r.pool.QueryRow(ctx, query, commentID, defectID).Scan(
		&comment.ID,
		&comment.DefectID,
		&comment.UserID,
		&comment.Body,
		&comment.CreatedAt,
		&comment.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &comment, nil
}

// ListByDefect returns comments ascending by creation, thread order.
func (r *commentRepository) ListByDefect(ctx context.Context, defectID string) ([]domain.DefectComment, error) {
	const query = `
        SELECT id, order_id, user_id, comment_text, created_at, updated_at
        FROM defect_comments WHERE order_id=$1 ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query, defectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.DefectComment
	for rows.Next() {
		var comment domain.DefectComment
		if err := rows.Scan(
			&comment.ID,
			&comment.DefectID,
			&comment.UserID,
			&comment.Body,
			&comment.CreatedAt,
			&comment.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, comment)
	}
	return result, rows.Err()
}

func (r *commentRepository) Update(ctx context.Context, comment *domain.DefectComment) error {
	const query = `
        UPDATE defect_comments SET comment_text=$1, updated_at=NOW()
        WHERE id=$2
        RETURNING updated_at`
	return r.pool.QueryRow(ctx, query, comment.Body, comment.ID).Scan(&comment.UpdatedAt)
}

func (r *commentRepository) Delete(ctx context.Context, commentID string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM defect_comments WHERE id=$1`, commentID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
