package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/defect-track/internal/domain"
)

// StatusHistoryRepository stores the append-only status ledger.
// Entries are never updated or deleted once written.
type StatusHistoryRepository interface {
	Create(ctx context.Context, entry *domain.StatusHistoryEntry) error
	ListByDefect(ctx context.Context, defectID string, ascending bool) ([]domain.StatusHistoryEntry, error)
}

type statusHistoryRepository struct {
	pool *pgxpool.Pool
}

// NewStatusHistoryRepository builds repository.
func NewStatusHistoryRepository(pool *pgxpool.Pool) StatusHistoryRepository {
	return &statusHistoryRepository{pool: pool}
}

func (r *statusHistoryRepository) Create(ctx context.Context, entry *domain.StatusHistoryEntry) error {
	const query = `
        INSERT INTO defect_status_history (id, order_id, user_id, old_status, new_status, created_at)
        VALUES ($1,$2,$3,$4,$5,$6)`
	_, err := r.pool.Exec(ctx, query,
		entry.ID,
		entry.DefectID,
		entry.UserID,
		entry.OldStatus,
		entry.NewStatus,
		entry.CreatedAt,
	)
	return err
}

func (r *statusHistoryRepository) ListByDefect(ctx context.Context, defectID string, ascending bool) ([]domain.StatusHistoryEntry, error) {
	query := `
        SELECT id, order_id, user_id, old_status, new_status, created_at
        FROM defect_status_history WHERE order_id=$1 ORDER BY created_at DESC`
	if ascending {
		query = `
        SELECT id, order_id, user_id, old_status, new_status, created_at
        FROM defect_status_history WHERE order_id=$1 ORDER BY created_at ASC`
	}

	rows, err := r.pool.Query(ctx, query, defectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.StatusHistoryEntry
	for rows.Next() {
		var entry domain.StatusHistoryEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.DefectID,
			&entry.UserID,
			&entry.OldStatus,
			&entry.NewStatus,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}
