package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/defect-track/internal/domain"
)

// DefectFilter captures listing parameters.
type DefectFilter struct {
	AssignedTo *string
	Status     *domain.DefectStatus
	SortBy     string
	SortAsc    bool
	Limit      int
	Offset     int
}

var defectSortFields = map[string]struct{}{
	"created_at": {},
	"updated_at": {},
	"total":      {},
	"status":     {},
}

// DefectRepository encapsulates defect persistence.
type DefectRepository interface {
	Create(ctx context.Context, defect *domain.Defect) error
	UpdateStatus(ctx context.Context, defect *domain.Defect) error
	GetByID(ctx context.Context, id string) (*domain.Defect, error)
	ListWithFilter(ctx context.Context, filter DefectFilter) ([]domain.Defect, error)
	CountWithFilter(ctx context.Context, filter DefectFilter) (int, error)
}

type defectRepository struct {
	pool *pgxpool.Pool
}

// NewDefectRepository instantiates repository.
func NewDefectRepository(pool *pgxpool.Pool) DefectRepository {
	return &defectRepository{pool: pool}
}

func (r *defectRepository) Create(ctx context.Context, defect *domain.Defect) error {
	items, err := json.Marshal(defect.Items)
	if err != nil {
		return err
	}
	const query = `
        INSERT INTO orders (id, user_id, assigned_to, items, status, total, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`
	_, err = r.pool.Exec(ctx, query,
		defect.ID,
		defect.UserID,
		defect.AssignedTo,
		items,
		defect.Status,
		defect.Total,
		defect.CreatedAt,
		defect.UpdatedAt,
	)
	return err
}

// UpdateStatus is the sole writer of status and updated_at.
func (r *defectRepository) UpdateStatus(ctx context.Context, defect *domain.Defect) error {
	const query = `UPDATE orders SET status=$1, updated_at=$2 WHERE id=$3`
	cmd, err := r.pool.Exec(ctx, query, defect.Status, defect.UpdatedAt, defect.ID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *defectRepository) GetByID(ctx context.Context, id string) (*domain.Defect, error) {
	const query = `
        SELECT id, user_id, assigned_to, items, status, total, created_at, updated_at
        FROM orders WHERE id=$1`
	return scanDefect(r.pool.QueryRow(ctx, query, id))
}

func (r *defectRepository) ListWithFilter(ctx context.Context, filter DefectFilter) ([]domain.Defect, error) {
	clauses, args := defectFilterClauses(filter)

	sortBy := filter.SortBy
	if _, ok := defectSortFields[sortBy]; !ok {
		sortBy = "created_at"
	}
	direction := "DESC"
	if filter.SortAsc {
		direction = "ASC"
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 10
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`SELECT id, user_id, assigned_to, items, status, total, created_at, updated_at
        FROM orders WHERE %s ORDER BY %s %s LIMIT %d OFFSET %d`,
		strings.Join(clauses, " AND "), sortBy, direction, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Defect
	for rows.Next() {
		defect, err := scanDefect(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *defect)
	}
	return result, rows.Err()
}

func (r *defectRepository) CountWithFilter(ctx context.Context, filter DefectFilter) (int, error) {
	clauses, args := defectFilterClauses(filter)
	query := fmt.Sprintf(`SELECT COUNT(*) FROM orders WHERE %s`, strings.Join(clauses, " AND "))
	var count int
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func defectFilterClauses(filter DefectFilter) ([]string, []any) {
	clauses := []string{"1=1"}
	args := []any{}
	if filter.AssignedTo != nil {
		args = append(args, *filter.AssignedTo)
		clauses = append(clauses, fmt.Sprintf("assigned_to=$%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("status=$%d", len(args)))
	}
	return clauses, args
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDefect(row rowScanner) (*domain.Defect, error) {
	var (
		defect    domain.Defect
		items     []byte
		createdAt time.Time
		updatedAt time.Time
	)
	if err := row.Scan(
		&defect.ID,
		&defect.UserID,
		&defect.AssignedTo,
		&items,
		&defect.Status,
		&defect.Total,
		&createdAt,
		&updatedAt,
	); err != nil {
		return nil, err
	}
	if len(items) > 0 {
		if err := json.Unmarshal(items, &defect.Items); err != nil {
			return nil, err
		}
	}
	defect.CreatedAt = createdAt
	defect.UpdatedAt = updatedAt
	return &defect, nil
}
