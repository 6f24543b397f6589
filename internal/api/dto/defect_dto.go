package dto

import (
	"time"

	"github.com/spec-kit/defect-track/internal/domain"
)

// CreateDefectRequest payload for defect creation.
type CreateDefectRequest struct {
	Items      []domain.LineItem `json:"items"`
	AssignedTo *string           `json:"assigned_to"`
}

// UpdateStatusRequest payload for status transitions.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// DefectResponse public defect shape.
type DefectResponse struct {
	ID         string              `json:"id"`
	UserID     string              `json:"user_id"`
	AssignedTo *string             `json:"assigned_to"`
	Items      []domain.LineItem   `json:"items"`
	Status     domain.DefectStatus `json:"status"`
	Total      float64             `json:"total"`
	CreatedAt  time.Time           `json:"created_at"`
	UpdatedAt  time.Time           `json:"updated_at"`
}

// NewDefectResponse maps a domain defect.
func NewDefectResponse(defect *domain.Defect) DefectResponse {
	return DefectResponse{
		ID:         defect.ID,
		UserID:     defect.UserID,
		AssignedTo: defect.AssignedTo,
		Items:      defect.Items,
		Status:     defect.Status,
		Total:      defect.Total,
		CreatedAt:  defect.CreatedAt,
		UpdatedAt:  defect.UpdatedAt,
	}
}

// DefectListResponse wraps a page of defects.
type DefectListResponse struct {
	Defects []DefectResponse `json:"defects"`
	Total   int              `json:"total"`
	Page    int              `json:"page"`
	Limit   int              `json:"limit"`
}

// StatusHistoryResponse single ledger entry.
type StatusHistoryResponse struct {
	ID        string               `json:"id"`
	DefectID  string               `json:"defect_id"`
	OldStatus *domain.DefectStatus `json:"old_status"`
	NewStatus domain.DefectStatus  `json:"new_status"`
	UserID    string               `json:"user_id"`
	CreatedAt time.Time            `json:"created_at"`
}

// NewStatusHistoryResponse maps a ledger entry.
func NewStatusHistoryResponse(entry domain.StatusHistoryEntry) StatusHistoryResponse {
	return StatusHistoryResponse{
		ID:        entry.ID,
		DefectID:  entry.DefectID,
		OldStatus: entry.OldStatus,
		NewStatus: entry.NewStatus,
		UserID:    entry.UserID,
		CreatedAt: entry.CreatedAt,
	}
}
