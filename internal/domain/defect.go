package domain

import "time"

// DefectStatus enumerates lifecycle states for defects.
type DefectStatus string

const (
	StatusCreated    DefectStatus = "created"
	StatusInProgress DefectStatus = "in_progress"
	StatusCompleted  DefectStatus = "completed"
	StatusCancelled  DefectStatus = "cancelled"
)

// Valid reports whether the status belongs to the enum.
func (s DefectStatus) Valid() bool {
	switch s {
	case StatusCreated, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transitions are permitted.
func (s DefectStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// LineItem is one row of a defect's work-order content.
type LineItem struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Price    float64 `json:"price"`
}

// Defect is the aggregate for tracked work orders. Cancellation is a
// terminal status, never a physical delete.
type Defect struct {
	ID         string
	UserID     string
	AssignedTo *string
	Items      []LineItem
	Status     DefectStatus
	Total      float64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// ComputeTotal sums quantity*price over items. Total is never set
// independently of the items it derives from.
func ComputeTotal(items []LineItem) float64 {
	var total float64
	for _, item := range items {
		total += item.Quantity * item.Price
	}
	return total
}
