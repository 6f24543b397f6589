package events

import (
	"time"

	"github.com/spec-kit/defect-track/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventDefectCreated       EventType = "defect.created"
	EventDefectStatusChanged EventType = "defect.status.changed"
	EventDefectCancelled     EventType = "defect.cancelled"
)

// Event represents a lifecycle event emitted by services. Instances
// sit in the dispatcher queue until drained; consumers copy data out.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	DefectID  string      `json:"defect_id"`
	ActorID   string      `json:"actor_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// DefectCreatedPayload payload.
type DefectCreatedPayload struct {
	UserID     string              `json:"user_id"`
	AssignedTo *string             `json:"assigned_to,omitempty"`
	Status     domain.DefectStatus `json:"status"`
	Total      float64             `json:"total"`
}

// DefectStatusChangedPayload payload.
type DefectStatusChangedPayload struct {
	UserID     string              `json:"user_id"`
	AssignedTo *string             `json:"assigned_to,omitempty"`
	OldStatus  domain.DefectStatus `json:"old_status"`
	NewStatus  domain.DefectStatus `json:"new_status"`
}

// DefectCancelledPayload payload.
type DefectCancelledPayload struct {
	UserID     string              `json:"user_id"`
	AssignedTo *string             `json:"assigned_to,omitempty"`
	OldStatus  domain.DefectStatus `json:"old_status"`
	NewStatus  domain.DefectStatus `json:"new_status"`
}
