package domain

import "time"

// StatusHistoryEntry is an append-only record of one status
// transition. A nil OldStatus marks the entity's initial creation.
type StatusHistoryEntry struct {
	ID        string
	DefectID  string
	UserID    string
	OldStatus *DefectStatus
	NewStatus DefectStatus
	CreatedAt time.Time
}
