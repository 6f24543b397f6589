package domain

import "time"

// DefectComment is a discussion entry attached to a defect.
type DefectComment struct {
	ID        string
	DefectID  string
	UserID    string
	Body      string
	CreatedAt time.Time
	UpdatedAt time.Time
}
