package dto

import (
	"time"

	"github.com/spec-kit/defect-track/internal/domain"
)

// CommentRequest payload for creating or updating a comment.
type CommentRequest struct {
	Body string `json:"body"`
}

// CommentResponse public comment shape.
type CommentResponse struct {
	ID        string    `json:"id"`
	DefectID  string    `json:"defect_id"`
	UserID    string    `json:"user_id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewCommentResponse maps a domain comment.
func NewCommentResponse(comment *domain.DefectComment) CommentResponse {
	return CommentResponse{
		ID:        comment.ID,
		DefectID:  comment.DefectID,
		UserID:    comment.UserID,
		Body:      comment.Body,
		CreatedAt: comment.CreatedAt,
		UpdatedAt: comment.UpdatedAt,
	}
}
