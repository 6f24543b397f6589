package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/defect-track/internal/access"
	"github.com/spec-kit/defect-track/internal/domain"
	"github.com/spec-kit/defect-track/internal/repository"
	"github.com/spec-kit/defect-track/pkg/errorutil"
)

const maxCommentLength = 5000

// CommentService manages defect comment threads.
type CommentService struct {
	comments repository.CommentRepository
	defects  *DefectService
}

// NewCommentService constructs the service.
func NewCommentService(comments repository.CommentRepository, defects *DefectService) *CommentService {
	return &CommentService{comments: comments, defects: defects}
}

// Create appends a comment to a defect the actor can view. The bare
// "user" role may not comment.
func (s *CommentService) Create(ctx context.Context, actor access.Actor, defectID, body string) (*domain.DefectComment, error) {
	if !access.CanComment(actor) {
		return nil, errorutil.NewForbidden("accounts with only the user role cannot comment")
	}
	if err := validateCommentBody(body); err != nil {
		return nil, err
	}
	if _, err := s.defects.Get(ctx, actor, defectID); err != nil {
		return nil, err
	}

	comment := &domain.DefectComment{
		ID:       uuid.NewString(),
		DefectID: defectID,
		UserID:   actor.ID,
		Body:     strings.TrimSpace(body),
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, errorutil.MapError(err)
	}
	return comment, nil
}

// List returns the comment thread ascending by creation time.
func (s *CommentService) List(ctx context.Context, actor access.Actor, defectID string) ([]domain.DefectComment, error) {
	if _, err := s.defects.Get(ctx, actor, defectID); err != nil {
		return nil, err
	}
	comments, err := s.comments.ListByDefect(ctx, defectID)
	if err != nil {
		return nil, errorutil.MapError(err)
	}
	return comments, nil
}

// Update edits a comment body. Only the author or an admin may edit.
func (s *CommentService) Update(ctx context.Context, actor access.Actor, defectID, commentID, body string) (*domain.DefectComment, error) {
	if err := validateCommentBody(body); err != nil {
		return nil, err
	}
	comment, err := s.loadComment(ctx, defectID, commentID)
	if err != nil {
		return nil, err
	}
	if comment.UserID != actor.ID && !actor.Roles.Has(domain.RoleAdmin) {
		return nil, errorutil.NewForbidden("no permission to edit this comment")
	}
	comment.Body = strings.TrimSpace(body)
	if err := s.comments.Update(ctx, comment); err != nil {
		return nil, errorutil.MapError(err)
	}
	return comment, nil
}

// Delete removes a comment. Only the author or an admin may delete.
func (s *CommentService) Delete(ctx context.Context, actor access.Actor, defectID, commentID string) error {
	comment, err := s.loadComment(ctx, defectID, commentID)
	if err != nil {
		return err
	}
	if comment.UserID != actor.ID && !actor.Roles.Has(domain.RoleAdmin) {
		return errorutil.NewForbidden("no permission to delete this comment")
	}
	if err := s.comments.Delete(ctx, comment.ID); err != nil {
		return errorutil.MapError(err)
	}
	return nil
}

func (s *CommentService) loadComment(ctx context.Context, defectID, commentID string) (*domain.DefectComment, error) {
	comment, err := s.comments.GetByID(ctx, defectID, commentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errorutil.NewNotFound("comment", map[string]any{"comment_id": commentID})
		}
		return nil, errorutil.MapError(err)
	}
	return comment, nil
}

func validateCommentBody(body string) error {
	trimmed := strings.TrimSpace(body)
	if trimmed == "" {
		return errorutil.NewValidationError("comment must not be empty", nil)
	}
	if len(trimmed) > maxCommentLength {
		return errorutil.NewValidationError("comment too long", map[string]any{"max_length": maxCommentLength})
	}
	return nil
}
