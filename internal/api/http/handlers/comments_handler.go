package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/defect-track/internal/api/dto"
	"github.com/spec-kit/defect-track/internal/auth"
	"github.com/spec-kit/defect-track/internal/service"
	"github.com/spec-kit/defect-track/pkg/errorutil"
)

// CommentsHandler exposes defect comment endpoints.
type CommentsHandler struct {
	comments *service.CommentService
}

// NewCommentsHandler constructs handler.
func NewCommentsHandler(comments *service.CommentService) *CommentsHandler {
	return &CommentsHandler{comments: comments}
}

// Create handles POST /defects/:id/comments.
func (h *CommentsHandler) Create(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return errorutil.NewUnauthorized("authentication required")
	}

	var req dto.CommentRequest
	if err := c.BodyParser(&req); err != nil {
		return errorutil.NewValidationError("invalid payload", nil)
	}

	comment, err := h.comments.Create(c.UserContext(), actor, c.Params("id"), req.Body)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewCommentResponse(comment)})
}

// List handles GET /defects/:id/comments.
func (h *CommentsHandler) List(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return errorutil.NewUnauthorized("authentication required")
	}

	comments, err := h.comments.List(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}

	out := make([]dto.CommentResponse, 0, len(comments))
	for i := range comments {
		out = append(out, dto.NewCommentResponse(&comments[i]))
	}
	return c.JSON(fiber.Map{"data": out})
}

// Update handles PATCH /defects/:id/comments/:commentId.
func (h *CommentsHandler) Update(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return errorutil.NewUnauthorized("authentication required")
	}

	var req dto.CommentRequest
	if err := c.BodyParser(&req); err != nil {
		return errorutil.NewValidationError("invalid payload", nil)
	}

	comment, err := h.comments.Update(c.UserContext(), actor, c.Params("id"), c.Params("commentId"), req.Body)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewCommentResponse(comment)})
}

// Delete handles DELETE /defects/:id/comments/:commentId.
func (h *CommentsHandler) Delete(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return errorutil.NewUnauthorized("authentication required")
	}

	if err := h.comments.Delete(c.UserContext(), actor, c.Params("id"), c.Params("commentId")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
