package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/defect-track/internal/api/dto"
	"github.com/spec-kit/defect-track/internal/auth"
	"github.com/spec-kit/defect-track/internal/domain"
	"github.com/spec-kit/defect-track/internal/lifecycle"
	"github.com/spec-kit/defect-track/internal/service"
	"github.com/spec-kit/defect-track/pkg/errorutil"
)

// DefectsHandler exposes the defect lifecycle endpoints.
type DefectsHandler struct {
	defects *service.DefectService
}

// NewDefectsHandler constructs handler.
func NewDefectsHandler(defects *service.DefectService) *DefectsHandler {
	return &DefectsHandler{defects: defects}
}

// Create handles POST /defects.
func (h *DefectsHandler) Create(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return errorutil.NewUnauthorized("authentication required")
	}

	var req dto.CreateDefectRequest
	if err := c.BodyParser(&req); err != nil {
		return errorutil.NewValidationError("invalid payload", nil)
	}

	defect, err := h.defects.Create(c.UserContext(), actor, lifecycle.CreateInput{
		Items:      req.Items,
		AssignedTo: req.AssignedTo,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewDefectResponse(defect)})
}

// List handles GET /defects.
func (h *DefectsHandler) List(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return errorutil.NewUnauthorized("authentication required")
	}

	filter := service.DefectListFilter{
		SortBy:  c.Query("sort_by", "created_at"),
		SortAsc: strings.EqualFold(c.Query("order"), "asc"),
		Page:    queryInt(c, "page", 1),
		Limit:   queryInt(c, "limit", 20),
	}
	if raw := c.Query("status"); raw != "" {
		status := domain.DefectStatus(raw)
		if !status.Valid() {
			return errorutil.NewValidationError("unknown status", map[string]any{"status": raw})
		}
		filter.Status = &status
	}

	defects, total, err := h.defects.List(c.UserContext(), actor, filter)
	if err != nil {
		return err
	}

	out := make([]dto.DefectResponse, 0, len(defects))
	for i := range defects {
		out = append(out, dto.NewDefectResponse(&defects[i]))
	}
	return c.JSON(fiber.Map{"data": dto.DefectListResponse{
		Defects: out,
		Total:   total,
		Page:    filter.Page,
		Limit:   filter.Limit,
	}})
}

// Get handles GET /defects/:id.
func (h *DefectsHandler) Get(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return errorutil.NewUnauthorized("authentication required")
	}

	defect, err := h.defects.Get(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewDefectResponse(defect)})
}

// UpdateStatus handles PATCH /defects/:id/status.
func (h *DefectsHandler) UpdateStatus(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return errorutil.NewUnauthorized("authentication required")
	}

	var req dto.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return errorutil.NewValidationError("invalid payload", nil)
	}
	if req.Status == "" {
		return errorutil.NewValidationError("status required", nil)
	}

	defect, err := h.defects.UpdateStatus(c.UserContext(), actor, c.Params("id"), domain.DefectStatus(req.Status))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewDefectResponse(defect)})
}

// Cancel handles DELETE /defects/:id.
func (h *DefectsHandler) Cancel(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return errorutil.NewUnauthorized("authentication required")
	}

	defect, err := h.defects.Cancel(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewDefectResponse(defect)})
}

// History handles GET /defects/:id/history.
func (h *DefectsHandler) History(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return errorutil.NewUnauthorized("authentication required")
	}

	ascending := strings.EqualFold(c.Query("order"), "asc")
	entries, err := h.defects.History(c.UserContext(), actor, c.Params("id"), ascending)
	if err != nil {
		return err
	}

	out := make([]dto.StatusHistoryResponse, 0, len(entries))
	for _, entry := range entries {
		out = append(out, dto.NewStatusHistoryResponse(entry))
	}
	return c.JSON(fiber.Map{"data": out})
}
