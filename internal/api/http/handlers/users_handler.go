package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/defect-track/internal/api/dto"
	"github.com/spec-kit/defect-track/internal/auth"
	"github.com/spec-kit/defect-track/internal/service"
	"github.com/spec-kit/defect-track/pkg/errorutil"
)

// UsersHandler exposes account and auth endpoints.
type UsersHandler struct {
	auth *service.AuthService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(authService *service.AuthService) *UsersHandler {
	return &UsersHandler{auth: authService}
}

// Register handles POST /auth/register.
func (h *UsersHandler) Register(c *fiber.Ctx) error {
	var req dto.UserRegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return errorutil.NewValidationError("invalid payload", nil)
	}
	if req.Email == "" || req.Password == "" || req.Name == "" {
		return errorutil.NewValidationError("name, email, password required", nil)
	}

	user, token, exp, err := h.auth.Register(c.UserContext(), req.Name, req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": dto.AuthResponse{User: dto.NewUserResponse(user), Token: token, ExpiresAt: exp},
	})
}

// Login handles POST /auth/login.
func (h *UsersHandler) Login(c *fiber.Ctx) error {
	var req dto.UserLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return errorutil.NewValidationError("invalid payload", nil)
	}
	if req.Email == "" || req.Password == "" {
		return errorutil.NewValidationError("email and password required", nil)
	}

	user, token, exp, err := h.auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"data": dto.AuthResponse{User: dto.NewUserResponse(user), Token: token, ExpiresAt: exp},
	})
}

// Profile handles GET /users/me.
func (h *UsersHandler) Profile(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return errorutil.NewUnauthorized("authentication required")
	}

	user, err := h.auth.Profile(c.UserContext(), actor.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponse(user)})
}

// UpdateProfile handles PATCH /users/me.
func (h *UsersHandler) UpdateProfile(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return errorutil.NewUnauthorized("authentication required")
	}

	var req dto.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return errorutil.NewValidationError("invalid payload", nil)
	}

	user, err := h.auth.UpdateProfile(c.UserContext(), actor.ID, req.Name, req.Email)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponse(user)})
}

// List handles GET /users (admin only).
func (h *UsersHandler) List(c *fiber.Ctx) error {
	limit := queryInt(c, "limit", 50)
	offset := queryInt(c, "offset", 0)

	users, err := h.auth.ListUsers(c.UserContext(), limit, offset)
	if err != nil {
		return err
	}

	out := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		out = append(out, dto.NewUserResponse(&users[i]))
	}
	return c.JSON(fiber.Map{"data": out})
}

// UpdateRoles handles PATCH /users/:id/roles (admin only).
func (h *UsersHandler) UpdateRoles(c *fiber.Ctx) error {
	targetID := c.Params("id")

	var req dto.UpdateRolesRequest
	if err := c.BodyParser(&req); err != nil {
		return errorutil.NewValidationError("invalid payload", nil)
	}

	user, err := h.auth.UpdateRoles(c.UserContext(), targetID, req.Roles)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponse(user)})
}

func queryInt(c *fiber.Ctx, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	val, err := strconv.Atoi(raw)
	if err != nil || val < 0 {
		return fallback
	}
	return val
}
