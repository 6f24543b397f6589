package handlers

import (
	"io"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/defect-track/internal/api/dto"
	"github.com/spec-kit/defect-track/internal/auth"
	"github.com/spec-kit/defect-track/internal/service"
	"github.com/spec-kit/defect-track/pkg/errorutil"
)

// PhotosHandler exposes defect photo endpoints.
type PhotosHandler struct {
	photos *service.PhotoService
}

// NewPhotosHandler constructs handler.
func NewPhotosHandler(photos *service.PhotoService) *PhotosHandler {
	return &PhotosHandler{photos: photos}
}

// Upload handles POST /defects/:id/photos with a multipart "photo" field.
func (h *PhotosHandler) Upload(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return errorutil.NewUnauthorized("authentication required")
	}

	header, err := c.FormFile("photo")
	if err != nil {
		return errorutil.NewValidationError("no file was uploaded", nil)
	}
	file, err := header.Open()
	if err != nil {
		return errorutil.MapError(err)
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		return errorutil.MapError(err)
	}

	photo, err := h.photos.Upload(c.UserContext(), actor, c.Params("id"), service.PhotoUpload{
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewPhotoResponse(photo)})
}

// List handles GET /defects/:id/photos.
func (h *PhotosHandler) List(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return errorutil.NewUnauthorized("authentication required")
	}

	photos, err := h.photos.List(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}

	out := make([]dto.PhotoResponse, 0, len(photos))
	for i := range photos {
		out = append(out, dto.NewPhotoResponse(&photos[i]))
	}
	return c.JSON(fiber.Map{"data": out})
}

// File handles GET /photos/:id/file, streaming the stored image.
func (h *PhotosHandler) File(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return errorutil.NewUnauthorized("authentication required")
	}

	photo, err := h.photos.File(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, photo.MimeType)
	return c.SendFile(photo.FilePath)
}

// Delete handles DELETE /defects/:id/photos/:photoId.
func (h *PhotosHandler) Delete(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return errorutil.NewUnauthorized("authentication required")
	}

	if err := h.photos.Delete(c.UserContext(), actor, c.Params("id"), c.Params("photoId")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
