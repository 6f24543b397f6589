package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/defect-track/internal/access"
	"github.com/spec-kit/defect-track/internal/domain"
	"github.com/spec-kit/defect-track/internal/repository"
	"github.com/spec-kit/defect-track/internal/storage"
	"github.com/spec-kit/defect-track/pkg/errorutil"
)

// PhotoUpload carries one uploaded image.
type PhotoUpload struct {
	FileName    string
	ContentType string
	Data        []byte
}

// PhotoService manages defect photo uploads and retrieval.
type PhotoService struct {
	photos   repository.PhotoRepository
	defects  *DefectService
	store    *storage.LocalStorage
	maxBytes int64
	logger   *zap.Logger
}

// NewPhotoService constructs the service.
func NewPhotoService(photos repository.PhotoRepository, defects *DefectService, store *storage.LocalStorage, maxBytes int64, logger *zap.Logger) *PhotoService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PhotoService{photos: photos, defects: defects, store: store, maxBytes: maxBytes, logger: logger}
}

// Upload stores an image for a defect. Only admins and engineers may
// upload, and only to defects they can view.
func (s *PhotoService) Upload(ctx context.Context, actor access.Actor, defectID string, upload PhotoUpload) (*domain.DefectPhoto, error) {
	if !access.CanManagePhotos(actor) {
		return nil, errorutil.NewForbidden("only admins and engineers can upload photos")
	}
	if len(upload.Data) == 0 {
		return nil, errorutil.NewValidationError("no file was uploaded", nil)
	}
	if s.maxBytes > 0 && int64(len(upload.Data)) > s.maxBytes {
		return nil, errorutil.NewValidationError("file too large", map[string]any{"max_bytes": s.maxBytes})
	}
	if _, err := s.defects.Get(ctx, actor, defectID); err != nil {
		return nil, err
	}

	path, err := s.store.Save(upload.FileName, upload.ContentType, upload.Data)
	if err != nil {
		if errors.Is(err, storage.ErrNotImage) {
			return nil, errorutil.NewValidationError("only image uploads are allowed", nil)
		}
		return nil, errorutil.MapError(err)
	}

	photo := &domain.DefectPhoto{
		ID:       uuid.NewString(),
		DefectID: defectID,
		UserID:   actor.ID,
		FilePath: path,
		FileName: upload.FileName,
		FileSize: int64(len(upload.Data)),
		MimeType: upload.ContentType,
	}
	if err := s.photos.Create(ctx, photo); err != nil {
		if removeErr := s.store.Remove(path); removeErr != nil {
			s.logger.Warn("failed to remove orphaned upload", zap.String("path", path), zap.Error(removeErr))
		}
		return nil, errorutil.MapError(err)
	}
	return photo, nil
}

// List returns photo metadata for a viewable defect.
func (s *PhotoService) List(ctx context.Context, actor access.Actor, defectID string) ([]domain.DefectPhoto, error) {
	if _, err := s.defects.Get(ctx, actor, defectID); err != nil {
		return nil, err
	}
	photos, err := s.photos.ListByDefect(ctx, defectID)
	if err != nil {
		return nil, errorutil.MapError(err)
	}
	return photos, nil
}

// File resolves a photo for download. Access is wider than the defect
// view policy: the defect creator and the photo author also qualify.
func (s *PhotoService) File(ctx context.Context, actor access.Actor, photoID string) (*domain.DefectPhoto, error) {
	photo, err := s.loadPhoto(ctx, photoID)
	if err != nil {
		return nil, err
	}
	defect, err := s.defects.loadDefect(ctx, photo.DefectID)
	if err != nil {
		return nil, err
	}
	canView := access.CanView(actor, defect) ||
		defect.UserID == actor.ID ||
		photo.UserID == actor.ID
	if !canView {
		return nil, errorutil.NewForbidden("access denied")
	}
	if !s.store.Exists(photo.FilePath) {
		return nil, errorutil.NewNotFound("photo file", map[string]any{"photo_id": photoID})
	}
	return photo, nil
}

// Delete removes a photo record and its file. Only the author or an
// admin may delete; the file removal is best-effort.
func (s *PhotoService) Delete(ctx context.Context, actor access.Actor, defectID, photoID string) error {
	photo, err := s.loadPhoto(ctx, photoID)
	if err != nil {
		return err
	}
	if photo.DefectID != defectID {
		return errorutil.NewNotFound("photo", map[string]any{"photo_id": photoID})
	}
	if photo.UserID != actor.ID && !actor.Roles.Has(domain.RoleAdmin) {
		return errorutil.NewForbidden("no permission to delete this photo")
	}
	if err := s.photos.Delete(ctx, photo.ID); err != nil {
		return errorutil.MapError(err)
	}
	if err := s.store.Remove(photo.FilePath); err != nil {
		s.logger.Warn("failed to remove photo file", zap.String("path", photo.FilePath), zap.Error(err))
	}
	return nil
}

func (s *PhotoService) loadPhoto(ctx context.Context, photoID string) (*domain.DefectPhoto, error) {
	photo, err := s.photos.GetByID(ctx, photoID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errorutil.NewNotFound("photo", map[string]any{"photo_id": photoID})
		}
		return nil, errorutil.MapError(err)
	}
	return photo, nil
}
