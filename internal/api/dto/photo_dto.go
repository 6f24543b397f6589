package dto

import (
	"time"

	"github.com/spec-kit/defect-track/internal/domain"
)

// PhotoResponse public photo metadata shape.
type PhotoResponse struct {
	ID        string    `json:"id"`
	DefectID  string    `json:"defect_id"`
	UserID    string    `json:"user_id"`
	FileName  string    `json:"file_name"`
	FileSize  int64     `json:"file_size"`
	MimeType  string    `json:"mime_type"`
	CreatedAt time.Time `json:"created_at"`
}

// NewPhotoResponse maps a domain photo. The on-disk path stays private.
func NewPhotoResponse(photo *domain.DefectPhoto) PhotoResponse {
	return PhotoResponse{
		ID:        photo.ID,
		DefectID:  photo.DefectID,
		UserID:    photo.UserID,
		FileName:  photo.FileName,
		FileSize:  photo.FileSize,
		MimeType:  photo.MimeType,
		CreatedAt: photo.CreatedAt,
	}
}
