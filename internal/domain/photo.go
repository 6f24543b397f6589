package domain

import "time"

// DefectPhoto references an uploaded image stored on disk.
type DefectPhoto struct {
	ID        string
	DefectID  string
	UserID    string
	FilePath  string
	FileName  string
	FileSize  int64
	MimeType  string
	CreatedAt time.Time
}
