// Package storage keeps uploaded photo bytes on the local filesystem.
package storage

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ErrNotImage rejects uploads whose content type is not image/*.
var ErrNotImage = errors.New("only image uploads are allowed")

// LocalStorage writes files under a single uploads directory, one
// uuid-named file per upload.
type LocalStorage struct {
	dir string
}

// NewLocalStorage ensures the uploads directory exists.
func NewLocalStorage(dir string) (*LocalStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &LocalStorage{dir: dir}, nil
}

// Save stores data under a generated name, keeping the original
// extension, and returns the file path.
func (s *LocalStorage) Save(originalName, contentType string, data []byte) (string, error) {
	if !strings.HasPrefix(contentType, "image/") {
		return "", ErrNotImage
	}
	name := uuid.NewString() + filepath.Ext(originalName)
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// Exists reports whether the stored file is still on disk.
func (s *LocalStorage) Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Remove deletes a stored file. A missing file is not an error.
func (s *LocalStorage) Remove(path string) error {
	err := os.Remove(path)
	if err != nil && os.IsNotExist(err) {
		return nil
	}
	return err
}
