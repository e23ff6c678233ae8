package media

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/ganeswar07/WatchWonders-Backend/internal/apperror"
)

// Staging owns the temp directory uploads are written to before they reach
// the store. Every staged file must end in Remove, on success or failure.
type Staging struct {
	dir      string
	maxBytes int64
}

// NewStaging creates dir if needed. maxBytes <= 0 disables the size limit.
func NewStaging(dir string, maxBytes int64) (*Staging, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("staging: creating %s: %w", dir, err)
	}
	return &Staging{dir: dir, maxBytes: maxBytes}, nil
}

func (s *Staging) Dir() string {
	return s.dir
}

// Save copies r into a new temp file that keeps the extension of
// originalName and returns its path. A partial file is removed on error.
func (s *Staging) Save(r io.Reader, originalName string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filepath.Base(originalName)))
	path := filepath.Join(s.dir, uuid.NewString()+ext)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return "", fmt.Errorf("staging: creating temp file: %w", err)
	}

	src := r
	if s.maxBytes > 0 {
		src = io.LimitReader(r, s.maxBytes+1)
	}
	n, err := io.Copy(f, src)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		return "", fmt.Errorf("staging: writing temp file: %w", err)
	}
	if s.maxBytes > 0 && n > s.maxBytes {
		os.Remove(path)
		return "", apperror.ValidationFailed("file", fmt.Sprintf("%s exceeds the upload size limit", filepath.Base(originalName)))
	}
	return path, nil
}

// Remove deletes a staged file. Removing a missing file is not an error.
func (s *Staging) Remove(path string) error {
	if path == "" {
		return nil
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("staging: removing %s: %w", path, err)
	}
	return nil
}

// Exists reports whether a staged file is still on disk.
func (s *Staging) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
