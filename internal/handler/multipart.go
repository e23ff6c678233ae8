package handler

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/ganeswar07/WatchWonders-Backend/internal/apperror"
)

// maxFormValue bounds a single non-file multipart field.
const maxFormValue = 64 << 10

// Stager stores an uploaded part as a temp file. It is satisfied by
// *media.Staging.
type Stager interface {
	Save(r io.Reader, originalName string) (string, error)
	Remove(path string) error
}

// uploadForm is a parsed multipart request. Only file fields listed when
// parsing are staged; others are drained and dropped.
type uploadForm struct {
	values map[string]string
	files  map[string]string
	stager Stager
}

func (f *uploadForm) value(name string) string { return strings.TrimSpace(f.values[name]) }

func (f *uploadForm) file(name string) string { return f.files[name] }

// cleanup removes every staged file. Services remove the files they were
// handed, so this only matters on early returns; Remove is idempotent.
func (f *uploadForm) cleanup() {
	for _, p := range f.files {
		_ = f.stager.Remove(p)
	}
}

// parseUpload streams a multipart body, staging the parts named in
// fileFields. The whole body is capped at maxBytes.
func parseUpload(w http.ResponseWriter, r *http.Request, stager Stager, maxBytes int64, fileFields ...string) (*uploadForm, error) {
	form := &uploadForm{
		values: map[string]string{},
		files:  map[string]string{},
		stager: stager,
	}

	if maxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	}
	mr, err := r.MultipartReader()
	if err != nil {
		return nil, apperror.ValidationFailed("body", "Expected a multipart/form-data request")
	}

	wanted := make(map[string]bool, len(fileFields))
	for _, f := range fileFields {
		wanted[f] = true
	}

	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			form.cleanup()
			return nil, uploadError(err)
		}
		if err := form.read(part, wanted); err != nil {
			part.Close()
			form.cleanup()
			return nil, err
		}
		part.Close()
	}
	return form, nil
}

func (f *uploadForm) read(part *multipart.Part, wanted map[string]bool) error {
	name := part.FormName()
	if part.FileName() == "" {
		b, err := io.ReadAll(io.LimitReader(part, maxFormValue+1))
		if err != nil {
			return uploadError(err)
		}
		if len(b) > maxFormValue {
			return apperror.ValidationFailed(name, name+" is too long")
		}
		if _, dup := f.values[name]; !dup {
			f.values[name] = string(b)
		}
		return nil
	}

	if !wanted[name] || f.files[name] != "" {
		_, err := io.Copy(io.Discard, part)
		return uploadError(err)
	}
	path, err := f.stager.Save(part, part.FileName())
	if err != nil {
		return uploadError(err)
	}
	f.files[name] = path
	return nil
}

// uploadError maps a body read failure. Errors that are already typed pass
// through; an oversized body is a validation error.
func uploadError(err error) error {
	if err == nil {
		return nil
	}
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return err
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return apperror.ValidationFailed("body", "Request body is too large")
	}
	return apperror.ValidationFailed("body", "Malformed multipart body")
}
