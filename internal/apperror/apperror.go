// Package apperror defines the error kinds shared by every layer.
//
// Services and repositories return these (usually wrapped with %w);
// the HTTP layer maps the sentinel found in the chain to a status code.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrValidation      = errors.New("Validation Error")
	ErrConflict        = errors.New("conflict")
	ErrForbidden       = errors.New("forbidden")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrTokenReuse      = errors.New("refresh token reuse detected")
	ErrUpload          = errors.New("upload failed")
	ErrPersistence     = errors.New("persistence failed")
	ErrRateLimited     = errors.New("too many requests")
)

type AppError struct {
	Err     error    // sentinel kind
	Message string   // Human-readable error message
	Field   string   // Optional: field causing the error
	Details []string // Optional: extra messages rendered in the "errors" array
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

func Conflict(resource, id string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: fmt.Sprintf("%s conflict with id %s", resource, id),
	}
}

// Forbidden returns an AppError indicating the caller lacks permission.
// HTTP handlers map this to 403 Forbidden.
func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: message,
	}
}

// Unauthenticated covers missing, malformed, expired and unknown-subject tokens.
func Unauthenticated(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthenticated,
		Message: message,
	}
}

// TokenReuse is returned when a refresh token that is no longer the stored
// one is presented. The session it belonged to has already been revoked.
func TokenReuse() *AppError {
	return &AppError{
		Err:     ErrTokenReuse,
		Message: "refresh token is expired or used",
	}
}

// Upload wraps a media store failure. cause stays in the chain for logs;
// clients only ever see Message.
func Upload(what string, cause error) *AppError {
	return &AppError{
		Err:     errors.Join(ErrUpload, cause),
		Message: fmt.Sprintf("error while uploading %s", what),
	}
}

func Persistence(what string, cause error) *AppError {
	return &AppError{
		Err:     errors.Join(ErrPersistence, cause),
		Message: fmt.Sprintf("something went wrong while saving %s", what),
	}
}

func RateLimited(message string) *AppError {
	return &AppError{
		Err:     ErrRateLimited,
		Message: message,
	}
}

// WithDetails returns a copy of e carrying the given detail messages.
func (e *AppError) WithDetails(details ...string) *AppError {
	cp := *e
	cp.Details = append(append([]string(nil), e.Details...), details...)
	return &cp
}
