package handler

// Every response shares one of two envelopes:
//
//	success: {"statusCode": 200, "data": ..., "message": "...", "success": true}
//	error:   {"statusCode": 404, "success": false, "message": "...", "errors": [...]}
//
// Handlers never pick status codes for failures themselves; they return
// whatever the service gave them to writeError, which maps the apperror
// sentinel in the chain to a status.

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/ganeswar07/WatchWonders-Backend/internal/apperror"
)

const internalErrorMessage = "An internal error occurred"

// Response is the success envelope.
type Response struct {
	StatusCode int    `json:"statusCode"`
	Data       any    `json:"data"`
	Message    string `json:"message"`
	Success    bool   `json:"success"`
}

// ErrorResponse is the error envelope. Errors carries field-level or
// detail messages and is always present, possibly empty.
type ErrorResponse struct {
	StatusCode int      `json:"statusCode"`
	Success    bool     `json:"success"`
	Message    string   `json:"message"`
	Errors     []string `json:"errors"`
}

// writeJSON sends v as JSON with the given status code. Headers must be set
// before WriteHeader; anything after is ignored.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Headers are gone already; all that is left is to log.
		slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
	}
}

// writeOK wraps data in the success envelope.
func writeOK(w http.ResponseWriter, status int, data any, message string) {
	writeJSON(w, status, Response{
		StatusCode: status,
		Data:       data,
		Message:    message,
		Success:    true,
	})
}

// statusFor maps the apperror sentinel found in err's chain to an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, apperror.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, apperror.ErrUnauthenticated), errors.Is(err, apperror.ErrTokenReuse):
		return http.StatusUnauthorized
	case errors.Is(err, apperror.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, apperror.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperror.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, apperror.ErrRateLimited):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// WriteError renders err in the error envelope. 5xx responses only ever
// carry a generic message; the cause stays in the logs.
func WriteError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	resp := ErrorResponse{
		StatusCode: status,
		Message:    internalErrorMessage,
		Errors:     []string{},
	}

	var appErr *apperror.AppError
	if status < http.StatusInternalServerError && errors.As(err, &appErr) {
		resp.Message = appErr.Message
		if appErr.Field != "" {
			resp.Errors = append(resp.Errors, appErr.Field+": "+appErr.Message)
		}
		resp.Errors = append(resp.Errors, appErr.Details...)
	}

	writeJSON(w, status, resp)
}

// NewErrorWriter returns a WriteError that also logs: warn for 4xx, error
// for 5xx. Middleware outside this package uses it to render failures.
func NewErrorWriter(logger *slog.Logger) func(http.ResponseWriter, error) {
	return func(w http.ResponseWriter, err error) {
		logError(logger, nil, err)
		WriteError(w, err)
	}
}

func logError(logger *slog.Logger, r *http.Request, err error) {
	status := statusFor(err)
	attrs := []slog.Attr{
		slog.Int("status", status),
		slog.String("error", err.Error()),
	}
	if r != nil {
		attrs = append(attrs, slog.String("method", r.Method), slog.String("path", r.URL.Path))
	}
	level := slog.LevelWarn
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	logger.LogAttrs(contextOf(r), level, "request failed", attrs...)
}
