// Package handler turns HTTP requests into service calls and service
// results into the JSON envelopes in response.go.
//
// Handlers depend on small interfaces rather than concrete services so
// they can be tested with plain fakes.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/ganeswar07/WatchWonders-Backend/internal/apperror"
	"github.com/ganeswar07/WatchWonders-Backend/internal/auth"
	"github.com/ganeswar07/WatchWonders-Backend/internal/model"
)

// maxJSONBody bounds JSON request bodies.
const maxJSONBody = 1 << 20

// responder is embedded by every handler for logged error responses.
type responder struct {
	logger *slog.Logger
}

func (h responder) fail(w http.ResponseWriter, r *http.Request, err error) {
	logError(h.logger, r, err)
	WriteError(w, err)
}

func contextOf(r *http.Request) context.Context {
	if r == nil {
		return context.Background()
	}
	return r.Context()
}

// currentUser returns the user RequireAuth put in the context.
func currentUser(r *http.Request) (*model.User, error) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		return nil, apperror.Unauthenticated("Unauthorized request")
	}
	return user, nil
}

// decodeJSON reads a JSON body into v. An empty body leaves v untouched.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return apperror.ValidationFailed("body", "Invalid JSON body")
	}
	return nil
}

// queryInt parses an optional positive integer query parameter.
func queryInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, apperror.ValidationFailed(name, name+" must be a positive integer")
	}
	return n, nil
}

// pagination reads the page and limit query parameters.
func pagination(r *http.Request) (page, limit int, err error) {
	if page, err = queryInt(r, "page"); err != nil {
		return 0, 0, err
	}
	if limit, err = queryInt(r, "limit"); err != nil {
		return 0, 0, err
	}
	return page, limit, nil
}

// pathParam returns a required path parameter.
func pathParam(r *http.Request, name string) (string, error) {
	v := r.PathValue(name)
	if v == "" {
		return "", apperror.ValidationFailed(name, name+" is required")
	}
	return v, nil
}
