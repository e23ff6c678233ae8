// Package service holds the business rules of the API. Handlers call into
// it with already-parsed input; it talks to the repositories and the media
// store and returns apperror kinds the HTTP layer knows how to render.
package service

import (
	"regexp"
	"strings"

	"github.com/ganeswar07/WatchWonders-Backend/internal/apperror"
	"github.com/ganeswar07/WatchWonders-Backend/internal/repository"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

var (
	emailPattern    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	userNamePattern = regexp.MustCompile(`^[a-z0-9_]+$`)
)

// requireOwner is the authorization check layered on top of authentication:
// only the owner of a resource may change it.
func requireOwner(actorID, ownerID, what string) error {
	if actorID == "" || actorID != ownerID {
		return apperror.Forbidden("You are not allowed to modify this " + what)
	}
	return nil
}

// required returns a validation error naming field when value is blank.
func required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return apperror.ValidationFailed(field, field+" is required")
	}
	return nil
}

// pageOptions turns 1-based page/limit query values into list options.
// It returns the normalised page and limit alongside.
func pageOptions(page, limit int) (repository.ListOptions, int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return repository.ListOptions{Limit: limit, Offset: (page - 1) * limit}, page, limit
}
