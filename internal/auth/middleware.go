package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/ganeswar07/WatchWonders-Backend/internal/apperror"
	"github.com/ganeswar07/WatchWonders-Backend/internal/model"
)

// Cookie names shared by the middleware and the handlers that set them.
const (
	AccessTokenCookie  = "accessToken"
	RefreshTokenCookie = "refreshToken"
)

// contextKey is unexported so only this package can read or write the
// authenticated user in a request context.
type contextKey string

const userKey contextKey = "user"

// AccessVerifier validates an access token and returns its subject.
type AccessVerifier interface {
	ValidateAccess(token string) (string, error)
}

// UserLookup resolves a user id to the public projection of the user
// (no password hash, no refresh token).
type UserLookup interface {
	GetByID(ctx context.Context, id string) (*model.User, error)
}

// ErrorWriter renders an error response. The HTTP layer passes its
// envelope writer so 401s look like every other error.
type ErrorWriter func(w http.ResponseWriter, err error)

// RequireAuth rejects the request with 401 unless it carries a valid access
// token whose subject still exists. On success the resolved user is stored
// in the request context (see UserFromContext).
//
// Token lookup order: the accessToken cookie, then "Authorization: Bearer".
// When both are present the cookie wins.
func RequireAuth(tokens AccessVerifier, users UserLookup, writeErr ErrorWriter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := authenticate(r, tokens, users)
			if err != nil {
				writeErr(w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// WithUser returns a copy of ctx carrying user.
func WithUser(ctx context.Context, user *model.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// UserFromContext returns the user attached by RequireAuth.
func UserFromContext(ctx context.Context) (*model.User, bool) {
	u, ok := ctx.Value(userKey).(*model.User)
	return u, ok && u != nil
}

// UserIDFromContext is a shortcut for handlers that only need the id.
func UserIDFromContext(ctx context.Context) (string, bool) {
	u, ok := UserFromContext(ctx)
	if !ok {
		return "", false
	}
	return u.ID, u.ID != ""
}

// TokenFromRequest extracts the raw access token, or "" if none was sent.
func TokenFromRequest(r *http.Request) string {
	if c, err := r.Cookie(AccessTokenCookie); err == nil && c.Value != "" {
		return c.Value
	}
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

func authenticate(r *http.Request, tokens AccessVerifier, users UserLookup) (*model.User, error) {
	token := TokenFromRequest(r)
	if token == "" {
		return nil, apperror.Unauthenticated("Unauthorized request")
	}

	userID, err := tokens.ValidateAccess(token)
	if err != nil {
		return nil, err
	}

	// Every lookup failure is a 401, a broken store included.
	user, err := users.GetByID(r.Context(), userID)
	if err != nil {
		if !errors.Is(err, apperror.ErrNotFound) {
			slog.WarnContext(r.Context(), "resolving authenticated user failed",
				slog.String("userID", userID),
				slog.String("error", err.Error()),
			)
		}
		return nil, apperror.Unauthenticated("Invalid Access Token")
	}
	return user, nil
}
