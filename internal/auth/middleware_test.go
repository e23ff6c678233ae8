package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ganeswar07/WatchWonders-Backend/internal/apperror"
	"github.com/ganeswar07/WatchWonders-Backend/internal/model"
)

type fakeLookup struct {
	users map[string]*model.User
	err   error
}

func (f *fakeLookup) GetByID(_ context.Context, id string) (*model.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.users[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	return u, nil
}

// writeTestError mimics the HTTP layer: status from the error kind, message in JSON.
func writeTestError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, apperror.ErrUnauthenticated) {
		status = http.StatusUnauthorized
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "message": err.Error()})
}

func newProtected(t *testing.T, lookup UserLookup) (http.Handler, *TokenService, *string) {
	t.Helper()
	ts := newTestTokenService(t)
	var seen string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, ok := UserFromContext(r.Context())
		require.True(t, ok)
		seen = u.ID
		w.WriteHeader(http.StatusNoContent)
	})
	return RequireAuth(ts, lookup, writeTestError)(next), ts, &seen
}

func TestRequireAuth(t *testing.T) {
	alice := &model.User{ID: "alice", UserName: "alice"}
	bob := &model.User{ID: "bob", UserName: "bob"}
	lookup := &fakeLookup{users: map[string]*model.User{"alice": alice, "bob": bob}}

	t.Run("cookie token", func(t *testing.T) {
		h, ts, seen := newProtected(t, lookup)
		pair, err := ts.GeneratePair("alice")
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: pair.AccessToken})
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNoContent, rr.Code)
		assert.Equal(t, "alice", *seen)
	})

	t.Run("bearer token", func(t *testing.T) {
		h, ts, seen := newProtected(t, lookup)
		pair, err := ts.GeneratePair("bob")
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNoContent, rr.Code)
		assert.Equal(t, "bob", *seen)
	})

	t.Run("cookie wins over header", func(t *testing.T) {
		h, ts, seen := newProtected(t, lookup)
		alicePair, _ := ts.GeneratePair("alice")
		bobPair, _ := ts.GeneratePair("bob")

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: alicePair.AccessToken})
		req.Header.Set("Authorization", "Bearer "+bobPair.AccessToken)
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNoContent, rr.Code)
		assert.Equal(t, "alice", *seen)
	})

	t.Run("missing token", func(t *testing.T) {
		h, _, seen := newProtected(t, lookup)

		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Empty(t, *seen)
	})

	t.Run("refresh token is not an access token", func(t *testing.T) {
		h, ts, _ := newProtected(t, lookup)
		pair, _ := ts.GeneratePair("alice")

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+pair.RefreshToken)
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("deleted user", func(t *testing.T) {
		h, ts, _ := newProtected(t, lookup)
		pair, _ := ts.GeneratePair("ghost")

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: pair.AccessToken})
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		var body map[string]any
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
		assert.Equal(t, false, body["success"])
		assert.Equal(t, "Invalid Access Token", body["message"])
	})

	t.Run("lookup failure is a 401", func(t *testing.T) {
		h, ts, _ := newProtected(t, &fakeLookup{err: errors.New("db down")})
		pair, _ := ts.GeneratePair("alice")

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: pair.AccessToken})
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		var body map[string]any
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
		assert.Equal(t, "Invalid Access Token", body["message"])
	})
}

func TestTokenFromRequest(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"no header", "", ""},
		{"bearer", "Bearer abc.def.ghi", "abc.def.ghi"},
		{"lower-case scheme", "bearer abc", "abc"},
		{"other scheme", "Basic dXNlcjpwYXNz", ""},
		{"bare bearer", "Bearer ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			assert.Equal(t, tt.want, TokenFromRequest(req))
		})
	}
}
