package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ganeswar07/WatchWonders-Backend/internal/config"
)

// newTestServer runs the full stack on a temp SQLite file and the disk
// media store.
func newTestServer(t *testing.T, opts ...func(*config.Config)) *httptest.Server {
	t.Helper()
	dir := t.TempDir()

	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.DBPath = filepath.Join(dir, "db", "test.db")
	cfg.TempDir = filepath.Join(dir, "temp")
	cfg.MediaDir = filepath.Join(dir, "media")
	cfg.BaseURL = "http://media.test"
	cfg.AccessTokenSecret = "access-secret-for-tests-0001"
	cfg.RefreshTokenSecret = "refresh-secret-for-tests-0002"
	cfg.LoginRateLimit = 100
	for _, opt := range opts {
		opt(cfg)
	}

	srv, err := New(context.Background(), cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(func() { srv.Close() })

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

type apiResponse struct {
	StatusCode int             `json:"statusCode"`
	Success    bool            `json:"success"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data"`
}

func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar, Timeout: 10 * time.Second}
}

func do(t *testing.T, c *http.Client, req *http.Request) (int, apiResponse) {
	t.Helper()
	resp, err := c.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body apiResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

func jsonReq(t *testing.T, method, url string, v any) *http.Request {
	t.Helper()
	var body io.Reader
	if v != nil {
		b, err := json.Marshal(v)
		require.NoError(t, err)
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, url, body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func formReq(t *testing.T, method, url string, fields map[string]string, files map[string]string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for field, name := range files {
		fw, err := mw.CreateFormFile(field, name)
		require.NoError(t, err)
		_, err = fw.Write([]byte("content of " + name))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func register(t *testing.T, c *http.Client, base, userName string) string {
	t.Helper()
	status, body := do(t, c, formReq(t, http.MethodPost, base+"/api/v1/users/register",
		map[string]string{
			"fullName": "Test " + userName,
			"email":    userName + "@example.com",
			"userName": userName,
			"password": "password123",
		},
		map[string]string{"avatar": "avatar.png"},
	))
	require.Equal(t, http.StatusCreated, status, body.Message)

	var user struct {
		ID     string `json:"_id"`
		Avatar string `json:"avatar"`
	}
	require.NoError(t, json.Unmarshal(body.Data, &user))
	assert.Contains(t, user.Avatar, "http://media.test/media/avatar/")
	return user.ID
}

func login(t *testing.T, c *http.Client, base, userName string) string {
	t.Helper()
	status, body := do(t, c, jsonReq(t, http.MethodPost, base+"/api/v1/users/login",
		map[string]string{"userName": userName, "password": "password123"}))
	require.Equal(t, http.StatusOK, status, body.Message)

	var data struct {
		RefreshToken string `json:"refreshToken"`
	}
	require.NoError(t, json.Unmarshal(body.Data, &data))
	return data.RefreshToken
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t)
	status, body := do(t, http.DefaultClient, jsonReq(t, http.MethodGet, ts.URL+"/healthz", nil))
	assert.Equal(t, http.StatusOK, status)
	assert.True(t, body.Success)
}

func TestUnknownRoute(t *testing.T) {
	ts := newTestServer(t)
	status, body := do(t, http.DefaultClient, jsonReq(t, http.MethodGet, ts.URL+"/api/v1/nope", nil))
	assert.Equal(t, http.StatusNotFound, status)
	assert.False(t, body.Success)
}

func TestProtectedRoutesNeedAuth(t *testing.T) {
	ts := newTestServer(t)
	for _, path := range []string{"/api/v1/users/current-user", "/api/v1/videos", "/api/v1/likes/videos"} {
		status, _ := do(t, http.DefaultClient, jsonReq(t, http.MethodGet, ts.URL+path, nil))
		assert.Equal(t, http.StatusUnauthorized, status, path)
	}
}

func TestSessionLifecycle(t *testing.T) {
	ts := newTestServer(t)
	c := newClient(t)

	register(t, c, ts.URL, "alice")

	t.Run("duplicate registration conflicts", func(t *testing.T) {
		status, _ := do(t, c, formReq(t, http.MethodPost, ts.URL+"/api/v1/users/register",
			map[string]string{"fullName": "A", "email": "alice@example.com", "userName": "alice2", "password": "password123"},
			map[string]string{"avatar": "a.png"},
		))
		assert.Equal(t, http.StatusConflict, status)
	})

	t.Run("wrong password", func(t *testing.T) {
		status, _ := do(t, newClient(t), jsonReq(t, http.MethodPost, ts.URL+"/api/v1/users/login",
			map[string]string{"userName": "alice", "password": "wrong-password"}))
		assert.Equal(t, http.StatusUnauthorized, status)
	})

	firstRefresh := login(t, c, ts.URL, "alice")

	status, body := do(t, c, jsonReq(t, http.MethodGet, ts.URL+"/api/v1/users/current-user", nil))
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body.Data), `"userName":"alice"`)

	// Rotate through the cookie jar, then replay the first token via the body.
	status, _ = do(t, c, jsonReq(t, http.MethodPatch, ts.URL+"/api/v1/users/tokens", nil))
	require.Equal(t, http.StatusOK, status)

	replay := newClient(t)
	status, _ = do(t, replay, jsonReq(t, http.MethodPatch, ts.URL+"/api/v1/users/tokens",
		map[string]string{"refreshToken": firstRefresh}))
	assert.Equal(t, http.StatusUnauthorized, status, "replayed refresh token is rejected")

	// Reuse revoked the session: the rotated token is dead too.
	status, _ = do(t, c, jsonReq(t, http.MethodPatch, ts.URL+"/api/v1/users/tokens", nil))
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestVideoLikeFlow(t *testing.T) {
	ts := newTestServer(t)
	alice := newClient(t)
	bob := newClient(t)

	aliceID := register(t, alice, ts.URL, "alice")
	register(t, bob, ts.URL, "bob")
	login(t, alice, ts.URL, "alice")
	login(t, bob, ts.URL, "bob")

	status, body := do(t, alice, formReq(t, http.MethodPost, ts.URL+"/api/v1/videos",
		map[string]string{"title": "Intro", "description": "first video", "duration": "42"},
		map[string]string{"videoFile": "intro.mp4", "thumbnail": "intro.png"},
	))
	require.Equal(t, http.StatusCreated, status, body.Message)
	var video struct {
		ID string `json:"_id"`
	}
	require.NoError(t, json.Unmarshal(body.Data, &video))

	toggle := func() bool {
		status, body := do(t, bob, jsonReq(t, http.MethodPost, ts.URL+"/api/v1/likes/toggle/v/"+video.ID, nil))
		require.Equal(t, http.StatusOK, status, body.Message)
		var res struct {
			Created bool `json:"created"`
		}
		require.NoError(t, json.Unmarshal(body.Data, &res))
		return res.Created
	}
	likedCount := func() int {
		status, body := do(t, bob, jsonReq(t, http.MethodGet, ts.URL+"/api/v1/likes/videos", nil))
		require.Equal(t, http.StatusOK, status)
		var videos []json.RawMessage
		require.NoError(t, json.Unmarshal(body.Data, &videos))
		return len(videos)
	}

	assert.True(t, toggle())
	assert.Equal(t, 1, likedCount())
	assert.False(t, toggle())
	assert.Equal(t, 0, likedCount())
	assert.True(t, toggle())

	t.Run("only the owner may delete", func(t *testing.T) {
		status, _ := do(t, bob, jsonReq(t, http.MethodDelete, ts.URL+"/api/v1/videos/"+video.ID, nil))
		assert.Equal(t, http.StatusForbidden, status)
	})

	t.Run("subscribe toggle and profile", func(t *testing.T) {
		status, _ := do(t, bob, jsonReq(t, http.MethodPost, ts.URL+"/api/v1/subscriptions/c/"+aliceID, nil))
		require.Equal(t, http.StatusOK, status)

		status, body := do(t, bob, jsonReq(t, http.MethodGet, ts.URL+"/api/v1/channel/profile/alice", nil))
		require.Equal(t, http.StatusOK, status)
		assert.Contains(t, string(body.Data), `"subscriptionStatus":"Subscribed"`)
	})

	status, _ = do(t, alice, jsonReq(t, http.MethodDelete, ts.URL+"/api/v1/videos/"+video.ID, nil))
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, 0, likedCount())
}

func TestLoginRateLimit_ForwardedHeaders(t *testing.T) {
	login := func(t *testing.T, base, forwardedFor string) int {
		t.Helper()
		req := jsonReq(t, http.MethodPost, base+"/api/v1/users/login", map[string]string{
			"userName": "nobody",
			"password": "whatever-password",
		})
		req.Header.Set("X-Forwarded-For", forwardedFor)
		status, _ := do(t, newClient(t), req)
		return status
	}

	t.Run("ignored by default", func(t *testing.T) {
		ts := newTestServer(t, func(c *config.Config) { c.LoginRateLimit = 1 })

		assert.Equal(t, http.StatusNotFound, login(t, ts.URL, "203.0.113.1"))
		assert.Equal(t, http.StatusTooManyRequests, login(t, ts.URL, "203.0.113.2"))
	})

	t.Run("honoured behind a trusted proxy", func(t *testing.T) {
		ts := newTestServer(t, func(c *config.Config) {
			c.LoginRateLimit = 1
			c.TrustProxy = true
		})

		assert.Equal(t, http.StatusNotFound, login(t, ts.URL, "203.0.113.1"))
		assert.Equal(t, http.StatusNotFound, login(t, ts.URL, "203.0.113.2"))
		assert.Equal(t, http.StatusTooManyRequests, login(t, ts.URL, "203.0.113.1"))
	})
}
