package handler_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ganeswar07/WatchWonders-Backend/internal/auth"
	"github.com/ganeswar07/WatchWonders-Backend/internal/media"
	"github.com/ganeswar07/WatchWonders-Backend/internal/model"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

var alice = &model.User{ID: "u-alice", UserName: "alice", Email: "alice@example.com", FullName: "Alice"}

// envelope decodes either response shape.
type envelope struct {
	StatusCode int             `json:"statusCode"`
	Success    bool            `json:"success"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data"`
	Errors     []string        `json:"errors"`
}

func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&env), "body: %s", rr.Body.String())
	return env
}

// asUser attaches user to the request the way RequireAuth does.
func asUser(req *http.Request, user *model.User) *http.Request {
	return req.WithContext(auth.WithUser(req.Context(), user))
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// formFile is one file part of a multipart test request.
type formFile struct {
	field, name, content string
}

func multipartRequest(t *testing.T, method, target string, values map[string]string, files ...formFile) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range values {
		require.NoError(t, mw.WriteField(k, v))
	}
	for _, f := range files {
		fw, err := mw.CreateFormFile(f.field, f.name)
		require.NoError(t, err)
		_, err = fw.Write([]byte(f.content))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func newTestStaging(t *testing.T, maxBytes int64) *media.Staging {
	t.Helper()
	s, err := media.NewStaging(t.TempDir(), maxBytes)
	require.NoError(t, err)
	return s
}

func cookieByName(rr *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rr.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}
