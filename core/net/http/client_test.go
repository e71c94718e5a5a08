package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heattrack/sessionkit/errors"
)

type echoResponse struct {
	Method string            `json:"method"`
	Path   string            `json:"path"`
	Auth   string            `json:"auth"`
	Body   map[string]string `json:"body"`
}

func echoServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		out := echoResponse{Method: r.Method, Path: r.URL.Path, Auth: r.Header.Get("Authorization")}
		if r.Body != nil && r.ContentLength > 0 {
			assert.Equal(t, ContentTypeJSON, r.Header.Get("Content-Type"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&out.Body))
		}
		w.Header().Set("Content-Type", ContentTypeJSON)
		_ = json.NewEncoder(w).Encode(out)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClientGet(t *testing.T) {
	srv := echoServer(t)
	cli := New(srv.URL + "/api")

	var out echoResponse
	resp, err := cli.Get(context.Background(), "/auth/me", WithBearer("abc"), WithResponse(&out))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, http.MethodGet, out.Method)
	assert.Equal(t, "/api/auth/me", out.Path)
	assert.Equal(t, "Bearer abc", out.Auth)
}

func TestClientPostJSON(t *testing.T) {
	srv := echoServer(t)
	cli := New(srv.URL)

	var out echoResponse
	_, err := cli.Post(context.Background(), "furnaces", map[string]string{"id": "F-12"},
		WithHeader(map[string]string{"X-Request-Id": "r1"}), WithResponse(&out))
	require.NoError(t, err)
	assert.Equal(t, http.MethodPost, out.Method)
	assert.Equal(t, "F-12", out.Body["id"])
	assert.Empty(t, out.Auth)
}

func TestClientStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", ContentTypeJSON)
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"success":false,"message":"Session expirée","errorType":"token_expired"}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL).Get(context.Background(), "/auth/me")
	require.Error(t, err)
	assert.True(t, errors.IsUnauthorized(err))

	ge := errors.FromError(err)
	assert.Equal(t, "Session expirée", ge.Message)
	assert.Equal(t, "token_expired", ge.GetMetadata()[errors.MetadataErrorType])
}

func TestClientStatusErrorWithoutEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := New(srv.URL).Get(context.Background(), "/")
	assert.Equal(t, http.StatusInternalServerError, errors.Code(err))
	assert.Equal(t, "Internal Server Error", errors.FromError(err).Message)
}

func TestClientTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := New(url, WithTimeout(time.Second)).Get(context.Background(), "/auth/me")
	assert.Equal(t, http.StatusServiceUnavailable, errors.Code(err))
}

func TestClientDecodeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>"))
	}))
	defer srv.Close()

	var out echoResponse
	_, err := New(srv.URL).Get(context.Background(), "/", WithResponse(&out))
	assert.Equal(t, http.StatusBadGateway, errors.Code(err))
}
