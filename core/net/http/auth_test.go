package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heattrack/sessionkit/errors"
)

func authServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if req.Password != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"success":false,"message":"Identifiants invalides"}`))
			return
		}
		_, _ = w.Write([]byte(`{"success":true,"token":"a.b.c","user":{"id":1,"username":"op1","role":"operator"}}`))
	})
	mux.HandleFunc("POST /api/auth/refresh-token", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer a.b.c" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"success":false,"message":"Token invalide","errorType":"token_invalid"}`))
			return
		}
		_, _ = w.Write([]byte(`{"success":true,"token":"d.e.f"}`))
	})
	mux.HandleFunc("GET /api/auth/me", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "Bearer broken" {
			_, _ = w.Write([]byte(`{"success":false,"message":"Utilisateur non trouvé"}`))
			return
		}
		_, _ = w.Write([]byte(`{"success":true,"data":{"id":1,"username":"op1","role":"operator"}}`))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestAuthClientLogin(t *testing.T) {
	auth := NewAuthClient(New(authServer(t).URL + "/api"))

	cred, err := auth.Login(context.Background(), "op1", "secret")
	require.NoError(t, err)
	assert.Equal(t, "a.b.c", cred.Token)
	assert.Equal(t, "op1", cred.User["username"])
	assert.EqualValues(t, 1, cred.User["id"])

	_, err = auth.Login(context.Background(), "op1", "wrong")
	assert.True(t, errors.IsUnauthorized(err))
	assert.Equal(t, "Identifiants invalides", errors.FromError(err).Message)
}

func TestAuthClientRefresh(t *testing.T) {
	auth := NewAuthClient(New(authServer(t).URL + "/api"))

	cred, err := auth.Refresh(context.Background(), "a.b.c")
	require.NoError(t, err)
	assert.Equal(t, "d.e.f", cred.Token)
	assert.Nil(t, cred.User)

	_, err = auth.Refresh(context.Background(), "x.y.z")
	assert.True(t, errors.IsUnauthorized(err))
	assert.Equal(t, "token_invalid", errors.FromError(err).GetMetadata()[errors.MetadataErrorType])
}

func TestAuthClientMe(t *testing.T) {
	auth := NewAuthClient(New(authServer(t).URL + "/api"))

	user, err := auth.Me(context.Background(), "a.b.c")
	require.NoError(t, err)
	assert.Equal(t, "operator", user["role"])

	_, err = auth.Me(context.Background(), "broken")
	assert.Equal(t, http.StatusBadGateway, errors.Code(err))
}

func TestAuthPathsDefaults(t *testing.T) {
	auth := NewAuthClient(New("http://localhost"), WithAuthPaths(AuthPaths{Me: "/v2/whoami"}))

	paths := auth.Paths()
	assert.Equal(t, "/auth/login", paths.Login)
	assert.Equal(t, "/auth/refresh-token", paths.Refresh)
	assert.Equal(t, "/v2/whoami", paths.Me)
}
