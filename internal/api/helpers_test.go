package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/rentals/internal/sqlite"
	"github.com/mesh-intelligence/rentals/pkg/types"
)

const (
	testEmail    = "admin@example.com"
	testPassword = "Secreta$1"
)

// newBackend attaches a sqlite backend in dir.
func newBackend(t *testing.T, dir string) *sqlite.Backend {
	t.Helper()
	b := sqlite.NewBackend()
	require.NoError(t, b.Attach(types.StoreConfig{Backend: types.BackendSQLite, DataDir: dir}))
	t.Cleanup(func() { _ = b.Detach() })
	return b
}

// newTestServer serves a router over a fresh backend.
func newTestServer(t *testing.T) (*httptest.Server, *sqlite.Backend) {
	t.Helper()
	b := newBackend(t, t.TempDir())
	srv := httptest.NewServer(NewRouter(b, nil))
	t.Cleanup(srv.Close)
	return srv, b
}

// call sends a JSON request and returns the status and raw body.
func call(t *testing.T, srv *httptest.Server, method, path, token string, body any) (int, []byte) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, srv.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	var out bytes.Buffer
	_, err = out.ReadFrom(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, out.Bytes()
}

// loginToken registers the test account and returns a bearer token.
func loginToken(t *testing.T, srv *httptest.Server) string {
	t.Helper()
	status, _ := call(t, srv, http.MethodPost, "/auth/register", "", types.Registration{
		FullName: "Admin", Email: testEmail, Password: testPassword,
	})
	require.Equal(t, http.StatusCreated, status)

	status, body := call(t, srv, http.MethodPost, "/auth/login", "", types.LoginRequest{Email: testEmail, Password: testPassword})
	require.Equal(t, http.StatusOK, status)
	var resp loginResponse
	require.NoError(t, json.Unmarshal(body, &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func message(t *testing.T, body []byte) string {
	t.Helper()
	var e errorResponse
	require.NoError(t, json.Unmarshal(body, &e))
	return e.Message
}
