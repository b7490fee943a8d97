package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/blogapi/internal/config"
	"github.com/iudanet/blogapi/internal/server/middleware"
	"github.com/iudanet/blogapi/internal/server/storage/sqlite"
	"github.com/iudanet/blogapi/pkg/api"
)

// 32 байта в base64
const testSecret = "MDEyMzQ1Njc4OWFiY2RlZjAxMjM0NTY3ODlhYmNkZWY="

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Server.HTTPAddr = "127.0.0.1:0"
	cfg.Database.Path = ":memory:"
	cfg.JWT.Secret = testSecret
	cfg.JWT.AccessTokenExpirationRaw = "1h"
	require.NoError(t, cfg.Finalize())
	return cfg
}

func setupServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()

	store, err := sqlite.New(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv, err := New(testConfig(t), store, logger, "test")
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	return srv, ts
}

type apiClient struct {
	t     *testing.T
	base  string
	token string
}

func (c *apiClient) do(method, path string, body any) (*http.Response, []byte) {
	c.t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(c.t, err)
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.base+path, reader)
	require.NoError(c.t, err)
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(c.t, err)
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)
	return resp, raw
}

func TestServer_AuthenticationFlow(t *testing.T) {
	_, ts := setupServer(t)
	client := &apiClient{t: t, base: ts.URL}

	// регистрация
	resp, body := client.do(http.MethodPost, "/api/v1/auth/sign-up", api.SignUpRequest{
		Email:           "alice@example.com",
		Password:        "password123",
		ConfirmPassword: "password123",
		Name:            "Alice",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	// защищенный маршрут без токена
	resp, body = client.do(http.MethodPost, "/api/v1/categories", api.CategoryRequest{Name: "Golang"})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("WWW-Authenticate"))
	var errResp api.ErrorResponse
	require.NoError(t, json.Unmarshal(body, &errResp))
	assert.Equal(t, http.StatusUnauthorized, errResp.Status)

	// вход
	resp, body = client.do(http.MethodPost, "/api/v1/auth/login", api.LoginRequest{
		Email:    "ALICE@example.com",
		Password: "password123",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var authResp api.AuthResponse
	require.NoError(t, json.Unmarshal(body, &authResp))
	assert.Equal(t, int64(3600), authResp.ExpiresIn)
	client.token = authResp.Token

	// с токеном
	resp, body = client.do(http.MethodPost, "/api/v1/categories", api.CategoryRequest{Name: "Golang"})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var category api.CategoryResponse
	require.NoError(t, json.Unmarshal(body, &category))

	resp, body = client.do(http.MethodPost, "/api/v1/posts", api.PostRequest{
		Title:      "Draft post",
		Content:    "Some draft content here.",
		CategoryID: category.ID,
		Status:     "DRAFT",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var draft api.PostResponse
	require.NoError(t, json.Unmarshal(body, &draft))

	resp, body = client.do(http.MethodGet, "/api/v1/posts/drafts", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var drafts []api.PostResponse
	require.NoError(t, json.Unmarshal(body, &drafts))
	require.Len(t, drafts, 1)
	assert.Equal(t, draft.ID, drafts[0].ID)

	// автор видит свой черновик, аноним нет
	resp, _ = client.do(http.MethodGet, "/api/v1/posts/"+draft.ID, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	anon := &apiClient{t: t, base: ts.URL}
	resp, _ = anon.do(http.MethodGet, "/api/v1/posts/"+draft.ID, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = anon.do(http.MethodGet, "/api/v1/posts/drafts", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestServer_InvalidTokenOnPublicRoute(t *testing.T) {
	_, ts := setupServer(t)
	client := &apiClient{t: t, base: ts.URL, token: "not.a.jwt"}

	resp, body := client.do(http.MethodGet, "/api/v1/posts", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.JSONEq(t, `[]`, string(body))

	resp, _ = client.do(http.MethodGet, "/api/v1/categories", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = client.do(http.MethodPost, "/api/v1/tags", api.TagsRequest{Names: []string{"go"}})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestServer_TokenOfDeletedUser(t *testing.T) {
	srv, ts := setupServer(t)
	ctx := context.Background()

	client := &apiClient{t: t, base: ts.URL}
	resp, _ := client.do(http.MethodPost, "/api/v1/auth/sign-up", api.SignUpRequest{
		Email:           "bob@example.com",
		Password:        "password123",
		ConfirmPassword: "password123",
		Name:            "Bob",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	id, err := srv.Authenticator().Authenticate(ctx, "bob@example.com", "password123")
	require.NoError(t, err)
	client.token, err = srv.Authenticator().IssueToken(id)
	require.NoError(t, err)

	resp, _ = client.do(http.MethodGet, "/api/v1/posts/drafts", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, srv.store.DeleteUser(ctx, id.UserID()))

	resp, _ = client.do(http.MethodGet, "/api/v1/posts/drafts", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestServer_CORSPreflight(t *testing.T) {
	_, ts := setupServer(t)

	req, err := http.NewRequest(http.MethodOptions, ts.URL+"/api/v1/posts", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	// preflight не требует токена
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "http://localhost:5173", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestServer_HealthAndRequestID(t *testing.T) {
	_, ts := setupServer(t)
	client := &apiClient{t: t, base: ts.URL}

	resp, body := client.do(http.MethodGet, "/api/v1/health", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok","database":"ok","version":"test"}`, string(body))
	// health не проходит через логирование
	assert.Empty(t, resp.Header.Get(middleware.RequestIDHeader))

	resp, _ = client.do(http.MethodGet, "/api/v1/posts", nil)
	assert.NotEmpty(t, resp.Header.Get(middleware.RequestIDHeader))
}

func TestRoutePolicy(t *testing.T) {
	policy := RoutePolicy()

	tests := []struct {
		method string
		path   string
		want   middleware.Access
	}{
		{http.MethodPost, "/api/v1/auth/login", middleware.Public},
		{http.MethodPost, "/api/v1/auth/sign-up", middleware.Public},
		{http.MethodGet, "/api/v1/posts", middleware.Public},
		{http.MethodGet, "/api/v1/posts/abc", middleware.Public},
		{http.MethodGet, "/api/v1/posts/drafts", middleware.Authenticated},
		{http.MethodPost, "/api/v1/posts", middleware.Authenticated},
		{http.MethodPut, "/api/v1/posts/abc", middleware.Authenticated},
		{http.MethodGet, "/api/v1/categories", middleware.Public},
		{http.MethodDelete, "/api/v1/categories/abc", middleware.Authenticated},
		{http.MethodGet, "/api/v1/tags", middleware.Public},
		{http.MethodGet, "/api/v1/health", middleware.Public},
		{http.MethodGet, "/api/v2/anything", middleware.Authenticated},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, policy.Decide(tt.method, tt.path))
		})
	}
}

func TestServer_Seed(t *testing.T) {
	srv, _ := setupServer(t)

	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
users:
  - {email: admin@example.com, password: password123, name: Admin}
categories: [Golang]
tags: [jwt]
`), 0o600))

	res, err := srv.Seed(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Users)
	assert.Equal(t, 1, res.Categories)
	assert.Equal(t, 1, res.Tags)
}

func TestServer_RunAndShutdown(t *testing.T) {
	srv, _ := setupServer(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
