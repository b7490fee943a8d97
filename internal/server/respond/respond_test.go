package respond

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/blogapi/pkg/api"
)

func TestJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	JSON(rec, slog.New(slog.NewTextHandler(io.Discard, nil)), http.StatusCreated, map[string]string{"id": "42"})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"id":"42"}`, rec.Body.String())
}

func TestJSON_NilBody(t *testing.T) {
	rec := httptest.NewRecorder()
	JSON(rec, nil, http.StatusNoContent, nil)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestError(t *testing.T) {
	rec := httptest.NewRecorder()
	Error(rec, nil, http.StatusBadRequest, "request validation failed", map[string]string{"email": "cannot be blank"})

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp api.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, http.StatusBadRequest, resp.Status)
	assert.Equal(t, "Bad Request", resp.Error)
	assert.Equal(t, "request validation failed", resp.Message)
	assert.Equal(t, "cannot be blank", resp.Details["email"])
}
