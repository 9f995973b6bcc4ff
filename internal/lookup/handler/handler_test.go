package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"examreg/internal/lookup/models"
	"examreg/internal/lookup/service"
	"examreg/internal/lookup/store"
	"examreg/pkg/requestcontext"
)

func newLookupRouter(t *testing.T) http.Handler {
	t.Helper()
	mem := store.NewInMemory()
	require.NoError(t, store.SeedDefaults(context.Background(), mem))
	catalog := service.New(mem)
	h := New(catalog, slog.New(slog.NewTextHandler(io.Discard, nil)))
	r := chi.NewRouter()
	h.Register(r)
	return r
}

func TestHandleList(t *testing.T) {
	router := newLookupRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/lookups/110", nil)
	req = req.WithContext(requestcontext.WithTime(req.Context(), time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp listResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, 110, resp.TypeID)
	assert.Equal(t, "20250501", resp.AsOf)
	assert.Equal(t, []models.Option{
		{Code: models.CodeYes, Label: "Attending"},
		{Code: models.CodeNo, Label: "Not attending"},
	}, resp.Options)
}

func TestHandleList_BadInput(t *testing.T) {
	router := newLookupRouter(t)

	for _, path := range []string{"/lookups/abc", "/lookups/110?as_of=2025-01-01"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code, path)
	}
}
