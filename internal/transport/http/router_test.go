package httptransport

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"examreg/pkg/platform/middleware/request"
	"examreg/pkg/requestcontext"
)

func newTestRouter(health map[string]HealthCheck) http.Handler {
	ok := func(w http.ResponseWriter, r *http.Request) {
		body := map[string]string{"actor": requestcontext.Actor(r.Context())}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(body)
	}
	bearer := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") != "Bearer good" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(requestcontext.WithActor(r.Context(), "account:test")))
		})
	}
	return NewRouter(Config{
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		AdminToken: "s3cret",
		Bearer:     bearer,
		Public:     []Registrar{func(r chi.Router) { r.Get("/lookups/{typeID}", ok) }},
		Applicant:  []Registrar{func(r chi.Router) { r.Get("/me/application", ok) }},
		Admin:      []Registrar{func(r chi.Router) { r.Get("/admin/summary", ok) }},
		Health:     health,
	})
}

func TestRouterSurfaces(t *testing.T) {
	router := newTestRouter(nil)

	tests := []struct {
		name      string
		path      string
		header    [2]string
		wantCode  int
		wantActor string
	}{
		{"public lookup needs no credentials", "/lookups/100", [2]string{}, http.StatusOK, ""},
		{"applicant route needs a bearer token", "/me/application", [2]string{}, http.StatusUnauthorized, ""},
		{"applicant route with token", "/me/application", [2]string{"Authorization", "Bearer good"}, http.StatusOK, "account:test"},
		{"admin route rejects a bearer token", "/admin/summary", [2]string{"Authorization", "Bearer good"}, http.StatusUnauthorized, ""},
		{"admin route with admin token", "/admin/summary", [2]string{"X-Admin-Token", "s3cret"}, http.StatusOK, "admin"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header[0] != "" {
				req.Header.Set(tt.header[0], tt.header[1])
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.NotEmpty(t, rec.Header().Get(request.HeaderRequestID))
			if tt.wantCode == http.StatusOK {
				var body map[string]string
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
				assert.Equal(t, tt.wantActor, body["actor"])
			}
		})
	}
}

func TestHealth(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		router := newTestRouter(map[string]HealthCheck{
			"postgres": func(context.Context) error { return nil },
		})
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("degraded", func(t *testing.T) {
		router := newTestRouter(map[string]HealthCheck{
			"redis": func(context.Context) error { return errors.New("connection refused") },
		})
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		var body healthResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		assert.Equal(t, "degraded", body.Status)
		assert.Equal(t, "connection refused", body.Checks["redis"])
	})
}
