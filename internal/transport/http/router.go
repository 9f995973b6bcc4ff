// Package httptransport assembles the public router. Feature handlers own
// their routes; this package only decides which surface each one sits behind.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"examreg/internal/platform/metrics"
	"examreg/pkg/platform/httputil"
	adminmw "examreg/pkg/platform/middleware/admin"
	"examreg/pkg/platform/middleware/metadata"
	"examreg/pkg/platform/middleware/observe"
	"examreg/pkg/platform/middleware/request"
	"examreg/pkg/platform/middleware/requesttime"
)

// HealthCheck checks one dependency. A nil error means healthy.
type HealthCheck func(ctx context.Context) error

// Registrar mounts a feature's routes.
type Registrar func(r chi.Router)

// Config lists everything the router mounts.
type Config struct {
	Logger     *slog.Logger
	Metrics    *metrics.Metrics
	AdminToken string
	Security   adminmw.SecurityPublisher

	// Bearer authenticates applicant routes.
	Bearer func(http.Handler) http.Handler
	// Clock overrides the per-request time; nil uses time.Now.
	Clock func() time.Time

	Public    []Registrar
	Applicant []Registrar
	Admin     []Registrar
	Health    map[string]HealthCheck
}

func NewRouter(cfg Config) http.Handler {
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}

	r := chi.NewRouter()
	r.Use(observe.Recovery(cfg.Logger))
	r.Use(request.RequestID)
	r.Use(metadata.ClientMetadata)
	r.Use(requesttime.MiddlewareWithClock(clock))
	r.Use(observe.Logger(cfg.Logger))
	if cfg.Metrics != nil {
		r.Use(observe.Latency(cfg.Metrics))
		r.Handle("/metrics", metrics.Handler())
	}

	r.Get("/health", healthHandler(cfg.Health))

	for _, register := range cfg.Public {
		register(r)
	}

	r.Group(func(r chi.Router) {
		if cfg.Bearer != nil {
			r.Use(cfg.Bearer)
		}
		for _, register := range cfg.Applicant {
			register(r)
		}
	})

	r.Group(func(r chi.Router) {
		r.Use(adminmw.RequireAdminToken(cfg.AdminToken, cfg.Security, cfg.Logger))
		for _, register := range cfg.Admin {
			register(r)
		}
	})
	return r
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func healthHandler(checks map[string]HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		resp := healthResponse{Status: "ok", Checks: map[string]string{}}
		status := http.StatusOK
		for name, check := range checks {
			if err := check(ctx); err != nil {
				resp.Checks[name] = err.Error()
				resp.Status = "degraded"
				status = http.StatusServiceUnavailable
				continue
			}
			resp.Checks[name] = "ok"
		}
		httputil.WriteJSON(w, status, resp)
	}
}
