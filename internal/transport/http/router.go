// Package httptransport assembles the HTTP API surface from the per-domain
// handlers. Business rules live in the services; this layer only routes,
// authenticates, and translates errors.
package httptransport

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"agentcred/internal/platform/middleware"
)

// Registrar is implemented by every domain handler.
type Registrar interface {
	Register(r chi.Router)
}

// Health reports readiness of a backing dependency.
type Health func() error

// RouterConfig carries everything the router mounts.
type RouterConfig struct {
	Logger         *slog.Logger
	TokenValidator middleware.TokenValidator
	RequestTimeout time.Duration

	// Open handlers are mounted without authentication.
	Open []Registrar
	// Protected handlers require a valid bearer token.
	Protected []Registrar

	HealthChecks map[string]Health
}

// NewRouter builds the full API router.
func NewRouter(cfg RouterConfig) http.Handler {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}

	r := chi.NewRouter()
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Timeout(cfg.RequestTimeout))

	r.Get("/healthz", healthHandler(cfg.HealthChecks))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Group(func(open chi.Router) {
		open.Use(middleware.ContentTypeJSON)
		for _, h := range cfg.Open {
			h.Register(open)
		}
	})

	r.Route("/v1", func(api chi.Router) {
		api.Use(middleware.ContentTypeJSON)
		api.Use(middleware.RequireAuth(cfg.TokenValidator, cfg.Logger))
		for _, h := range cfg.Protected {
			h.Register(api)
		}
	})

	return r
}

func healthHandler(checks map[string]Health) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		status := http.StatusOK
		body := make(map[string]string, len(checks)+1)
		for name, check := range checks {
			if err := check(); err != nil {
				status = http.StatusServiceUnavailable
				body[name] = err.Error()
				continue
			}
			body[name] = "ok"
		}
		if status == http.StatusOK {
			body["status"] = "ok"
		} else {
			body["status"] = "degraded"
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}
}
