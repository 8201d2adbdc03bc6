package httpserver

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"metapanel/internal/platform/metrics"
	"metapanel/internal/platform/middleware"
	"metapanel/pkg/platform/httputil"
	"metapanel/pkg/platform/sentinel"
)

// HealthCheck reports whether a dependency the server relies on is usable.
type HealthCheck func(ctx context.Context) error

// New builds an HTTP server with sane defaults for this project. There is
// no write timeout so session streams can stay open.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

// NewRouter returns a router with the shared middleware chain, a health
// check and the Prometheus endpoint. /healthz answers 503 while any of
// checks fails.
func NewRouter(logger *slog.Logger, m *metrics.Metrics, checks ...HealthCheck) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Latency(m))

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		for _, check := range checks {
			if err := check(req.Context()); err != nil {
				logger.WarnContext(req.Context(), "health check failed", "error", err)
				httputil.WriteError(w, fmt.Errorf("%w: %w", sentinel.ErrUnavailable, err))
				return
			}
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteError(w, httputil.NotFound("no such route"))
	})
	return r
}
