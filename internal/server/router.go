// internal/server/router.go
//
// Ops router.
//
//	GET /metrics  – Prometheus exposition (default registry).
//	GET /healthz  – pings the pool within the acquire timeout:
//	                200 "ok" or 503 with the error text.

package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/yanizio/dbconf/internal/config"
	"github.com/yanizio/dbconf/internal/database"
)

// NewRouter wires /metrics and /healthz for pool p described by d.
func NewRouter(p database.Pinger, d config.Descriptor) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	r.Get("/healthz", health(p, d))
	return r
}

func health(p database.Pinger, d config.Descriptor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("X-Content-Type-Options", "nosniff")

		if err := database.Ping(r.Context(), p, d); err != nil {
			zap.S().Warnw("health check failed", "err", err)
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(err.Error()))
			return
		}
		_, _ = w.Write([]byte("ok"))
	}
}
