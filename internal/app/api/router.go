package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"cafe-ordering/internal/common/httpx"
	"cafe-ordering/internal/common/logger"
)

// Mount registers a group of routes on r.
type Mount func(r chi.Router)

type Routes struct {
	Root    []Mount // e.g. /webhooks/delivery, /telegram/webhook
	API     []Mount // under /api/v1
	Tenants []Mount // under /api/v1/tenants/{tenantId}
	Health  func(ctx context.Context) error
}

func NewRouter(lg *logger.Logger, timeout time.Duration, rt Routes) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(httpx.Recover(lg))
	r.Use(httpx.AccessLog(lg))
	if timeout > 0 {
		r.Use(middleware.Timeout(timeout))
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if rt.Health != nil {
			if err := rt.Health(r.Context()); err != nil {
				httpx.WriteJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "unavailable", "error": err.Error()})
				return
			}
		}
		httpx.WriteJSON(w, http.StatusOK, map[string]any{"status": "ok"})
	})

	for _, m := range rt.Root {
		m(r)
	}
	r.Route("/api/v1", func(r chi.Router) {
		for _, m := range rt.API {
			m(r)
		}
		if len(rt.Tenants) > 0 {
			r.Route("/tenants/{tenantId}", func(r chi.Router) {
				for _, m := range rt.Tenants {
					m(r)
				}
			})
		}
	})
	return r
}
