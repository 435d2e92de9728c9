package handler

import (
	"github.com/go-chi/chi/v5"

	"cafe-ordering/internal/common/logger"
	"cafe-ordering/internal/microservices/tracker/service"
)

type Handler struct {
	TrackerHandler *TrackerHandler
}

func New(svc service.TrackerServiceInterface, lg *logger.Logger) *Handler {
	return &Handler{
		TrackerHandler: NewTrackerHandler(svc, lg),
	}
}

// Routes mounts under /api/v1.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/orders/{orderId}", h.TrackerHandler.GetOrder)
	r.Get("/orders/{orderId}/timeline", h.TrackerHandler.GetTimeline)
	r.Post("/tenants/{tenantId}/reports/day", h.TrackerHandler.DayReport)
}
