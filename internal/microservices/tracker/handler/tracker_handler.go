package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"cafe-ordering/internal/common/httpx"
	"cafe-ordering/internal/common/logger"
	"cafe-ordering/internal/microservices/tracker/service"
)

type TrackerHandler struct {
	service service.TrackerServiceInterface
	lg      *logger.Logger
}

func NewTrackerHandler(svc service.TrackerServiceInterface, lg *logger.Logger) *TrackerHandler {
	return &TrackerHandler{service: svc, lg: lg}
}

func (h *TrackerHandler) fail(w http.ResponseWriter, r *http.Request, action string, err error) {
	if code, _ := httpx.ErrorBody(err); code >= http.StatusInternalServerError {
		httpx.Logger(h.lg, r).Error(action, err, nil)
	}
	httpx.WriteError(w, err)
}

func (h *TrackerHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	v, err := h.service.GetOrderView(r.Context(), chi.URLParam(r, "orderId"))
	if err != nil {
		h.fail(w, r, "order_get_failed", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"success": true, "order": v})
}

func (h *TrackerHandler) GetTimeline(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "orderId")
	limit := httpx.AtoiDefault(r.URL.Query().Get("limit"), 0)
	offset := httpx.AtoiDefault(r.URL.Query().Get("offset"), 0)
	events, err := h.service.GetOrderTimeline(r.Context(), id, limit, offset)
	if err != nil {
		h.fail(w, r, "order_timeline_failed", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"success": true, "orderId": id, "events": events})
}

func (h *TrackerHandler) DayReport(w http.ResponseWriter, r *http.Request) {
	rep, sent, err := h.service.DayReport(r.Context(), chi.URLParam(r, "tenantId"), r.URL.Query().Get("date"))
	if err != nil {
		h.fail(w, r, "day_report_failed", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"success": true, "report": rep, "notified": sent})
}
