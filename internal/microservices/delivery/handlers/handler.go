package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"cafe-ordering/internal/common/httpx"
	"cafe-ordering/internal/common/logger"
	"cafe-ordering/internal/domain"
	"cafe-ordering/internal/microservices/delivery/companies"
	"cafe-ordering/internal/microservices/delivery/service"
)

type Handler struct {
	service service.DeliveryServiceInterface
	lg      *logger.Logger
}

func New(s *service.Service, lg *logger.Logger) *Handler {
	return &Handler{service: s.DeliveryService, lg: lg}
}

// Routes mounts under /api/v1/delivery.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/companies", h.Companies)
	r.Post("/prices", h.UpdatePrices)
	r.Post("/availability", h.UpdateAvailability)
}

type pricesRequest struct {
	service.Target
	Prices []companies.PriceUpdate `json:"prices"`
}

type availabilityRequest struct {
	service.Target
	ItemID    string `json:"itemId"`
	Available *bool  `json:"available"`
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, action string, err error) {
	if code, _ := httpx.ErrorBody(err); code >= http.StatusInternalServerError {
		httpx.Logger(h.lg, r).Error(action, err, nil)
	}
	httpx.WriteError(w, err)
}

func (h *Handler) Companies(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"success": true, "companies": h.service.Companies()})
}

func (h *Handler) UpdatePrices(w http.ResponseWriter, r *http.Request) {
	var req pricesRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, err)
		return
	}
	if err := h.service.UpdatePrices(r.Context(), req.Target, req.Prices); err != nil {
		h.fail(w, r, "delivery_prices_update_failed", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"success": true, "updated": len(req.Prices)})
}

func (h *Handler) UpdateAvailability(w http.ResponseWriter, r *http.Request) {
	var req availabilityRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, err)
		return
	}
	var missing []string
	if req.ItemID == "" {
		missing = append(missing, "itemId")
	}
	if req.Available == nil {
		missing = append(missing, "available")
	}
	if len(missing) > 0 {
		httpx.WriteError(w, domain.Missing(missing...))
		return
	}
	if err := h.service.UpdateAvailability(r.Context(), req.Target, req.ItemID, *req.Available); err != nil {
		h.fail(w, r, "delivery_availability_update_failed", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"success": true})
}
