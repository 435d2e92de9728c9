package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"cafe-ordering/internal/common/httpx"
	"cafe-ordering/internal/common/logger"
	dto "cafe-ordering/internal/microservices/order/domain/dto"
	"cafe-ordering/internal/microservices/order/service"
)

type OrderHandler struct {
	service service.OrderServiceInterface
	lg      *logger.Logger
}

func NewOrderHandler(s service.OrderServiceInterface, lg *logger.Logger) *OrderHandler {
	return &OrderHandler{service: s, lg: lg}
}

func fail(lg *logger.Logger, w http.ResponseWriter, r *http.Request, action string, err error) {
	if code, _ := httpx.ErrorBody(err); code >= http.StatusInternalServerError {
		httpx.Logger(lg, r).Error(action, err, nil)
	}
	httpx.WriteError(w, err)
}

func (oh *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateStatusRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, err)
		return
	}

	res, err := oh.service.UpdateStatus(r.Context(), chi.URLParam(r, "orderId"), req.Status, req.EstimatedTime, req.CompanyID)
	if err != nil {
		fail(oh.lg, w, r, "delivery_status_update_failed", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"success":        true,
		"orderId":        res.OrderID,
		"status":         res.Status,
		"externalStatus": res.ExternalStatus,
		"company":        res.Company,
		"estimatedTime":  res.EstimatedTime,
	})
}
