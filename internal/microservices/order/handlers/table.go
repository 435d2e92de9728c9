package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"cafe-ordering/internal/common/httpx"
	"cafe-ordering/internal/common/logger"
	dto "cafe-ordering/internal/microservices/order/domain/dto"
	"cafe-ordering/internal/microservices/order/service"
)

const changedByHTTP = "http"

type TableHandler struct {
	service service.TableServiceInterface
	lg      *logger.Logger
}

func NewTableHandler(s service.TableServiceInterface, lg *logger.Logger) *TableHandler {
	return &TableHandler{service: s, lg: lg}
}

func (h *TableHandler) CreatePendingOrder(w http.ResponseWriter, r *http.Request) {
	var req dto.CreatePendingOrderRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, err)
		return
	}
	po, err := h.service.CreatePendingOrder(r.Context(), req.SessionID, req.Items, req.Notes)
	if err != nil {
		fail(h.lg, w, r, "pending_order_create_failed", err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, map[string]any{"success": true, "pendingOrder": po})
}

func (h *TableHandler) ApprovePendingOrder(w http.ResponseWriter, r *http.Request) {
	o, bill, err := h.service.ApprovePendingOrder(r.Context(), chi.URLParam(r, "id"), changedByHTTP)
	if err != nil {
		fail(h.lg, w, r, "pending_order_approve_failed", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"success": true, "order": o, "bill": bill})
}

func (h *TableHandler) RejectPendingOrder(w http.ResponseWriter, r *http.Request) {
	var req dto.ReviewRequest
	if r.ContentLength != 0 {
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.WriteError(w, err)
			return
		}
	}
	po, err := h.service.RejectPendingOrder(r.Context(), chi.URLParam(r, "id"), req.Reason)
	if err != nil {
		fail(h.lg, w, r, "pending_order_reject_failed", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"success": true, "pendingOrder": po})
}

func (h *TableHandler) GetBill(w http.ResponseWriter, r *http.Request) {
	bill, err := h.service.GetBill(r.Context(), chi.URLParam(r, "sessionId"))
	if err != nil {
		fail(h.lg, w, r, "bill_get_failed", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"success": true, "bill": bill})
}

func (h *TableHandler) SubmitPayment(w http.ResponseWriter, r *http.Request) {
	var req dto.SubmitPaymentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, err)
		return
	}
	pc, err := h.service.SubmitPayment(r.Context(), req.SessionID, req.Method, req.ScreenshotURL)
	if err != nil {
		fail(h.lg, w, r, "payment_submit_failed", err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, map[string]any{"success": true, "payment": pc})
}

func (h *TableHandler) ApprovePayment(w http.ResponseWriter, r *http.Request) {
	pc, bill, err := h.service.ApprovePayment(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		fail(h.lg, w, r, "payment_approve_failed", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"success": true, "payment": pc, "bill": bill})
}

func (h *TableHandler) RejectPayment(w http.ResponseWriter, r *http.Request) {
	pc, err := h.service.RejectPayment(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		fail(h.lg, w, r, "payment_reject_failed", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"success": true, "payment": pc})
}
