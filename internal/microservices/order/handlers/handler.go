package handlers

import (
	"github.com/go-chi/chi/v5"

	"cafe-ordering/internal/common/logger"
	"cafe-ordering/internal/microservices/order/service"
)

type Handler struct {
	OrderHandler *OrderHandler
	TableHandler *TableHandler
}

func New(s *service.Service, lg *logger.Logger) *Handler {
	return &Handler{
		OrderHandler: NewOrderHandler(s.OrderService, lg),
		TableHandler: NewTableHandler(s.TableService, lg),
	}
}

// Routes mounts under /api/v1.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/delivery/orders/{orderId}/status", h.OrderHandler.UpdateStatus)

	r.Post("/pending-orders", h.TableHandler.CreatePendingOrder)
	r.Post("/pending-orders/{id}/approve", h.TableHandler.ApprovePendingOrder)
	r.Post("/pending-orders/{id}/reject", h.TableHandler.RejectPendingOrder)

	r.Get("/sessions/{sessionId}/bill", h.TableHandler.GetBill)
	r.Post("/payment-confirmations", h.TableHandler.SubmitPayment)
	r.Post("/payment-confirmations/{id}/approve", h.TableHandler.ApprovePayment)
	r.Post("/payment-confirmations/{id}/reject", h.TableHandler.RejectPayment)
}
