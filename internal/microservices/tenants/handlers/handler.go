package handlers

import (
	"github.com/go-chi/chi/v5"

	"cafe-ordering/internal/common/logger"
	"cafe-ordering/internal/microservices/tenants/service"
)

type Handler struct {
	TenantHandler *TenantHandler
}

func New(s *service.Service, lg *logger.Logger) *Handler {
	return &Handler{TenantHandler: NewTenantHandler(s.TenantService, lg)}
}

// Routes mounts under /api/v1/tenants/{tenantId}.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/departments", h.TenantHandler.ListDepartments)
	r.Post("/departments", h.TenantHandler.CreateDepartment)
	r.Put("/departments/{id}", h.TenantHandler.UpdateDepartment)
	r.Delete("/departments/{id}", h.TenantHandler.DeleteDepartment)

	r.Get("/waiters", h.TenantHandler.ListWaiters)
	r.Post("/waiters", h.TenantHandler.CreateWaiter)
	r.Put("/waiters/{id}", h.TenantHandler.UpdateWaiter)
	r.Delete("/waiters/{id}", h.TenantHandler.DeleteWaiter)
}
