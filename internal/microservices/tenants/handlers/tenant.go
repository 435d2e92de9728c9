package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"cafe-ordering/internal/common/httpx"
	"cafe-ordering/internal/common/logger"
	"cafe-ordering/internal/microservices/tenants/service"
)

type TenantHandler struct {
	service service.TenantServiceInterface
	lg      *logger.Logger
}

func NewTenantHandler(s service.TenantServiceInterface, lg *logger.Logger) *TenantHandler {
	return &TenantHandler{service: s, lg: lg}
}

func (h *TenantHandler) fail(w http.ResponseWriter, r *http.Request, action string, err error) {
	if code, _ := httpx.ErrorBody(err); code >= http.StatusInternalServerError {
		httpx.Logger(h.lg, r).Error(action, err, map[string]any{"tenant_id": chi.URLParam(r, "tenantId")})
	}
	httpx.WriteError(w, err)
}

func (h *TenantHandler) ListDepartments(w http.ResponseWriter, r *http.Request) {
	out, err := h.service.ListDepartments(r.Context(), chi.URLParam(r, "tenantId"))
	if err != nil {
		h.fail(w, r, "departments_list_failed", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"success": true, "departments": out})
}

func (h *TenantHandler) CreateDepartment(w http.ResponseWriter, r *http.Request) {
	var in service.DepartmentInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.WriteError(w, err)
		return
	}
	d, err := h.service.CreateDepartment(r.Context(), chi.URLParam(r, "tenantId"), in)
	if err != nil {
		h.fail(w, r, "department_create_failed", err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, map[string]any{"success": true, "department": d})
}

func (h *TenantHandler) UpdateDepartment(w http.ResponseWriter, r *http.Request) {
	var in service.DepartmentInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.WriteError(w, err)
		return
	}
	d, err := h.service.UpdateDepartment(r.Context(), chi.URLParam(r, "tenantId"), chi.URLParam(r, "id"), in)
	if err != nil {
		h.fail(w, r, "department_update_failed", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"success": true, "department": d})
}

func (h *TenantHandler) DeleteDepartment(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteDepartment(r.Context(), chi.URLParam(r, "tenantId"), chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, "department_delete_failed", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (h *TenantHandler) ListWaiters(w http.ResponseWriter, r *http.Request) {
	out, err := h.service.ListWaiters(r.Context(), chi.URLParam(r, "tenantId"))
	if err != nil {
		h.fail(w, r, "waiters_list_failed", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"success": true, "waiters": out})
}

func (h *TenantHandler) CreateWaiter(w http.ResponseWriter, r *http.Request) {
	var in service.WaiterInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.WriteError(w, err)
		return
	}
	wa, err := h.service.CreateWaiter(r.Context(), chi.URLParam(r, "tenantId"), in)
	if err != nil {
		h.fail(w, r, "waiter_create_failed", err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, map[string]any{"success": true, "waiter": wa})
}

func (h *TenantHandler) UpdateWaiter(w http.ResponseWriter, r *http.Request) {
	var in service.WaiterInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.WriteError(w, err)
		return
	}
	wa, err := h.service.UpdateWaiter(r.Context(), chi.URLParam(r, "tenantId"), chi.URLParam(r, "id"), in)
	if err != nil {
		h.fail(w, r, "waiter_update_failed", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"success": true, "waiter": wa})
}

func (h *TenantHandler) DeleteWaiter(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteWaiter(r.Context(), chi.URLParam(r, "tenantId"), chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, "waiter_delete_failed", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"success": true})
}
