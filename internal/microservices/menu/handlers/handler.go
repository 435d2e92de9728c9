package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"cafe-ordering/internal/common/httpx"
	"cafe-ordering/internal/common/logger"
	"cafe-ordering/internal/microservices/menu/service"
)

type Handler struct {
	service service.MenuServiceInterface
	lg      *logger.Logger
}

func New(s service.MenuServiceInterface, lg *logger.Logger) *Handler {
	return &Handler{service: s, lg: lg}
}

// Routes mounts under /api/v1.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/tenants/{tenantId}/menu", h.GetMenu)
}

func (h *Handler) GetMenu(w http.ResponseWriter, r *http.Request) {
	menu, err := h.service.GetMenu(r.Context(), chi.URLParam(r, "tenantId"))
	if err != nil {
		if code, _ := httpx.ErrorBody(err); code >= http.StatusInternalServerError {
			httpx.Logger(h.lg, r).Error("menu_failed", err, nil)
		}
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, menu)
}
