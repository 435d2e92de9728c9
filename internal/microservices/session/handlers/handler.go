package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"cafe-ordering/internal/common/httpx"
	"cafe-ordering/internal/common/logger"
	"cafe-ordering/internal/microservices/session/service"
)

type feedbackRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

type waiterCallRequest struct {
	SessionID string `json:"sessionId"`
	Note      string `json:"note"`
}

type Handler struct {
	service service.SessionServiceInterface
	lg      *logger.Logger
}

func New(s *service.Service, lg *logger.Logger) *Handler {
	return &Handler{service: s.SessionService, lg: lg}
}

// Routes mounts under /api/v1.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/sessions", h.Start)
	r.Get("/sessions/{sessionId}", h.Get)
	r.Post("/sessions/{sessionId}/feedback", h.Feedback)
	r.Post("/waiter-calls", h.CallWaiter)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, action string, err error) {
	if code, _ := httpx.ErrorBody(err); code >= http.StatusInternalServerError {
		httpx.Logger(h.lg, r).Error(action, err, nil)
	}
	httpx.WriteError(w, err)
}

// Start accepts either a JSON body or the ?cafe=&table= pair of a QR link.
func (h *Handler) Start(w http.ResponseWriter, r *http.Request) {
	var in service.StartInput
	if r.ContentLength != 0 {
		if err := httpx.DecodeJSON(r, &in); err != nil {
			httpx.WriteError(w, err)
			return
		}
	}
	q := r.URL.Query()
	if in.StartParam == "" && in.TenantID == "" && (q.Has("cafe") || q.Has("table")) {
		tenantID, table, err := service.FromQuery(q.Get("cafe"), q.Get("table"))
		if err != nil {
			httpx.WriteError(w, err)
			return
		}
		in.TenantID, in.Table = tenantID, table
	}

	sess, err := h.service.StartSession(r.Context(), in)
	if err != nil {
		h.fail(w, r, "session_start_failed", err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, map[string]any{"success": true, "session": sess})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	sess, err := h.service.GetSession(r.Context(), chi.URLParam(r, "sessionId"))
	if err != nil {
		h.fail(w, r, "session_get_failed", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"success": true, "session": sess})
}

func (h *Handler) Feedback(w http.ResponseWriter, r *http.Request) {
	var req feedbackRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, err)
		return
	}
	fb, err := h.service.SubmitFeedback(r.Context(), chi.URLParam(r, "sessionId"), req.Rating, req.Comment)
	if err != nil {
		h.fail(w, r, "feedback_failed", err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, map[string]any{"success": true, "feedback": fb})
}

func (h *Handler) CallWaiter(w http.ResponseWriter, r *http.Request) {
	var req waiterCallRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, err)
		return
	}
	res, err := h.service.CallWaiter(r.Context(), req.SessionID, req.Note)
	if err != nil {
		h.fail(w, r, "waiter_call_failed", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"success": true, "waiterCall": res})
}
