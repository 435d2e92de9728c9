package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"cafe-ordering/internal/common/httpx"
	"cafe-ordering/internal/common/logger"
	"cafe-ordering/internal/domain"
	"cafe-ordering/internal/microservices/webhook/service"
)

const (
	HeaderCompany = "X-Delivery-Company"
	HeaderEventID = "X-Event-ID"
)

type Handler struct {
	service service.WebhookServiceInterface
	lg      *logger.Logger
}

func New(s service.WebhookServiceInterface, lg *logger.Logger) *Handler {
	return &Handler{service: s, lg: lg}
}

func (h *Handler) Routes(r chi.Router) {
	r.HandleFunc("/webhooks/delivery", h.Receive)
}

type webhookRequest struct {
	Type    string          `json:"type"`
	Data    json.RawMessage `json:"data"`
	Company string          `json:"company"`
	EventID string          `json:"eventId"`
}

func (h *Handler) Receive(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpx.WriteJSON(w, http.StatusMethodNotAllowed, map[string]any{"success": false, "error": "Method not allowed"})
		return
	}

	var req webhookRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, err)
		return
	}
	company := r.Header.Get(HeaderCompany)
	if company == "" {
		company = req.Company
	}
	eventID := r.Header.Get(HeaderEventID)
	if eventID == "" {
		eventID = req.EventID
	}

	res, err := h.service.Ingest(r.Context(), company, eventID, req.Type, req.Data)
	if perr, ok := service.IsProcessingError(err); ok {
		httpx.WriteJSON(w, http.StatusBadRequest, map[string]any{
			"success": false,
			"error":   perr.Err.Error(),
			"eventId": perr.EventID,
		})
		return
	}
	if err != nil {
		code, body := httpx.ErrorBody(err)
		if code >= http.StatusInternalServerError {
			httpx.Logger(h.lg, r).Error("webhook_ingest_failed", err, map[string]any{"company": company})
		}
		if errors.Is(err, domain.ErrLocked) {
			body["error"] = "Event is being processed"
		}
		httpx.WriteJSON(w, code, body)
		return
	}

	msg := "Event processed"
	if res.Duplicate {
		msg = "Event already processed"
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"success": true, "message": msg, "eventId": res.EventID})
}
