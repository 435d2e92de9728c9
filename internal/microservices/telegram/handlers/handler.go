package handlers

import (
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"cafe-ordering/internal/common/httpx"
	"cafe-ordering/internal/common/logger"
	"cafe-ordering/internal/domain"
	"cafe-ordering/internal/microservices/telegram/service"
)

const secretHeader = "X-Telegram-Bot-Api-Secret-Token"

type webhookRequest struct {
	URL string `json:"url"`
}

type testMessageRequest struct {
	ChatID int64  `json:"chatId"`
	Text   string `json:"text"`
}

type Handler struct {
	service service.TelegramServiceInterface
	secret  string
	lg      *logger.Logger
}

// New: с непустым secret апдейты без совпадающего заголовка отклоняются.
func New(s service.TelegramServiceInterface, secret string, lg *logger.Logger) *Handler {
	return &Handler{service: s, secret: secret, lg: lg}
}

// Routes mounts at the server root.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/telegram/webhook", h.Update)
	r.Post("/ops/telegram/webhook", h.RegisterWebhook)
	r.Post("/ops/telegram/test-message", h.TestMessage)
}

// Update answers 200 to every authentic update, otherwise Telegram keeps redelivering it.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	if h.secret != "" && subtle.ConstantTimeCompare([]byte(r.Header.Get(secretHeader)), []byte(h.secret)) != 1 {
		httpx.Logger(h.lg, r).Error("telegram_update_rejected", fmt.Errorf("secret token mismatch: %w", domain.ErrUnauthorized), nil)
		httpx.WriteError(w, domain.ErrUnauthorized)
		return
	}
	var u tgbotapi.Update
	if err := json.NewDecoder(r.Body).Decode(&u); err != nil {
		httpx.Logger(h.lg, r).Error("telegram_update_decode_failed", err, nil)
		httpx.WriteJSON(w, http.StatusOK, map[string]any{"ok": false})
		return
	}
	h.service.HandleUpdate(r.Context(), u)
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (h *Handler) RegisterWebhook(w http.ResponseWriter, r *http.Request) {
	var req webhookRequest
	if r.ContentLength != 0 {
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.WriteError(w, err)
			return
		}
	}
	url, err := h.service.RegisterWebhook(r.Context(), req.URL)
	if err != nil {
		h.fail(w, r, "telegram_webhook_register_failed", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"success": true, "url": url})
}

func (h *Handler) TestMessage(w http.ResponseWriter, r *http.Request) {
	var req testMessageRequest
	if r.ContentLength != 0 {
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.WriteError(w, err)
			return
		}
	}
	msg, err := h.service.SendTestMessage(r.Context(), req.ChatID, req.Text)
	if err != nil {
		h.fail(w, r, "telegram_test_message_failed", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"success": true, "messageId": msg.MessageID})
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, action string, err error) {
	if code, _ := httpx.ErrorBody(err); code >= http.StatusInternalServerError {
		httpx.Logger(h.lg, r).Error(action, err, nil)
	}
	httpx.WriteError(w, err)
}
