package service

import (
	"context"
	"errors"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"cafe-ordering/internal/common/logger"
	"cafe-ordering/internal/domain"
	orders "cafe-ordering/internal/microservices/order/service"
)

const defaultTestText = "✅ Test message from cafe-ordering"

// Bot is the slice of *tgbotapi.BotAPI used here.
type Bot interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	MakeRequest(endpoint string, params tgbotapi.Params) (*tgbotapi.APIResponse, error)
}

// Config: WebhookSecret уходит в setWebhook как secret_token, Telegram возвращает его в каждом апдейте.
type Config struct {
	WebhookURL    string
	WebhookSecret string
	DefaultChatID int64
}

type TelegramServiceInterface interface {
	HandleUpdate(ctx context.Context, u tgbotapi.Update)
	RegisterWebhook(ctx context.Context, url string) (string, error)
	SendTestMessage(ctx context.Context, chatID int64, text string) (*tgbotapi.Message, error)
}

type TelegramService struct {
	bot    Bot
	orders orders.OrderServiceInterface
	tables orders.TableServiceInterface
	cfg    Config
	lg     *logger.Logger
}

func NewTelegramService(bot Bot, orderSvc orders.OrderServiceInterface, tableSvc orders.TableServiceInterface, cfg Config, lg *logger.Logger) *TelegramService {
	return &TelegramService{bot: bot, orders: orderSvc, tables: tableSvc, cfg: cfg, lg: lg}
}

func (s *TelegramService) HandleUpdate(ctx context.Context, u tgbotapi.Update) {
	switch {
	case u.CallbackQuery != nil:
		s.handleCallback(ctx, u.CallbackQuery)
	case u.Message != nil && u.Message.IsCommand():
		s.handleCommand(u.Message)
	default:
		s.lg.Debug("telegram_update_ignored", map[string]any{"update_id": u.UpdateID})
	}
}

// /chatid and /start reply with the chat id so staff can configure departments.
func (s *TelegramService) handleCommand(m *tgbotapi.Message) {
	if m.Chat == nil {
		return
	}
	switch m.Command() {
	case "start", "chatid":
		reply := tgbotapi.NewMessage(m.Chat.ID, fmt.Sprintf("Chat id: %d", m.Chat.ID))
		if _, err := s.bot.Send(reply); err != nil {
			s.lg.Error("telegram_reply_failed", err, map[string]any{"chat_id": m.Chat.ID})
		}
	}
}

func (s *TelegramService) RegisterWebhook(ctx context.Context, url string) (string, error) {
	if url == "" {
		url = s.cfg.WebhookURL
	}
	if url == "" {
		return "", domain.Missing("url")
	}
	wh, err := tgbotapi.NewWebhook(url)
	if err != nil {
		return "", &domain.ValidationError{Message: "Invalid webhook url: " + err.Error()}
	}
	// WebhookConfig в v5.5 не знает secret_token, поэтому параметры собираем сами
	params := tgbotapi.Params{"url": wh.URL.String()}
	params.AddNonEmpty("secret_token", s.cfg.WebhookSecret)

	resp, err := s.bot.MakeRequest("setWebhook", params)
	var apiErr *tgbotapi.Error
	switch {
	case errors.As(err, &apiErr):
		return "", &domain.ExternalCallError{Target: "telegram", StatusCode: apiErr.Code, Err: err}
	case err != nil:
		return "", &domain.ExternalCallError{Target: "telegram", Retryable: true, Err: err}
	case !resp.Ok:
		return "", &domain.ExternalCallError{Target: "telegram", StatusCode: resp.ErrorCode, Err: errors.New(resp.Description)}
	}
	s.lg.Info("telegram_webhook_registered", map[string]any{"url": url, "secret": s.cfg.WebhookSecret != ""})
	return url, nil
}

func (s *TelegramService) SendTestMessage(ctx context.Context, chatID int64, text string) (*tgbotapi.Message, error) {
	if chatID == 0 {
		chatID = s.cfg.DefaultChatID
	}
	if chatID == 0 {
		return nil, domain.Missing("chatId")
	}
	if text == "" {
		text = defaultTestText
	}
	msg, err := s.bot.Send(tgbotapi.NewMessage(chatID, text))
	if err != nil {
		return nil, &domain.ExternalCallError{Target: "telegram", Retryable: true, Err: err}
	}
	s.lg.Info("telegram_test_message_sent", map[string]any{"chat_id": chatID, "message_id": msg.MessageID})
	return &msg, nil
}
