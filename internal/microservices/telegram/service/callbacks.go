package service

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"cafe-ordering/internal/domain"
	notify "cafe-ordering/internal/microservices/notificator/service"
	orders "cafe-ordering/internal/microservices/order/service"
)

const rejectedByStaff = "Rejected by staff"

// handleCallback always answers the query, even when routing fails.
func (s *TelegramService) handleCallback(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	fields := map[string]any{"callback_id": cq.ID, "data": cq.Data}

	answer, err := s.route(ctx, cq)
	if err != nil {
		s.lg.Error("telegram_callback_failed", err, fields)
		answer = "⚠️ " + shortError(err)
	} else {
		s.lg.Info("telegram_callback_handled", fields)
		s.clearKeyboard(cq)
	}

	if _, err := s.bot.Request(tgbotapi.NewCallback(cq.ID, answer)); err != nil {
		s.lg.Error("telegram_callback_answer_failed", err, fields)
	}
}

func (s *TelegramService) route(ctx context.Context, cq *tgbotapi.CallbackQuery) (string, error) {
	cb, err := domain.ParseCallback(cq.Data)
	if err != nil {
		return "", err
	}

	switch cb.EntityType {
	case domain.EntityOrder:
		switch cb.Action {
		case domain.ActionApprove:
			o, _, err := s.tables.ApprovePendingOrder(ctx, cb.EntityID, orders.ChangedByTelegram)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("Order #%s approved", short(o.ID)), nil
		case domain.ActionReject:
			if _, err := s.tables.RejectPendingOrder(ctx, cb.EntityID, rejectedByStaff); err != nil {
				return "", err
			}
			return "Order rejected", nil
		case domain.ActionReady:
			if _, err := s.orders.MarkReady(ctx, cb.EntityID, orders.ChangedByTelegram); err != nil {
				return "", err
			}
			return "Marked ready", nil
		}

	case domain.EntityPayment:
		switch cb.Action {
		case domain.ActionApprove:
			if _, _, err := s.tables.ApprovePayment(ctx, cb.EntityID); err != nil {
				return "", err
			}
			return "Payment confirmed", nil
		case domain.ActionReject:
			if _, err := s.tables.RejectPayment(ctx, cb.EntityID); err != nil {
				return "", err
			}
			return "Payment rejected", nil
		}

	case domain.EntityDelivery:
		switch cb.Action {
		case domain.ActionApprove:
			res, err := s.orders.AcceptDelivery(ctx, cb.EntityID, orders.ChangedByTelegram)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("Accepted, ready in %d min", res.EstimatedTime), nil
		case domain.ActionReject:
			if _, err := s.orders.RejectDelivery(ctx, cb.EntityID, orders.ChangedByTelegram); err != nil {
				return "", err
			}
			return "Delivery order rejected", nil
		}

	case domain.EntityWaiter:
		return s.waiterReply(cb, cq)
	}
	return "", fmt.Errorf("%w: %q", domain.ErrBadCallback, cq.Data)
}

func (s *TelegramService) waiterReply(cb domain.Callback, cq *tgbotapi.CallbackQuery) (string, error) {
	_, table, err := notify.ParseWaiterCallID(cb.EntityID)
	if err != nil {
		return "", &domain.ValidationError{Message: err.Error()}
	}
	who := "Staff"
	if cq.From != nil {
		who = cq.From.FirstName
		if who == "" {
			who = cq.From.UserName
		}
	}

	var text string
	switch cb.Action {
	case domain.ActionAck:
		text = fmt.Sprintf("👌 %s is on the way to table %d", who, table)
	case domain.ActionDelay:
		text = fmt.Sprintf("⏳ %s will come to table %d in a few minutes", who, table)
	case domain.ActionAssign:
		text = fmt.Sprintf("🙋 %s took table %d", who, table)
	}
	if cq.Message != nil && cq.Message.Chat != nil {
		if _, err := s.bot.Send(tgbotapi.NewMessage(cq.Message.Chat.ID, text)); err != nil {
			s.lg.Error("telegram_reply_failed", err, map[string]any{"chat_id": cq.Message.Chat.ID})
		}
	}
	return "Noted", nil
}

func (s *TelegramService) clearKeyboard(cq *tgbotapi.CallbackQuery) {
	if cq.Message == nil || cq.Message.Chat == nil {
		return
	}
	edit := tgbotapi.NewEditMessageReplyMarkup(cq.Message.Chat.ID, cq.Message.MessageID,
		tgbotapi.InlineKeyboardMarkup{InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{}})
	if _, err := s.bot.Request(edit); err != nil {
		s.lg.Error("telegram_keyboard_clear_failed", err, map[string]any{"chat_id": cq.Message.Chat.ID})
	}
}

// Telegram caps callback answers at 200 characters and rejects broken UTF-8.
func shortError(err error) string {
	msg := strings.ToValidUTF8(err.Error(), "")
	if r := []rune(msg); len(r) > 180 {
		msg = string(r[:180])
	}
	return msg
}

func short(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
