package service

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"cafe-ordering/internal/common/logger"
	"cafe-ordering/internal/domain"
	"cafe-ordering/internal/microservices/tenants/repository"
)

type Kind string

const (
	KindNewOrder            Kind = "new-order"
	KindPaymentConfirmation Kind = "payment-confirmation"
	KindWaiterCall          Kind = "waiter-call"
	KindCancellation        Kind = "cancellation"
	KindDriverAssigned      Kind = "driver-assigned"
	KindDayReport           Kind = "day-report"
	KindFeedback            Kind = "feedback"
	KindKitchenTicket       Kind = "kitchen-ticket"
	KindOrderReady          Kind = "order-ready"
)

// Sender is the part of *tgbotapi.BotAPI the dispatcher needs.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type Destinations struct {
	Cashier int64
	Kitchen int64
	Admin   int64
}

func (d Destinations) For(role domain.Role) int64 {
	switch role {
	case domain.RoleKitchen:
		return d.Kitchen
	case domain.RoleAdmin:
		return d.Admin
	default:
		return d.Cashier
	}
}

// Payload carries whatever a template needs; unused fields stay zero.
type Payload struct {
	TenantID   string
	TenantName string
	Currency   string

	Order    *domain.Order
	Pending  *domain.PendingOrder
	Payment  *domain.PaymentConfirmation
	Report   *domain.DayReport
	Feedback *domain.Feedback

	Table      int
	Note       string
	Reason     string
	WaiterName string

	// Informational drops the action buttons (copy for visibility).
	Informational bool
	// Unassigned switches waiter-call buttons to ack/assign.
	Unassigned bool
}

type DispatcherInterface interface {
	ResolveDestinations(ctx context.Context, tenantID string) (Destinations, error)
	Dispatch(ctx context.Context, kind Kind, p Payload, chatID int64) bool
	Notify(ctx context.Context, tenantID string, role domain.Role, kind Kind, p Payload) bool
	NotifyWaiterCall(ctx context.Context, tenantID string, table int, note string) (WaiterCallResult, error)
}

type Dispatcher struct {
	tenants       repository.TenantRepositoryInterface
	departments   repository.DepartmentRepositoryInterface
	waiters       repository.WaiterRepositoryInterface
	sender        Sender
	defaultChatID int64
	lg            *logger.Logger
}

func NewDispatcher(
	tenants repository.TenantRepositoryInterface,
	departments repository.DepartmentRepositoryInterface,
	waiters repository.WaiterRepositoryInterface,
	sender Sender,
	defaultChatID int64,
	lg *logger.Logger,
) *Dispatcher {
	return &Dispatcher{
		tenants:       tenants,
		departments:   departments,
		waiters:       waiters,
		sender:        sender,
		defaultChatID: defaultChatID,
		lg:            lg,
	}
}

// ResolveDestinations picks a chat per role from the tenant's departments.
// Gaps fall back to the tenant's legacy chat, then to the deployment default.
func (d *Dispatcher) ResolveDestinations(ctx context.Context, tenantID string) (Destinations, error) {
	tenant, err := d.tenants.Get(ctx, tenantID)
	if err != nil {
		return Destinations{}, err
	}
	deps, err := d.departments.ListByTenant(ctx, tenantID)
	if err != nil {
		return Destinations{}, fmt.Errorf("resolve destinations: %w", err)
	}

	var dest Destinations
	var cashierAdmin int64
	for _, dep := range deps {
		switch dep.Role {
		case domain.RoleCashier:
			if dest.Cashier == 0 {
				dest.Cashier = dep.ChatID
				cashierAdmin = dep.AdminChatID
			}
		case domain.RoleKitchen:
			if dest.Kitchen == 0 {
				dest.Kitchen = dep.ChatID
			}
		case domain.RoleAdmin:
			if dest.Admin == 0 {
				dest.Admin = dep.ChatID
			}
		}
	}
	if dest.Admin == 0 {
		dest.Admin = cashierAdmin
	}

	fallback := tenant.TelegramChatID
	if fallback == 0 {
		fallback = d.defaultChatID
	}
	for _, c := range []*int64{&dest.Cashier, &dest.Kitchen, &dest.Admin} {
		if *c == 0 {
			*c = fallback
		}
	}
	return dest, nil
}

// Dispatch sends one message. Failures are logged and reported as false.
func (d *Dispatcher) Dispatch(ctx context.Context, kind Kind, p Payload, chatID int64) bool {
	fields := map[string]any{"kind": kind, "tenant_id": p.TenantID, "chat_id": chatID}
	if chatID == 0 {
		d.lg.Error("notification_skipped", fmt.Errorf("no destination configured"), fields)
		return false
	}
	if err := ctx.Err(); err != nil {
		d.lg.Error("notification_failed", err, fields)
		return false
	}

	text, err := render(kind, p)
	if err != nil {
		d.lg.Error("notification_render_failed", err, fields)
		return false
	}
	markup, err := keyboard(kind, p)
	if err != nil {
		// без кнопок, но текст всё равно уходит
		d.lg.Error("notification_keyboard_failed", err, fields)
		markup = nil
	}

	var msg tgbotapi.Chattable
	if kind == KindPaymentConfirmation && p.Payment != nil && p.Payment.ScreenshotURL != "" {
		photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileURL(p.Payment.ScreenshotURL))
		photo.Caption = text
		if markup != nil {
			photo.ReplyMarkup = *markup
		}
		msg = photo
	} else {
		m := tgbotapi.NewMessage(chatID, text)
		if markup != nil {
			m.ReplyMarkup = *markup
		}
		msg = m
	}

	if _, err := d.sender.Send(msg); err != nil {
		d.lg.Error("notification_failed", err, fields)
		return false
	}
	d.lg.Debug("notification_sent", fields)
	return true
}

func (d *Dispatcher) Notify(ctx context.Context, tenantID string, role domain.Role, kind Kind, p Payload) bool {
	dest, err := d.ResolveDestinations(ctx, tenantID)
	if err != nil {
		d.lg.Error("notification_destination_failed", err, map[string]any{"kind": kind, "tenant_id": tenantID})
		return false
	}
	p.TenantID = tenantID
	return d.Dispatch(ctx, kind, p, dest.For(role))
}

func keyboard(kind Kind, p Payload) (*tgbotapi.InlineKeyboardMarkup, error) {
	if p.Informational {
		return nil, nil
	}
	var buttons []struct {
		label string
		cb    domain.Callback
	}
	add := func(label, action, entity, id string) {
		buttons = append(buttons, struct {
			label string
			cb    domain.Callback
		}{label, domain.Callback{Action: action, EntityType: entity, EntityID: id}})
	}

	switch kind {
	case KindNewOrder:
		switch {
		case p.Order != nil && p.Order.Source == domain.SourceDelivery:
			add("✅ Accept", domain.ActionApprove, domain.EntityDelivery, p.Order.ID)
			add("❌ Reject", domain.ActionReject, domain.EntityDelivery, p.Order.ID)
		case p.Pending != nil:
			add("✅ Approve", domain.ActionApprove, domain.EntityOrder, p.Pending.ID)
			add("❌ Reject", domain.ActionReject, domain.EntityOrder, p.Pending.ID)
		}
	case KindPaymentConfirmation:
		if p.Payment != nil {
			add("✅ Confirm", domain.ActionApprove, domain.EntityPayment, p.Payment.ID)
			add("❌ Reject", domain.ActionReject, domain.EntityPayment, p.Payment.ID)
		}
	case KindWaiterCall:
		id := WaiterCallID(p.TenantID, p.Table)
		add("👌 On my way", domain.ActionAck, domain.EntityWaiter, id)
		if p.Unassigned {
			add("🙋 Assign waiter", domain.ActionAssign, domain.EntityWaiter, id)
		} else {
			add("⏳ Delay", domain.ActionDelay, domain.EntityWaiter, id)
		}
	case KindKitchenTicket:
		if p.Order != nil {
			add("🍽 Ready", domain.ActionReady, domain.EntityOrder, p.Order.ID)
		}
	}
	if len(buttons) == 0 {
		return nil, nil
	}

	row := make([]tgbotapi.InlineKeyboardButton, 0, len(buttons))
	for _, b := range buttons {
		data, err := b.cb.Encode()
		if err != nil {
			return nil, err
		}
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(b.label, data))
	}
	markup := tgbotapi.NewInlineKeyboardMarkup(row)
	return &markup, nil
}
